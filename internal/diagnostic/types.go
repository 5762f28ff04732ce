package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Codes used by the record reader and the rule compiler.
const (
	CodeValidation          = "validation"
	CodeUnresolvedReference = "unresolved_reference"
	CodeUnknownOp           = "unknown_op"
)

// Diagnostics holds the diagnostics of one load or compile.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity
	// Code identifies the kind of problem.
	Code string
	// Message is the human-readable description.
	Message string
	// Record is the external record or rule source name (if any).
	Record string
	// Line is the 1-based row or rule line number, 0 when unknown.
	Line int
	// Field is the external field or property involved (if any).
	Field string
}

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Add appends d to the list matching its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case SeverityError:
		d.Errors = append(d.Errors, diag)
	case SeverityWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, record string, line int, field string) {
	d.Add(Diagnostic{Severity: SeverityError, Code: code, Message: message, Record: record, Line: line, Field: field})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, record string, line int, field string) {
	d.Add(Diagnostic{Severity: SeverityWarning, Code: code, Message: message, Record: record, Line: line, Field: field})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, record string, line int, field string) {
	d.Add(Diagnostic{Severity: SeverityInfo, Code: code, Message: message, Record: record, Line: line, Field: field})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Len returns the number of diagnostics of every severity.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// ByCode returns every diagnostic with the given code, errors first.
func (d *Diagnostics) ByCode(code string) []Diagnostic {
	var out []Diagnostic

	for _, list := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for _, diag := range list {
			if diag.Code == code {
				out = append(out, diag)
			}
		}
	}

	return out
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string

	switch {
	case d.Record != "" && d.Line > 0:
		prefix = append(prefix, fmt.Sprintf("[%s:%d]", d.Record, d.Line))
	case d.Record != "":
		prefix = append(prefix, "["+d.Record+"]")
	case d.Line > 0:
		prefix = append(prefix, fmt.Sprintf("[line %d]", d.Line))
	}

	if d.Field != "" {
		prefix = append(prefix, d.Field)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
