package schema

import (
	"errors"
	"fmt"
	"slices"

	"schedule-transformer/internal/codec"
	"schedule-transformer/internal/property"
)

// SchemaError reports a schema that cannot be built.
type SchemaError struct {
	Type  string
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema %s: %v", e.Type, e.Err)
	}

	return fmt.Sprintf("schema %s field %s: %v", e.Type, e.Field, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// FieldMapping binds one external field to one property through a codec.
type FieldMapping struct {
	External string
	Property *property.Property
	Required bool
	Order    int
	Default  Opt[string]
	Codec    codec.Codec
}

// Decode reads the field from rec into e. A missing or empty value on an
// optional field without a default leaves e untouched; on a required field
// it is an error. Deferred references are registered with ctx.
func (m *FieldMapping) Decode(ctx *codec.Context, rec map[string]string, e property.Entity) error {
	raw := rec[m.External]
	if raw == "" {
		def, ok := m.Default.Get()

		switch {
		case ok:
			raw = def
		case !m.Required:
			return nil
		default:
			return &codec.CodecError{Field: m.External, Err: codec.ErrMissingValue}
		}
	}

	v, err := m.Codec.Decode(ctx, raw)
	if err != nil {
		return &codec.CodecError{Field: m.External, Value: raw, Err: err}
	}

	if ref, ok := v.(codec.Deferred); ok {
		ctx.Defer(e, m.Property, ref)

		return nil
	}

	if err := m.Property.Set(e, v); err != nil {
		return &codec.CodecError{Field: m.External, Value: raw, Err: err}
	}

	return nil
}

// Encode writes the property of e into rec. Absent values are written as
// empty strings so every row carries every field.
func (m *FieldMapping) Encode(ctx *codec.Context, e property.Entity, rec map[string]string) error {
	v := m.Property.Get(e)

	raw, err := m.Codec.Encode(ctx, v)
	if err != nil {
		return &codec.CodecError{Field: m.External, Err: err}
	}

	rec[m.External] = raw

	return nil
}

// EntitySchema is the immutable record description of one entity type.
type EntitySchema struct {
	typ        *property.Type
	record     string
	required   bool
	fields     []*FieldMapping
	byExternal map[string]*FieldMapping
	byProperty map[string]*FieldMapping
	validators []Validator
	fieldOrder []string
}

// Type returns the entity type.
func (s *EntitySchema) Type() *property.Type { return s.typ }

// Record returns the external record name.
func (s *EntitySchema) Record() string { return s.record }

// Required reports whether the record must be present in every input.
func (s *EntitySchema) Required() bool { return s.required }

// Fields returns the field mappings in order.
func (s *EntitySchema) Fields() []*FieldMapping { return slices.Clone(s.fields) }

// Validators returns the validators in order.
func (s *EntitySchema) Validators() []Validator { return slices.Clone(s.validators) }

// FieldOrder returns the explicit output order, if one was configured.
func (s *EntitySchema) FieldOrder() []string { return slices.Clone(s.fieldOrder) }

// Field finds a field mapping by external name.
func (s *EntitySchema) Field(external string) (*FieldMapping, bool) {
	m, ok := s.byExternal[external]

	return m, ok
}

// FieldForProperty finds a field mapping by property name.
func (s *EntitySchema) FieldForProperty(name string) (*FieldMapping, bool) {
	m, ok := s.byProperty[name]

	return m, ok
}

// Header returns the external names in output order: the explicit field
// order first, then every remaining field in schema order.
func (s *EntitySchema) Header() []string {
	header := make([]string, 0, len(s.fields))
	seen := make(map[string]bool, len(s.fields))

	for _, name := range s.fieldOrder {
		if _, ok := s.byExternal[name]; ok && !seen[name] {
			header = append(header, name)
			seen[name] = true
		}
	}

	for _, f := range s.fields {
		if !seen[f.External] {
			header = append(header, f.External)
		}
	}

	return header
}

// Validate runs every validator against e and joins their errors.
func (s *EntitySchema) Validate(e property.Entity) error {
	var errs []error

	for _, v := range s.validators {
		if err := v.Check(e); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", v.Name, err))
		}
	}

	return errors.Join(errs...)
}
