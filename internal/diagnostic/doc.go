// Package diagnostic collects problems found while loading records and
// compiling rules that do not abort the operation.
//
// Entities that fail a validator are skipped and reported here, optional
// references that never resolve are reported as warnings, and rule lines
// with an unknown op are reported as warnings. Callers decide whether a
// report with errors is fatal; [Diagnostics.Error] turns it into one error.
package diagnostic
