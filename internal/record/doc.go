// Package record drives schemas over rows: the [Reader] decodes rows into
// entities and puts them in a store, the [Writer] encodes stored entities
// back into rows.
//
// Rows are already tokenized maps from external field name to raw value;
// splitting delimited text into rows is left to the caller.
//
// # Errors
//
// A row that a codec cannot decode aborts the read of its record with a
// [RowError]. An entity that fails a validator is skipped and reported as a
// [diagnostic.CodeValidation] error; the read goes on. Optional references
// that are still missing after every record was read are reported as
// warnings by [Reader.Finish].
package record
