package record

import (
	"fmt"

	"schedule-transformer/internal/codec"
	"schedule-transformer/internal/property"
	"schedule-transformer/internal/schema"
	"schedule-transformer/internal/store"
)

// Writer encodes stored entities into rows.
type Writer struct {
	schemas *schema.Registry
	store   store.Store
	codec   *codec.Context
}

// NewWriter creates a writer over st.
func NewWriter(schemas *schema.Registry, st store.Store) *Writer {
	return &Writer{
		schemas: schemas,
		store:   st,
		codec:   codec.NewContext(st),
	}
}

// Write returns the header and one row per entity of t, in store order.
func (w *Writer) Write(t *property.Type) ([]string, []Row, error) {
	s, err := w.schemas.Schema(t)
	if err != nil {
		return nil, nil, err
	}

	fields := s.Fields()
	entities := w.store.All(t)
	rows := make([]Row, 0, len(entities))

	for i, e := range entities {
		row := make(Row, len(fields))
		for _, f := range fields {
			if err := f.Encode(w.codec, e, row); err != nil {
				return nil, nil, &RowError{Record: s.Record(), Row: i + 1, Err: err}
			}
		}

		rows = append(rows, row)
	}

	return s.Header(), rows, nil
}

// Values orders the values of row by header.
func Values(header []string, row Row) []string {
	out := make([]string, len(header))
	for i, name := range header {
		out[i] = row[name]
	}

	return out
}

// Record returns the external record name of t.
func (w *Writer) Record(t *property.Type) (string, error) {
	s, err := w.schemas.Schema(t)
	if err != nil {
		return "", fmt.Errorf("record name of %s: %w", t.Name(), err)
	}

	return s.Record(), nil
}
