package record

import (
	"errors"
	"io"
	"maps"
	"slices"
)

// Row maps external field names to raw values.
type Row map[string]string

// Rows yields rows one at a time. Next returns io.EOF after the last row.
type Rows interface {
	Next() (Row, error)
}

// ErrNoRecord is returned by a Source that has no rows for a record.
var ErrNoRecord = errors.New("record not present")

// Source opens the rows of a record by its external name.
type Source interface {
	Rows(record string) (Rows, error)
}

// SliceRows serves rows from memory.
type SliceRows struct {
	rows []Row
	pos  int
}

// FromSlice returns Rows over rows.
func FromSlice(rows ...Row) *SliceRows {
	return &SliceRows{rows: rows}
}

func (s *SliceRows) Next() (Row, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}

	row := s.rows[s.pos]
	s.pos++

	return row, nil
}

// MapSource is a Source over in-memory rows keyed by record name.
type MapSource map[string][]Row

func (m MapSource) Rows(record string) (Rows, error) {
	rows, ok := m[record]
	if !ok {
		return nil, ErrNoRecord
	}

	return FromSlice(rows...), nil
}

// Records returns the record names in the source, sorted.
func (m MapSource) Records() []string {
	return slices.Sorted(maps.Keys(m))
}
