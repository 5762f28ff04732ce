package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"schedule-transformer/internal/record"
)

// utf8BOM is stripped from the first header name.
const utf8BOM = "\ufeff"

// csvDir is a directory holding one CSV file per record.
type csvDir string

// Rows reads the whole file and closes it before returning.
func (d csvDir) Rows(name string) (record.Rows, error) {
	f, err := os.Open(filepath.Join(string(d), name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, record.ErrNoRecord
	}

	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return record.FromSlice(rows...), nil
}

func readCSV(r io.Reader) ([]record.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []record.Row

	for {
		values, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}

		if err != nil {
			return nil, err
		}

		row := make(record.Row, len(header))
		for i, name := range header {
			if i < len(values) {
				row[name] = values[i]
			}
		}

		rows = append(rows, row)
	}
}

// write replaces the named file with header and rows.
func (d csvDir) write(name string, header []string, rows []record.Row) (err error) {
	f, err := os.Create(filepath.Join(string(d), name))
	if err != nil {
		return err
	}

	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		if err := w.Write(record.Values(header, row)); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}
