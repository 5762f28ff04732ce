package record

import (
	"context"
	"errors"
	"fmt"
	"io"

	"schedule-transformer/internal/codec"
	"schedule-transformer/internal/diagnostic"
	"schedule-transformer/internal/property"
	"schedule-transformer/internal/schema"
	"schedule-transformer/internal/store"
	"schedule-transformer/pkg/logger"
)

// RowError wraps the error that aborted a read with its record and row.
type RowError struct {
	Record string
	Row    int
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.Record, e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Reader decodes rows into entities of a store.
type Reader struct {
	schemas *schema.Registry
	store   store.Store
	codec   *codec.Context
	diags   diagnostic.Diagnostics
}

// ReaderOption configures a Reader.
type ReaderOption func(*readerOptions)

type readerOptions struct {
	codecOpts []codec.Option
}

// WithIDTranslator installs the id translation used by translated id codecs.
func WithIDTranslator(fn func(kind, id string) string) ReaderOption {
	return func(o *readerOptions) {
		o.codecOpts = append(o.codecOpts, codec.WithIDTranslator(fn))
	}
}

// NewReader creates a reader that puts entities into st.
func NewReader(schemas *schema.Registry, st store.Store, opts ...ReaderOption) *Reader {
	var o readerOptions
	for _, opt := range opts {
		opt(&o)
	}

	return &Reader{
		schemas: schemas,
		store:   st,
		codec:   codec.NewContext(st, o.codecOpts...),
	}
}

// Diagnostics returns what was reported so far.
func (r *Reader) Diagnostics() diagnostic.Diagnostics { return r.diags }

// Read decodes every row into a new entity of t and puts it in the store.
// It returns the number of entities stored.
func (r *Reader) Read(ctx context.Context, t *property.Type, rows Rows) (int, error) {
	s, err := r.schemas.Schema(t)
	if err != nil {
		return 0, err
	}

	log := logger.FromContext(ctx).With("record", s.Record())
	fields := s.Fields()
	stored := 0

	for line := 1; ; line++ {
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return stored, &RowError{Record: s.Record(), Row: line, Err: err}
		}

		e := t.New()
		for _, f := range fields {
			if err := f.Decode(r.codec, row, e); err != nil {
				return stored, &RowError{Record: s.Record(), Row: line, Err: err}
			}
		}

		if err := s.Validate(e); err != nil {
			log.Warnw("entity skipped", "row", line, "error", err)
			r.diags.AddError(diagnostic.CodeValidation, err.Error(), s.Record(), line, "")

			continue
		}

		if err := r.store.Put(t, e); err != nil {
			return stored, &RowError{Record: s.Record(), Row: line, Err: err}
		}

		stored++
	}

	log.Debugw("record read", "entities", stored)

	return stored, nil
}

// ReadAll reads every type in order from src. Records missing from src are
// skipped unless their schema is required. Deferred references are resolved
// at the end.
func (r *Reader) ReadAll(ctx context.Context, src Source, types ...*property.Type) error {
	for _, t := range types {
		s, err := r.schemas.Schema(t)
		if err != nil {
			return err
		}

		rows, err := src.Rows(s.Record())
		if errors.Is(err, ErrNoRecord) {
			if s.Required() {
				return fmt.Errorf("required record %s is missing: %w", s.Record(), err)
			}

			continue
		}

		if err != nil {
			return fmt.Errorf("open record %s: %w", s.Record(), err)
		}

		if _, err := r.Read(ctx, t, rows); err != nil {
			return err
		}
	}

	return r.Finish(ctx)
}

// Finish resolves deferred references. References that are still missing
// stay unset and are reported as warnings.
func (r *Reader) Finish(ctx context.Context) error {
	missing, err := r.codec.ResolveDeferred()
	if err != nil {
		return err
	}

	r.store.ClearCaches()

	log := logger.FromContext(ctx)

	for _, m := range missing {
		msg := fmt.Sprintf("%s %v not found", m.Type, m.Key)
		log.Warnw("unresolved reference", "type", m.Type, "key", m.Key, "property", m.Property)
		r.diags.AddWarning(diagnostic.CodeUnresolvedReference, msg, "", 0, m.Property)
	}

	return nil
}
