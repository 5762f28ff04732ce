package transform

import (
	"fmt"

	"schedule-transformer/internal/codec"
	"schedule-transformer/internal/property"
	"schedule-transformer/internal/record"
	"schedule-transformer/internal/schema"
	"schedule-transformer/internal/store"
)

// Env is what stages operate on.
type Env struct {
	Store   store.Store
	Schemas *schema.Registry
}

// NewEnv creates a stage environment.
func NewEnv(st store.Store, schemas *schema.Registry) *Env {
	return &Env{Store: st, Schemas: schemas}
}

// Types returns the entity types of the store.
func (env *Env) Types() *property.Registry { return env.Store.Types() }

// View encodes e into its record form.
func (env *Env) View(t *property.Type, e property.Entity) (record.Row, error) {
	if env.Schemas == nil {
		return nil, fmt.Errorf("record view of %s: no schema registry", t.Name())
	}

	s, err := env.Schemas.Schema(t)
	if err != nil {
		return nil, err
	}

	ctx := codec.NewContext(env.Store)
	row := make(record.Row, len(s.Fields()))

	for _, f := range s.Fields() {
		if err := f.Encode(ctx, e, row); err != nil {
			return nil, fmt.Errorf("record view of %s: %w", t.Name(), err)
		}
	}

	return row, nil
}
