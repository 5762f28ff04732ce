package transit

import (
	"fmt"

	"schedule-transformer/internal/codec"
	"schedule-transformer/internal/property"
	"schedule-transformer/internal/record"
	"schedule-transformer/internal/rules"
	"schedule-transformer/internal/schema"
	"schedule-transformer/internal/store"
	"schedule-transformer/internal/transform"
)

// Environment holds everything needed to load, transform and write one feed.
type Environment struct {
	Types   *property.Registry
	Codecs  *codec.Registry
	Schemas *schema.Registry
	Store   *store.Memory
	Ops     *rules.Ops
}

// NewEnvironment wires the model into fresh registries and an empty store.
// Schema overrides can still be applied with Schemas.Configure until the
// first schema is built.
func NewEnvironment() (*Environment, error) {
	types := property.NewRegistry(LoadOrder()...)
	codecs := NewCodecs(types)
	schemas := schema.NewRegistry(types, codecs)

	if err := schemas.Configure(Validators()...); err != nil {
		return nil, fmt.Errorf("configure validators: %w", err)
	}

	st := store.NewMemory(types)
	if err := st.Relate(Relationships(types)...); err != nil {
		return nil, fmt.Errorf("register relationships: %w", err)
	}

	ops := rules.NewOps()
	if err := RegisterOps(ops); err != nil {
		return nil, fmt.Errorf("register ops: %w", err)
	}

	return &Environment{
		Types:   types,
		Codecs:  codecs,
		Schemas: schemas,
		Store:   st,
		Ops:     ops,
	}, nil
}

// Env returns the stage environment over the store.
func (e *Environment) Env() *transform.Env {
	return transform.NewEnv(e.Store, e.Schemas)
}

// Compiler returns a rule compiler knowing the model's types and ops.
func (e *Environment) Compiler() *rules.Compiler {
	return rules.NewCompiler(e.Schemas, e.Ops)
}

// Reader returns a record reader filling the store.
func (e *Environment) Reader(opts ...record.ReaderOption) *record.Reader {
	return record.NewReader(e.Schemas, e.Store, opts...)
}

// Writer returns a record writer over the store.
func (e *Environment) Writer() *record.Writer {
	return record.NewWriter(e.Schemas, e.Store)
}
