package schema

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"schedule-transformer/internal/codec"
	"schedule-transformer/internal/property"
)

// unordered sorts fields without an explicit order after all ordered ones.
const unordered = math.MaxInt

// Registry builds and caches one schema per entity type.
type Registry struct {
	types  *property.Registry
	codecs *codec.Registry

	mu      sync.Mutex
	configs map[string]RecordConfig
	schemas map[*property.Type]*EntitySchema
}

// NewRegistry creates a schema registry over the given entity types and codecs.
func NewRegistry(types *property.Registry, codecs *codec.Registry) *Registry {
	return &Registry{
		types:   types,
		codecs:  codecs,
		configs: make(map[string]RecordConfig),
		schemas: make(map[*property.Type]*EntitySchema),
	}
}

// Types returns the entity type registry.
func (r *Registry) Types() *property.Registry { return r.types }

// Codecs returns the codec registry.
func (r *Registry) Codecs() *codec.Registry { return r.codecs }

// Configure merges configuration on top of anything configured before.
// Configuring a type whose schema was already built is an error.
func (r *Registry) Configure(cfgs ...RecordConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cfg := range cfgs {
		t, ok := r.types.Lookup(cfg.Type)
		if !ok {
			return fmt.Errorf("configure schema: unknown entity type %q", cfg.Type)
		}

		if _, built := r.schemas[t]; built {
			return &SchemaError{Type: t.Name(), Err: errors.New("schema already built")}
		}

		cfg.Type = t.Name()
		if prev, exists := r.configs[t.Name()]; exists {
			cfg = prev.Merge(cfg)
		}

		r.configs[t.Name()] = cfg
	}

	return nil
}

// ConfigureFile loads a YAML override file and applies it with Configure.
func (r *Registry) ConfigureFile(path string) error {
	cf, err := LoadConfigFile(path)
	if err != nil {
		return err
	}

	return r.Configure(cf.Records...)
}

// Schema returns the schema of t, building it on first use.
func (r *Registry) Schema(t *property.Type) (*EntitySchema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.schemas[t]; ok {
		return s, nil
	}

	s, err := r.build(t)
	if err != nil {
		return nil, err
	}

	r.schemas[t] = s

	return s, nil
}

// SchemaByName looks up the type by name and returns its schema.
func (r *Registry) SchemaByName(name string) (*EntitySchema, error) {
	t, ok := r.types.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("schema: unknown entity type %q", name)
	}

	return r.Schema(t)
}

// MustSchema is Schema that panics on error.
func (r *Registry) MustSchema(t *property.Type) *EntitySchema {
	s, err := r.Schema(t)
	if err != nil {
		panic(err)
	}

	return s
}

// Resolver returns a path resolver accepting external field names
// ("route_short_name") and case-insensitive property names as aliases.
func (r *Registry) Resolver() property.Resolver {
	return func(t *property.Type, segment string) (string, bool) {
		if s, err := r.Schema(t); err == nil {
			if f, ok := s.Field(segment); ok {
				return f.Property.Name(), true
			}
		}

		for _, p := range t.Properties() {
			if strings.EqualFold(p.Name(), segment) {
				return p.Name(), true
			}
		}

		return "", false
	}
}

func (r *Registry) build(t *property.Type) (*EntitySchema, error) {
	cfg, err := tagConfig(t)
	if err != nil {
		return nil, err
	}

	if configured, ok := r.configs[t.Name()]; ok {
		cfg = cfg.Merge(configured)
	}

	for name := range cfg.Fields {
		if _, ok := t.Property(name); !ok {
			return nil, &SchemaError{Type: t.Name(), Field: name, Err: property.ErrUnknownProperty}
		}
	}

	s := &EntitySchema{
		typ:        t,
		record:     cfg.Record.Or(t.Name()),
		required:   cfg.Required.Or(false),
		byExternal: make(map[string]*FieldMapping),
		byProperty: make(map[string]*FieldMapping),
		fieldOrder: slices.Clone(cfg.FieldOrder),
	}

	prefix := cfg.Prefix.Or("")

	for _, prop := range t.Properties() {
		if prop.IsConstant() {
			continue
		}

		fc := cfg.Fields[prop.Name()]
		if fc.Ignore.Or(false) {
			continue
		}

		m, err := r.mapping(t, prop, fc, prefix)
		if err != nil {
			return nil, err
		}

		if prev, dup := s.byExternal[m.External]; dup {
			return nil, &SchemaError{
				Type:  t.Name(),
				Field: m.External,
				Err:   fmt.Errorf("mapped by both %s and %s", prev.Property.Name(), prop.Name()),
			}
		}

		s.fields = append(s.fields, m)
		s.byExternal[m.External] = m
		s.byProperty[prop.Name()] = m
	}

	slices.SortStableFunc(s.fields, func(a, b *FieldMapping) int {
		return cmp.Compare(a.Order, b.Order)
	})

	s.validators = slices.Clone(cfg.Validators)
	slices.SortStableFunc(s.validators, func(a, b Validator) int {
		return cmp.Compare(a.Order, b.Order)
	})

	return s, nil
}

func (r *Registry) mapping(t *property.Type, prop *property.Property, fc FieldConfig, prefix string) (*FieldMapping, error) {
	external := fc.Name.Or(prefix + ExternalName(prop.Name()))
	required := !fc.Optional.Or(false)

	c, err := r.codecs.ForField(codec.FieldInfo{
		Entity:   t,
		Property: prop,
		External: external,
		Required: required,
	}, fc.Codec.Or(""))
	if err != nil {
		return nil, &SchemaError{Type: t.Name(), Field: external, Err: err}
	}

	return &FieldMapping{
		External: external,
		Property: prop,
		Required: required,
		Order:    fc.Order.Or(unordered),
		Default:  fc.Default,
		Codec:    c,
	}, nil
}
