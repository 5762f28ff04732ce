package codec

import (
	"errors"
	"fmt"

	"schedule-transformer/internal/property"
)

// Codec converts one field between its raw and typed forms.
type Codec interface {
	Decode(ctx *Context, raw string) (any, error)
	Encode(ctx *Context, value any) (string, error)
}

// CodecError reports a raw value that a codec cannot decode or a value it
// cannot encode.
type CodecError struct {
	Field string
	Value string
	Err   error
}

func (e *CodecError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("field %s: %v", e.Field, e.Err)
	}

	return fmt.Sprintf("field %s: value %q: %v", e.Field, e.Value, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

var (
	// ErrNoConverter is returned when no converter exists for a Go type.
	ErrNoConverter = errors.New("no converter for type")
	// ErrMissingReference is returned when a required reference is not loaded.
	ErrMissingReference = errors.New("referenced entity not found")
	// ErrMissingValue is returned when a required field is empty.
	ErrMissingValue = errors.New("missing required value")
)

// Lookup finds entities that were already loaded.
type Lookup interface {
	Get(t *property.Type, key any) (property.Entity, bool)
}

// Deferred is returned by a decode that has to wait for the referenced
// entity to be loaded.
type Deferred struct {
	Type *property.Type
	Key  any
}

// Unresolved describes a deferred reference that never resolved.
type Unresolved struct {
	Entity   property.Entity
	Property string
	Type     string
	Key      any
}

type pending struct {
	entity property.Entity
	prop   *property.Property
	ref    Deferred
}

// Context carries the state shared by codecs during one load or write.
type Context struct {
	lookup    Lookup
	translate func(kind, id string) string
	pending   []pending
}

// Option configures a Context.
type Option func(*Context)

// WithIDTranslator installs the function used by TranslatedID codecs.
func WithIDTranslator(fn func(kind, id string) string) Option {
	return func(c *Context) {
		c.translate = fn
	}
}

// NewContext creates a codec context resolving references through lookup.
func NewContext(lookup Lookup, opts ...Option) *Context {
	c := &Context{lookup: lookup}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Lookup finds an already loaded entity.
func (c *Context) Lookup(t *property.Type, key any) (property.Entity, bool) {
	if c == nil || c.lookup == nil {
		return nil, false
	}

	return c.lookup.Get(t, key)
}

// TranslateID maps an id of the given kind. Without a translator the id is
// returned unchanged.
func (c *Context) TranslateID(kind, id string) string {
	if c == nil || c.translate == nil {
		return id
	}

	return c.translate(kind, id)
}

// Defer records that prop of e must be set to the entity referenced by ref
// once it is loaded.
func (c *Context) Defer(e property.Entity, prop *property.Property, ref Deferred) {
	c.pending = append(c.pending, pending{entity: e, prop: prop, ref: ref})
}

// Pending returns the number of deferred references.
func (c *Context) Pending() int { return len(c.pending) }

// ResolveDeferred sets every deferred reference whose target is now loaded
// and returns the ones that are still missing. Missing ones stay unset.
func (c *Context) ResolveDeferred() ([]Unresolved, error) {
	var missing []Unresolved

	for _, p := range c.pending {
		target, ok := c.Lookup(p.ref.Type, p.ref.Key)
		if !ok {
			missing = append(missing, Unresolved{
				Entity:   p.entity,
				Property: p.prop.Name(),
				Type:     p.ref.Type.Name(),
				Key:      p.ref.Key,
			})

			continue
		}

		if err := p.prop.Set(p.entity, target); err != nil {
			return missing, fmt.Errorf("resolve %s %v: %w", p.ref.Type.Name(), p.ref.Key, err)
		}
	}

	c.pending = nil

	return missing, nil
}
