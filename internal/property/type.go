package property

import (
	"fmt"
	"reflect"
	"strings"
)

// Type describes one entity type: its name, constructor and ordered properties.
type Type struct {
	name   string
	goType reflect.Type
	newFn  func() Entity
	props  []*Property
	byName map[string]*Property
	key    *Property
}

// Describe builds the descriptor of entity type *T. It panics when a property
// belongs to another type or is declared twice; descriptors are built at
// startup and such mistakes are programming errors.
func Describe[T any](name string, props ...*Property) *Type {
	t := &Type{
		name:   name,
		goType: reflect.TypeFor[*T](),
		newFn:  func() Entity { return new(T) },
		byName: make(map[string]*Property, len(props)),
	}

	for _, p := range props {
		if p.owner != t.goType {
			panic(fmt.Sprintf("property: %s.%s is declared on %v", name, p.name, p.owner))
		}

		if _, dup := t.byName[p.name]; dup {
			panic(fmt.Sprintf("property: %s.%s declared twice", name, p.name))
		}

		t.byName[p.name] = p
		t.props = append(t.props, p)
	}

	return t
}

// WithKey marks the named property as the identity of the type.
func (t *Type) WithKey(name string) *Type {
	p, ok := t.byName[name]
	if !ok {
		panic(fmt.Sprintf("property: %s has no key property %q", t.name, name))
	}

	t.key = p

	return t
}

// Name returns the type name.
func (t *Type) Name() string { return t.name }

// String implements fmt.Stringer.
func (t *Type) String() string { return t.name }

// GoType returns the entity pointer type.
func (t *Type) GoType() reflect.Type { return t.goType }

// StructType returns the struct type behind the entity pointer.
func (t *Type) StructType() reflect.Type { return t.goType.Elem() }

// New allocates a zero entity.
func (t *Type) New() Entity { return t.newFn() }

// Properties returns the properties in declaration order.
func (t *Type) Properties() []*Property {
	out := make([]*Property, len(t.props))
	copy(out, t.props)

	return out
}

// Property looks up a property by name.
func (t *Type) Property(name string) (*Property, bool) {
	p, ok := t.byName[name]

	return p, ok
}

// KeyProperty returns the identity property, or nil when the type has none.
func (t *Type) KeyProperty() *Property { return t.key }

// HasKey reports whether the type has an identity property.
func (t *Type) HasKey() bool { return t.key != nil }

// Key returns the identity of e, or nil when the type has no key.
func (t *Type) Key(e Entity) any {
	if t.key == nil || IsNil(e) {
		return nil
	}

	return t.key.Get(e)
}

// Owns reports whether e is an entity of this type.
func (t *Type) Owns(e Entity) bool {
	return e != nil && reflect.TypeOf(e) == t.goType
}

// Registry indexes entity types by name and by Go type.
type Registry struct {
	byName map[string]*Type
	byGo   map[reflect.Type]*Type
	order  []*Type
}

// NewRegistry creates a registry holding the given types.
func NewRegistry(types ...*Type) *Registry {
	r := &Registry{
		byName: make(map[string]*Type),
		byGo:   make(map[reflect.Type]*Type),
	}

	for _, t := range types {
		r.MustRegister(t)
	}

	return r
}

// Register adds a type. Registering two types with the same name or Go type
// is an error.
func (r *Registry) Register(t *Type) error {
	if _, exists := r.byName[t.name]; exists {
		return fmt.Errorf("type %q already registered", t.name)
	}

	if prev, exists := r.byGo[t.goType]; exists {
		return fmt.Errorf("go type %v already registered as %q", t.goType, prev.name)
	}

	r.byName[t.name] = t
	r.byGo[t.goType] = t
	r.order = append(r.order, t)

	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(t *Type) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Lookup finds a type by name. Qualified names ("transit.Trip") fall back to
// their last segment.
func (r *Registry) Lookup(name string) (*Type, bool) {
	if t, ok := r.byName[name]; ok {
		return t, true
	}

	if i := strings.LastIndex(name, "."); i >= 0 {
		t, ok := r.byName[name[i+1:]]

		return t, ok
	}

	return nil, false
}

// ForGoType finds the type described for the entity pointer type rt.
func (r *Registry) ForGoType(rt reflect.Type) (*Type, bool) {
	if rt == nil {
		return nil, false
	}

	t, ok := r.byGo[rt]

	return t, ok
}

// Of finds the type of entity e.
func (r *Registry) Of(e Entity) (*Type, bool) {
	if e == nil {
		return nil, false
	}

	return r.ForGoType(reflect.TypeOf(e))
}

// All returns the registered types in registration order.
func (r *Registry) All() []*Type {
	out := make([]*Type, len(r.order))
	copy(out, r.order)

	return out
}

// KeyOf reduces an entity value to its identity and returns any other value
// unchanged. Nil references reduce to nil.
func (r *Registry) KeyOf(v any) any {
	if IsNil(v) {
		return nil
	}

	if t, ok := r.Of(v); ok && t.HasKey() {
		return t.Key(v)
	}

	return v
}
