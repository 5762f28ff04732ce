package codec

import (
	"fmt"
	"reflect"
	"sort"

	"schedule-transformer/internal/calendar"
	"schedule-transformer/internal/property"
)

// FieldInfo describes the field a codec is created for.
type FieldInfo struct {
	Entity   *property.Type
	Property *property.Property
	External string
	Required bool
}

// Factory creates the codec for one field.
type Factory func(reg *Registry, f FieldInfo) (Codec, error)

// Names of the built-in codec factories.
const (
	NameIdentity  = "identity"
	NameClockTime = "clock_time"
	NameDate      = "date"
	NameEntity    = "entity"
	NameAgencyID  = "agency_id"
	NameFlag      = "flag"
)

// Registry resolves the codec of a field.
type Registry struct {
	types      *property.Registry
	converters *Converters
	named      map[string]Factory
	byType     map[reflect.Type]Factory
}

// NewRegistry returns a registry with the built-in factories. Entity-typed
// properties resolve against types.
func NewRegistry(types *property.Registry) *Registry {
	r := &Registry{
		types:      types,
		converters: NewConverters(),
		named:      make(map[string]Factory),
		byType:     make(map[reflect.Type]Factory),
	}

	r.Register(NameIdentity, IdentityFactory)
	r.Register(NameClockTime, ClockTimeFactory)
	r.Register(NameDate, DateFactory)
	r.Register(NameEntity, EntityRefFactory)
	r.Register(NameAgencyID, TranslatedIDFactory("agency"))
	r.Register(NameFlag, FlagFactory("1", "0"))
	r.RegisterType(reflect.TypeFor[calendar.Date](), DateFactory)

	return r
}

// Register installs a named factory, replacing any previous one.
func (r *Registry) Register(name string, f Factory) {
	r.named[name] = f
}

// RegisterType makes f the default factory for fields of type rt.
func (r *Registry) RegisterType(rt reflect.Type, f Factory) {
	r.byType[rt] = f
}

// Named returns a named factory.
func (r *Registry) Named(name string) (Factory, bool) {
	f, ok := r.named[name]

	return f, ok
}

// Names returns the registered factory names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.named))
	for name := range r.named {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Converters returns the converter table.
func (r *Registry) Converters() *Converters { return r.converters }

// Types returns the entity type registry.
func (r *Registry) Types() *property.Registry { return r.types }

// ForField creates the codec for f. An explicit name wins; otherwise a
// factory bound to the property type, a reference codec for entity types
// and finally an identity codec are tried in that order.
func (r *Registry) ForField(f FieldInfo, name string) (Codec, error) {
	if name != "" {
		factory, ok := r.named[name]
		if !ok {
			return nil, fmt.Errorf("unknown codec %q", name)
		}

		return factory(r, f)
	}

	rt := f.Property.Type()

	if factory, ok := r.byType[rt]; ok {
		return factory(r, f)
	}

	if r.types != nil {
		if _, ok := r.types.ForGoType(rt); ok {
			return EntityRefFactory(r, f)
		}
	}

	return IdentityFactory(r, f)
}

// IdentityFactory builds an Identity codec from the converter table.
func IdentityFactory(r *Registry, f FieldInfo) (Codec, error) {
	conv, ok := r.converters.Lookup(f.Property.Type())
	if !ok {
		return nil, fmt.Errorf("%w %v", ErrNoConverter, f.Property.Type())
	}

	return NewIdentity(conv), nil
}

// ClockTimeFactory builds a ClockTime codec.
func ClockTimeFactory(_ *Registry, f FieldInfo) (Codec, error) {
	return NewClockTime(f.Property.Type())
}

// DateFactory builds a Date codec.
func DateFactory(_ *Registry, f FieldInfo) (Codec, error) {
	if f.Property.Type() != reflect.TypeFor[calendar.Date]() {
		return nil, fmt.Errorf("date codec needs a calendar.Date property, got %v", f.Property.Type())
	}

	return Date{}, nil
}

// EntityRefFactory builds an EntityRef codec to the entity type of the property.
func EntityRefFactory(r *Registry, f FieldInfo) (Codec, error) {
	if r.types == nil {
		return nil, fmt.Errorf("reference %s: no entity types registered", f.External)
	}

	target, ok := r.types.ForGoType(f.Property.Type())
	if !ok {
		return nil, fmt.Errorf("reference %s: %v is not an entity type", f.External, f.Property.Type())
	}

	return NewEntityRef(target, f.Required, r.converters)
}

// TranslatedIDFactory returns a factory for ids of the given kind.
func TranslatedIDFactory(kind string) Factory {
	return func(r *Registry, f FieldInfo) (Codec, error) {
		conv, ok := r.converters.Lookup(f.Property.Type())
		if !ok {
			return nil, fmt.Errorf("%w %v", ErrNoConverter, f.Property.Type())
		}

		return NewTranslatedID(kind, conv), nil
	}
}

// FlagFactory returns a factory for boolean fields encoded as two literals.
func FlagFactory(trueLiteral, falseLiteral string) Factory {
	return func(_ *Registry, f FieldInfo) (Codec, error) {
		if f.Property.Type() != reflect.TypeFor[bool]() {
			return nil, fmt.Errorf("flag codec needs a bool property, got %v", f.Property.Type())
		}

		return Flag{True: trueLiteral, False: falseLiteral}, nil
	}
}
