package property

import (
	"fmt"
	"reflect"
)

// Entity is a pointer to a described record struct.
type Entity = any

// Property is a named, typed accessor pair on one entity type.
type Property struct {
	name     string
	owner    reflect.Type
	typ      reflect.Type
	get      func(Entity) any
	set      func(Entity, any) error
	constant bool
}

// TypeError is returned when a value of the wrong type is assigned to a property.
type TypeError struct {
	Property string
	Want     reflect.Type
	Got      reflect.Type
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("property %q: cannot assign %v to %v", e.Property, e.Got, e.Want)
}

// Field declares a settable property of entity type *T holding values of type V.
func Field[T any, V any](name string, get func(*T) V, set func(*T, V)) *Property {
	p := &Property{
		name:  name,
		owner: reflect.TypeFor[*T](),
		typ:   reflect.TypeFor[V](),
	}

	p.get = func(e Entity) any {
		rec, ok := e.(*T)
		if !ok || rec == nil {
			return nil
		}

		return get(rec)
	}

	p.set = func(e Entity, v any) error {
		rec, ok := e.(*T)
		if !ok || rec == nil {
			return fmt.Errorf("property %q: entity %T is not a %v", name, e, p.owner)
		}

		if v == nil {
			var zero V
			set(rec, zero)

			return nil
		}

		val, ok := v.(V)
		if !ok {
			return &TypeError{Property: name, Want: p.typ, Got: reflect.TypeOf(v)}
		}

		set(rec, val)

		return nil
	}

	return p
}

// Constant declares a read-only property backed by a constant of the type.
// Constant properties never appear in record schemas.
func Constant[T any, V any](name string, get func(*T) V) *Property {
	p := Field(name, get, func(*T, V) {})
	p.constant = true
	p.set = func(Entity, any) error {
		return fmt.Errorf("property %q is constant", name)
	}

	return p
}

// Name returns the property name.
func (p *Property) Name() string { return p.name }

// Type returns the Go type of the property value.
func (p *Property) Type() reflect.Type { return p.typ }

// Owner returns the entity pointer type the property belongs to.
func (p *Property) Owner() reflect.Type { return p.owner }

// IsConstant reports whether the property is constant-backed.
func (p *Property) IsConstant() bool { return p.constant }

// Get reads the property from e. It returns nil when e is not an entity of
// the owning type.
func (p *Property) Get(e Entity) any { return p.get(e) }

// Set assigns v to the property of e. A nil v resets the property to its zero value.
func (p *Property) Set(e Entity, v any) error { return p.set(e, v) }

// IsSet reports whether the property of e holds a present value. Nil pointers,
// maps, slices and interfaces count as absent.
func (p *Property) IsSet(e Entity) bool {
	return !IsNil(p.get(e))
}

// IsNil reports whether v is nil or a nil pointer, map, slice or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
