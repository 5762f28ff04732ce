package property

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Resolver maps an alias used in a path segment to a property name of t.
// It is consulted only when the segment is not a property name itself.
type Resolver func(t *Type, segment string) (string, bool)

// PathError reports a path segment that could not be resolved.
type PathError struct {
	Expr    string
	Segment string
	Type    string
	Err     error
}

func (e *PathError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("invalid path %q: %v", e.Expr, e.Err)
	}

	return fmt.Sprintf("invalid path %q: segment %q on %s: %v", e.Expr, e.Segment, e.Type, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

var (
	// ErrUnknownProperty is wrapped by PathError when a segment names no property.
	ErrUnknownProperty = errors.New("unknown property")
	// ErrNotEntity is wrapped by PathError when a segment follows a non-entity value.
	ErrNotEntity = errors.New("value is not an entity")
)

type step struct {
	owner *Type
	prop  *Property
}

// Path is a dotted property expression resolved against a root type.
type Path struct {
	expr   string
	root   *Type
	steps  []step
	target *Type
}

// ParsePath resolves expr against root. Each segment must name a property of
// the entity type reached so far; resolve may map aliases to property names.
func ParsePath(types *Registry, root *Type, expr string, resolve Resolver) (*Path, error) {
	if expr == "" {
		return nil, &PathError{Expr: expr, Err: errors.New("empty path")}
	}

	p := &Path{expr: expr, root: root}
	cur := root

	for segment := range strings.SplitSeq(expr, ".") {
		if segment == "" {
			return nil, &PathError{Expr: expr, Err: errors.New("empty segment")}
		}

		if cur == nil {
			prev := p.steps[len(p.steps)-1].prop

			return nil, &PathError{Expr: expr, Segment: segment, Type: prev.typ.String(), Err: ErrNotEntity}
		}

		prop, ok := cur.Property(segment)
		if !ok && resolve != nil {
			if name, found := resolve(cur, segment); found {
				prop, ok = cur.Property(name)
			}
		}

		if !ok {
			return nil, &PathError{Expr: expr, Segment: segment, Type: cur.name, Err: ErrUnknownProperty}
		}

		p.steps = append(p.steps, step{owner: cur, prop: prop})

		cur = nil
		if types != nil {
			cur, _ = types.ForGoType(prop.typ)
		}
	}

	p.target = cur

	return p, nil
}

// MustParsePath is ParsePath that panics on error.
func MustParsePath(types *Registry, root *Type, expr string) *Path {
	p, err := ParsePath(types, root, expr, nil)
	if err != nil {
		panic(err)
	}

	return p
}

// String returns the expression as written.
func (p *Path) String() string { return p.expr }

// Root returns the type the path was resolved against.
func (p *Path) Root() *Type { return p.root }

// Len returns the number of segments.
func (p *Path) Len() int { return len(p.steps) }

// Last returns the property addressed by the final segment.
func (p *Path) Last() *Property { return p.steps[len(p.steps)-1].prop }

// Owner returns the entity type that declares the final segment.
func (p *Path) Owner() *Type { return p.steps[len(p.steps)-1].owner }

// Type returns the Go type of the value the path addresses.
func (p *Path) Type() reflect.Type { return p.Last().typ }

// Target returns the entity type of the addressed value, or nil when the
// value is not an entity.
func (p *Path) Target() *Type { return p.target }

// Canonical returns the path spelled with property names only.
func (p *Path) Canonical() string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.prop.name
	}

	return strings.Join(names, ".")
}

// Get evaluates the path on e. A nil reference anywhere along the way yields nil.
func (p *Path) Get(e Entity) any {
	cur := any(e)

	for _, s := range p.steps {
		if IsNil(cur) {
			return nil
		}

		cur = s.prop.Get(cur)
	}

	return cur
}

// Set assigns v to the final segment of the path on e.
func (p *Path) Set(e Entity, v any) error {
	parent := any(e)

	for _, s := range p.steps[:len(p.steps)-1] {
		if IsNil(parent) {
			break
		}

		parent = s.prop.Get(parent)
	}

	if IsNil(parent) {
		return fmt.Errorf("path %q: nil reference before last segment", p.expr)
	}

	return p.Last().Set(parent, v)
}
