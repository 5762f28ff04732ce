package transform

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/cel-go/cel"

	"schedule-transformer/internal/property"
)

// Constraint requires the value at Path to equal Value.
type Constraint struct {
	Path  *property.Path
	Value any
}

// Match selects entities of one type.
type Match struct {
	Type        *property.Type
	Constraints []Constraint
	Where       *Where
}

// NewMatch returns a match selecting every entity of t.
func NewMatch(t *property.Type) *Match {
	return &Match{Type: t}
}

// With adds a constraint. Entity values are reduced to their key.
func (m *Match) With(types *property.Registry, path *property.Path, value any) *Match {
	m.Constraints = append(m.Constraints, Constraint{Path: path, Value: types.KeyOf(value)})

	return m
}

// IsEmpty reports whether the match selects every entity of its type.
func (m *Match) IsEmpty() bool {
	return len(m.Constraints) == 0 && m.Where == nil
}

// Matches reports whether e satisfies every constraint and the expression.
func (m *Match) Matches(env *Env, e property.Entity) (bool, error) {
	if !m.Type.Owns(e) {
		return false, nil
	}

	types := env.Types()

	for _, c := range m.Constraints {
		if !equalValues(types.KeyOf(c.Path.Get(e)), c.Value) {
			return false, nil
		}
	}

	if m.Where == nil {
		return true, nil
	}

	view, err := env.View(m.Type, e)
	if err != nil {
		return false, err
	}

	return m.Where.Eval(view)
}

// Select returns the matching entities of the store in store order.
func (m *Match) Select(env *Env) ([]property.Entity, error) {
	var out []property.Entity

	for _, e := range env.Store.All(m.Type) {
		ok, err := m.Matches(env, e)
		if err != nil {
			return nil, err
		}

		if ok {
			out = append(out, e)
		}
	}

	return out, nil
}

func (m *Match) String() string {
	parts := make([]string, 0, len(m.Constraints)+1)
	for _, c := range m.Constraints {
		parts = append(parts, fmt.Sprintf("%s=%v", c.Path, c.Value))
	}

	if m.Where != nil {
		parts = append(parts, "where "+m.Where.String())
	}

	return m.Type.Name() + "{" + strings.Join(parts, ", ") + "}"
}

// Where is a compiled CEL expression over the record view of an entity.
type Where struct {
	expr string
	prg  cel.Program
}

// CompileWhere compiles a boolean CEL expression over the variable "record",
// a map from external field name to encoded value.
func CompileWhere(expr string) (*Where, error) {
	env, err := cel.NewEnv(cel.Variable("record", cel.MapType(cel.StringType, cel.StringType)))
	if err != nil {
		return nil, fmt.Errorf("where: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("where %q: %w", expr, iss.Err())
	}

	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("where %q: result is %v, want bool", expr, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("where %q: %w", expr, err)
	}

	return &Where{expr: expr, prg: prg}, nil
}

// Eval evaluates the expression against view.
func (w *Where) Eval(view map[string]string) (bool, error) {
	out, _, err := w.prg.Eval(map[string]any{"record": view})
	if err != nil {
		return false, fmt.Errorf("where %q: %w", w.expr, err)
	}

	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("where %q: result is %T, want bool", w.expr, out.Value())
	}

	return b, nil
}

func (w *Where) String() string { return w.expr }

func equalValues(a, b any) bool {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	if eq := reflect.ValueOf(a).MethodByName("Equal"); eq.IsValid() {
		mt := eq.Type()
		if mt.NumIn() == 1 && mt.In(0) == tb && mt.NumOut() == 1 && mt.Out(0).Kind() == reflect.Bool {
			return eq.Call([]reflect.Value{reflect.ValueOf(b)})[0].Bool()
		}
	}

	if ta.Comparable() {
		return a == b
	}

	return reflect.DeepEqual(a, b)
}

func deref(v any) any {
	if property.IsNil(v) {
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return rv.Elem().Interface()
	}

	return v
}
