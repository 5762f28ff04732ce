package transform

import (
	"context"
	"fmt"
	"reflect"
	"regexp"

	"schedule-transformer/internal/property"
)

// EntityStrategy changes one entity. Named strategies are looked up by the
// rule compiler and run on the entities their match selects.
type EntityStrategy interface {
	Run(ctx context.Context, env *Env, e property.Entity) error
}

// StrategyFunc adapts a function to EntityStrategy.
type StrategyFunc func(ctx context.Context, env *Env, e property.Entity) error

func (f StrategyFunc) Run(ctx context.Context, env *Env, e property.Entity) error {
	return f(ctx, env, e)
}

// Assignment sets the value at Path. When Ref is set, Value is the key of an
// entity of Ref that is looked up in the store at apply time.
type Assignment struct {
	Path  *property.Path
	Value any
	Ref   *property.Type
}

// SetProperties assigns values to properties.
type SetProperties struct {
	Assignments []Assignment
}

func (s *SetProperties) Run(_ context.Context, env *Env, e property.Entity) error {
	for _, a := range s.Assignments {
		v := a.Value

		if a.Ref != nil && v != nil {
			target, ok := env.Store.Get(a.Ref, v)
			if !ok {
				return fmt.Errorf("set %s: %s %v not found", a.Path, a.Ref.Name(), v)
			}

			v = target
		}

		if err := a.Path.Set(e, v); err != nil {
			return fmt.Errorf("set %s: %w", a.Path, err)
		}
	}

	return nil
}

// Replacement rewrites the string at Path, replacing every match of Pattern
// with Replace. Replace may refer to groups as $1 or ${name}.
type Replacement struct {
	Path    *property.Path
	Pattern *regexp.Regexp
	Replace string
}

// NewReplacement compiles pattern for a string or *string property path.
func NewReplacement(path *property.Path, pattern, replace string) (Replacement, error) {
	rt := path.Type()
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	if rt.Kind() != reflect.String {
		return Replacement{}, fmt.Errorf("strings: %s is %v, not a string", path, path.Type())
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return Replacement{}, fmt.Errorf("strings: %s: %w", path, err)
	}

	return Replacement{Path: path, Pattern: re, Replace: replace}, nil
}

// ReplaceStrings applies pattern replacements to string properties.
type ReplaceStrings struct {
	Replacements []Replacement
}

func (s *ReplaceStrings) Run(_ context.Context, _ *Env, e property.Entity) error {
	for _, r := range s.Replacements {
		cur := r.Path.Get(e)
		if property.IsNil(cur) {
			continue
		}

		rv := reflect.ValueOf(cur)
		isPtr := rv.Kind() == reflect.Pointer
		if isPtr {
			rv = rv.Elem()
		}

		replaced := reflect.New(rv.Type()).Elem()
		replaced.SetString(r.Pattern.ReplaceAllString(rv.String(), r.Replace))

		next := replaced.Interface()
		if isPtr {
			next = replaced.Addr().Interface()
		}

		if err := r.Path.Set(e, next); err != nil {
			return fmt.Errorf("strings %s: %w", r.Path, err)
		}
	}

	return nil
}
