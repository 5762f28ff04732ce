package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Constructor creates a fresh, unconfigured instance of a named op.
type Constructor func() any

// Ops maps names used by "factory" and "transform" rules to constructors.
type Ops struct {
	byName map[string]Constructor
}

// NewOps creates an empty op registry.
func NewOps() *Ops {
	return &Ops{byName: make(map[string]Constructor)}
}

// Register adds a constructor under name. Names must be unique.
func (o *Ops) Register(name string, c Constructor) error {
	if name == "" {
		return errors.New("register op: empty name")
	}

	if _, exists := o.byName[name]; exists {
		return fmt.Errorf("register op: %q already registered", name)
	}

	o.byName[name] = c

	return nil
}

// MustRegister is Register that panics on error.
func (o *Ops) MustRegister(name string, c Constructor) {
	if err := o.Register(name, c); err != nil {
		panic(err)
	}
}

// Has reports whether name is registered.
func (o *Ops) Has(name string) bool {
	_, ok := o.constructor(name)

	return ok
}

// New creates an instance of the named op. Qualified names
// ("transit.RemoveEmptyTrips") fall back to their last segment.
func (o *Ops) New(name string) (any, bool) {
	c, ok := o.constructor(name)
	if !ok {
		return nil, false
	}

	return c(), true
}

// Names returns the registered names, sorted.
func (o *Ops) Names() []string {
	names := make([]string, 0, len(o.byName))
	for name := range o.byName {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (o *Ops) constructor(name string) (Constructor, bool) {
	if c, ok := o.byName[name]; ok {
		return c, true
	}

	if i := strings.LastIndex(name, "."); i >= 0 {
		c, ok := o.byName[name[i+1:]]

		return c, ok
	}

	return nil, false
}
