package schema

import (
	"gopkg.in/yaml.v3"
)

// Opt is a configuration value that is either unset or explicitly set.
type Opt[T any] struct {
	value T
	set   bool
}

// Set returns an explicitly set Opt.
func Set[T any](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

// Unset returns an Opt with no value.
func Unset[T any]() Opt[T] {
	return Opt[T]{}
}

// IsSet reports whether a value was configured.
func (o Opt[T]) IsSet() bool { return o.set }

// Get returns the value and whether it was configured.
func (o Opt[T]) Get() (T, bool) { return o.value, o.set }

// Or returns the value, or def when unset.
func (o Opt[T]) Or(def T) T {
	if o.set {
		return o.value
	}

	return def
}

// Merge returns src when it is set and o otherwise.
func (o Opt[T]) Merge(src Opt[T]) Opt[T] {
	if src.set {
		return src
	}

	return o
}

// IsZero lets omitempty drop unset values when marshaling.
func (o Opt[T]) IsZero() bool { return !o.set }

// UnmarshalYAML marks the value as set. An explicit null leaves it unset.
func (o *Opt[T]) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		*o = Opt[T]{}

		return nil
	}

	var v T
	if err := n.Decode(&v); err != nil {
		return err
	}

	*o = Set(v)

	return nil
}

// MarshalYAML writes the value, or null when unset.
func (o Opt[T]) MarshalYAML() (any, error) {
	if !o.set {
		return nil, nil
	}

	return o.value, nil
}
