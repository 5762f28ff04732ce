package store

import (
	"fmt"
	"slices"

	"schedule-transformer/internal/property"
)

// Store is a keyed, per-type entity collection with relationship indexes.
type Store interface {
	// Types returns the entity types the store can hold.
	Types() *property.Registry
	// All returns the entities of t in insertion order.
	All(t *property.Type) []property.Entity
	// Get finds an entity of t by key.
	Get(t *property.Type, key any) (property.Entity, bool)
	// Put adds e, replacing an entity of t with the same key.
	Put(t *property.Type, e property.Entity) error
	// Remove deletes e and reports whether it was present.
	Remove(t *property.Type, e property.Entity) bool
	// RemoveFunc deletes every entity of t for which fn returns true and
	// returns how many were removed.
	RemoveFunc(t *property.Type, fn func(property.Entity) bool) int
	// Index returns the children of parentKey in the named relationship.
	Index(relationship string, parentKey any) ([]property.Entity, error)
	// ClearCaches invalidates every relationship index.
	ClearCaches()
	// Rekey rebuilds the key lookup from the current key properties, so
	// entities whose key was changed in place are found under the new key.
	// Two entities of one type sharing a key is an error.
	Rekey() error
}

type bucket struct {
	entities []property.Entity
	byKey    map[any]property.Entity
}

// Memory is the in-memory Store.
type Memory struct {
	types   *property.Registry
	buckets map[*property.Type]*bucket
	indexes *IndexCache
}

// NewMemory creates an empty store for the given types.
func NewMemory(types *property.Registry) *Memory {
	m := &Memory{
		types:   types,
		buckets: make(map[*property.Type]*bucket),
	}
	m.indexes = NewIndexCache(m)

	return m
}

// Types returns the entity type registry.
func (m *Memory) Types() *property.Registry { return m.types }

// Indexes returns the index cache of the store.
func (m *Memory) Indexes() *IndexCache { return m.indexes }

// Relate registers relationships with the index cache.
func (m *Memory) Relate(rels ...Relationship) error {
	for _, rel := range rels {
		if err := m.indexes.Register(rel); err != nil {
			return err
		}
	}

	return nil
}

// All returns a copy of the entities of t in insertion order.
func (m *Memory) All(t *property.Type) []property.Entity {
	b, ok := m.buckets[t]
	if !ok {
		return nil
	}

	return slices.Clone(b.entities)
}

// Count returns the number of entities of t.
func (m *Memory) Count(t *property.Type) int {
	if b, ok := m.buckets[t]; ok {
		return len(b.entities)
	}

	return 0
}

// Get finds an entity of t by key.
func (m *Memory) Get(t *property.Type, key any) (property.Entity, bool) {
	b, ok := m.buckets[t]
	if !ok || key == nil {
		return nil, false
	}

	e, ok := b.byKey[key]
	if !ok || t.Key(e) != key {
		return nil, false
	}

	return e, true
}

// Put adds e. An entity with the same key is replaced at its position.
func (m *Memory) Put(t *property.Type, e property.Entity) error {
	if !t.Owns(e) {
		return fmt.Errorf("store: %T is not a %s", e, t.Name())
	}

	b := m.bucket(t)

	key := t.Key(e)
	if key == nil {
		b.entities = append(b.entities, e)

		return nil
	}

	if prev, exists := b.byKey[key]; exists {
		if i := slices.Index(b.entities, prev); i >= 0 {
			b.entities[i] = e
		}
	} else {
		b.entities = append(b.entities, e)
	}

	b.byKey[key] = e

	return nil
}

// Remove deletes e and reports whether it was present.
func (m *Memory) Remove(t *property.Type, e property.Entity) bool {
	return m.RemoveFunc(t, func(x property.Entity) bool { return x == e }) > 0
}

// RemoveFunc deletes every entity of t for which fn returns true.
func (m *Memory) RemoveFunc(t *property.Type, fn func(property.Entity) bool) int {
	b, ok := m.buckets[t]
	if !ok {
		return 0
	}

	before := len(b.entities)
	b.entities = slices.DeleteFunc(b.entities, func(e property.Entity) bool {
		if !fn(e) {
			return false
		}

		if key := t.Key(e); key != nil && b.byKey[key] == e {
			delete(b.byKey, key)
		}

		return true
	})

	return before - len(b.entities)
}

// Index returns the children of parentKey in the named relationship.
func (m *Memory) Index(relationship string, parentKey any) ([]property.Entity, error) {
	return m.indexes.Get(relationship, parentKey)
}

// ClearCaches invalidates every relationship index.
func (m *Memory) ClearCaches() {
	m.indexes.InvalidateAll()
}

// Rekey rebuilds the key lookup of every type. On a duplicate key the
// lookup of that type is left unchanged.
func (m *Memory) Rekey() error {
	for _, t := range m.types.All() {
		b, ok := m.buckets[t]
		if !ok {
			continue
		}

		byKey := make(map[any]property.Entity, len(b.entities))
		for _, e := range b.entities {
			key := t.Key(e)
			if key == nil {
				continue
			}

			if _, dup := byKey[key]; dup {
				return fmt.Errorf("store: duplicate %s key %v", t.Name(), key)
			}

			byKey[key] = e
		}

		b.byKey = byKey
	}

	return nil
}

func (m *Memory) bucket(t *property.Type) *bucket {
	b, ok := m.buckets[t]
	if !ok {
		b = &bucket{byKey: make(map[any]property.Entity)}
		m.buckets[t] = b
	}

	return b
}
