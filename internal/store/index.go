package store

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"schedule-transformer/internal/property"
)

// ErrUnknownRelationship is returned for a relationship that was never registered.
var ErrUnknownRelationship = errors.New("unknown relationship")

// Relationship groups entities of Child by the value Parent reads from them.
// Entity values are reduced to their key. Compare, when set, orders each group.
type Relationship struct {
	Name    string
	Child   *property.Type
	Parent  *property.Path
	Compare func(a, b property.Entity) int
}

// Source is what an IndexCache reads children from.
type Source interface {
	Types() *property.Registry
	All(t *property.Type) []property.Entity
}

// IndexCache memoizes relationship groupings over a Source.
type IndexCache struct {
	source Source
	rels   map[string]Relationship
	memo   map[string]map[any][]property.Entity
}

// NewIndexCache creates an empty cache over src.
func NewIndexCache(src Source) *IndexCache {
	return &IndexCache{
		source: src,
		rels:   make(map[string]Relationship),
		memo:   make(map[string]map[any][]property.Entity),
	}
}

// Register adds a relationship. Names must be unique and the parent path must
// start at the child type.
func (c *IndexCache) Register(rel Relationship) error {
	if rel.Name == "" || rel.Child == nil || rel.Parent == nil {
		return errors.New("relationship needs a name, a child type and a parent path")
	}

	if _, exists := c.rels[rel.Name]; exists {
		return fmt.Errorf("relationship %q already registered", rel.Name)
	}

	if rel.Parent.Root() != rel.Child {
		return fmt.Errorf("relationship %q: parent path starts at %s, not %s", rel.Name, rel.Parent.Root().Name(), rel.Child.Name())
	}

	c.rels[rel.Name] = rel

	return nil
}

// Relationships returns the registered relationship names, sorted.
func (c *IndexCache) Relationships() []string {
	names := make([]string, 0, len(c.rels))
	for name := range c.rels {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Get returns a copy of the children of parent in the named relationship.
// parent may be a key or the parent entity itself. Unknown parents yield an
// empty slice.
func (c *IndexCache) Get(relationship string, parent any) ([]property.Entity, error) {
	groups, err := c.groups(relationship)
	if err != nil {
		return nil, err
	}

	children := groups[c.source.Types().KeyOf(parent)]

	return append(make([]property.Entity, 0, len(children)), children...), nil
}

// Computed reports whether the named relationship is currently memoized.
func (c *IndexCache) Computed(relationship string) bool {
	_, ok := c.memo[relationship]

	return ok
}

// InvalidateAll drops every memoized grouping.
func (c *IndexCache) InvalidateAll() {
	clear(c.memo)
}

func (c *IndexCache) groups(name string) (map[any][]property.Entity, error) {
	if groups, ok := c.memo[name]; ok {
		return groups, nil
	}

	rel, ok := c.rels[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownRelationship, name)
	}

	types := c.source.Types()
	groups := make(map[any][]property.Entity)

	for _, child := range c.source.All(rel.Child) {
		key := types.KeyOf(rel.Parent.Get(child))
		if key == nil {
			continue
		}

		groups[key] = append(groups[key], child)
	}

	if rel.Compare != nil {
		for _, group := range groups {
			slices.SortStableFunc(group, rel.Compare)
		}
	}

	c.memo[name] = groups

	return groups, nil
}
