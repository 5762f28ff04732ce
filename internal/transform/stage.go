package transform

import (
	"context"
	"fmt"

	"schedule-transformer/internal/property"
)

// Stage is one step of a pipeline.
type Stage interface {
	Name() string
	Apply(ctx context.Context, env *Env) error
}

// StageFactory contributes one or more stages to a pipeline.
type StageFactory interface {
	CreateStages(p *Pipeline) error
}

type funcStage struct {
	name string
	fn   func(ctx context.Context, env *Env) error
}

// StageFunc returns a custom stage running fn.
func StageFunc(name string, fn func(ctx context.Context, env *Env) error) Stage {
	return &funcStage{name: name, fn: fn}
}

func (s *funcStage) Name() string { return s.name }

func (s *funcStage) Apply(ctx context.Context, env *Env) error { return s.fn(ctx, env) }

type addition struct {
	typ    *property.Type
	entity property.Entity
	set    SetProperties
}

// AddStage puts new entities into the store.
type AddStage struct {
	entities []addition
}

// Add queues e as an entity of t. The assignments are applied to e right
// before it is put, so references resolve against the store at that time.
func (s *AddStage) Add(t *property.Type, e property.Entity, assignments ...Assignment) {
	s.entities = append(s.entities, addition{typ: t, entity: e, set: SetProperties{Assignments: assignments}})
}

// Len returns the number of queued entities.
func (s *AddStage) Len() int { return len(s.entities) }

func (s *AddStage) Name() string { return "add" }

func (s *AddStage) Apply(ctx context.Context, env *Env) error {
	for _, a := range s.entities {
		if err := a.set.Run(ctx, env, a.entity); err != nil {
			return fmt.Errorf("add %s: %w", a.typ.Name(), err)
		}

		if err := env.Store.Put(a.typ, a.entity); err != nil {
			return err
		}
	}

	return nil
}

// Modification pairs a match with the strategy run on what it selects.
type Modification struct {
	Match    *Match
	Strategy EntityStrategy
}

// ModifyStage runs strategies on matched entities.
type ModifyStage struct {
	mods []Modification
}

// Add appends a modification.
func (s *ModifyStage) Add(m *Match, strategy EntityStrategy) {
	s.mods = append(s.mods, Modification{Match: m, Strategy: strategy})
}

// Modifications returns the modifications in order.
func (s *ModifyStage) Modifications() []Modification {
	return append([]Modification(nil), s.mods...)
}

func (s *ModifyStage) Name() string { return "modify" }

func (s *ModifyStage) Apply(ctx context.Context, env *Env) error {
	for _, mod := range s.mods {
		selected, err := mod.Match.Select(env)
		if err != nil {
			return err
		}

		for _, e := range selected {
			if err := mod.Strategy.Run(ctx, env, e); err != nil {
				return fmt.Errorf("%s: %w", mod.Match, err)
			}
		}
	}

	return nil
}

// RemoveStage deletes matched entities.
type RemoveStage struct {
	matches []*Match
}

// Add appends a match whose entities are removed.
func (s *RemoveStage) Add(m *Match) {
	s.matches = append(s.matches, m)
}

// Matches returns the matches in order.
func (s *RemoveStage) Matches() []*Match {
	return append([]*Match(nil), s.matches...)
}

func (s *RemoveStage) Name() string { return "remove" }

func (s *RemoveStage) Apply(_ context.Context, env *Env) error {
	for _, m := range s.matches {
		selected, err := m.Select(env)
		if err != nil {
			return err
		}

		removeAll(env, m.Type, selected)
	}

	return nil
}

// Retention keeps the entities its match selects, or the ones it does not
// select when KeepMatched is false.
type Retention struct {
	Match       *Match
	KeepMatched bool
}

// RetainStage deletes every entity of a retained type that no retention of
// that type keeps. Types without a retention are untouched.
type RetainStage struct {
	retentions []Retention
}

// Add appends a retention.
func (s *RetainStage) Add(m *Match, keepMatched bool) {
	s.retentions = append(s.retentions, Retention{Match: m, KeepMatched: keepMatched})
}

// Retentions returns the retentions in order.
func (s *RetainStage) Retentions() []Retention {
	return append([]Retention(nil), s.retentions...)
}

func (s *RetainStage) Name() string { return "retain" }

func (s *RetainStage) Apply(_ context.Context, env *Env) error {
	byType := make(map[*property.Type][]Retention)

	var order []*property.Type

	for _, r := range s.retentions {
		if _, seen := byType[r.Match.Type]; !seen {
			order = append(order, r.Match.Type)
		}

		byType[r.Match.Type] = append(byType[r.Match.Type], r)
	}

	for _, t := range order {
		var drop []property.Entity

		for _, e := range env.Store.All(t) {
			keep, err := kept(env, byType[t], e)
			if err != nil {
				return err
			}

			if !keep {
				drop = append(drop, e)
			}
		}

		removeAll(env, t, drop)
	}

	return nil
}

func kept(env *Env, retentions []Retention, e property.Entity) (bool, error) {
	for _, r := range retentions {
		matched, err := r.Match.Matches(env, e)
		if err != nil {
			return false, err
		}

		if matched == r.KeepMatched {
			return true, nil
		}
	}

	return false, nil
}

func removeAll(env *Env, t *property.Type, entities []property.Entity) {
	if len(entities) == 0 {
		return
	}

	set := make(map[property.Entity]struct{}, len(entities))
	for _, e := range entities {
		set[e] = struct{}{}
	}

	env.Store.RemoveFunc(t, func(e property.Entity) bool {
		_, ok := set[e]

		return ok
	})
}
