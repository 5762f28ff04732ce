package transform

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedule-transformer/internal/codec"
	"schedule-transformer/internal/property"
	"schedule-transformer/internal/schema"
	"schedule-transformer/internal/store"
)

type testRoute struct {
	_         struct{} `csv:"record=routes.txt,prefix=route_"`
	ID        string
	ShortName string
	Type      int
}

type testTrip struct {
	_        struct{} `csv:"record=trips.txt,prefix=trip_"`
	ID       string
	Route    *testRoute `csv:"name=route_id"`
	Headsign *string    `csv:"optional"`
}

var (
	routeType = property.Describe[testRoute]("Route",
		property.Field("id", func(r *testRoute) string { return r.ID }, func(r *testRoute, v string) { r.ID = v }),
		property.Field("shortName", func(r *testRoute) string { return r.ShortName }, func(r *testRoute, v string) { r.ShortName = v }),
		property.Field("type", func(r *testRoute) int { return r.Type }, func(r *testRoute, v int) { r.Type = v }),
	).WithKey("id")

	tripType = property.Describe[testTrip]("Trip",
		property.Field("id", func(t *testTrip) string { return t.ID }, func(t *testTrip, v string) { t.ID = v }),
		property.Field("route", func(t *testTrip) *testRoute { return t.Route }, func(t *testTrip, v *testRoute) { t.Route = v }),
		property.Field("headsign", func(t *testTrip) *string { return t.Headsign }, func(t *testTrip, v *string) { t.Headsign = v }),
	).WithKey("id")

	testTypes = property.NewRegistry(routeType, tripType)
)

type fixture struct {
	env      *Env
	st       *store.Memory
	r10, r20 *testRoute
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := store.NewMemory(testTypes)
	require.NoError(t, st.Relate(store.Relationship{
		Name:   "trips_by_route",
		Child:  tripType,
		Parent: property.MustParsePath(testTypes, tripType, "route"),
	}))

	f := &fixture{
		env: NewEnv(st, schema.NewRegistry(testTypes, codec.NewRegistry(testTypes))),
		st:  st,
		r10: &testRoute{ID: "10", ShortName: "B10", Type: 3},
		r20: &testRoute{ID: "20", ShortName: "Q20", Type: 1},
	}

	require.NoError(t, st.Put(routeType, f.r10))
	require.NoError(t, st.Put(routeType, f.r20))
	require.NoError(t, st.Put(tripType, &testTrip{ID: "a", Route: f.r10}))
	require.NoError(t, st.Put(tripType, &testTrip{ID: "b", Route: f.r20}))
	require.NoError(t, st.Put(tripType, &testTrip{ID: "c", Route: f.r10}))

	return f
}

func path(t *property.Type, expr string) *property.Path {
	return property.MustParsePath(testTypes, t, expr)
}

func ptr(s string) *string { return &s }

func headsigns(st store.Store) map[string]string {
	out := map[string]string{}

	for _, e := range st.All(tripType) {
		trip := e.(*testTrip)
		if trip.Headsign != nil {
			out[trip.ID] = *trip.Headsign
		}
	}

	return out
}

func tripIDs(st store.Store) []string {
	var ids []string
	for _, e := range st.All(tripType) {
		ids = append(ids, e.(*testTrip).ID)
	}

	return ids
}

func TestModifyStage_SetProperties(t *testing.T) {
	f := newFixture(t)

	stage := &ModifyStage{}
	stage.Add(
		NewMatch(tripType).With(testTypes, path(tripType, "route"), f.r10),
		&SetProperties{Assignments: []Assignment{{Path: path(tripType, "headsign"), Value: ptr("Foo")}}},
	)

	require.NoError(t, stage.Apply(context.Background(), f.env))
	assert.Equal(t, map[string]string{"a": "Foo", "c": "Foo"}, headsigns(f.st))
}

func TestModifyStage_ReferenceResolvedAtApply(t *testing.T) {
	f := newFixture(t)

	stage := &ModifyStage{}
	stage.Add(
		NewMatch(tripType).With(testTypes, path(tripType, "id"), "b"),
		&SetProperties{Assignments: []Assignment{{Path: path(tripType, "route"), Value: "10", Ref: routeType}}},
	)

	require.NoError(t, stage.Apply(context.Background(), f.env))

	b, _ := f.st.Get(tripType, "b")
	assert.Same(t, f.r10, b.(*testTrip).Route)

	bad := &ModifyStage{}
	bad.Add(NewMatch(tripType), &SetProperties{Assignments: []Assignment{{Path: path(tripType, "route"), Value: "99", Ref: routeType}}})
	assert.ErrorContains(t, bad.Apply(context.Background(), f.env), "Route 99 not found")
}

func TestMatch_EmptyMatchesAll(t *testing.T) {
	f := newFixture(t)

	m := NewMatch(tripType)
	assert.True(t, m.IsEmpty())

	selected, err := m.Select(f.env)
	require.NoError(t, err)
	assert.Len(t, selected, 3)

	ok, err := m.Matches(f.env, f.r10)
	require.NoError(t, err)
	assert.False(t, ok, "other types never match")
}

func TestMatch_PathThroughReference(t *testing.T) {
	f := newFixture(t)

	m := NewMatch(tripType).With(testTypes, path(tripType, "route.type"), 3)

	selected, err := m.Select(f.env)
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "Trip{route.type=3}", m.String())

	pointer := NewMatch(tripType).With(testTypes, path(tripType, "headsign"), "X")
	ok, err := pointer.Matches(f.env, &testTrip{Headsign: ptr("X")})
	require.NoError(t, err)
	assert.True(t, ok, "pointers compare by pointee")
}

func TestMatch_WhereSelectsLikeConstraints(t *testing.T) {
	f := newFixture(t)

	where, err := CompileWhere(`record.route_id == "10"`)
	require.NoError(t, err)

	byWhere, err := (&Match{Type: tripType, Where: where}).Select(f.env)
	require.NoError(t, err)

	byConstraint, err := NewMatch(tripType).With(testTypes, path(tripType, "route"), "10").Select(f.env)
	require.NoError(t, err)

	assert.Equal(t, byConstraint, byWhere)

	routes, err := CompileWhere(`record.route_short_name.startsWith("Q") && record.route_type == "1"`)
	require.NoError(t, err)

	selected, err := (&Match{Type: routeType, Where: routes}).Select(f.env)
	require.NoError(t, err)
	assert.Equal(t, []property.Entity{f.r20}, selected)
}

func TestCompileWhere_Errors(t *testing.T) {
	_, err := CompileWhere(`record.route_id`)
	assert.ErrorContains(t, err, "want bool")

	_, err = CompileWhere(`record.route_id ==`)
	assert.Error(t, err)

	_, err = CompileWhere(`route_id == "1"`)
	assert.Error(t, err, "undeclared variable")
}

func TestReplaceStrings(t *testing.T) {
	f := newFixture(t)

	a, _ := f.st.Get(tripType, "a")
	a.(*testTrip).Headsign = ptr("Downtown via 5th Av")

	shortName, err := NewReplacement(path(routeType, "shortName"), `^([A-Z])(\d+)$`, "${1}-$2")
	require.NoError(t, err)

	headsign, err := NewReplacement(path(tripType, "headsign"), "Av$", "Avenue")
	require.NoError(t, err)

	stage := &ModifyStage{}
	stage.Add(NewMatch(routeType), &ReplaceStrings{Replacements: []Replacement{shortName}})
	stage.Add(NewMatch(tripType), &ReplaceStrings{Replacements: []Replacement{headsign}})

	require.NoError(t, stage.Apply(context.Background(), f.env))
	assert.Equal(t, "B-10", f.r10.ShortName)
	assert.Equal(t, "Q-20", f.r20.ShortName)
	assert.Equal(t, map[string]string{"a": "Downtown via 5th Avenue"}, headsigns(f.st))

	_, err = NewReplacement(path(routeType, "type"), "1", "2")
	assert.ErrorContains(t, err, "not a string")

	_, err = NewReplacement(path(routeType, "shortName"), "(", "")
	assert.Error(t, err)
}

func TestRemoveStage(t *testing.T) {
	f := newFixture(t)

	stage := &RemoveStage{}
	stage.Add(NewMatch(tripType).With(testTypes, path(tripType, "route.id"), "10"))

	require.NoError(t, stage.Apply(context.Background(), f.env))
	assert.Equal(t, []string{"b"}, tripIDs(f.st))
	assert.Len(t, f.st.All(routeType), 2, "other types untouched")
}

func TestRetainStage(t *testing.T) {
	tests := []struct {
		name string
		keep bool
		want []string
	}{
		{name: "keep matched", keep: true, want: []string{"a", "c"}},
		{name: "keep unmatched", keep: false, want: []string{"b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			stage := &RetainStage{}
			stage.Add(NewMatch(tripType).With(testTypes, path(tripType, "route"), "10"), tt.keep)

			require.NoError(t, stage.Apply(context.Background(), f.env))
			assert.Equal(t, tt.want, tripIDs(f.st))
			assert.Len(t, f.st.All(routeType), 2)
		})
	}
}

func TestRetainStage_AnyRetentionKeeps(t *testing.T) {
	f := newFixture(t)

	stage := &RetainStage{}
	stage.Add(NewMatch(tripType).With(testTypes, path(tripType, "id"), "a"), true)
	stage.Add(NewMatch(tripType).With(testTypes, path(tripType, "id"), "b"), true)

	require.NoError(t, stage.Apply(context.Background(), f.env))
	assert.Equal(t, []string{"a", "b"}, tripIDs(f.st))
}

func TestAddStage(t *testing.T) {
	f := newFixture(t)

	stage := &AddStage{}
	stage.Add(routeType, &testRoute{ID: "30"})
	assert.Equal(t, 1, stage.Len())

	require.NoError(t, stage.Apply(context.Background(), f.env))

	_, ok := f.st.Get(routeType, "30")
	assert.True(t, ok)

	bad := &AddStage{}
	bad.Add(routeType, &testTrip{ID: "x"})
	assert.Error(t, bad.Apply(context.Background(), f.env))
}

func TestPipeline_Run(t *testing.T) {
	f := newFixture(t)

	var seen []string

	record := func(name string) Stage {
		return StageFunc(name, func(_ context.Context, env *Env) error {
			trips, err := env.Store.Index("trips_by_route", "10")
			if err != nil {
				return err
			}

			seen = append(seen, name+":"+strings.Repeat("t", len(trips)))

			return nil
		})
	}

	remove := &RemoveStage{}
	remove.Add(NewMatch(tripType).With(testTypes, path(tripType, "id"), "a"))

	p := NewPipeline(record("first"), remove)
	p.Add(record("second"))

	assert.Equal(t, 3, p.Len())
	assert.Equal(t, "second", p.Last().Name())
	assert.Same(t, p.Stages()[1], Stage(remove))

	runID, err := p.Run(context.Background(), f.env)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)
	assert.Equal(t, []string{"first:tt", "second:t"}, seen, "caches cleared between stages")
}

func TestPipeline_RenamedKeyIsRekeyed(t *testing.T) {
	f := newFixture(t)

	rename := &ModifyStage{}
	rename.Add(
		NewMatch(routeType).With(testTypes, path(routeType, "id"), "20"),
		&SetProperties{Assignments: []Assignment{{Path: path(routeType, "id"), Value: "25"}}},
	)

	add := &AddStage{}
	add.Add(routeType, &testRoute{ID: "20", ShortName: "new"})

	_, err := NewPipeline(rename, add).Run(context.Background(), f.env)
	require.NoError(t, err)

	got, ok := f.st.Get(routeType, "25")
	require.True(t, ok)
	assert.Same(t, f.r20, got)

	got, ok = f.st.Get(routeType, "20")
	require.True(t, ok)
	assert.Equal(t, "new", got.(*testRoute).ShortName)
	assert.Equal(t, 3, f.st.Count(routeType), "renamed route survives the add")
}

func TestPipeline_DuplicateKeyFails(t *testing.T) {
	f := newFixture(t)

	rename := &ModifyStage{}
	rename.Add(
		NewMatch(routeType).With(testTypes, path(routeType, "id"), "20"),
		&SetProperties{Assignments: []Assignment{{Path: path(routeType, "id"), Value: "10"}}},
	)

	_, err := NewPipeline(rename).Run(context.Background(), f.env)
	assert.ErrorContains(t, err, "stage 1 (modify)")
	assert.ErrorContains(t, err, "duplicate Route key 10")
}

func TestPipeline_StopsOnError(t *testing.T) {
	f := newFixture(t)

	boom := errors.New("boom")
	ran := false

	p := NewPipeline(
		StageFunc("fail", func(context.Context, *Env) error { return boom }),
		StageFunc("never", func(context.Context, *Env) error { ran = true; return nil }),
	)

	_, err := p.Run(context.Background(), f.env)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "stage 1 (fail)")
	assert.False(t, ran)
	assert.Nil(t, NewPipeline().Last())
}

func TestStrategyFunc(t *testing.T) {
	f := newFixture(t)

	stage := &ModifyStage{}
	stage.Add(NewMatch(routeType), StrategyFunc(func(_ context.Context, _ *Env, e property.Entity) error {
		e.(*testRoute).ShortName = strings.ToLower(e.(*testRoute).ShortName)

		return nil
	}))

	require.NoError(t, stage.Apply(context.Background(), f.env))
	assert.Equal(t, "b10", f.r10.ShortName)
	assert.Len(t, stage.Modifications(), 1)
}
