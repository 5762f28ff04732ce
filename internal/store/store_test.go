package store

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedule-transformer/internal/property"
)

type testRoute struct {
	ID string
}

type testTrip struct {
	ID    string
	Route *testRoute
}

type testStopTime struct {
	Trip     *testTrip
	Sequence int
}

var (
	routeType = property.Describe[testRoute]("Route",
		property.Field("id", func(r *testRoute) string { return r.ID }, func(r *testRoute, v string) { r.ID = v }),
	).WithKey("id")

	tripType = property.Describe[testTrip]("Trip",
		property.Field("id", func(t *testTrip) string { return t.ID }, func(t *testTrip, v string) { t.ID = v }),
		property.Field("route", func(t *testTrip) *testRoute { return t.Route }, func(t *testTrip, v *testRoute) { t.Route = v }),
	).WithKey("id")

	stopTimeType = property.Describe[testStopTime]("StopTime",
		property.Field("trip", func(s *testStopTime) *testTrip { return s.Trip }, func(s *testStopTime, v *testTrip) { s.Trip = v }),
		property.Field("sequence", func(s *testStopTime) int { return s.Sequence }, func(s *testStopTime, v int) { s.Sequence = v }),
	)

	testTypes = property.NewRegistry(routeType, tripType, stopTimeType)
)

func newTestStore(t *testing.T) *Memory {
	t.Helper()

	m := NewMemory(testTypes)
	require.NoError(t, m.Relate(
		Relationship{
			Name:   "trips_by_route",
			Child:  tripType,
			Parent: property.MustParsePath(testTypes, tripType, "route"),
		},
		Relationship{
			Name:   "stop_times_by_trip",
			Child:  stopTimeType,
			Parent: property.MustParsePath(testTypes, stopTimeType, "trip"),
			Compare: func(a, b property.Entity) int {
				return cmp.Compare(a.(*testStopTime).Sequence, b.(*testStopTime).Sequence)
			},
		},
		Relationship{
			Name:   "trips_by_route_id",
			Child:  tripType,
			Parent: property.MustParsePath(testTypes, tripType, "route.id"),
		},
	))

	return m
}

func TestMemory_PutGetRemove(t *testing.T) {
	m := newTestStore(t)

	r1 := &testRoute{ID: "10"}
	r2 := &testRoute{ID: "20"}
	require.NoError(t, m.Put(routeType, r1))
	require.NoError(t, m.Put(routeType, r2))

	got, ok := m.Get(routeType, "10")
	require.True(t, ok)
	assert.Same(t, r1, got)

	_, ok = m.Get(routeType, "30")
	assert.False(t, ok)

	replacement := &testRoute{ID: "10"}
	require.NoError(t, m.Put(routeType, replacement))
	assert.Equal(t, []property.Entity{replacement, r2}, m.All(routeType), "replace keeps position")

	assert.True(t, m.Remove(routeType, r2))
	assert.False(t, m.Remove(routeType, r2))
	assert.Equal(t, 1, m.Count(routeType))

	_, ok = m.Get(routeType, "20")
	assert.False(t, ok)

	assert.Error(t, m.Put(routeType, &testTrip{ID: "x"}))
	assert.Empty(t, m.All(stopTimeType))
}

func TestMemory_Rekey(t *testing.T) {
	m := newTestStore(t)

	r1 := &testRoute{ID: "10"}
	r2 := &testRoute{ID: "20"}
	require.NoError(t, m.Put(routeType, r1))
	require.NoError(t, m.Put(routeType, r2))

	r1.ID = "15"

	_, ok := m.Get(routeType, "10")
	assert.False(t, ok, "stale key is not served")

	require.NoError(t, m.Rekey())

	got, ok := m.Get(routeType, "15")
	require.True(t, ok)
	assert.Same(t, r1, got)

	added := &testRoute{ID: "10"}
	require.NoError(t, m.Put(routeType, added))
	assert.Equal(t, []property.Entity{r1, r2, added}, m.All(routeType), "old key is free again")
}

func TestMemory_RekeyDuplicate(t *testing.T) {
	m := newTestStore(t)

	r1 := &testRoute{ID: "10"}
	r2 := &testRoute{ID: "20"}
	require.NoError(t, m.Put(routeType, r1))
	require.NoError(t, m.Put(routeType, r2))

	r2.ID = "10"

	err := m.Rekey()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate Route key 10")
	assert.Equal(t, 2, m.Count(routeType), "nothing is dropped")
}

func TestMemory_Keyless(t *testing.T) {
	m := newTestStore(t)

	for i := range 3 {
		require.NoError(t, m.Put(stopTimeType, &testStopTime{Sequence: i}))
	}

	assert.Equal(t, 3, m.Count(stopTimeType))

	removed := m.RemoveFunc(stopTimeType, func(e property.Entity) bool {
		return e.(*testStopTime).Sequence != 1
	})
	assert.Equal(t, 2, removed)
	require.Len(t, m.All(stopTimeType), 1)
}

func TestIndexCache_GroupsAndSorts(t *testing.T) {
	m := newTestStore(t)

	r10 := &testRoute{ID: "10"}
	trip := &testTrip{ID: "t1", Route: r10}
	require.NoError(t, m.Put(routeType, r10))
	require.NoError(t, m.Put(tripType, trip))
	require.NoError(t, m.Put(tripType, &testTrip{ID: "t2"}))

	for _, seq := range []int{3, 1, 2} {
		require.NoError(t, m.Put(stopTimeType, &testStopTime{Trip: trip, Sequence: seq}))
	}

	sts, err := m.Index("stop_times_by_trip", "t1")
	require.NoError(t, err)
	require.Len(t, sts, 3)

	for i, e := range sts {
		assert.Equal(t, i+1, e.(*testStopTime).Sequence)
	}

	byEntity, err := m.Index("stop_times_by_trip", trip)
	require.NoError(t, err)
	assert.Equal(t, sts, byEntity)

	trips, err := m.Index("trips_by_route_id", "10")
	require.NoError(t, err)
	assert.Equal(t, []property.Entity{trip}, trips)

	none, err := m.Index("trips_by_route", "99")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = m.Index("nope", "10")
	assert.ErrorIs(t, err, ErrUnknownRelationship)
}

func TestIndexCache_MemoizedUntilInvalidated(t *testing.T) {
	m := newTestStore(t)

	r10 := &testRoute{ID: "10"}
	require.NoError(t, m.Put(routeType, r10))
	require.NoError(t, m.Put(tripType, &testTrip{ID: "t1", Route: r10}))

	first, err := m.Index("trips_by_route", "10")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, m.Indexes().Computed("trips_by_route"))

	first[0] = nil

	again, err := m.Index("trips_by_route", "10")
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.NotNil(t, again[0], "callers get a copy")

	require.NoError(t, m.Put(tripType, &testTrip{ID: "t2", Route: r10}))

	stale, err := m.Index("trips_by_route", "10")
	require.NoError(t, err)
	assert.Len(t, stale, 1, "mutation without invalidation is not visible")

	m.ClearCaches()
	assert.False(t, m.Indexes().Computed("trips_by_route"))

	fresh, err := m.Index("trips_by_route", "10")
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestIndexCache_InvalidateThenMutate(t *testing.T) {
	m := newTestStore(t)

	r10 := &testRoute{ID: "10"}
	t1 := &testTrip{ID: "t1", Route: r10}
	require.NoError(t, m.Put(routeType, r10))
	require.NoError(t, m.Put(tripType, t1))

	_, err := m.Index("trips_by_route", "10")
	require.NoError(t, err)

	m.ClearCaches()
	m.Remove(tripType, t1)

	got, err := m.Index("trips_by_route", "10")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIndexCache_Register(t *testing.T) {
	c := NewIndexCache(NewMemory(testTypes))

	rel := Relationship{Name: "r", Child: tripType, Parent: property.MustParsePath(testTypes, tripType, "route")}
	require.NoError(t, c.Register(rel))
	assert.Error(t, c.Register(rel), "duplicate name")

	assert.Error(t, c.Register(Relationship{Name: "x", Child: stopTimeType, Parent: rel.Parent}), "path root mismatch")
	assert.Error(t, c.Register(Relationship{Name: "y"}))
	assert.Equal(t, []string{"r"}, c.Relationships())
}
