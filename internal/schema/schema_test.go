package schema

import (
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedule-transformer/internal/codec"
	"schedule-transformer/internal/property"
)

type testRoute struct {
	_         struct{} `csv:"record=routes.txt,prefix=route_,required,order=route_id|route_short_name"`
	ID        string   `csv:"name=route_id"`
	ShortName string
	LongName  string   `csv:"optional"`
	Color     *string  `csv:"optional,order=1"`
	Internal  string   `csv:"ignore"`
	Tags      []string `csv:"ignore"`
}

type testStopTime struct {
	Arrival  int    `csv:"codec=clock_time"`
	Sequence int    `csv:"default=0"`
	Note     string `csv:"optional"`
}

type testBroken struct {
	ID   string
	Tags []string
}

var (
	testRouteType = property.Describe[testRoute]("Route",
		property.Field("id", func(r *testRoute) string { return r.ID }, func(r *testRoute, v string) { r.ID = v }),
		property.Field("shortName", func(r *testRoute) string { return r.ShortName }, func(r *testRoute, v string) { r.ShortName = v }),
		property.Field("longName", func(r *testRoute) string { return r.LongName }, func(r *testRoute, v string) { r.LongName = v }),
		property.Field("color", func(r *testRoute) *string { return r.Color }, func(r *testRoute, v *string) { r.Color = v }),
		property.Field("internal", func(r *testRoute) string { return r.Internal }, func(r *testRoute, v string) { r.Internal = v }),
		property.Field("tags", func(r *testRoute) []string { return r.Tags }, func(r *testRoute, v []string) { r.Tags = v }),
		property.Constant("kind", func(*testRoute) string { return "route" }),
	).WithKey("id")

	testStopTimeType = property.Describe[testStopTime]("StopTime",
		property.Field("arrival", func(s *testStopTime) int { return s.Arrival }, func(s *testStopTime, v int) { s.Arrival = v }),
		property.Field("sequence", func(s *testStopTime) int { return s.Sequence }, func(s *testStopTime, v int) { s.Sequence = v }),
		property.Field("note", func(s *testStopTime) string { return s.Note }, func(s *testStopTime, v string) { s.Note = v }),
	)

	testBrokenType = property.Describe[testBroken]("Broken",
		property.Field("id", func(b *testBroken) string { return b.ID }, func(b *testBroken, v string) { b.ID = v }),
		property.Field("tags", func(b *testBroken) []string { return b.Tags }, func(b *testBroken, v []string) { b.Tags = v }),
	)
)

func newTestRegistry() *Registry {
	types := property.NewRegistry(testRouteType, testStopTimeType, testBrokenType)

	return NewRegistry(types, codec.NewRegistry(types))
}

func externals(s *EntitySchema) []string {
	var names []string
	for _, f := range s.Fields() {
		names = append(names, f.External)
	}

	return names
}

func TestExternalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "routeShortName", want: "route_short_name"},
		{in: "id", want: "id"},
		{in: "ShapeDistTraveled", want: "shape_dist_traveled"},
		{in: "ID", want: "id"},
		{in: "wheelchairBoardingID", want: "wheelchair_boarding_id"},
		{in: "stopSequence2", want: "stop_sequence2"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExternalName(tt.in))
		})
	}
}

func TestRegistry_TagSchema(t *testing.T) {
	reg := newTestRegistry()

	s, err := reg.Schema(testRouteType)
	require.NoError(t, err, spew.Sdump(err))

	assert.Equal(t, "routes.txt", s.Record())
	assert.True(t, s.Required())
	assert.Equal(t, []string{"route_color", "route_id", "route_short_name", "route_long_name"}, externals(s))
	assert.Equal(t, []string{"route_id", "route_short_name", "route_color", "route_long_name"}, s.Header())

	f, ok := s.Field("route_long_name")
	require.True(t, ok)
	assert.False(t, f.Required)
	assert.Equal(t, "longName", f.Property.Name())

	_, ok = s.FieldForProperty("internal")
	assert.False(t, ok, "ignored property must not be mapped")

	_, ok = s.FieldForProperty("kind")
	assert.False(t, ok, "constant property must not be mapped")
}

func TestRegistry_DefaultsWithoutTypeTag(t *testing.T) {
	reg := newTestRegistry()

	s, err := reg.Schema(testStopTimeType)
	require.NoError(t, err)

	assert.Equal(t, "StopTime", s.Record())
	assert.False(t, s.Required())
	assert.Equal(t, []string{"arrival", "sequence", "note"}, s.Header())

	f, _ := s.Field("arrival")
	assert.IsType(t, &codec.ClockTime{}, f.Codec)
}

func TestRegistry_MergePrecedence(t *testing.T) {
	reg := newTestRegistry()

	require.NoError(t, reg.Configure(RecordConfig{
		Type:   "Route",
		Fields: map[string]FieldConfig{"longName": {Order: Set(5)}},
	}))

	s, err := reg.Schema(testRouteType)
	require.NoError(t, err)

	f, ok := s.FieldForProperty("longName")
	require.True(t, ok)
	assert.False(t, f.Required, "optional from the tag survives the merge")
	assert.Equal(t, 5, f.Order)
	assert.Equal(t, []string{"route_color", "route_long_name", "route_id", "route_short_name"}, externals(s))
}

func TestRegistry_ExplicitIgnoreFalseOverridesTag(t *testing.T) {
	reg := newTestRegistry()

	require.NoError(t, reg.Configure(RecordConfig{
		Type:   "Route",
		Fields: map[string]FieldConfig{"internal": {Ignore: Set(false)}},
	}))

	s, err := reg.Schema(testRouteType)
	require.NoError(t, err)

	f, ok := s.FieldForProperty("internal")
	require.True(t, ok)
	assert.Equal(t, "route_internal", f.External)
}

func TestRegistry_LaterConfigureWins(t *testing.T) {
	reg := newTestRegistry()

	require.NoError(t, reg.Configure(
		RecordConfig{Type: "StopTime", Record: Set("stop_times.txt"), Prefix: Set("st_")},
		RecordConfig{Type: "StopTime", Prefix: Set("")},
		RecordConfig{Type: "transit.StopTime", Fields: map[string]FieldConfig{"note": {Name: Set("stop_note")}}},
	))

	s, err := reg.Schema(testStopTimeType)
	require.NoError(t, err)

	assert.Equal(t, "stop_times.txt", s.Record())
	assert.Equal(t, []string{"arrival", "sequence", "stop_note"}, s.Header())
}

func TestRegistry_NoCodecIsSchemaError(t *testing.T) {
	reg := newTestRegistry()

	_, err := reg.Schema(testBrokenType)
	require.Error(t, err)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Broken", se.Type)
	assert.Equal(t, "tags", se.Field)
	assert.ErrorIs(t, err, codec.ErrNoConverter)

	require.NoError(t, reg.Configure(RecordConfig{
		Type:   "Broken",
		Fields: map[string]FieldConfig{"tags": {Ignore: Set(true)}},
	}))

	s, err := reg.Schema(testBrokenType)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, s.Header())
}

func TestRegistry_Errors(t *testing.T) {
	reg := newTestRegistry()

	err := reg.Configure(RecordConfig{Type: "Nope"})
	assert.Error(t, err)

	require.NoError(t, reg.Configure(RecordConfig{
		Type:   "StopTime",
		Fields: map[string]FieldConfig{"missing": {Optional: Set(true)}},
	}))

	_, err = reg.Schema(testStopTimeType)
	assert.ErrorIs(t, err, property.ErrUnknownProperty)

	_, err = reg.SchemaByName("Nope")
	assert.Error(t, err)
}

func TestRegistry_Caches(t *testing.T) {
	reg := newTestRegistry()

	first, err := reg.Schema(testRouteType)
	require.NoError(t, err)

	second, err := reg.SchemaByName("Route")
	require.NoError(t, err)
	assert.Same(t, first, second)

	err = reg.Configure(RecordConfig{Type: "Route", Prefix: Set("r_")})

	var se *SchemaError
	assert.ErrorAs(t, err, &se)
}

func TestRegistry_ValidatorsSorted(t *testing.T) {
	reg := newTestRegistry()

	errShort := errors.New("too short")
	check := func(e property.Entity) error {
		if len(e.(*testStopTime).Note) < 2 {
			return errShort
		}

		return nil
	}

	require.NoError(t, reg.Configure(
		RecordConfig{Type: "StopTime", Validators: []Validator{{Name: "b", Order: 2, Check: check}}},
		RecordConfig{Type: "StopTime", Validators: []Validator{{Name: "a", Order: 1, Check: check}}},
	))

	s, err := reg.Schema(testStopTimeType)
	require.NoError(t, err)

	vs := s.Validators()
	require.Len(t, vs, 2)
	assert.Equal(t, "a", vs[0].Name)
	assert.Equal(t, "b", vs[1].Name)

	err = s.Validate(&testStopTime{Note: "x"})
	assert.ErrorIs(t, err, errShort)
	assert.NoError(t, s.Validate(&testStopTime{Note: "ok"}))
}

func TestFieldMapping_DecodeEncode(t *testing.T) {
	reg := newTestRegistry()

	s, err := reg.Schema(testStopTimeType)
	require.NoError(t, err)

	ctx := codec.NewContext(nil)
	st := &testStopTime{Note: "keep"}

	for _, f := range s.Fields() {
		require.NoError(t, f.Decode(ctx, map[string]string{"arrival": "7:00:00", "note": ""}, st))
	}

	assert.Equal(t, 7*3600, st.Arrival)
	assert.Equal(t, 0, st.Sequence, "default decoded")
	assert.Equal(t, "keep", st.Note, "empty optional leaves the property untouched")

	row := map[string]string{}
	for _, f := range s.Fields() {
		require.NoError(t, f.Encode(ctx, st, row))
	}

	assert.Equal(t, map[string]string{"arrival": "07:00:00", "sequence": "0", "note": "keep"}, row)
}

func TestFieldMapping_DecodeErrors(t *testing.T) {
	reg := newTestRegistry()

	s, err := reg.Schema(testStopTimeType)
	require.NoError(t, err)

	arrival, _ := s.Field("arrival")
	ctx := codec.NewContext(nil)

	err = arrival.Decode(ctx, map[string]string{}, &testStopTime{})
	assert.ErrorIs(t, err, codec.ErrMissingValue)

	err = arrival.Decode(ctx, map[string]string{"arrival": "7h"}, &testStopTime{})

	var ce *codec.CodecError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "arrival", ce.Field)
	assert.Equal(t, "7h", ce.Value)
}

func TestTagErrors(t *testing.T) {
	type badTag struct {
		Name string `csv:"colour=red"`
	}

	type orphanTag struct {
		Name string `csv:"optional"`
	}

	bad := property.Describe[badTag]("Bad",
		property.Field("name", func(b *badTag) string { return b.Name }, func(b *badTag, v string) { b.Name = v }),
	)
	orphan := property.Describe[orphanTag]("Orphan")

	types := property.NewRegistry(bad, orphan)
	reg := NewRegistry(types, codec.NewRegistry(types))

	_, err := reg.Schema(bad)
	assert.ErrorContains(t, err, "unknown field tag option")

	_, err = reg.Schema(orphan)
	assert.ErrorContains(t, err, "not a described property")
}

func TestRegistry_Resolver(t *testing.T) {
	reg := newTestRegistry()
	resolve := reg.Resolver()

	tests := []struct {
		segment string
		want    string
		ok      bool
	}{
		{segment: "route_short_name", want: "shortName", ok: true},
		{segment: "route_id", want: "id", ok: true},
		{segment: "LONGNAME", want: "longName", ok: true},
		{segment: "route_internal", ok: false},
		{segment: "nope", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			got, ok := resolve(testRouteType, tt.segment)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	p, err := property.ParsePath(reg.Types(), testRouteType, "route_short_name", resolve)
	require.NoError(t, err)
	assert.Equal(t, "shortName", p.Canonical())
}
