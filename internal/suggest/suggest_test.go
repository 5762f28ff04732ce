package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdits(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"a", "b", 1},
		{"ab", "abc", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"Trip", "trip", 1},
		{"héllo", "hello", 1},
		{"stoptime", "stoptimes", 1},
		{"remvoe", "remove", 1},
		{"ab", "ba", 1},
		{"ca", "abc", 3},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, edits([]rune(tt.a), []rune(tt.b)))
			assert.Equal(t, tt.want, edits([]rune(tt.b), []rune(tt.a)), "symmetric")
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 0.001)
	assert.InDelta(t, 1.0, Similarity("route", "route"), 0.001)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 0.001)
	assert.InDelta(t, 1.0-3.0/7.0, Similarity("kitten", "sitting"), 0.001)
	assert.InDelta(t, 1.0-1.0/6.0, Similarity("remvoe", "remove"), 0.001)
}

func TestClosest_Swapped(t *testing.T) {
	got, ok := Closest("retian", []string{"remove", "retain", "transform"})
	require.True(t, ok)
	assert.Equal(t, "retain", got)
}

func TestTokens(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"tripHeadsign", []string{"trip", "headsign"}},
		{"TripHeadsign", []string{"trip", "headsign"}},
		{"trip_headsign", []string{"trip", "headsign"}},
		{"GTFSRouteID", []string{"gtfs", "route", "id"}},
		{"remove-empty trips", []string{"remove", "empty", "trips"}},
		{"__x__", []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokens(tt.in))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "routeshortname", Normalize("route_short_name"))
	assert.Equal(t, "routeshortname", Normalize("RouteShortName"))

	assert.Equal(t, "route", NormalizeKey("route_id"))
	assert.Equal(t, "stop", NormalizeKey("stopIDs"))
	assert.Equal(t, "id", NormalizeKey("id"), "a bare suffix is kept")
}

func TestRank(t *testing.T) {
	got := Rank("Trps", []string{"Stop", "Trip", "Route"})
	require.Len(t, got, 3)
	assert.Equal(t, "Trip", got[0].Name)
	assert.Greater(t, got[0].Score, got[1].Score)

	tied := Rank("x", []string{"b", "a"})
	assert.Equal(t, []string{"a", "b"}, []string{tied[0].Name, tied[1].Name})
}

func TestClosest(t *testing.T) {
	tests := []struct {
		name  string
		known []string
		want  string
		found bool
	}{
		{name: "StopTimes", known: []string{"Stop", "StopTime", "Trip"}, want: "StopTime", found: true},
		{name: "remove_empty_trip", known: []string{"remove_empty_trips", "calendar_extension"}, want: "remove_empty_trips", found: true},
		{name: "route", known: []string{"route_id", "service_id"}, want: "route_id", found: true},
		{name: "shortname", known: []string{"id", "shortName", "longName"}, want: "shortName", found: true},
		{name: "zzz", known: []string{"Trip", "Route"}},
		{name: "Trip", known: []string{"Trip"}},
		{name: "x", known: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Closest(tt.name, tt.known)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
