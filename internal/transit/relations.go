package transit

import (
	"cmp"

	"schedule-transformer/internal/property"
	"schedule-transformer/internal/store"
)

// Relationship names registered on the store.
const (
	TripsByRoute     = "trips_by_route"
	StopTimesByTrip  = "stop_times_by_trip"
	StopTimesByStop  = "stop_times_by_stop"
	RoutesByAgency   = "routes_by_agency"
	FareRulesByFare  = "fare_rules_by_fare"
	FareRulesByRoute = "fare_rules_by_route"
	TripsByServiceID = "trips_by_service_id"
)

// Relationships returns the one-to-many relationships of the model.
func Relationships(types *property.Registry) []store.Relationship {
	bySequence := func(a, b property.Entity) int {
		return cmp.Compare(a.(*StopTime).StopSequence, b.(*StopTime).StopSequence)
	}

	return []store.Relationship{
		{Name: TripsByRoute, Child: TripType, Parent: property.MustParsePath(types, TripType, "route")},
		{Name: StopTimesByTrip, Child: StopTimeType, Parent: property.MustParsePath(types, StopTimeType, "trip"), Compare: bySequence},
		{Name: StopTimesByStop, Child: StopTimeType, Parent: property.MustParsePath(types, StopTimeType, "stop")},
		{Name: RoutesByAgency, Child: RouteType, Parent: property.MustParsePath(types, RouteType, "agency")},
		{Name: FareRulesByFare, Child: FareRuleType, Parent: property.MustParsePath(types, FareRuleType, "fare")},
		{Name: FareRulesByRoute, Child: FareRuleType, Parent: property.MustParsePath(types, FareRuleType, "route")},
		{Name: TripsByServiceID, Child: TripType, Parent: property.MustParsePath(types, TripType, "serviceId")},
	}
}
