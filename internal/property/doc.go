// Package property describes entity types explicitly and gives every other
// package a uniform way to read and write their properties.
//
// An entity is a pointer to a record struct. Instead of discovering fields at
// run time, each entity type is described once at startup with typed accessor
// pairs, so a property that does not exist or has the wrong type is a compile
// error at the declaration site:
//
//	var tripType = property.Describe[Trip]("Trip",
//	    property.Field("id", func(t *Trip) string { return t.ID }, func(t *Trip, v string) { t.ID = v }),
//	    property.Field("route", func(t *Trip) *Route { return t.Route }, func(t *Trip, v *Route) { t.Route = v }),
//	    property.Constant("kind", func(*Trip) string { return "trip" }),
//	).WithKey("id")
//
// # Registry
//
// A [Registry] maps type names ("Trip", or qualified "transit.Trip") and Go
// types to descriptors. Rule compilation and path resolution use it to find
// the entity type reached through a reference property.
//
// # Paths
//
// [ParsePath] resolves a dotted expression such as "route.agency.id" against
// a root type. Every segment is checked when the path is built; a segment that
// does not name a property of the type reached at that point is an error.
// Resolution never happens lazily while a pipeline is running.
package property
