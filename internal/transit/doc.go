// Package transit is the schedule model the transformer ships with: agencies,
// routes, trips, stops, stop times, service calendars and fares.
//
// It wires every generic package together. Entity descriptors come from
// package property, record layout from csv struct tags read by package
// schema, relationships are registered on the store, and a handful of named
// ops are available to rules:
//
//	{"op":"transform","class":"remove_empty_trips","routes":true}
//	{"op":"update","match":{"class":"Trip","route_id":"10"},"factory":"uppercase_headsign"}
//	{"op":"transform","class":"calendar_extension","days":30}
//
// NewEnvironment returns the registries, an empty store and a compiler ready
// for use.
package transit
