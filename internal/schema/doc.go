// Package schema builds, merges and caches the record schema of each entity
// type.
//
// A schema lists the external fields of one record type, in output order,
// each bound to a property and a codec, plus the validators that run after an
// entity is decoded.
//
// # Configuration sources
//
// Two sources describe a type and both are optional. The first is csv struct
// tags on the entity struct. A blank field carries the type-level settings and
// exported fields carry per-field settings; a tagged field is matched to the
// property whose name equals the field name ignoring case:
//
//	type Trip struct {
//		_        struct{} `csv:"record=trips.txt,prefix=trip_,required"`
//		ID       string
//		Route    *Route   `csv:"name=route_id"`
//		Headsign string   `csv:"optional"`
//	}
//
// The second is [RecordConfig] values passed to [Registry.Configure], either
// built in code or loaded from YAML with [LoadConfigFile]:
//
//	records:
//	  - type: Trip
//	    fields:
//	      headsign: {name: trip_headsign, order: 5}
//
// Type-level tag keys are record, prefix, required and order (external names
// separated by "|"). Field-level keys are name, optional, ignore, order,
// codec and default.
//
// # Merge rules
//
// Every mergeable setting is an [Opt], which tells "not configured" apart
// from "configured to the zero value". Configured settings are merged on top
// of the tags, and later Configure calls on top of earlier ones; a setting
// replaces the one below it only when it is explicitly set. This applies to
// the ignore flag too.
//
// # Build steps
//
//  1. collect tags and merge configuration
//  2. skip ignored and constant properties
//  3. derive external names (prefix + "route_short_name" style)
//  4. attach codecs (explicit name, else by property type); a field without
//     a codec is a [SchemaError]
//  5. sort fields by order, stable on ties; unordered fields go last in
//     declaration order
//  6. sort validators by order
//
// The result is cached; a schema never changes after it is built.
package schema
