// Package rules compiles the line-oriented rule language into a
// transform.Pipeline.
//
// # Rule text
//
// Every line is trimmed and then read as one of:
//
//   - a blank line or a comment starting with "#" (skipped)
//   - a block delimiter "{{{" or "}}}" (skipped, no effect)
//   - a JSON object with an "op" member
//
// Each object must be strict JSON. It is read token by token into a yaml.Node
// tree, so key order and the JSON type of every scalar are kept:
//
//	# rename the headsign of every trip on route 10
//	{"op":"update","match":{"class":"Trip","route_id":"10"},"update":{"trip_headsign":"Downtown"}}
//	{"op":"remove","match":{"class":"Stop","where":"record.stop_name.startsWith('X')"}}
//	{"op":"retain","match":{"class":"Route","route_type":"3"},"retainUp":true}
//	{"op":"transform","class":"calendar_extension","days":30}
//
// # Ops
//
//   - add: "obj" holds a "class" and property values of a new entity.
//   - update, change, modify: "match" plus exactly one of "update" (property
//     values), "strings" (property to {"pattern": "replacement"}) or
//     "factory" (name of a registered entity strategy).
//   - remove, delete: "match".
//   - retain: "match" and "retainUp" (default true).
//   - transform: "class" names a registered stage or stage factory; every
//     other member is decoded onto the new instance.
//
// Unknown ops are skipped with a warning.
//
// # Matches and values
//
// A match needs a "class" naming an entity type. Every other key is a
// property path resolved against that type up front; external field names
// are accepted as aliases. The reserved key "where" holds a CEL expression
// over the record view of the entity.
//
// String values are decoded with the codec of the field they address (clock
// times, dates, flags), other scalars are converted to the property type.
// A value addressing an entity is read as the key of that entity and looked
// up in the store when the rule runs.
//
// # Stage coalescing
//
// A rule joins the last stage of the pipeline when that stage has the same
// kind, otherwise it starts a new one. Two update lines share a stage; an
// update, a remove and another update produce three stages.
//
// # Errors
//
// The first error aborts the compile and no pipeline is returned. Malformed
// rules are reported as *SyntaxError, names that resolve to no entity type
// or op as *RuntimeError. Both carry the line number and text.
package rules
