// Package transform runs ordered pipelines of stages that mutate an entity
// store.
//
// # Stages
//
//   - [AddStage] puts new entities.
//   - [ModifyStage] runs an [EntityStrategy] on every entity selected by a
//     [Match]. Built-in strategies are [SetProperties] and [ReplaceStrings];
//     named strategies come from the rule op registry.
//   - [RemoveStage] deletes matched entities.
//   - [RetainStage] keeps matched (or non-matched) entities of a type and
//     deletes the rest.
//
// Any other [Stage] implementation can be added as a custom stage.
//
// # Matching
//
// A [Match] selects entities of one type. Each constraint compares the value
// of a property path with an expected value; entity values compare by key,
// pointers by the value they point to. An optional CEL expression is
// evaluated against the record view of the entity (external field name to
// encoded value), bound to the variable "record":
//
//	record.route_type == "3" && record.route_short_name.startsWith("B")
//
// A match without constraints and without an expression selects every
// entity of its type.
//
// # Execution
//
// [Pipeline.Run] applies stages strictly in order on the calling goroutine
// and clears the store caches after every stage. The first stage error stops
// the run.
package transform
