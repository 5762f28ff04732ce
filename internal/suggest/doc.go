// Package suggest finds the known name closest to a misspelled one, so
// errors about unknown entity types, ops and properties can say what was
// probably meant.
//
// Names are compared after normalization: CamelCase is split, case is
// folded and the separators "_", "-" and " " are dropped. "route_short_name",
// "routeShortName" and "RouteShortName" are therefore equal. A trailing
// "id" or "ids" token is also tried without it, so "route" is close to
// "route_id".
//
// Similarity is 1 - edits/longest over runes, where an adjacent swap of two
// runes counts as a single edit.
package suggest
