// Package codec translates single record fields between their raw textual
// form and typed property values.
//
// A [Codec] is a pure, stateless pair of functions. Handling of missing,
// optional and defaulted fields lives one level up, in the schema field
// mapping, so every codec sees a non-empty raw value on decode and a present
// value on encode, except for the sentinels each codec documents.
//
// # Strategies
//
//   - [Identity]: conversion through the [Converters] table (strings,
//     numbers, booleans, decimals, UUIDs, dates and pointers to them).
//   - [ClockTime]: "H:MM:SS" or "HH:MM:SS" to seconds since midnight;
//     negative values encode to an empty string.
//   - [Date]: "YYYYMMDD" to [calendar.Date].
//   - [EntityRef]: a foreign key resolved against entities already loaded.
//     Optional references that are not loaded yet are deferred and resolved
//     by [Context.ResolveDeferred].
//   - [TranslatedID]: ids passed through a caller supplied translation on
//     decode and written back unchanged.
//   - [Flag]: a literal that maps to true; any other value maps to false.
//
// # Registry
//
// A [Registry] holds named codec factories, factories bound to Go types and
// the converter table. It is created by the caller and passed explicitly to
// the schema registry; nothing in this package is global.
package codec
