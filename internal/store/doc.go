// Package store holds decoded entities in memory and answers one-to-many
// relationship queries through a lazily built index cache.
//
// # Entity store
//
// [Store] is the contract the record reader, the transform pipeline and the
// writer depend on. [Memory] keeps entities per type in insertion order and
// by key; putting an entity whose key is already present replaces the old
// one in place.
//
// # Index cache
//
// An [IndexCache] answers "children of parent" queries for relationships
// registered up front. The first query for a relationship scans the whole
// child collection once, groups it by the parent key and sorts each group
// with the relationship comparator. Later queries reuse that grouping.
//
// The cache is not updated when the store changes. After a batch of
// mutations callers call [Store.ClearCaches] (or [IndexCache.InvalidateAll]);
// until then queries may return stale groups. The transform pipeline clears
// caches after every stage.
//
// Neither type is safe for concurrent mutation.
package store
