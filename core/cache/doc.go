// Package cache provides the read-through result cache used to memoize
// idempotent list/read calls against the source database and the target
// API for the lifetime of a synchronization run.
//
// Keys are a stable composite of the operation name and the ordered
// argument tuple; lookups for the same operation with reordered or
// retyped arguments are distinct entries. Lookups return a decoded deep
// copy of the stored payload, never the canonical copy itself.
//
// The cache supports per-entry TTL, a cumulative size budget with
// least-recently-accessed eviction, hit/miss/set/invalidation counters,
// and optional on-disk persistence that survives process restarts.
// Invalidation is exact-key only.
package cache
