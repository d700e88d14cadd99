package reconcile

import (
	"context"

	"go.uber.org/zap"

	"staff-sync/core/record"
)

// Resolver guarantees that an entity's dependency chain exists on the
// target before the entity itself is pushed. The canonical case is a user
// whose manager, and transitively the manager's manager, must exist first.
//
// Resolution never fails a batch: an unknown dependency or a reference
// cycle degrades to an empty reference and a warning, and the dependent
// entity is still pushed.
type Resolver struct {
	// DependencyKey extracts the normalized key of a record's dependency,
	// or "" when it has none.
	DependencyKey func(rec record.Record) string

	// Create pushes one source record to the target. dependencyKey is the
	// record's own dependency reference, already resolved by the walk that
	// reached this record, so implementations must use it as-is instead of
	// resolving again. Returning false means the dependency could not be
	// created and references to it must be cleared.
	Create func(ctx context.Context, rec record.Record, dependencyKey string) bool

	source  map[string]record.Record
	present map[string]struct{}
	log     *zap.Logger
}

// NewResolver builds a resolver over the source set and the keys already
// present on the target. Keys in the source index and the present set must
// be normalized the same way.
func NewResolver(source []record.Record, sourceKeyField string, presentKeys []string, log *zap.Logger) *Resolver {
	index := make(map[string]record.Record, len(source))
	for _, rec := range source {
		index[record.NormalizeKey(rec[sourceKeyField])] = rec
	}
	present := make(map[string]struct{}, len(presentKeys))
	for _, key := range presentKeys {
		present[record.NormalizeKey(key)] = struct{}{}
	}
	return &Resolver{
		source:  index,
		present: present,
		log:     log,
	}
}

// MarkPresent records that key now exists on the target. Provisional
// creates made during the run register here so later entities see them.
func (r *Resolver) MarkPresent(key string) {
	r.present[record.NormalizeKey(key)] = struct{}{}
}

// EnsureExists makes sure the entity behind key exists on the target,
// creating its dependency chain depth-first when needed. It returns the
// key to reference, or "" when the dependency must be dropped.
func (r *Resolver) EnsureExists(ctx context.Context, key string) string {
	return r.ensure(ctx, record.NormalizeKey(key), make(map[string]struct{}))
}

func (r *Resolver) ensure(ctx context.Context, key string, visited map[string]struct{}) string {
	if key == "" {
		return ""
	}
	if _, ok := r.present[key]; ok {
		return key
	}
	if _, ok := visited[key]; ok {
		r.log.Warn("Dependency cycle detected, dropping reference", zap.String("key", key))
		return ""
	}
	visited[key] = struct{}{}

	rec, ok := r.source[key]
	if !ok {
		r.log.Warn("Dependency not found in source, dropping reference", zap.String("key", key))
		return ""
	}

	// Parent chain first, then the entity itself. The resolved parent
	// reference is handed to Create so the callback never walks the
	// chain again; a fresh walk would not share this visited set and a
	// reference cycle would recurse without bound.
	depRef := ""
	if dep := r.DependencyKey(rec); dep != "" {
		depRef = r.ensure(ctx, record.NormalizeKey(dep), visited)
	}

	if !r.Create(ctx, rec, depRef) {
		r.log.Warn("Dependency creation failed, dropping reference", zap.String("key", key))
		return ""
	}
	r.MarkPresent(key)
	return key
}
