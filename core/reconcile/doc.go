// Package reconcile aligns a source record set with a target record set.
//
// The pipeline is diff, change detection, execution. Diff partitions the
// two sets into create, update and delete classes by a normalized key.
// Change detection compares payloads against remote records canonically,
// skipping technical fields the target manages itself, so only real
// differences trigger API calls. Execution pushes each class through a
// scope-specific Synchronizer, isolating per-entity failures as outcomes.
//
// The Resolver handles ordering constraints between entities: a record
// whose dependency chain is not on the target yet gets the chain created
// depth-first, and an unresolvable dependency degrades to an empty
// reference instead of failing the batch.
package reconcile
