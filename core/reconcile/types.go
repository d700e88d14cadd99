package reconcile

import (
	"staff-sync/core/record"
)

// Flags selects which action classes a run is allowed to perform.
// Disabled classes are still computed for reporting but never executed.
type Flags struct {
	Create bool
	Update bool
	Delete bool
}

// Pair joins a source record with its target counterpart under one
// normalized key.
type Pair struct {
	Key    string
	Source record.Record
	Target record.Record
}

// DiffSet is the three-way partition of a source set against a target
// set. Slices preserve the iteration order of the side that produced
// them.
type DiffSet struct {
	// ToCreate holds source records with no target counterpart.
	ToCreate []record.Record
	// ToUpdate holds records present on both sides.
	ToUpdate []Pair
	// ToDelete holds target records with no source counterpart.
	ToDelete []record.Record
}

// Counts returns the partition sizes, in create/update/delete order.
func (d DiffSet) Counts() (int, int, int) {
	return len(d.ToCreate), len(d.ToUpdate), len(d.ToDelete)
}
