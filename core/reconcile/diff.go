package reconcile

import (
	"fmt"

	"staff-sync/core/record"
)

// Diff partitions source records against target records by comparing
// normalized key fields. Each side is indexed once, so the cost is linear
// in the combined set size. Records whose key field is missing or empty
// are a data defect and abort the diff.
func Diff(source, target []record.Record, sourceKeyField, targetKeyField string) (DiffSet, error) {
	sourceIndex, err := buildIndex(source, sourceKeyField, "source")
	if err != nil {
		return DiffSet{}, err
	}
	targetIndex, err := buildIndex(target, targetKeyField, "target")
	if err != nil {
		return DiffSet{}, err
	}

	var diff DiffSet
	for _, rec := range source {
		key := record.NormalizeKey(rec[sourceKeyField])
		if remote, ok := targetIndex[key]; ok {
			diff.ToUpdate = append(diff.ToUpdate, Pair{Key: key, Source: rec, Target: remote})
		} else {
			diff.ToCreate = append(diff.ToCreate, rec)
		}
	}
	for _, rec := range target {
		key := record.NormalizeKey(rec[targetKeyField])
		if _, ok := sourceIndex[key]; !ok {
			diff.ToDelete = append(diff.ToDelete, rec)
		}
	}
	return diff, nil
}

// buildIndex maps normalized keys to records. Later duplicates win, which
// mirrors the upsert semantics of the target platform.
func buildIndex(records []record.Record, keyField, side string) (map[string]record.Record, error) {
	index := make(map[string]record.Record, len(records))
	for i, rec := range records {
		if !rec.HasField(keyField) {
			return nil, fmt.Errorf("%s record %d has no key field %q", side, i, keyField)
		}
		key := record.NormalizeKey(rec[keyField])
		if key == "" {
			return nil, fmt.Errorf("%s record %d has an empty key field %q", side, i, keyField)
		}
		index[key] = rec
	}
	return index, nil
}
