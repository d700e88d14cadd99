package reconcile

import (
	"staff-sync/core/record"
)

// Technical fields the target platform manages itself. They differ between
// a freshly built payload and a fetched record without representing a real
// change, so comparison skips them.
var ignoredFields = map[string]struct{}{
	"uuid":       {},
	"id":         {},
	"created_at": {},
	"updated_at": {},
	"created":    {},
	"updated":    {},
	"company_id": {},
	"manager_id": {},
	"profile_id": {},
	"role_id":    {},
}

// Extra technical fields skipped when comparing axis values.
var ignoredAxeFields = map[string]struct{}{
	"axe_id":       {},
	"company_uuid": {},
	"created_by":   {},
	"modified_by":  {},
	"code":         {},
}

// HasChanged reports whether pushing payload to the target would modify
// the remote record. Values are compared canonically, so "TRUE" and "1"
// and true are the same value, and surrounding whitespace or letter case
// never counts as a change. kind selects the technical field set; "axe"
// widens it.
func HasChanged(payload, remote record.Record, kind string) bool {
	if len(remote) == 0 {
		return true
	}

	for field, want := range payload {
		if skipField(field, kind) {
			continue
		}
		have, present := remote[field]
		if !present {
			// A nil payload value against an absent remote field is a
			// non-difference, not a change.
			if want == nil {
				continue
			}
			return true
		}
		if !record.Equal(want, have) {
			return true
		}
	}
	return false
}

func skipField(field, kind string) bool {
	if _, ok := ignoredFields[field]; ok {
		return true
	}
	if kind == "axe" {
		if _, ok := ignoredAxeFields[field]; ok {
			return true
		}
	}
	return false
}
