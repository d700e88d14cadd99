package record

import (
	"encoding/gob"
	"strings"
	"time"
)

func init() {
	// Records travel through the gob-based read-through cache as interface
	// values, so the concrete types must be registered.
	gob.Register(Record{})
	gob.Register([]Record{})
	gob.Register(map[string]any{})
	gob.Register([]any{})
	gob.Register(time.Time{})
}

// Record is an opaque mapping of field name to scalar value.
// One field holds the natural key; which one is scope-specific.
type Record map[string]any

// Clone returns a shallow copy of the record.
// Values are scalars by contract, so a shallow copy is a full copy.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Key returns the normalized natural key held in the given field.
// A missing field and an empty value are indistinguishable on purpose;
// callers that must tell them apart use HasField first.
func (r Record) Key(field string) string {
	return NormalizeKey(r[field])
}

// HasField reports whether the record carries the given field at all.
func (r Record) HasField(field string) bool {
	_, ok := r[field]
	return ok
}

// NormalizeKey converts a raw key value to its canonical comparable form:
// stringified, trimmed, lowercased. Applied exactly once per side.
func NormalizeKey(v any) string {
	return strings.ToLower(strings.TrimSpace(ToString(v)))
}

// boolTokens maps the spellings the source extract and the target API use
// for booleans. Anything else is not boolean-like.
var boolTokens = map[string]bool{
	"1": true, "true": true, "yes": true, "y": true, "on": true,
	"0": false, "false": false, "no": false, "n": false, "off": false,
}

// Canonical returns the canonical string form of a value for comparison:
// stringified, trimmed, lowercased, with boolean-like tokens collapsed to
// "true"/"false" and nil-ish forms collapsed to "".
func Canonical(v any) string {
	if v == nil {
		return ""
	}
	s := strings.ToLower(strings.TrimSpace(ToString(v)))
	switch s {
	case "<nil>", "nan":
		return ""
	}
	if b, ok := boolTokens[s]; ok {
		if b {
			return "true"
		}
		return "false"
	}
	return s
}

// Equal reports whether two values are equal under the canonical
// comparison rule.
func Equal(a, b any) bool {
	return Canonical(a) == Canonical(b)
}
