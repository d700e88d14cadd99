// Package record defines the keyed record model shared by the source
// provider, the API gateway, and the reconciliation engine.
//
// A Record is an opaque mapping of field name to scalar value carrying one
// designated natural key (an email for users, a code for axis values).
// Source and target systems name their key fields differently, so keys are
// always compared after normalization (trimmed, lowercased).
//
// The package also owns value canonicalization: the single comparison rule
// used by change detection. Values are compared as trimmed, lowercased
// strings, with boolean-like tokens ("1", "true", "yes", ...) collapsed to
// a single boolean first, so that a source True and an API "True" never
// count as a change.
package record
