// Package n2f is the gateway to the target expense platform API. It
// handles token acquisition and reuse, per-minute quota channels that
// differ between day and night, paginated list retrieval, read-through
// caching of list calls, and the simulate and sandbox execution modes.
// Every mutating call returns an Outcome instead of an error so a single
// failed entity never aborts a batch.
package n2f
