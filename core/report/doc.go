// Package report turns a run's outcome list into its three end products:
// per-scope success/total summaries for the log, a JSON-lines outcome
// file on disk, and an optional archived copy in object storage.
package report
