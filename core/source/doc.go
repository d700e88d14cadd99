// Package source extracts records from the ERP database. Each scope owns
// one SQL query; the provider runs it, converts rows into generic records
// and caches the result set for the run.
package source
