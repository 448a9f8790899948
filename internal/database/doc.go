// Package database stores rip history in SQLite (modernc.org/sqlite, no cgo).
//
// Each finished run is kept as one row in the rips table, with its summary
// counters in columns and the full report as JSON. Failures are copied to
// rip_failures so they can be queried per suffix across runs.
package database
