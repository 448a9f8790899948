// Package model defines the data structures shared by the crawler, the
// report writers and the history database.
//
// The central type is RipReport, the summary of one mirroring run: what was
// fetched, what failed, and how long it took. It is serializable to JSON so
// the history database can store it verbatim.
package model
