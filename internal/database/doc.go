// Package database stores PrivacyPulse results in SQLite.
//
// Two things are kept: the single "last summary" slot that the report views
// read, and a history of full scan reports. The driver is
// modernc.org/sqlite, which needs no cgo, and the database runs in WAL
// mode.
//
// Scanning packages never import this package. The CLI hands them a
// Repository, either the SQLite one or the in-memory one used when
// persistence is disabled.
package database
