// Package database provides SQLite-based storage for sslreport's import history.
//
// This package implements the HistoryDB, which stores:
//   - One imports row per converted document, with the normalized report as JSON
//   - One scan_records row per endpoint, so endpoint history can be queried
//     without decoding every stored report
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
