// Package database provides SQLite-based storage for the run history.
//
// This package implements the HistoryDB, which stores:
//   - One record per analysis run (test kind, inputs, counts, timestamp)
//   - One record per comparison row, linked to its run
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// History is opt-in: results stay transient unless the user asks for the
// archive, so the database is only opened when the history feature is on.
package database
