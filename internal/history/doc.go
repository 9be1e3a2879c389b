// Package history journals finished operations in SQLite.
//
// Every extraction, archive creation and GIF conversion appends one row with
// its request ID, outcome, produced files and failure kind. The CLI reads the
// journal back for `fluxforge history`. The store uses the pure-Go
// modernc.org/sqlite driver in WAL mode and retries briefly on SQLITE_BUSY so
// concurrent invocations can share one database file.
package history
