// Package sqlite provides the SQLite-backed implementation of the
// driven storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. A single
// database connection serves three interfaces:
//
//   - DocumentStore: CMDB document persistence and structured queries
//   - SearchIndex: ranked FTS5 full-text retrieval
//   - RawQuerier: sanitized read-only SQL execution
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Documents live in a regular table with typed
// columns extracted from the attribute payload; an external-content
// FTS5 table (docs) is kept in sync by triggers, so an upsert updates
// the row and its full-text entry in the same transaction.
//
// # Data Location
//
// By default, the database is stored at ~/.netquery/cmdb.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
