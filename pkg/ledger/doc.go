// Package ledger stores completed work sessions in SQLite.
//
// Tables: session (one row per completed session, with a generated uid),
// tag (the tag vocabulary, names unique) and session_tag (associations).
//
// Invariants:
// - Multi-table writes (CommitSession, ResetAll) run in one transaction.
// - Tag insertion is idempotent.
// - Migrate is idempotent; applied versions are tracked in schema_migrations.
package ledger
