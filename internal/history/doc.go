// Package history persists a summary of every synchronization run in SQLite
// so operators can see what ran, when, and how it ended after the process
// that ran it has exited.
//
// The database lives at <state_dir>/history.db. The schema is versioned; a
// mismatch is reported as ErrSchemaMismatch rather than migrated, and the
// remedy is to delete the database file.
package history
