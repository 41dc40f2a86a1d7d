// Package store persists the catalog document to a local JSON file.
//
// The store keeps the whole document in memory and flushes it after every
// mutation:
//   - Load reads and migrates the document, falling back to a fresh default
//     document when the file is missing or unreadable
//   - Save copies the previous file into the backup directory as
//     backup_<YYYYMMDD_HHMMSS>.json, recomputes the metadata counts and
//     replaces the document via write-to-temp then rename
//   - Mutate wraps a change and a save so that a failed save leaves the
//     in-memory document as it was before the change
//
// # Concurrency
//
// There is no locking. A Store is owned by a single goroutine in a single
// process; callers serialize every call.
//
// # Migration
//
// Migrate upgrades any older on-disk shape to the current schema. It runs
// once per load and never fails on individual records: records that cannot be
// mapped are dropped and reported as catalog.Issue diagnostics.
package store
