// Package transfer moves catalog data in and out of the store: CSV and JSON
// exports, JSON ingredient imports validated against a CUE schema, and a
// SQLite snapshot for ad-hoc SQL analysis.
//
// Nothing here mutates a store. Readers return records and diagnostics;
// callers hand the records to store.UpsertIngredients.
package transfer
