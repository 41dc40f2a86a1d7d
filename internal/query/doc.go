// Package query filters and sorts the potions and ingredients of a catalog
// document for display.
//
// Filters are ANDed; a zero-valued filter field matches everything. Sorts are
// lexicographic on labels (tiers sort alphabetically, not by rank) and fall
// back to the record id, so the same document always lists in the same order.
package query
