// Package engine implements the combination rules of the catalog.
//
// The engine turns a base and two ingredients into a recorded potion and owns
// every other potion mutation (delete, favorite toggle, notes). All changes go
// through store.Mutate, so a mutation is persisted before the call returns and
// a failed save leaves the catalog as it was.
//
// Uniqueness:
// A combination is unordered. Key sorts the two ingredient ids, so
// (base, A, B) and (base, B, A) collide; the display name keeps the order the
// ingredients were given in.
//
// Randomness:
// When the two ingredients have different quality tiers, the potion category
// is one of the two tiers chosen by the engine's Rand. Tests inject a seeded or
// scripted source through WithRand.
package engine
