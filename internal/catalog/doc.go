// Package catalog defines the data model of the potion catalog.
//
// The catalog is a single versioned document holding three keyed collections:
//   - Bases: foundational substances, each carrying a base category
//     ("Potion", "Poison", "Unguent", "Elixir", "Substrate", "Remedy")
//   - Ingredients: effect carriers with a polarity, a quality tier and an
//     allow-list of base categories they may be combined within
//   - Potions: recorded combinations of one base and two ingredients
//
// # Identity
//
// Ingredient ids are derived from display names (see IngredientID).
// Potion ids are sequential ("potion_<n>").
// Combinations are unordered: CombinationKey sorts the ingredient pair so that
// (base, A, B) and (base, B, A) produce the same key.
//
// # Labels
//
// Tier labels (Quality, Rarity) are plain strings. Quality.Rank exposes the
// semantic order, but every sort in the system compares labels
// lexicographically.
package catalog
