package catalog

// KeySeparator joins the parts of a combination key. It never appears in ids
// derived by IngredientID or in the built-in base ids.
const KeySeparator = "|"

// CombinationKey returns the uniqueness key of a (base, ingredient, ingredient)
// combination. The ingredient pair is sorted so the key does not depend on the
// order the ingredients were given in.
func CombinationKey(baseID, ingredientA, ingredientB string) string {
	lo, hi := ingredientA, ingredientB
	if hi < lo {
		lo, hi = hi, lo
	}
	return baseID + KeySeparator + lo + KeySeparator + hi
}
