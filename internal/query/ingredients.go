package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/apothecary/internal/catalog"
)

// IngredientSort selects the ordering of an ingredient listing.
type IngredientSort string

const (
	// IngredientSortNone orders by ingredient id.
	IngredientSortNone IngredientSort = ""
	// IngredientSortName orders by display name, case-insensitively.
	IngredientSortName IngredientSort = "name"
	// IngredientSortType orders by polarity label.
	IngredientSortType IngredientSort = "type"
	// IngredientSortQuality orders by tier label, alphabetically.
	IngredientSortQuality IngredientSort = "quality"
	// IngredientSortRarity orders by rarity label, alphabetically.
	IngredientSortRarity IngredientSort = "rarity"
)

// IngredientSorts lists the accepted sort keys.
var IngredientSorts = []IngredientSort{IngredientSortName, IngredientSortType, IngredientSortQuality, IngredientSortRarity}

// ParseIngredientSort parses a sort key. The empty string is
// IngredientSortNone.
func ParseIngredientSort(s string) (IngredientSort, error) {
	key := IngredientSort(strings.ToLower(strings.TrimSpace(s)))
	if key == IngredientSortNone || slices.Contains(IngredientSorts, key) {
		return key, nil
	}
	return IngredientSortNone, fmt.Errorf("invalid ingredient sort %q: must be one of name, type, quality, rarity", s)
}

// IngredientFilter selects ingredients. Zero-valued fields match everything.
type IngredientFilter struct {
	// Search matches a case-insensitive substring of the display name.
	Search string

	// Type keeps ingredients of exactly this polarity.
	Type catalog.Polarity

	// Base keeps ingredients whose allow-list contains the category of this
	// base. An unknown base matches nothing.
	Base string
}

// Ingredients returns the ingredients of doc matching filter, ordered by sort.
func Ingredients(doc *catalog.Document, filter IngredientFilter, sort IngredientSort) []catalog.Ingredient {
	var category catalog.BaseCategory
	if filter.Base != "" {
		base, ok := doc.Bases[filter.Base]
		if !ok {
			return []catalog.Ingredient{}
		}
		category = base.PotionType
	}

	out := make([]catalog.Ingredient, 0, len(doc.Ingredients))
	for _, ing := range doc.IngredientsSorted() {
		if filter.Search != "" && !containsFold(ing.Name, filter.Search) {
			continue
		}
		if filter.Type != "" && ing.Type != filter.Type {
			continue
		}
		if filter.Base != "" && !ing.Allows(category) {
			continue
		}
		out = append(out, ing)
	}

	var by func(a, b catalog.Ingredient) int
	switch sort {
	case IngredientSortName:
		by = func(a, b catalog.Ingredient) int { return cmp.Compare(fold(a.Name), fold(b.Name)) }
	case IngredientSortType:
		by = func(a, b catalog.Ingredient) int { return cmp.Compare(a.Type, b.Type) }
	case IngredientSortQuality:
		by = func(a, b catalog.Ingredient) int { return cmp.Compare(a.Quality, b.Quality) }
	case IngredientSortRarity:
		by = func(a, b catalog.Ingredient) int { return cmp.Compare(a.Rarity, b.Rarity) }
	default:
		return out
	}

	slices.SortStableFunc(out, by)
	return out
}
