package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/apothecary/internal/catalog"
)

// PotionSort selects the ordering of a potion listing.
type PotionSort string

const (
	// PotionSortNone orders by potion id.
	PotionSortNone PotionSort = ""
	// PotionSortName orders by display name, case-insensitively.
	PotionSortName PotionSort = "name"
	// PotionSortCategory orders by tier label, alphabetically.
	PotionSortCategory PotionSort = "category"
	// PotionSortCreated orders newest first.
	PotionSortCreated PotionSort = "created"
	// PotionSortBase orders by base id.
	PotionSortBase PotionSort = "base"
)

// PotionSorts lists the accepted sort keys.
var PotionSorts = []PotionSort{PotionSortName, PotionSortCategory, PotionSortCreated, PotionSortBase}

// ParsePotionSort parses a sort key. The empty string is PotionSortNone.
func ParsePotionSort(s string) (PotionSort, error) {
	key := PotionSort(strings.ToLower(strings.TrimSpace(s)))
	if key == PotionSortNone || slices.Contains(PotionSorts, key) {
		return key, nil
	}
	return PotionSortNone, fmt.Errorf("invalid potion sort %q: must be one of name, category, created, base", s)
}

// PotionFilter selects potions. Zero-valued fields match everything.
type PotionFilter struct {
	// Search matches a case-insensitive substring of the display name.
	Search string

	// FavoritesOnly keeps favorite potions only.
	FavoritesOnly bool

	// Category keeps potions of exactly this tier.
	Category catalog.Quality
}

// Match reports whether p satisfies every set predicate.
func (f PotionFilter) Match(p catalog.Potion) bool {
	if f.Search != "" && !containsFold(p.Name, f.Search) {
		return false
	}
	if f.FavoritesOnly && !p.IsFavorite {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	return true
}

// Potions returns the potions of doc matching filter, ordered by sort.
func Potions(doc *catalog.Document, filter PotionFilter, sort PotionSort) []catalog.Potion {
	out := make([]catalog.Potion, 0, len(doc.Potions))
	for _, p := range doc.PotionsSorted() {
		if filter.Match(p) {
			out = append(out, p)
		}
	}

	var by func(a, b catalog.Potion) int
	switch sort {
	case PotionSortName:
		by = func(a, b catalog.Potion) int { return cmp.Compare(fold(a.Name), fold(b.Name)) }
	case PotionSortCategory:
		by = func(a, b catalog.Potion) int { return cmp.Compare(a.Category, b.Category) }
	case PotionSortCreated:
		by = func(a, b catalog.Potion) int { return b.CreatedAt.Compare(a.CreatedAt.Time) }
	case PotionSortBase:
		by = func(a, b catalog.Potion) int { return cmp.Compare(a.Base, b.Base) }
	default:
		return out
	}

	// out is already in id order, so a stable sort keeps id as the tie-breaker.
	slices.SortStableFunc(out, by)
	return out
}
