package engine

import (
	"github.com/roach88/apothecary/internal/catalog"
)

// Statistics summarizes the catalog.
type Statistics struct {
	TotalPotions     int `json:"total_potions"`
	TotalIngredients int `json:"total_ingredients"`
	TotalBases       int `json:"total_bases"`
	Favorites        int `json:"favorites"`
	Positive         int `json:"positive_ingredients"`
	Negative         int `json:"negative_ingredients"`

	ByCategory      map[catalog.Quality]int `json:"by_category"`
	ByBase          map[string]int          `json:"by_base"`
	IngredientUsage map[string]int          `json:"ingredient_usage"`

	// MostUsed is the ingredient referenced by the most potions, ties broken
	// by the smaller id. Empty when there are no potions.
	MostUsed      string `json:"most_used,omitempty"`
	MostUsedCount int    `json:"most_used_count"`
}

// Statistics computes usage figures over the live document.
func (e *Engine) Statistics() Statistics {
	return ComputeStatistics(e.store.Document())
}

// ComputeStatistics computes usage figures over doc. Dangling references are
// counted under the id they name.
func ComputeStatistics(doc *catalog.Document) Statistics {
	st := Statistics{
		TotalPotions:     len(doc.Potions),
		TotalIngredients: len(doc.Ingredients),
		TotalBases:       len(doc.Bases),
		ByCategory:       map[catalog.Quality]int{},
		ByBase:           map[string]int{},
		IngredientUsage:  map[string]int{},
	}

	for _, ing := range doc.Ingredients {
		switch ing.Type {
		case catalog.Positive:
			st.Positive++
		case catalog.Negative:
			st.Negative++
		}
	}

	for _, p := range doc.Potions {
		if p.IsFavorite {
			st.Favorites++
		}
		st.ByCategory[p.Category]++
		st.ByBase[p.Base]++
		st.IngredientUsage[p.Ingredient1]++
		st.IngredientUsage[p.Ingredient2]++
	}

	for id, n := range st.IngredientUsage {
		if n > st.MostUsedCount || (n == st.MostUsedCount && id < st.MostUsed) {
			st.MostUsed, st.MostUsedCount = id, n
		}
	}
	return st
}
