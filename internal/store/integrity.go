package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/apothecary/internal/catalog"
)

// CheckIntegrity reports the referential problems of the live document.
func (s *Store) CheckIntegrity() []catalog.Issue {
	return CheckIntegrity(s.doc)
}

// CheckIntegrity lists every ingredient stored under a key that differs from
// its id, every ingredient with empty required fields, and every potion that
// references a base or ingredient that does not exist. Issues are ordered by
// record id. Nothing is repaired.
func CheckIntegrity(doc *catalog.Document) []catalog.Issue {
	var issues []catalog.Issue

	for _, ing := range sortedIngredientKeys(doc) {
		rec := doc.Ingredients[ing]
		if rec.ID != ing {
			issues = append(issues, catalog.Issue{
				Code:    catalog.IssueIngredientIDMismatch,
				Subject: ing,
				Message: fmt.Sprintf("stored under %q but carries id %q", ing, rec.ID),
			})
		}
		if missing := rec.MissingFields(); len(missing) > 0 {
			issues = append(issues, catalog.Issue{
				Code:    catalog.IssueIngredientIncomplete,
				Subject: ing,
				Message: "missing required fields: " + strings.Join(missing, ", "),
			})
		}
	}

	for _, p := range doc.PotionsSorted() {
		if _, ok := doc.Bases[p.Base]; !ok {
			issues = append(issues, catalog.Issue{
				Code:    catalog.IssuePotionUnknownBase,
				Subject: p.ID,
				Message: fmt.Sprintf("unknown base %q", p.Base),
			})
		}
		for _, ref := range []string{p.Ingredient1, p.Ingredient2} {
			if _, ok := doc.Ingredients[ref]; !ok {
				issues = append(issues, catalog.Issue{
					Code:    catalog.IssuePotionUnknownIngr,
					Subject: p.ID,
					Message: fmt.Sprintf("unknown ingredient %q", ref),
				})
			}
		}
	}
	return issues
}

func sortedIngredientKeys(doc *catalog.Document) []string {
	keys := make([]string, 0, len(doc.Ingredients))
	for k := range doc.Ingredients {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
