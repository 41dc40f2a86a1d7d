package engine

import (
	"github.com/roach88/apothecary/internal/catalog"
)

// Suggestion is a combination that has not been recorded yet.
type Suggestion struct {
	Base     string `json:"base"`
	Positive string `json:"positive"`
	Negative string `json:"negative"`
}

// Suggest draws one untried combination of a base with a positive and a
// negative ingredient, both compatible with the base.
//
// Candidates are enumerated in base id then ingredient id order before the
// draw, so a seeded Rand always yields the same suggestion for the same
// catalog. Fails with NO_SUGGESTION when every candidate is already recorded.
func (e *Engine) Suggest() (Suggestion, error) {
	doc := e.store.Document()

	var candidates []Suggestion
	for _, base := range doc.BasesSorted() {
		var positives, negatives []string
		for _, ing := range CompatibleIngredients(doc, base.ID) {
			switch ing.Type {
			case catalog.Positive:
				positives = append(positives, ing.ID)
			case catalog.Negative:
				negatives = append(negatives, ing.ID)
			}
		}
		for _, pos := range positives {
			for _, neg := range negatives {
				if _, made := doc.FindCombination(Key(base.ID, pos, neg)); made {
					continue
				}
				candidates = append(candidates, Suggestion{Base: base.ID, Positive: pos, Negative: neg})
			}
		}
	}

	if len(candidates) == 0 {
		return Suggestion{}, &CombinationError{
			Code:    ErrCodeNoSuggestion,
			Message: "every compatible combination has already been recorded",
		}
	}
	return candidates[e.rand.IntN(len(candidates))], nil
}
