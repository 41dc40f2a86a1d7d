package engine

import (
	"fmt"

	"github.com/roach88/apothecary/internal/catalog"
)

// Compatibility is the result of checking two ingredients against a base.
type Compatibility struct {
	Base     string               `json:"base"`
	Category catalog.BaseCategory `json:"category"`

	// Incompatible lists, in argument order, the ingredients whose
	// allow-list does not contain Category.
	Incompatible []string `json:"incompatible"`
}

// OK reports whether both ingredients allow the base's category.
func (c Compatibility) OK() bool {
	return len(c.Incompatible) == 0
}

// CheckCompatibility reports which of a and b may not be used with baseID.
// Unknown ids are errors; Create itself does not enforce compatibility.
func (e *Engine) CheckCompatibility(baseID, a, b string) (Compatibility, error) {
	doc := e.store.Document()
	key := Key(baseID, a, b)

	base, ok := doc.Bases[baseID]
	if !ok {
		return Compatibility{}, &CombinationError{
			Code:    ErrCodeUnknownBase,
			Message: fmt.Sprintf("base %q does not exist", baseID),
			Key:     key,
		}
	}

	c := Compatibility{Base: baseID, Category: base.PotionType, Incompatible: []string{}}
	for _, id := range []string{a, b} {
		ing, err := lookupIngredient(doc, id, key)
		if err != nil {
			return Compatibility{}, err
		}
		if !ing.Allows(base.PotionType) {
			c.Incompatible = append(c.Incompatible, id)
		}
	}
	return c, nil
}

// CompatibleIngredients returns the ingredients, ordered by id, that allow
// the category of baseID. An unknown base yields nothing.
func CompatibleIngredients(doc *catalog.Document, baseID string) []catalog.Ingredient {
	base, ok := doc.Bases[baseID]
	if !ok {
		return nil
	}
	var out []catalog.Ingredient
	for _, ing := range doc.IngredientsSorted() {
		if ing.Allows(base.PotionType) {
			out = append(out, ing)
		}
	}
	return out
}
