package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed samples.yaml
var samplesYAML []byte

// SampleIngredients returns the ingredients used to seed a new catalog. Each
// sample is allowed in every built-in base category.
func SampleIngredients() ([]Ingredient, error) {
	var samples []Ingredient
	if err := yaml.Unmarshal(samplesYAML, &samples); err != nil {
		return nil, fmt.Errorf("decode sample ingredients: %w", err)
	}
	for i := range samples {
		samples[i].AllowedPotionTypes = append([]BaseCategory(nil), BaseCategories...)
	}
	return samples, nil
}
