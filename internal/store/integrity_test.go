package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apothecary/internal/catalog"
	"github.com/roach88/apothecary/internal/testutil"
)

func TestCheckIntegrity_CleanDocument(t *testing.T) {
	doc := catalog.NewDocument(testutil.Epoch, "c")
	doc.Ingredients["sauge"] = testIngredient("Sauge", "Purification", catalog.Positive, catalog.QualityMinor)
	doc.Ingredients["ortie"] = testIngredient("Ortie", "Entanglement", catalog.Negative, catalog.QualityMinor)
	doc.Potions["potion_1"] = catalog.Potion{ID: "potion_1", Base: "eau", Ingredient1: "sauge", Ingredient2: "ortie"}

	assert.Empty(t, CheckIntegrity(doc))
}

func TestCheckIntegrity_ReportsEveryProblem(t *testing.T) {
	doc := catalog.NewDocument(testutil.Epoch, "c")
	mismatched := testIngredient("Sauge", "Purification", catalog.Positive, catalog.QualityMinor)
	doc.Ingredients["sage"] = mismatched
	doc.Ingredients["ortie"] = catalog.Ingredient{ID: "ortie", Name: "Ortie"}
	doc.Potions["potion_1"] = catalog.Potion{ID: "potion_1", Base: "sable", Ingredient1: "ortie", Ingredient2: "gone"}

	issues := CheckIntegrity(doc)
	require.Len(t, issues, 4)

	assert.Equal(t, catalog.IssueIngredientIncomplete, issues[0].Code)
	assert.Equal(t, "ortie", issues[0].Subject)
	assert.Contains(t, issues[0].Message, "effect, type, quality, duration")

	assert.Equal(t, catalog.IssueIngredientIDMismatch, issues[1].Code)
	assert.Equal(t, "sage", issues[1].Subject)

	assert.Equal(t, catalog.IssuePotionUnknownBase, issues[2].Code)
	assert.Equal(t, catalog.IssuePotionUnknownIngr, issues[3].Code)
	assert.Contains(t, issues[3].Message, `"gone"`)
}

func TestCheckIntegrity_DoesNotRepair(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Mutate(func(d *catalog.Document) error {
		d.Potions["potion_1"] = catalog.Potion{ID: "potion_1", Base: "eau", Ingredient1: "a", Ingredient2: "b"}
		return nil
	}))

	assert.Len(t, s.CheckIntegrity(), 2)
	assert.Len(t, s.CheckIntegrity(), 2)
	assert.Contains(t, s.Document().Potions, "potion_1")
}

func TestReplace_ImportsWholeDocument(t *testing.T) {
	s := openTestStore(t)
	_, err := s.SeedSamples()
	require.NoError(t, err)

	issues, err := s.Replace([]byte(legacyDoc))
	require.NoError(t, err)
	require.NotEmpty(t, issues)

	assert.NotContains(t, s.Document().Ingredients, "mandragore")
	assert.Contains(t, s.Document().Ingredients, "racine_dortie")
	assert.Len(t, s.Document().Potions, 2)

	reopened := openTestStoreAt(t, s.Path())
	assert.Len(t, reopened.Document().Potions, 2)
}

func TestReplace_RejectsGarbage(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Replace([]byte("[1,2]"))
	require.Error(t, err)
	assert.Len(t, s.Document().Bases, 6)
}
