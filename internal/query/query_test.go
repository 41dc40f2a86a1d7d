package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apothecary/internal/catalog"
	"github.com/roach88/apothecary/internal/testutil"
)

func potionIDs(ps []catalog.Potion) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func ingredientIDs(ings []catalog.Ingredient) []string {
	out := make([]string, 0, len(ings))
	for _, ing := range ings {
		out = append(out, ing.ID)
	}
	return out
}

func addPotion(doc *catalog.Document, id, name, base string, cat catalog.Quality, created time.Time, fav bool) {
	doc.Potions[id] = catalog.Potion{
		ID: id, Name: name, Base: base, Ingredient1: "a", Ingredient2: "b",
		Category: cat, CreatedAt: catalog.NewTimestamp(created), IsFavorite: fav,
	}
}

func potionFixture() *catalog.Document {
	doc := catalog.NewDocument(testutil.Epoch, "c")
	t0 := testutil.Epoch
	addPotion(doc, "potion_1", "potion minor de Sommeil", "eau", catalog.QualityMinor, t0, false)
	addPotion(doc, "potion_2", "Poison Mythical de Rage", "huile", catalog.QualityMythical, t0.Add(2*time.Hour), true)
	addPotion(doc, "potion_3", "Elixir Legendary de Force", "vin", catalog.QualityLegendary, t0.Add(time.Hour), false)
	addPotion(doc, "potion_4", "Potion Major de Rage", "eau", catalog.QualityMajor, t0.Add(time.Hour), true)
	return doc
}

func TestPotions_NoFilterIDOrder(t *testing.T) {
	got := Potions(potionFixture(), PotionFilter{}, PotionSortNone)
	assert.Equal(t, []string{"potion_1", "potion_2", "potion_3", "potion_4"}, potionIDs(got))
}

func TestPotions_SortKeys(t *testing.T) {
	tests := []struct {
		sort PotionSort
		want []string
	}{
		// Case-insensitive: "Elixir" < "Poison" < "potion major" < "potion minor".
		{PotionSortName, []string{"potion_3", "potion_2", "potion_4", "potion_1"}},
		// Alphabetical on the label, not by tier rank.
		{PotionSortCategory, []string{"potion_3", "potion_4", "potion_1", "potion_2"}},
		// Newest first; potion_3 and potion_4 tie and fall back to id.
		{PotionSortCreated, []string{"potion_2", "potion_3", "potion_4", "potion_1"}},
		{PotionSortBase, []string{"potion_1", "potion_4", "potion_2", "potion_3"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			got := Potions(potionFixture(), PotionFilter{}, tt.sort)
			assert.Equal(t, tt.want, potionIDs(got))
		})
	}
}

func TestPotions_SearchIsCaseInsensitive(t *testing.T) {
	got := Potions(potionFixture(), PotionFilter{Search: "RAGE"}, PotionSortNone)
	assert.Equal(t, []string{"potion_2", "potion_4"}, potionIDs(got))

	got = Potions(potionFixture(), PotionFilter{Search: "potion"}, PotionSortNone)
	assert.Equal(t, []string{"potion_1", "potion_4"}, potionIDs(got))
}

func TestPotions_FiltersAreANDed(t *testing.T) {
	got := Potions(potionFixture(), PotionFilter{Search: "rage", FavoritesOnly: true, Category: catalog.QualityMajor}, PotionSortNone)
	assert.Equal(t, []string{"potion_4"}, potionIDs(got))

	got = Potions(potionFixture(), PotionFilter{Search: "sommeil", FavoritesOnly: true}, PotionSortNone)
	assert.Empty(t, got)
}

func TestPotions_FavoritesOnlyTwoOfTen(t *testing.T) {
	doc := catalog.NewDocument(testutil.Epoch, "c")
	for i := 1; i <= 10; i++ {
		fav := i == 3 || i == 8
		addPotion(doc, fmt.Sprintf("potion_%d", i), fmt.Sprintf("Potion Minor %02d", 11-i), "eau",
			catalog.QualityMinor, testutil.Epoch.Add(time.Duration(i)*time.Minute), fav)
	}

	got := Potions(doc, PotionFilter{FavoritesOnly: true}, PotionSortName)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"potion_8", "potion_3"}, potionIDs(got))

	got = Potions(doc, PotionFilter{FavoritesOnly: true}, PotionSortCreated)
	assert.Equal(t, []string{"potion_8", "potion_3"}, potionIDs(got))
}

func TestParsePotionSort(t *testing.T) {
	for _, in := range []string{"name", "Category", " created ", "base", ""} {
		_, err := ParsePotionSort(in)
		assert.NoError(t, err, in)
	}
	_, err := ParsePotionSort("rank")
	assert.Error(t, err)
}

func ingredientFixture() *catalog.Document {
	doc := catalog.NewDocument(testutil.Epoch, "c")
	all := catalog.BaseCategories
	doc.Ingredients["sauge"] = catalog.Ingredient{ID: "sauge", Name: "Sauge", Type: catalog.Positive,
		Quality: catalog.QualityMinor, Rarity: catalog.RarityCommon, AllowedPotionTypes: all}
	doc.Ingredients["belladone"] = catalog.Ingredient{ID: "belladone", Name: "Belladone", Type: catalog.Negative,
		Quality: catalog.QualityMajor, Rarity: catalog.RarityRare, AllowedPotionTypes: []catalog.BaseCategory{catalog.CategoryPoison}}
	doc.Ingredients["écorce"] = catalog.Ingredient{ID: "écorce", Name: "écorce", Type: catalog.Positive,
		Quality: catalog.QualityLegendary, Rarity: catalog.RarityMythical, AllowedPotionTypes: all}
	doc.Ingredients["mandragore"] = catalog.Ingredient{ID: "mandragore", Name: "Mandragore", Type: catalog.Negative,
		Quality: catalog.QualityLegendary, Rarity: catalog.RarityLegendary, AllowedPotionTypes: all}
	return doc
}

func TestIngredients_SortKeys(t *testing.T) {
	tests := []struct {
		sort IngredientSort
		want []string
	}{
		{IngredientSortNone, []string{"belladone", "mandragore", "sauge", "écorce"}},
		{IngredientSortName, []string{"belladone", "mandragore", "sauge", "écorce"}},
		{IngredientSortType, []string{"belladone", "mandragore", "sauge", "écorce"}},
		{IngredientSortQuality, []string{"mandragore", "écorce", "belladone", "sauge"}},
		{IngredientSortRarity, []string{"sauge", "mandragore", "écorce", "belladone"}},
	}
	for _, tt := range tests {
		t.Run("sort="+string(tt.sort), func(t *testing.T) {
			got := Ingredients(ingredientFixture(), IngredientFilter{}, tt.sort)
			assert.Equal(t, tt.want, ingredientIDs(got))
		})
	}
}

func TestIngredients_Filters(t *testing.T) {
	doc := ingredientFixture()

	got := Ingredients(doc, IngredientFilter{Type: catalog.Negative}, IngredientSortNone)
	assert.Equal(t, []string{"belladone", "mandragore"}, ingredientIDs(got))

	got = Ingredients(doc, IngredientFilter{Search: "ÉCO"}, IngredientSortNone)
	assert.Equal(t, []string{"écorce"}, ingredientIDs(got))

	got = Ingredients(doc, IngredientFilter{Base: "eau"}, IngredientSortNone)
	assert.Equal(t, []string{"mandragore", "sauge", "écorce"}, ingredientIDs(got), "belladone only allows Poison")

	got = Ingredients(doc, IngredientFilter{Base: "huile", Type: catalog.Negative}, IngredientSortName)
	assert.Equal(t, []string{"belladone", "mandragore"}, ingredientIDs(got))

	assert.Empty(t, Ingredients(doc, IngredientFilter{Base: "sable"}, IngredientSortNone))
}

func TestParseIngredientSort(t *testing.T) {
	got, err := ParseIngredientSort("Rarity")
	require.NoError(t, err)
	assert.Equal(t, IngredientSortRarity, got)

	_, err = ParseIngredientSort("effect")
	assert.Error(t, err)
}
