package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apothecary/internal/catalog"
	"github.com/roach88/apothecary/internal/testutil"
)

func TestSuggest_DeterministicWithScriptedRand(t *testing.T) {
	e := newTestEngine(t, WithRand(testutil.NewScriptedRand(0)))

	s, err := e.Suggest()
	require.NoError(t, err)
	// First candidate: smallest base id, then smallest positive, then smallest negative.
	assert.Equal(t, Suggestion{Base: "cendre", Positive: "sauge", Negative: "belladone"}, s)
}

func TestSuggest_SkipsRecordedCombinations(t *testing.T) {
	e := newTestEngine(t, WithRand(testutil.NewScriptedRand(0)))
	_, err := e.Create("cendre", "sauge", "belladone")
	require.NoError(t, err)

	s, err := e.Suggest()
	require.NoError(t, err)
	assert.Equal(t, Suggestion{Base: "cendre", Positive: "sauge", Negative: "ortie"}, s)
}

func TestSuggest_RespectsCompatibility(t *testing.T) {
	e := newTestEngine(t, WithRand(testutil.NewSeededRand(3)))
	doc := e.Store().Document()

	for i := 0; i < 50; i++ {
		s, err := e.Suggest()
		require.NoError(t, err)
		assert.Equal(t, catalog.Positive, doc.Ingredients[s.Positive].Type)
		assert.Equal(t, catalog.Negative, doc.Ingredients[s.Negative].Type)
		if s.Positive == "lotus" {
			assert.Equal(t, "eau", s.Base)
		}
	}
}

func TestSuggest_Exhausted(t *testing.T) {
	e := newTestEngine(t)
	for {
		s, err := e.Suggest()
		if err != nil {
			assert.True(t, IsNoSuggestion(err))
			break
		}
		_, err = e.Create(s.Base, s.Positive, s.Negative)
		require.NoError(t, err)
	}
	// 6 bases x sauge x 2 negatives, plus lotus on eau only.
	assert.Len(t, e.Store().Document().Potions, 14)
}

func TestStatistics(t *testing.T) {
	e := newTestEngine(t, WithRand(testutil.NewScriptedRand(1)))

	_, err := e.Create("eau", "sauge", "ortie")
	require.NoError(t, err)
	_, err = e.Create("huile", "sauge", "belladone")
	require.NoError(t, err)
	_, err = e.Create("eau", "lotus", "ortie")
	require.NoError(t, err)
	_, err = e.ToggleFavorite("potion_2")
	require.NoError(t, err)

	st := e.Statistics()
	assert.Equal(t, 3, st.TotalPotions)
	assert.Equal(t, 4, st.TotalIngredients)
	assert.Equal(t, 6, st.TotalBases)
	assert.Equal(t, 1, st.Favorites)
	assert.Equal(t, 2, st.Positive)
	assert.Equal(t, 2, st.Negative)
	assert.Equal(t, map[catalog.Quality]int{catalog.QualityMinor: 2, catalog.QualityMajor: 1}, st.ByCategory)
	assert.Equal(t, map[string]int{"eau": 2, "huile": 1}, st.ByBase)
	assert.Equal(t, 2, st.IngredientUsage["sauge"])

	// ortie and sauge are both used twice; ortie wins the tie on id.
	assert.Equal(t, "ortie", st.MostUsed)
	assert.Equal(t, 2, st.MostUsedCount)
}

func TestStatistics_Empty(t *testing.T) {
	st := ComputeStatistics(catalog.NewDocument(testutil.Epoch, ""))
	assert.Zero(t, st.TotalPotions)
	assert.Empty(t, st.MostUsed)
	assert.Equal(t, 6, st.TotalBases)
}
