package engine

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apothecary/internal/catalog"
	"github.com/roach88/apothecary/internal/store"
	"github.com/roach88/apothecary/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	s, err := store.Open(path,
		store.WithClock(testutil.NewFixedClock(testutil.Epoch).Now),
		store.WithIDGenerator(testutil.NewFixedIDGenerator("").Generate),
		store.WithLogger(discardLogger()),
	)
	require.NoError(t, err)

	_, err = s.UpsertIngredients([]catalog.Ingredient{
		{ID: "sauge", Name: "Sauge", Effect: "Purification", Type: catalog.Positive, Quality: catalog.QualityMinor, Duration: "Instant"},
		{ID: "ortie", Name: "Ortie", Effect: "Entanglement", Type: catalog.Negative, Quality: catalog.QualityMinor, Duration: "1 minute"},
		{ID: "belladone", Name: "Belladone", Effect: "Poisoned", Type: catalog.Negative, Quality: catalog.QualityMajor, Duration: "Instant"},
		{ID: "lotus", Name: "Lotus", Effect: "Charm", Type: catalog.Positive, Quality: catalog.QualityMinor, Duration: "1 minute",
			AllowedPotionTypes: []catalog.BaseCategory{catalog.CategoryPotion}},
	}, nil)
	require.NoError(t, err)
	return s
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithClock(testutil.NewSteppingClock(testutil.Epoch, 0)),
		WithRand(testutil.NewScriptedRand(0)),
		WithLogger(discardLogger()),
	}
	return New(setupTestStore(t), append(base, opts...)...)
}

func TestEngine_CreateEqualTiers(t *testing.T) {
	e := newTestEngine(t)

	p, err := e.Create("eau", "sauge", "ortie")
	require.NoError(t, err)

	assert.Equal(t, "potion_1", p.ID)
	assert.Equal(t, "Potion Minor de Purification et Entanglement", p.Name)
	assert.Equal(t, catalog.QualityMinor, p.Category)
	assert.Equal(t, "eau", p.Base)
	assert.Equal(t, "sauge", p.Ingredient1)
	assert.Equal(t, "ortie", p.Ingredient2)
	assert.Equal(t, testutil.Epoch, p.CreatedAt.Time)
	assert.False(t, p.IsFavorite)
	assert.Empty(t, p.Notes)

	assert.Equal(t, p, e.Store().Document().Potions["potion_1"])
}

func TestEngine_CreatePersistsBeforeReturning(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("eau", "sauge", "ortie")
	require.NoError(t, err)

	reopened, err := store.Open(e.Store().Path(), store.WithLogger(discardLogger()))
	require.NoError(t, err)
	assert.Contains(t, reopened.Document().Potions, "potion_1")
	assert.Equal(t, 1, reopened.Document().Metadata.TotalPotions)
}

func TestEngine_CreateRemedyName(t *testing.T) {
	e := newTestEngine(t)

	p, err := e.Create("quartz", "sauge", "ortie")
	require.NoError(t, err)
	assert.Equal(t, "Remedy : Minor de Purification et Entanglement", p.Name)
}

func TestEngine_NameFollowsArgumentOrder(t *testing.T) {
	e := newTestEngine(t)

	p, err := e.Create("huile", "ortie", "sauge")
	require.NoError(t, err)
	assert.Equal(t, "Poison Minor de Entanglement et Purification", p.Name)
}

func TestEngine_DuplicateIsOrderIndependent(t *testing.T) {
	e := newTestEngine(t)

	first, err := e.Create("eau", "sauge", "ortie")
	require.NoError(t, err)

	_, err = e.Create("eau", "ortie", "sauge")
	require.Error(t, err)
	assert.True(t, IsDuplicate(err))

	var ce *CombinationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, first.ID, ce.Existing)
	assert.Equal(t, "eau|ortie|sauge", ce.Key)

	assert.Len(t, e.Store().Document().Potions, 1, "no partial state")
}

func TestEngine_SameIngredientsOnDifferentBases(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Create("eau", "sauge", "ortie")
	require.NoError(t, err)
	_, err = e.Create("huile", "sauge", "ortie")
	require.NoError(t, err)
	assert.Len(t, e.Store().Document().Potions, 2)
}

func TestEngine_CreateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		a, b  string
		check func(error) bool
	}{
		{"same ingredient", "eau", "sauge", "sauge", IsSameIngredient},
		{"unknown base", "sable", "sauge", "ortie", IsUnknownReference},
		{"unknown first", "eau", "ghost", "ortie", IsUnknownReference},
		{"unknown second", "eau", "sauge", "ghost", IsUnknownReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			_, err := e.Create(tt.base, tt.a, tt.b)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
			assert.Empty(t, e.Store().Document().Potions)
		})
	}
}

func TestEngine_MixedTiersUseRandomSource(t *testing.T) {
	e := newTestEngine(t, WithRand(testutil.NewScriptedRand(0, 1)))

	p1, err := e.Create("eau", "sauge", "belladone")
	require.NoError(t, err)
	assert.Equal(t, catalog.QualityMinor, p1.Category)
	assert.Equal(t, "Potion Minor de Purification et Poisoned", p1.Name)

	p2, err := e.Create("huile", "sauge", "belladone")
	require.NoError(t, err)
	assert.Equal(t, catalog.QualityMajor, p2.Category)
}

func TestEngine_MixedTiersAlwaysPickAnInput(t *testing.T) {
	e := newTestEngine(t, WithRand(testutil.NewSeededRand(7)))

	seen := map[catalog.Quality]int{}
	for i := 0; i < 200; i++ {
		seen[e.category(catalog.QualityMinor, catalog.QualityMajor)]++
	}

	assert.Len(t, seen, 2, "only the two input tiers are ever chosen")
	assert.Positive(t, seen[catalog.QualityMinor])
	assert.Positive(t, seen[catalog.QualityMajor])
}

func TestEngine_EqualTiersNeverDraw(t *testing.T) {
	r := testutil.NewScriptedRand(1)
	e := newTestEngine(t, WithRand(r))

	for i := 0; i < 10; i++ {
		assert.Equal(t, catalog.QualityMinor, e.category(catalog.QualityMinor, catalog.QualityMinor))
	}
}

func TestEngine_IDsNeverCollide(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Create("eau", "sauge", "ortie")
	require.NoError(t, err)
	_, err = e.Create("huile", "sauge", "ortie")
	require.NoError(t, err)
	_, err = e.Create("vin", "sauge", "ortie")
	require.NoError(t, err)

	removed, err := e.Delete("potion_1")
	require.NoError(t, err)
	require.True(t, removed)

	// Two records remain, so the count-based id is potion_3, which is taken.
	p, err := e.Create("pate", "sauge", "ortie")
	require.NoError(t, err)
	assert.Equal(t, "potion_4", p.ID)
	assert.Contains(t, e.Store().Document().Potions, "potion_3")
}

func TestEngine_DeleteIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("eau", "sauge", "ortie")
	require.NoError(t, err)

	removed, err := e.Delete("potion_1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = e.Delete("potion_1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestEngine_ToggleFavoriteTwiceRestores(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("eau", "sauge", "ortie")
	require.NoError(t, err)

	fav, err := e.ToggleFavorite("potion_1")
	require.NoError(t, err)
	assert.True(t, fav)

	fav, err = e.ToggleFavorite("potion_1")
	require.NoError(t, err)
	assert.False(t, fav)
	assert.False(t, e.Store().Document().Potions["potion_1"].IsFavorite)
}

func TestEngine_ToggleFavoriteMissing(t *testing.T) {
	e := newTestEngine(t)
	fav, err := e.ToggleFavorite("potion_9")
	require.NoError(t, err)
	assert.False(t, fav)
}

func TestEngine_UpdateNotes(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("eau", "sauge", "ortie")
	require.NoError(t, err)

	found, err := e.UpdateNotes("potion_1", "  brewed at dawn\n")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "  brewed at dawn\n", e.Store().Document().Potions["potion_1"].Notes)

	found, err = e.UpdateNotes("potion_1", "")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, e.Store().Document().Potions["potion_1"].Notes)

	found, err = e.UpdateNotes("potion_9", "x")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEngine_Preview(t *testing.T) {
	e := newTestEngine(t)

	p, err := e.Preview("eau", "sauge", "ortie")
	require.NoError(t, err)
	assert.Equal(t, "potion_1", p.ID)
	assert.Empty(t, e.Store().Document().Potions)
}

func TestPotionName(t *testing.T) {
	assert.Equal(t, "Elixir Legendary de A et B",
		PotionName(catalog.CategoryElixir, catalog.QualityLegendary, "A", "B"))
	assert.Equal(t, "Remedy : Major de A et B",
		PotionName(catalog.CategoryRemedy, catalog.QualityMajor, "A", "B"))
	assert.Equal(t, "Médicament : Major de A et B",
		PotionName("Médicament", catalog.QualityMajor, "A", "B"), "legacy remedy label")
}
