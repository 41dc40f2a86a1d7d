package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apothecary/internal/catalog"
)

func herbs() []catalog.Ingredient {
	return []catalog.Ingredient{
		{Name: "Sauge", Effect: "Purification", Type: catalog.Positive, Quality: catalog.QualityMinor, Duration: "Instant"},
		{Name: "Belladone", Effect: "Poisoned", Type: catalog.Negative, Quality: catalog.QualityMajor, Duration: "Instant"},
	}
}

func TestRun_CreateRecordsTrace(t *testing.T) {
	scenario := &Scenario{
		Name:        "create",
		Description: "single combination",
		Rand:        []int{0},
		Ingredients: herbs(),
		Flow: []FlowStep{
			{
				Invoke: "create",
				Args:   map[string]any{"base": "eau", "ingredient1": "sauge", "ingredient2": "belladone"},
				Expect: &ExpectClause{Case: CaseSuccess, Result: map[string]any{"category": "Minor"}},
			},
		},
		Assertions: []Assertion{{Type: AssertPotionCount, Count: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Empty(t, result.Errors)

	require.Len(t, result.Trace, 2)
	assert.Equal(t, EventInvocation, result.Trace[0].Type)
	assert.Equal(t, "create", result.Trace[0].Action)
	assert.Equal(t, int64(1), result.Trace[0].Seq)
	assert.Equal(t, EventCompletion, result.Trace[1].Type)
	assert.Equal(t, CaseSuccess, result.Trace[1].OutputCase)
	assert.Equal(t, "potion_1", result.Trace[1].Result["id"])
	assert.Equal(t, "Potion Minor de Purification et Poisoned", result.Trace[1].Result["name"])
	assert.Equal(t, int64(2), result.Trace[1].Seq)
}

func TestRun_ScriptedRandPicksSecondTier(t *testing.T) {
	scenario := &Scenario{
		Name:        "second_tier",
		Description: "mixed tiers with a scripted draw",
		Rand:        []int{1},
		Ingredients: herbs(),
		Flow: []FlowStep{{
			Invoke: "create",
			Args:   map[string]any{"base": "eau", "ingredient1": "sauge", "ingredient2": "belladone"},
			Expect: &ExpectClause{Case: CaseSuccess, Result: map[string]any{"category": "Major"}},
		}},
		Assertions: []Assertion{{Type: AssertPotionExists, Where: map[string]any{"category": "Major"}}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_SeededRunsAreRepeatable(t *testing.T) {
	scenario := &Scenario{
		Name:        "seeded",
		Description: "same seed, same trace",
		Seed:        42,
		Ingredients: herbs(),
		Flow: []FlowStep{
			{Invoke: "create", Args: map[string]any{"base": "eau", "ingredient1": "sauge", "ingredient2": "belladone"}},
			{Invoke: "create", Args: map[string]any{"base": "vin", "ingredient1": "sauge", "ingredient2": "belladone"}},
			{Invoke: "create", Args: map[string]any{"base": "huile", "ingredient1": "sauge", "ingredient2": "belladone"}},
		},
		Assertions: []Assertion{{Type: AssertPotionCount, Count: 3}},
	}

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, first.Pass, first.Errors)
	assert.Equal(t, first.Trace, second.Trace)
}

func TestRun_ClockStepsPerCreatedPotion(t *testing.T) {
	scenario := &Scenario{
		Name:        "clock",
		Description: "timestamps advance per potion",
		Ingredients: herbs(),
		Flow: []FlowStep{
			{Invoke: "create", Args: map[string]any{"base": "eau", "ingredient1": "sauge", "ingredient2": "belladone"}},
			{Invoke: "create", Args: map[string]any{"base": "eau", "ingredient1": "belladone", "ingredient2": "sauge"}},
			{Invoke: "create", Args: map[string]any{"base": "vin", "ingredient1": "sauge", "ingredient2": "belladone"}},
		},
		Assertions: []Assertion{{Type: AssertPotionCount, Count: 2}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Trace, 6)

	assert.Equal(t, "2024-03-15T14:30:00Z", result.Trace[1].Result["created_at"])
	assert.Equal(t, CaseError, result.Trace[3].OutputCase)
	assert.Equal(t, "2024-03-15T14:31:00Z", result.Trace[5].Result["created_at"])
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "wrong expectations are reported",
		Ingredients: herbs(),
		Flow: []FlowStep{
			{
				Invoke: "create",
				Args:   map[string]any{"base": "eau", "ingredient1": "sauge", "ingredient2": "sauge"},
				Expect: &ExpectClause{Case: CaseSuccess},
			},
			{
				Invoke: "create",
				Args:   map[string]any{"base": "eau", "ingredient1": "sauge", "ingredient2": "belladone"},
				Expect: &ExpectClause{Case: CaseSuccess, Result: map[string]any{"id": "potion_7", "colour": "green"}},
			},
		},
		Assertions: []Assertion{{Type: AssertPotionCount, Count: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "expected case Success, got Error (SAME_INGREDIENT)")
	assert.Contains(t, result.Errors[1], `result has no field "colour"`)
	assert.Contains(t, result.Errors[2], "result.id expected potion_7, got potion_1")
}

func TestRun_AssertionFailureIsReported(t *testing.T) {
	scenario := &Scenario{
		Name:        "assert_fail",
		Description: "failed assertions mark the run",
		Ingredients: herbs(),
		Flow:        []FlowStep{{Invoke: "stats"}},
		Assertions:  []Assertion{{Type: AssertPotionCount, Count: 3}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: potion_count")
}

func TestRun_SamplesSeedCatalog(t *testing.T) {
	samples, err := catalog.SampleIngredients()
	require.NoError(t, err)

	scenario := &Scenario{
		Name:        "samples",
		Description: "sample ingredients are available",
		Samples:     true,
		Flow: []FlowStep{{
			Invoke: "stats",
			Expect: &ExpectClause{Case: CaseSuccess, Result: map[string]any{"total_ingredients": len(samples)}},
		}},
		Assertions: []Assertion{{Type: AssertIntegrityClean}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_IncompleteSetupIngredientIsAnError(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_setup",
		Description: "setup records must be complete",
		Ingredients: []catalog.Ingredient{{Name: "Sauge"}},
		Flow:        []FlowStep{{Invoke: "stats"}},
		Assertions:  []Assertion{{Type: AssertIntegrityClean}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute setup")
}

func TestRun_IncompleteIngredientStep(t *testing.T) {
	scenario := &Scenario{
		Name:        "incomplete",
		Description: "add_ingredient without an effect",
		Flow: []FlowStep{{
			Invoke: "add_ingredient",
			Args:   map[string]any{"name": "Sauge", "type": "positive", "quality": "Minor", "duration": "Instant"},
			Expect: &ExpectClause{Case: CaseError, Code: "INCOMPLETE_RECORD"},
		}},
		Assertions: []Assertion{{Type: AssertIntegrityClean}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}
