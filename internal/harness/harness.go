package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/apothecary/internal/catalog"
	"github.com/roach88/apothecary/internal/engine"
	"github.com/roach88/apothecary/internal/store"
	"github.com/roach88/apothecary/internal/testutil"
)

// ClockStep is the interval between consecutive engine timestamps.
const ClockStep = time.Minute

// Harness executes one scenario against a private catalog.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	seq    int64
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each run gets a fresh data file in a temporary directory, removed on
// return. The store clock is fixed at testutil.Epoch; the engine clock starts
// there and advances by ClockStep on every potion created or previewed.
//
// Execution flow:
//  1. Open a fresh store and engine
//  2. Seed sample ingredients and the scenario's ingredients
//  3. Execute flow steps, checking expect clauses
//  4. Evaluate assertions against the trace and the final document
//
// Errors are returned only for infrastructure failures; unmet expectations
// are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "apothecary-harness-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(filepath.Join(dir, "potions_data.json"),
		store.WithBackupDir(filepath.Join(dir, "backups")),
		store.WithClock(testutil.NewFixedClock(testutil.Epoch).Now),
		store.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.CatalogID).Generate),
		store.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	eng := engine.New(st,
		engine.WithRand(newRand(scenario)),
		engine.WithClock(testutil.NewSteppingClock(testutil.Epoch, ClockStep)),
		engine.WithLogger(logger),
	)

	h := &Harness{
		store:  st,
		engine: eng,
		logger: logger,
	}

	if err := h.executeSetup(scenario); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	result := NewResult()
	if err := h.executeFlow(scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, st.Document()) {
		result.AddError(msg)
	}
	return result, nil
}

func newRand(scenario *Scenario) engine.Rand {
	if len(scenario.Rand) > 0 {
		return testutil.NewScriptedRand(scenario.Rand...)
	}
	return testutil.NewSeededRand(scenario.Seed)
}

// executeSetup seeds the catalog. Setup records must all be accepted.
func (h *Harness) executeSetup(scenario *Scenario) error {
	if scenario.Samples {
		if _, err := h.store.SeedSamples(); err != nil {
			return fmt.Errorf("seed samples: %w", err)
		}
	}
	if len(scenario.Ingredients) == 0 {
		return nil
	}

	report, err := h.store.UpsertIngredients(scenario.Ingredients, store.Always(store.Replace))
	if err != nil {
		return fmt.Errorf("seed ingredients: %w", err)
	}
	if len(report.Diagnostics) > 0 {
		return fmt.Errorf("seed ingredients: %s", report.Diagnostics[0])
	}
	return nil
}

// executeFlow runs every step, recording an invocation and a completion per
// step and checking the step's expect clause.
func (h *Harness) executeFlow(flow []FlowStep, result *Result) error {
	for i, step := range flow {
		result.AddInvocationTrace(step.Invoke, step.Args, h.next())

		out, err := h.invoke(step)
		outputCase := CaseSuccess
		if err != nil {
			code, ok := errorCode(err)
			if !ok {
				return fmt.Errorf("flow step %d (%s): %w", i, step.Invoke, err)
			}
			outputCase = CaseError
			out = map[string]any{"code": code}
		}

		result.AddCompletionTrace(outputCase, out, h.next())
		h.logger.Debug("step completed", "index", i, "action", step.Invoke, "case", outputCase)

		if step.Expect != nil {
			checkExpect(i, step, outputCase, out, result)
		}
	}
	return nil
}

func (h *Harness) next() int64 {
	h.seq++
	return h.seq
}

// invoke dispatches a step to the engine or the store. The returned error is
// the operation's own error, unwrapped by the caller.
func (h *Harness) invoke(step FlowStep) (map[string]any, error) {
	args := step.Args

	switch step.Invoke {
	case "create":
		p, err := h.engine.Create(arg(args, "base"), arg(args, "ingredient1"), arg(args, "ingredient2"))
		if err != nil {
			return nil, err
		}
		return potionResult(p), nil

	case "preview":
		p, err := h.engine.Preview(arg(args, "base"), arg(args, "ingredient1"), arg(args, "ingredient2"))
		if err != nil {
			return nil, err
		}
		return map[string]any{"name": p.Name, "category": string(p.Category)}, nil

	case "delete":
		found, err := h.engine.Delete(arg(args, "id"))
		if err != nil {
			return nil, err
		}
		return map[string]any{"deleted": found}, nil

	case "favorite":
		favorite, err := h.engine.ToggleFavorite(arg(args, "id"))
		if err != nil {
			return nil, err
		}
		return map[string]any{"favorite": favorite}, nil

	case "notes":
		found, err := h.engine.UpdateNotes(arg(args, "id"), arg(args, "text"))
		if err != nil {
			return nil, err
		}
		return map[string]any{"updated": found}, nil

	case "suggest":
		s, err := h.engine.Suggest()
		if err != nil {
			return nil, err
		}
		return map[string]any{"base": s.Base, "positive": s.Positive, "negative": s.Negative}, nil

	case "add_ingredient":
		ing := catalog.Ingredient{
			Name:     arg(args, "name"),
			Effect:   arg(args, "effect"),
			Type:     catalog.Polarity(arg(args, "type")),
			Quality:  catalog.Quality(arg(args, "quality")),
			Duration: arg(args, "duration"),
		}
		saved, err := h.store.PutIngredient(ing, arg(args, "previous_id"))
		if err != nil {
			return nil, err
		}
		return map[string]any{"id": saved.ID}, nil

	case "delete_ingredient":
		found, err := h.store.DeleteIngredient(arg(args, "id"))
		if err != nil {
			return nil, err
		}
		return map[string]any{"deleted": found}, nil

	case "check":
		codes := []string{}
		for _, issue := range h.store.CheckIntegrity() {
			codes = append(codes, issue.Code)
		}
		return map[string]any{"issues": codes}, nil

	case "stats":
		st := h.engine.Statistics()
		return map[string]any{
			"total_potions":     st.TotalPotions,
			"total_ingredients": st.TotalIngredients,
			"favorites":         st.Favorites,
			"most_used":         st.MostUsed,
			"most_used_count":   st.MostUsedCount,
		}, nil
	}
	return nil, fmt.Errorf("unknown action %q", step.Invoke)
}

func potionResult(p catalog.Potion) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"base":        p.Base,
		"ingredient1": p.Ingredient1,
		"ingredient2": p.Ingredient2,
		"category":    string(p.Category),
		"created_at":  p.CreatedAt.Format(time.RFC3339),
	}
}

// errorCode extracts the code of a domain error. Other errors are
// infrastructure failures and abort the run.
func errorCode(err error) (string, bool) {
	var ce *engine.CombinationError
	if errors.As(err, &ce) {
		return string(ce.Code), true
	}
	var se *store.Error
	if errors.As(err, &se) {
		return string(se.Code), true
	}
	return "", false
}

func arg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func checkExpect(index int, step FlowStep, outputCase string, out map[string]any, result *Result) {
	exp := step.Expect
	prefix := fmt.Sprintf("flow[%d] %s", index, step.Invoke)

	if exp.Case != outputCase {
		msg := fmt.Sprintf("%s: expected case %s, got %s", prefix, exp.Case, outputCase)
		if code, ok := out["code"]; ok && outputCase == CaseError {
			msg += fmt.Sprintf(" (%v)", code)
		}
		result.AddError(msg)
		return
	}

	if exp.Code != "" && fmt.Sprint(out["code"]) != exp.Code {
		result.AddError(fmt.Sprintf("%s: expected code %s, got %v", prefix, exp.Code, out["code"]))
	}

	for _, key := range sortedKeys(exp.Result) {
		actual, ok := out[key]
		if !ok {
			result.AddError(fmt.Sprintf("%s: result has no field %q", prefix, key))
			continue
		}
		if !valuesEqual(exp.Result[key], actual) {
			result.AddError(fmt.Sprintf("%s: result.%s expected %v, got %v", prefix, key, exp.Result[key], actual))
		}
	}
}
