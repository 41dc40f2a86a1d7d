package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/apothecary/internal/catalog"
	"github.com/roach88/apothecary/internal/store"
)

// AssertionError describes a failed assertion with the trace for context.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			if event.Type == EventInvocation {
				fmt.Fprintf(&buf, "  [%d] %s %v\n", i+1, event.Action, event.Args)
			}
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, doc *catalog.Document) []string {
	var failures []string
	for _, a := range assertions {
		if err := evaluate(result.Trace, a, doc); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluate(trace []TraceEvent, a Assertion, doc *catalog.Document) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(trace, a)
	case AssertTraceCount:
		return assertTraceCount(trace, a)
	case AssertPotionCount:
		return assertCount(a.Type, a.Count, len(doc.Potions))
	case AssertFavoriteCount:
		n := 0
		for _, p := range doc.Potions {
			if p.IsFavorite {
				n++
			}
		}
		return assertCount(a.Type, a.Count, n)
	case AssertPotionExists:
		return assertPotionExists(doc, a)
	case AssertIntegrityClean:
		return assertIntegrityClean(doc)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// assertTraceContains checks for an invocation of the action whose args
// contain every expected arg.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, event := range trace {
		if event.Type == EventInvocation && event.Action == a.Action && matchArgs(event.Args, a.Args) {
			return nil
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("action %s with args %v", a.Action, a.Args),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the actions were invoked in the given order.
// Other invocations may appear in between.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, event := range trace {
		if next == len(a.Actions) {
			break
		}
		if event.Type == EventInvocation && event.Action == a.Actions[next] {
			next++
		}
	}
	if next == len(a.Actions) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("actions in order %v", a.Actions),
		Actual:   fmt.Sprintf("%s not found after %v", a.Actions[next], a.Actions[:next]),
		Trace:    trace,
	}
}

func assertTraceCount(trace []TraceEvent, a Assertion) error {
	n := 0
	for _, event := range trace {
		if event.Type == EventInvocation && event.Action == a.Action {
			n++
		}
	}
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s invoked %d times", a.Action, a.Count),
		Actual:   fmt.Sprintf("%d times", n),
		Trace:    trace,
	}
}

func assertCount(kind string, want, got int) error {
	if want == got {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%d", want),
		Actual:   fmt.Sprintf("%d", got),
	}
}

func assertPotionExists(doc *catalog.Document, a Assertion) error {
	for _, p := range doc.PotionsSorted() {
		if matchArgs(potionFields(p), a.Where) {
			return nil
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("a potion with %v", a.Where),
		Actual:   fmt.Sprintf("no match among %d potions", len(doc.Potions)),
	}
}

func assertIntegrityClean(doc *catalog.Document) error {
	issues := store.CheckIntegrity(doc)
	if len(issues) == 0 {
		return nil
	}
	found := make([]string, len(issues))
	for i, issue := range issues {
		found[i] = issue.String()
	}
	return &AssertionError{
		Type:     AssertIntegrityClean,
		Expected: "no integrity issues",
		Actual:   strings.Join(found, "; "),
	}
}

func potionFields(p catalog.Potion) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"base":        p.Base,
		"ingredient1": p.Ingredient1,
		"ingredient2": p.Ingredient2,
		"category":    string(p.Category),
		"is_favorite": p.IsFavorite,
		"notes":       p.Notes,
	}
}

// matchArgs reports whether actual contains every key of expected with an
// equal value. A nil or empty expected matches anything.
func matchArgs(actual, expected map[string]any) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok || !valuesEqual(want, got) {
			return false
		}
	}
	return true
}

// valuesEqual compares values by their printed form, so YAML integers match
// Go ints and YAML lists match string slices.
func valuesEqual(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
