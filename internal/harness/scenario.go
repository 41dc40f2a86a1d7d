package harness

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/apothecary/internal/catalog"
)

// Scenario is a catalog session loaded from YAML.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Rand scripts the engine's random choices. When empty, Seed drives a
	// seeded source instead.
	Rand []int  `yaml:"rand,omitempty"`
	Seed uint64 `yaml:"seed,omitempty"`

	// CatalogID is stamped on the fresh document. Defaults to "test-catalog".
	CatalogID string `yaml:"catalog_id,omitempty"`

	// Samples seeds the built-in sample ingredients before Ingredients.
	Samples     bool                 `yaml:"samples,omitempty"`
	Ingredients []catalog.Ingredient `yaml:"ingredients,omitempty"`

	Flow       []FlowStep  `yaml:"flow"`
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep invokes one catalog action.
type FlowStep struct {
	Invoke string         `yaml:"invoke"`
	Args   map[string]any `yaml:"args,omitempty"`
	Expect *ExpectClause  `yaml:"expect,omitempty"`
}

// ExpectClause is the expected completion of a step. Result is matched as a
// subset of the actual result.
type ExpectClause struct {
	Case   string         `yaml:"case"`
	Code   string         `yaml:"code,omitempty"`
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion types.
const (
	AssertTraceContains  = "trace_contains"
	AssertTraceOrder     = "trace_order"
	AssertTraceCount     = "trace_count"
	AssertPotionCount    = "potion_count"
	AssertFavoriteCount  = "favorite_count"
	AssertPotionExists   = "potion_exists"
	AssertIntegrityClean = "integrity_clean"
)

// Assertion is evaluated after the flow has run.
type Assertion struct {
	Type    string         `yaml:"type"`
	Action  string         `yaml:"action,omitempty"`
	Args    map[string]any `yaml:"args,omitempty"`
	Actions []string       `yaml:"actions,omitempty"`
	Count   int            `yaml:"count,omitempty"`
	Where   map[string]any `yaml:"where,omitempty"`
}

// actionArgs lists the required args of every action.
var actionArgs = map[string][]string{
	"create":            {"base", "ingredient1", "ingredient2"},
	"preview":           {"base", "ingredient1", "ingredient2"},
	"delete":            {"id"},
	"favorite":          {"id"},
	"notes":             {"id"},
	"suggest":           nil,
	"add_ingredient":    {"name"},
	"delete_ingredient": {"id"},
	"check":             nil,
	"stats":             nil,
}

// Actions returns the names of the actions a flow step may invoke.
func Actions() []string {
	names := make([]string, 0, len(actionArgs))
	for name := range actionArgs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadScenario reads and validates a scenario file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		required, ok := actionArgs[step.Invoke]
		if !ok {
			return fmt.Errorf("flow[%d]: unknown action %q", i, step.Invoke)
		}
		for _, arg := range required {
			if _, ok := step.Args[arg]; !ok {
				return fmt.Errorf("flow[%d]: %s requires arg %q", i, step.Invoke, arg)
			}
		}
		if step.Expect != nil {
			switch step.Expect.Case {
			case CaseSuccess, CaseError:
			case "":
				return fmt.Errorf("flow[%d].expect: case is required", i)
			default:
				return fmt.Errorf("flow[%d].expect: case must be %s or %s", i, CaseSuccess, CaseError)
			}
			if step.Expect.Code != "" && step.Expect.Case != CaseError {
				return fmt.Errorf("flow[%d].expect: code is only valid with case %s", i, CaseError)
			}
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertPotionCount, AssertFavoriteCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertPotionExists:
		if len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: where is required for potion_exists", index)
		}
	case AssertIntegrityClean:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
