package transfer

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/apothecary/internal/catalog"
)

//go:embed ingredient.cue
var ingredientSchema []byte

// ReadResult holds the ingredients accepted by ReadIngredients and the
// diagnostics of the rejected ones.
type ReadResult struct {
	Ingredients []catalog.Ingredient
	Diagnostics []catalog.Issue
}

// ReadIngredients decodes an ingredient import file.
//
// Two shapes are accepted: an object with an "ingredients" section (the
// export envelope or a full document), or a bare object mapping ingredient
// ids to records. Every record is validated against the embedded CUE schema;
// a record that fails becomes an E401 (missing field) or E402 (wrong shape)
// diagnostic. The map key is the ingredient id. Records are returned in key
// order.
//
// The only errors are input that is not JSON or holds no ingredient map.
func ReadIngredients(r io.Reader) (*ReadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read ingredients: %w", err)
	}

	records, err := ingredientSection(data)
	if err != nil {
		return nil, fmt.Errorf("read ingredients: %w", err)
	}

	// A cue.Context is not safe for concurrent use; one per call.
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(ingredientSchema, cue.Filename("ingredient.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("read ingredients: compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Ingredient"))

	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := &ReadResult{}
	for _, id := range ids {
		raw := records[id]

		if err := validateRecord(ctx, def, id, raw); err != nil {
			result.Diagnostics = append(result.Diagnostics, catalog.Issue{
				Code:    classify(raw),
				Subject: id,
				Message: err.Error(),
			})
			continue
		}

		var ing catalog.Ingredient
		if err := json.Unmarshal(raw, &ing); err != nil {
			result.Diagnostics = append(result.Diagnostics, catalog.Issue{
				Code:    catalog.IssueImportInvalid,
				Subject: id,
				Message: err.Error(),
			})
			continue
		}
		ing.ID = id
		result.Ingredients = append(result.Ingredients, ing)
	}
	return result, nil
}

// ingredientSection returns the id → record map of an import file.
func ingredientSection(data []byte) (map[string]json.RawMessage, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}

	if raw, ok := top["ingredients"]; ok {
		var section map[string]json.RawMessage
		if err := json.Unmarshal(raw, &section); err != nil || section == nil {
			return nil, fmt.Errorf(`"ingredients" is not an object`)
		}
		return section, nil
	}

	for id, raw := range top {
		if !isObject(raw) {
			return nil, fmt.Errorf("unrecognized format: %q is not an ingredient record", id)
		}
	}
	return top, nil
}

// validateRecord unifies one record with the schema and requires every
// mandatory field to be concrete.
func validateRecord(ctx *cue.Context, def cue.Value, id string, raw json.RawMessage) error {
	v := ctx.CompileBytes(raw, cue.Filename(id+".json"))
	if err := v.Err(); err != nil {
		return firstCUEError(err)
	}
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return firstCUEError(err)
	}
	return nil
}

// firstCUEError keeps the first of possibly many CUE errors.
func firstCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	return errs[0]
}

// classify tells a record lacking required fields from one of the wrong
// shape.
func classify(raw json.RawMessage) string {
	if !isObject(raw) {
		return catalog.IssueImportInvalid
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return catalog.IssueImportInvalid
	}
	for _, name := range []string{"name", "effect", "type", "quality", "duration"} {
		v, ok := fields[name]
		if !ok {
			return catalog.IssueImportIncomplete
		}
		s, isString := v.(string)
		if !isString {
			return catalog.IssueImportInvalid
		}
		if strings.TrimSpace(s) == "" {
			return catalog.IssueImportIncomplete
		}
	}
	return catalog.IssueImportInvalid
}

func isObject(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
