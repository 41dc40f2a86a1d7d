package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/apothecary/internal/catalog"
)

// Resolution is a caller's decision for an imported ingredient whose id is
// already present in the catalog.
type Resolution int

const (
	// Skip keeps the existing ingredient and ignores the incoming one.
	Skip Resolution = iota
	// Replace overwrites the existing ingredient.
	Replace
	// Abort stops the import. Records accepted before the conflict are kept.
	Abort
)

func (r Resolution) String() string {
	switch r {
	case Skip:
		return "skip"
	case Replace:
		return "replace"
	case Abort:
		return "abort"
	default:
		return fmt.Sprintf("Resolution(%d)", int(r))
	}
}

// ParseResolution parses "skip", "replace" or "abort".
func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "skip":
		return Skip, nil
	case "replace":
		return Replace, nil
	case "abort":
		return Abort, nil
	}
	return Skip, fmt.Errorf("invalid resolution %q: must be skip, replace or abort", s)
}

// Resolver decides what happens to an incoming ingredient whose id collides
// with an existing one.
type Resolver func(existing, incoming catalog.Ingredient) Resolution

// Always returns a Resolver that gives the same answer for every conflict.
func Always(r Resolution) Resolver {
	return func(catalog.Ingredient, catalog.Ingredient) Resolution { return r }
}

// UpsertReport summarizes a bulk ingredient upsert.
type UpsertReport struct {
	Imported    int             `json:"imported"`
	Replaced    int             `json:"replaced"`
	Skipped     int             `json:"skipped"`
	Aborted     bool            `json:"aborted"`
	Diagnostics []catalog.Issue `json:"diagnostics,omitempty"`
}

var errNoChanges = errors.New("no changes")

// UpsertIngredients adds records to the catalog in order.
//
// Records with empty required fields are skipped with an E401 diagnostic.
// Records without an id get one derived from their name; records without an
// allow-list may be used in every category of the catalog's bases. For every
// id already present, resolve decides whether to skip, replace or abort; a nil
// resolver skips. The catalog is saved once, and only if at least one record
// was accepted.
func (s *Store) UpsertIngredients(records []catalog.Ingredient, resolve Resolver) (UpsertReport, error) {
	if resolve == nil {
		resolve = Always(Skip)
	}

	var report UpsertReport
	err := s.Mutate(func(doc *catalog.Document) error {
		allowed := allPotionTypes(doc)

		for _, rec := range records {
			ing := completeIngredient(rec.Normalized(), allowed)
			subject := ing.ID
			if subject == "" {
				subject = rec.Name
			}

			if missing := ing.MissingFields(); len(missing) > 0 {
				report.Skipped++
				report.Diagnostics = append(report.Diagnostics, catalog.Issue{
					Code:    catalog.IssueImportIncomplete,
					Subject: subject,
					Message: "missing required fields: " + strings.Join(missing, ", "),
				})
				s.logger.Warn("ingredient skipped", "id", subject, "missing", missing)
				continue
			}

			if existing, ok := doc.Ingredients[ing.ID]; ok {
				switch resolve(existing, ing) {
				case Replace:
					report.Replaced++
				case Abort:
					report.Aborted = true
					s.logger.Info("ingredient import aborted", "id", ing.ID)
				default:
					report.Skipped++
					continue
				}
			}
			if report.Aborted {
				break
			}

			doc.Ingredients[ing.ID] = ing
			report.Imported++
		}

		if report.Imported == 0 {
			return errNoChanges
		}
		return nil
	})
	if errors.Is(err, errNoChanges) {
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("upsert ingredients: %w", err)
	}
	return report, nil
}

// PutIngredient creates or edits a single ingredient.
//
// The id is always derived from the name. When previousID is non-empty the
// ingredient previously stored under it is edited: if the name change moves
// it to a new id, the old record is removed and every potion referencing the
// old id is rewritten. Creating (or renaming onto) an id that belongs to a
// different ingredient fails with a DUPLICATE_INGREDIENT error.
func (s *Store) PutIngredient(ing catalog.Ingredient, previousID string) (catalog.Ingredient, error) {
	var saved catalog.Ingredient
	err := s.Mutate(func(doc *catalog.Document) error {
		ing = ing.Normalized()
		ing.ID = catalog.IngredientID(ing.Name)
		ing = completeIngredient(ing, allPotionTypes(doc))

		if missing := ing.MissingFields(); len(missing) > 0 {
			return &Error{
				Code:    ErrCodeIncomplete,
				Message: "missing required fields: " + strings.Join(missing, ", "),
				Subject: ing.ID,
			}
		}

		if previousID != "" {
			if _, ok := doc.Ingredients[previousID]; !ok {
				return &Error{Code: ErrCodeNotFound, Message: "ingredient not found", Subject: previousID}
			}
		}
		if _, taken := doc.Ingredients[ing.ID]; taken && ing.ID != previousID {
			return &Error{
				Code:    ErrCodeDuplicateIngredient,
				Message: "an ingredient with this name already exists",
				Subject: ing.ID,
			}
		}

		if previousID != "" && previousID != ing.ID {
			delete(doc.Ingredients, previousID)
			for id, p := range doc.Potions {
				if p.Ingredient1 == previousID {
					p.Ingredient1 = ing.ID
				}
				if p.Ingredient2 == previousID {
					p.Ingredient2 = ing.ID
				}
				doc.Potions[id] = p
			}
			s.logger.Info("ingredient renamed", "from", previousID, "to", ing.ID)
		}

		doc.Ingredients[ing.ID] = ing
		saved = ing
		return nil
	})
	if err != nil {
		return catalog.Ingredient{}, err
	}
	return saved, nil
}

// DeleteIngredient removes an ingredient. Potions referencing it are kept;
// the dangling references show up in CheckIntegrity. Reports whether a record
// was removed.
func (s *Store) DeleteIngredient(id string) (bool, error) {
	if _, ok := s.doc.Ingredients[id]; !ok {
		return false, nil
	}
	err := s.Mutate(func(doc *catalog.Document) error {
		delete(doc.Ingredients, id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete ingredient: %w", err)
	}
	return true, nil
}

// SeedSamples adds the sample ingredients that are not already present and
// returns how many were added.
func (s *Store) SeedSamples() (int, error) {
	samples, err := catalog.SampleIngredients()
	if err != nil {
		return 0, err
	}
	report, err := s.UpsertIngredients(samples, Always(Skip))
	if err != nil {
		return 0, err
	}
	return report.Imported, nil
}

// completeIngredient fills the optional fields an ingredient may arrive
// without.
func completeIngredient(ing catalog.Ingredient, allowed []catalog.BaseCategory) catalog.Ingredient {
	ing.Name = strings.TrimSpace(ing.Name)
	ing.Effect = strings.TrimSpace(ing.Effect)
	if ing.ID == "" {
		ing.ID = catalog.IngredientID(ing.Name)
	}
	if ing.Rarity == "" {
		ing.Rarity = catalog.RarityCommon
	}
	if len(ing.AllowedPotionTypes) == 0 {
		ing.AllowedPotionTypes = append([]catalog.BaseCategory(nil), allowed...)
	}
	return ing
}
