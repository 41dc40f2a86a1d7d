package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/roach88/apothecary/internal/catalog"
)

// Schema history:
//
//	legacy - ingredients keyed by display name with French field names
//	         (effet, qualité, durée); potions as a flat "potions_creees" list
//	2.0    - keyed bases/ingredients/potions; ingredients carry
//	         allowed_potion_types; contraindications/synergies removed
//
// Migrate always produces a 2.0 document.

// legacyIngredient is an ingredient of the legacy shape. The display name is
// the map key.
type legacyIngredient struct {
	Effect   string `json:"effet"`
	Type     string `json:"type"`
	Quality  string `json:"qualité"`
	Duration string `json:"durée"`
}

// legacyPotion is an entry of the legacy "potions_creees" list.
type legacyPotion struct {
	Name        string `json:"nom"`
	Base        string `json:"base"`
	Ingredient1 string `json:"ingredient1"`
	Ingredient2 string `json:"ingredient2"`
	Category    string `json:"categorie"`
}

// Migrate decodes a persisted document of any known shape and upgrades it to
// the current schema.
//
// The only error is a document that is not a JSON object. Every record that
// cannot be decoded or mapped is dropped and reported as a W301 issue. For a
// document already at the current version, migrating the re-encoded result
// again yields the same document.
//
// now stamps records that carry no timestamp; catalogID fills an empty
// Metadata.CatalogID.
func Migrate(data []byte, now time.Time, catalogID string) (*catalog.Document, []catalog.Issue, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, nil, fmt.Errorf("migrate: document is not a JSON object: %w", err)
	}
	if top == nil {
		return nil, nil, fmt.Errorf("migrate: document is null")
	}

	var version string
	if raw, ok := top["version"]; ok {
		// A non-string version is treated like a missing one.
		_ = json.Unmarshal(raw, &version)
	}

	var doc *catalog.Document
	var issues []catalog.Issue
	if version == catalog.CurrentVersion {
		doc, issues = migrateCurrent(top, now)
	} else {
		doc, issues = migrateLegacy(top, version, now)
	}

	if doc.Metadata.CatalogID == "" {
		doc.Metadata.CatalogID = catalogID
	}
	doc.EnsureCollections()
	return doc, issues, nil
}

// migrateCurrent normalizes a 2.0 document: labels are mapped onto the
// current vocabulary, missing allow-lists are backfilled from the document's
// own bases and obsolete ingredient fields are dropped.
func migrateCurrent(top map[string]json.RawMessage, now time.Time) (*catalog.Document, []catalog.Issue) {
	var issues []catalog.Issue
	drop := func(subject string, err error) {
		issues = append(issues, catalog.Issue{
			Code:    catalog.IssueMigrationDropped,
			Subject: subject,
			Message: fmt.Sprintf("dropped: %v", err),
		})
	}

	doc := &catalog.Document{Version: catalog.CurrentVersion}

	doc.Metadata = catalog.Metadata{Created: catalog.NewTimestamp(now), LastModified: catalog.NewTimestamp(now)}
	if raw, ok := top["metadata"]; ok {
		var md catalog.Metadata
		if err := json.Unmarshal(raw, &md); err != nil {
			drop("metadata", err)
		} else {
			doc.Metadata = md
		}
	}

	doc.Config = catalog.DefaultPreferences()
	if raw, ok := top["config"]; ok {
		var prefs catalog.Preferences
		if err := json.Unmarshal(raw, &prefs); err != nil {
			drop("config", err)
		} else {
			doc.Config = prefs
		}
	}

	if raw, ok := top["bases"]; ok {
		doc.Bases = map[string]catalog.Base{}
		for id, rec := range decodeRecords(raw, "bases", drop) {
			var b catalog.Base
			if err := json.Unmarshal(rec, &b); err != nil {
				drop("base "+id, err)
				continue
			}
			if b.ID == "" {
				b.ID = id
			}
			doc.Bases[id] = b.Normalized()
		}
	} else {
		doc.Bases = catalog.DefaultBases()
	}

	allowed := allPotionTypes(doc)

	doc.Ingredients = map[string]catalog.Ingredient{}
	if raw, ok := top["ingredients"]; ok {
		for id, rec := range decodeRecords(raw, "ingredients", drop) {
			// contraindications and synergies have no field on Ingredient, so
			// they are dropped by decoding.
			var ing catalog.Ingredient
			if err := json.Unmarshal(rec, &ing); err != nil {
				drop("ingredient "+id, err)
				continue
			}
			ing = ing.Normalized()
			if len(ing.AllowedPotionTypes) == 0 {
				ing.AllowedPotionTypes = append([]catalog.BaseCategory(nil), allowed...)
			}
			doc.Ingredients[id] = ing
		}
	}

	doc.Potions = map[string]catalog.Potion{}
	if raw, ok := top["potions"]; ok {
		for id, rec := range decodeRecords(raw, "potions", drop) {
			var p catalog.Potion
			if err := json.Unmarshal(rec, &p); err != nil {
				drop("potion "+id, err)
				continue
			}
			if p.ID == "" {
				p.ID = id
			}
			doc.Potions[id] = p.Normalized()
		}
	}

	doc.Tags = decodeStrings(top["tags"])
	doc.Favorites = decodeStrings(top["favorites"])
	return doc, issues
}

// migrateLegacy converts a pre-2.0 document into a fresh 2.0 document.
func migrateLegacy(top map[string]json.RawMessage, version string, now time.Time) (*catalog.Document, []catalog.Issue) {
	from := version
	if from == "" {
		from = "unversioned"
	}
	issues := []catalog.Issue{{
		Code:    catalog.IssueMigrationLegacy,
		Subject: "document",
		Message: fmt.Sprintf("converted from %s shape to version %s", from, catalog.CurrentVersion),
	}}
	drop := func(subject string, err error) {
		issues = append(issues, catalog.Issue{
			Code:    catalog.IssueMigrationDropped,
			Subject: subject,
			Message: fmt.Sprintf("dropped: %v", err),
		})
	}

	doc := catalog.NewDocument(now, "")
	allowed := allPotionTypes(doc)

	if raw, ok := top["ingredients"]; ok {
		records := decodeRecords(raw, "ingredients", drop)

		names := make([]string, 0, len(records))
		for name := range records {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			var li legacyIngredient
			if err := json.Unmarshal(records[name], &li); err != nil {
				drop("ingredient "+name, err)
				continue
			}
			id := catalog.IngredientID(name)
			if id == "" {
				drop("ingredient "+name, fmt.Errorf("empty name"))
				continue
			}
			if _, taken := doc.Ingredients[id]; taken {
				drop("ingredient "+name, fmt.Errorf("id %q already used by another name", id))
				continue
			}

			ing := catalog.Ingredient{
				ID:                 id,
				Name:               strings.TrimSpace(name),
				Effect:             li.Effect,
				Type:               catalog.Polarity(orDefault(li.Type, "positif")),
				Quality:            catalog.Quality(orDefault(li.Quality, "Mineur")),
				Duration:           orDefault(li.Duration, "Instantané"),
				Rarity:             catalog.RarityCommon,
				AllowedPotionTypes: append([]catalog.BaseCategory(nil), allowed...),
			}
			doc.Ingredients[id] = ing.Normalized()
		}
	}

	if raw, ok := top["potions_creees"]; ok {
		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			drop("potions_creees", err)
		}

		ts := catalog.NewTimestamp(now)
		for i, rec := range entries {
			subject := fmt.Sprintf("potions_creees[%d]", i)
			var lp legacyPotion
			if err := json.Unmarshal(rec, &lp); err != nil {
				drop(subject, err)
				continue
			}
			if lp.Base == "" || lp.Ingredient1 == "" || lp.Ingredient2 == "" {
				drop(subject, fmt.Errorf("base and both ingredients are required"))
				continue
			}

			id := fmt.Sprintf("potion_%d", len(doc.Potions)+1)
			p := catalog.Potion{
				ID:          id,
				Name:        lp.Name,
				Base:        lp.Base,
				Ingredient1: lp.Ingredient1,
				Ingredient2: lp.Ingredient2,
				Category:    catalog.Quality(orDefault(lp.Category, "Mineur")),
				CreatedAt:   ts,
			}
			doc.Potions[id] = p.Normalized()
		}
	}

	return doc, issues
}

// decodeRecords splits a keyed collection into its raw records. A collection
// that is not an object is dropped as a whole.
func decodeRecords(raw json.RawMessage, name string, drop func(string, error)) map[string]json.RawMessage {
	var records map[string]json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		drop(name, err)
		return nil
	}
	return records
}

func decodeStrings(raw json.RawMessage) []string {
	var out []string
	if raw == nil || json.Unmarshal(raw, &out) != nil || out == nil {
		return []string{}
	}
	return out
}

// allPotionTypes returns the categories an ingredient without an allow-list
// may be used in: every category of the document's bases, or the built-in
// categories when the document has no bases.
func allPotionTypes(doc *catalog.Document) []catalog.BaseCategory {
	if types := doc.PotionTypes(); len(types) > 0 {
		return types
	}
	return catalog.BaseCategories
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
