package catalog

import (
	"fmt"
	"sort"
	"time"
)

// CurrentVersion is the schema version written by this package.
const CurrentVersion = "2.0"

// DefaultBases returns the six built-in bases, one per base category.
func DefaultBases() map[string]Base {
	return map[string]Base{
		"eau":    {ID: "eau", Name: "Eau", PotionType: CategoryPotion, Description: "Standard liquid base"},
		"huile":  {ID: "huile", Name: "Huile", PotionType: CategoryPoison, Description: "Toxic oily base"},
		"pate":   {ID: "pate", Name: "Pâte", PotionType: CategoryUnguent, Description: "Thick topical base"},
		"vin":    {ID: "vin", Name: "Vin alchimique", PotionType: CategoryElixir, Description: "Magical alcoholic base"},
		"cendre": {ID: "cendre", Name: "Cendre", PotionType: CategorySubstrate, Description: "Ritual powder base"},
		"quartz": {ID: "quartz", Name: "Poudre de quartz", PotionType: CategoryRemedy, Description: "Curative crystalline base"},
	}
}

// DefaultPreferences returns the front-end settings of a new document.
func DefaultPreferences() Preferences {
	return Preferences{AutoSave: true, BackupFrequency: 10, Theme: "light"}
}

// NewDocument returns an empty document seeded with the built-in bases.
func NewDocument(now time.Time, catalogID string) *Document {
	ts := NewTimestamp(now)
	return &Document{
		Version: CurrentVersion,
		Metadata: Metadata{
			CatalogID:    catalogID,
			Created:      ts,
			LastModified: ts,
		},
		Config:      DefaultPreferences(),
		Bases:       DefaultBases(),
		Ingredients: map[string]Ingredient{},
		Potions:     map[string]Potion{},
		Tags:        []string{},
		Favorites:   []string{},
	}
}

// EnsureCollections replaces nil collections with empty ones so the document
// always encodes with every top-level key present.
func (d *Document) EnsureCollections() {
	if d.Bases == nil {
		d.Bases = map[string]Base{}
	}
	if d.Ingredients == nil {
		d.Ingredients = map[string]Ingredient{}
	}
	if d.Potions == nil {
		d.Potions = map[string]Potion{}
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	if d.Favorites == nil {
		d.Favorites = []string{}
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := *d
	out.Bases = make(map[string]Base, len(d.Bases))
	for k, v := range d.Bases {
		out.Bases[k] = v
	}
	out.Ingredients = make(map[string]Ingredient, len(d.Ingredients))
	for k, v := range d.Ingredients {
		v.AllowedPotionTypes = append([]BaseCategory(nil), v.AllowedPotionTypes...)
		out.Ingredients[k] = v
	}
	out.Potions = make(map[string]Potion, len(d.Potions))
	for k, v := range d.Potions {
		out.Potions[k] = v
	}
	out.Tags = append([]string{}, d.Tags...)
	out.Favorites = append([]string{}, d.Favorites...)
	return &out
}

// RefreshCounts recomputes the denormalized counts in the metadata.
func (d *Document) RefreshCounts() {
	d.Metadata.TotalPotions = len(d.Potions)
	d.Metadata.TotalIngredients = len(d.Ingredients)
}

// PotionTypes returns the distinct base categories of the document's bases,
// in base id order.
func (d *Document) PotionTypes() []BaseCategory {
	ids := make([]string, 0, len(d.Bases))
	for id := range d.Bases {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var types []BaseCategory
	seen := make(map[BaseCategory]bool)
	for _, id := range ids {
		c := d.Bases[id].PotionType
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		types = append(types, c)
	}
	return types
}

// NextPotionID returns "potion_<n>" where n starts at the number of potions
// plus one and is bumped until it names no existing record.
func (d *Document) NextPotionID() string {
	for n := len(d.Potions) + 1; ; n++ {
		id := fmt.Sprintf("potion_%d", n)
		if _, exists := d.Potions[id]; !exists {
			return id
		}
	}
}

// FindCombination returns the potion whose uniqueness key equals key.
func (d *Document) FindCombination(key string) (Potion, bool) {
	for _, p := range d.Potions {
		if p.Key() == key {
			return p, true
		}
	}
	return Potion{}, false
}

// IngredientsSorted returns the ingredients ordered by id.
func (d *Document) IngredientsSorted() []Ingredient {
	out := make([]Ingredient, 0, len(d.Ingredients))
	for _, ing := range d.Ingredients {
		out = append(out, ing)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PotionsSorted returns the potions ordered by id.
func (d *Document) PotionsSorted() []Potion {
	out := make([]Potion, 0, len(d.Potions))
	for _, p := range d.Potions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// BasesSorted returns the bases ordered by id.
func (d *Document) BasesSorted() []Base {
	out := make([]Base, 0, len(d.Bases))
	for _, b := range d.Bases {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
