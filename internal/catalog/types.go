package catalog

// Polarity classifies an ingredient as beneficial or harmful.
type Polarity string

const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
)

// Quality is the tier of an ingredient, copied onto the potions made from it.
type Quality string

const (
	QualityMinor     Quality = "Minor"
	QualityMajor     Quality = "Major"
	QualityLegendary Quality = "Legendary"
	QualityMythical  Quality = "Mythical"
)

// Qualities lists the quality tiers in rank order.
var Qualities = []Quality{QualityMinor, QualityMajor, QualityLegendary, QualityMythical}

// Rank returns the position of q in Qualities, or -1 for an unknown label.
func (q Quality) Rank() int {
	for i, known := range Qualities {
		if known == q {
			return i
		}
	}
	return -1
}

// Rarity is the scarcity tier of an ingredient or base.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityRare      Rarity = "Rare"
	RarityLegendary Rarity = "Legendary"
	RarityMythical  Rarity = "Mythical"
)

// Rarities lists the rarity tiers in rank order.
var Rarities = []Rarity{RarityCommon, RarityRare, RarityLegendary, RarityMythical}

// BaseCategory is the label a base gives to the potions made from it.
// Ingredient allow-lists are expressed in base categories.
type BaseCategory string

const (
	CategoryPotion    BaseCategory = "Potion"
	CategoryPoison    BaseCategory = "Poison"
	CategoryUnguent   BaseCategory = "Unguent"
	CategoryElixir    BaseCategory = "Elixir"
	CategorySubstrate BaseCategory = "Substrate"
	CategoryRemedy    BaseCategory = "Remedy"
)

// BaseCategories lists the categories of the built-in bases.
var BaseCategories = []BaseCategory{
	CategoryPotion,
	CategoryPoison,
	CategoryUnguent,
	CategoryElixir,
	CategorySubstrate,
	CategoryRemedy,
}

// Durations is the suggested duration vocabulary. Free text is also accepted.
var Durations = []string{
	"Instant",
	"1 minute",
	"10 minutes",
	"15 minutes",
	"1 hour",
	"24 hours",
	"One cycle",
	"Until awakened",
	"Until healed",
	"See scenario",
}

// Ingredient is a catalog entry that can be combined into potions.
type Ingredient struct {
	ID                 string         `json:"id" yaml:"id"`
	Name               string         `json:"name" yaml:"name"`
	Effect             string         `json:"effect" yaml:"effect"`
	Type               Polarity       `json:"type" yaml:"type"`
	Quality            Quality        `json:"quality" yaml:"quality"`
	Duration           string         `json:"duration" yaml:"duration"`
	Rarity             Rarity         `json:"rarity" yaml:"rarity"`
	Description        string         `json:"description" yaml:"description"`
	AllowedPotionTypes []BaseCategory `json:"allowed_potion_types" yaml:"allowed_potion_types"`
}

// Allows reports whether the ingredient may be used with bases of category c.
func (i Ingredient) Allows(c BaseCategory) bool {
	for _, allowed := range i.AllowedPotionTypes {
		if allowed == c {
			return true
		}
	}
	return false
}

// MissingFields returns the names of required fields that are empty.
func (i Ingredient) MissingFields() []string {
	var missing []string
	check := func(name, value string) {
		if isBlank(value) {
			missing = append(missing, name)
		}
	}
	check("name", i.Name)
	check("effect", i.Effect)
	check("type", string(i.Type))
	check("quality", string(i.Quality))
	check("duration", i.Duration)
	return missing
}

// Base is the foundational substance of a potion.
type Base struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	PotionType  BaseCategory `json:"potion_type" yaml:"potion_type"`
	Description string       `json:"description" yaml:"description"`
	Rarity      Rarity       `json:"rarity,omitempty" yaml:"rarity,omitempty"`
}

// Potion is a recorded combination of one base and two ingredients.
type Potion struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Base        string    `json:"base"`
	Ingredient1 string    `json:"ingredient1"`
	Ingredient2 string    `json:"ingredient2"`
	Category    Quality   `json:"category"`
	CreatedAt   Timestamp `json:"created_at"`
	IsFavorite  bool      `json:"is_favorite"`
	Notes       string    `json:"notes"`
}

// Key returns the order-independent uniqueness key of the combination.
func (p Potion) Key() string {
	return CombinationKey(p.Base, p.Ingredient1, p.Ingredient2)
}

// Metadata carries bookkeeping about the document.
// The counts are denormalized and recomputed on every save.
type Metadata struct {
	CatalogID        string    `json:"catalog_id,omitempty"`
	Created          Timestamp `json:"created"`
	LastModified     Timestamp `json:"last_modified"`
	TotalPotions     int       `json:"total_potions"`
	TotalIngredients int       `json:"total_ingredients"`
}

// Preferences are front-end settings stored alongside the data.
type Preferences struct {
	AutoSave        bool   `json:"auto_save"`
	BackupFrequency int    `json:"backup_frequency"`
	Theme           string `json:"theme"`
}

// Document is the root aggregate persisted to disk.
type Document struct {
	Version     string                `json:"version"`
	Metadata    Metadata              `json:"metadata"`
	Config      Preferences           `json:"config"`
	Bases       map[string]Base       `json:"bases"`
	Ingredients map[string]Ingredient `json:"ingredients"`
	Potions     map[string]Potion     `json:"potions"`
	Tags        []string              `json:"tags"`
	Favorites   []string              `json:"favorites"`
}
