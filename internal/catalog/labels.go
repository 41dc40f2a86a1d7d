package catalog

import "golang.org/x/text/unicode/norm"

// Older documents were written with French labels. The tables below map them
// onto the current vocabulary; unknown labels are kept verbatim.
var (
	legacyPolarity = map[string]Polarity{
		"positif": Positive,
		"négatif": Negative,
		"negatif": Negative,
	}
	legacyQuality = map[string]Quality{
		"Mineur":     QualityMinor,
		"Majeur":     QualityMajor,
		"Légendaire": QualityLegendary,
		"Mythique":   QualityMythical,
	}
	legacyRarity = map[string]Rarity{
		"Commun":     RarityCommon,
		"Légendaire": RarityLegendary,
		"Mythique":   RarityMythical,
	}
	legacyCategory = map[string]BaseCategory{
		"Onguent":    CategoryUnguent,
		"Filtre":     CategoryElixir,
		"Substrat":   CategorySubstrate,
		"Médicament": CategoryRemedy,
	}
	legacyDuration = map[string]string{
		"Instantané":         "Instant",
		"1 heure":            "1 hour",
		"24 heures":          "24 hours",
		"Un cycle":           "One cycle",
		"Jusqu'à réveil":     "Until awakened",
		"Jusqu'à guérison":   "Until healed",
		"Voir scénarisation": "See scenario",
	}
)

func lookup[T ~string](table map[string]T, label string) T {
	if v, ok := table[norm.NFC.String(label)]; ok {
		return v
	}
	return T(label)
}

// NormalizePolarity maps a legacy polarity label onto the current vocabulary.
func NormalizePolarity(label string) Polarity { return lookup(legacyPolarity, label) }

// NormalizeQuality maps a legacy quality label onto the current vocabulary.
func NormalizeQuality(label string) Quality { return lookup(legacyQuality, label) }

// NormalizeRarity maps a legacy rarity label onto the current vocabulary.
func NormalizeRarity(label string) Rarity { return lookup(legacyRarity, label) }

// NormalizeCategory maps a legacy base category onto the current vocabulary.
func NormalizeCategory(label string) BaseCategory { return lookup(legacyCategory, label) }

// NormalizeDuration maps a legacy duration onto the current vocabulary.
func NormalizeDuration(label string) string { return lookup(legacyDuration, label) }

// IsRemedy reports whether potions made on a base of category c are named
// with the "Category : Tier" form.
func IsRemedy(c BaseCategory) bool {
	return NormalizeCategory(string(c)) == CategoryRemedy
}

// Normalized returns a copy of the ingredient with every label mapped onto the
// current vocabulary. Applying it twice is the same as applying it once.
func (i Ingredient) Normalized() Ingredient {
	i.Type = NormalizePolarity(string(i.Type))
	i.Quality = NormalizeQuality(string(i.Quality))
	i.Rarity = NormalizeRarity(string(i.Rarity))
	i.Duration = NormalizeDuration(i.Duration)
	if len(i.AllowedPotionTypes) > 0 {
		allowed := make([]BaseCategory, 0, len(i.AllowedPotionTypes))
		seen := make(map[BaseCategory]bool, len(i.AllowedPotionTypes))
		for _, c := range i.AllowedPotionTypes {
			c = NormalizeCategory(string(c))
			if seen[c] {
				continue
			}
			seen[c] = true
			allowed = append(allowed, c)
		}
		i.AllowedPotionTypes = allowed
	}
	return i
}

// Normalized returns a copy of the base with its labels mapped onto the
// current vocabulary.
func (b Base) Normalized() Base {
	b.PotionType = NormalizeCategory(string(b.PotionType))
	if b.Rarity != "" {
		b.Rarity = NormalizeRarity(string(b.Rarity))
	}
	return b
}

// Normalized returns a copy of the potion with its category mapped onto the
// current vocabulary.
func (p Potion) Normalized() Potion {
	p.Category = NormalizeQuality(string(p.Category))
	return p
}
