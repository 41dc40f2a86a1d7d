package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var idReplacer = strings.NewReplacer(
	" ", "_",
	"-", "_",
	"'", "",
	"’", "",
	KeySeparator, "",
)

// IngredientID derives the identifier of an ingredient from its display name.
//
// The name is trimmed, NFC normalized and lowercased; spaces and hyphens become
// underscores; apostrophes and the key separator are removed. Accented letters are kept, so
// "Racine d'Ortie" becomes "racine_dortie" and "Thé Noir" becomes "thé_noir".
func IngredientID(name string) string {
	s := norm.NFC.String(strings.TrimSpace(name))
	// Casers carry state; build one per call.
	s = cases.Lower(language.Und).String(s)
	return idReplacer.Replace(s)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
