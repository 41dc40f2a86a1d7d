package query

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// fold returns the case-folded NFC form of s for case-insensitive matching.
func fold(s string) string {
	// Casers carry state; build one per call.
	return cases.Fold().String(norm.NFC.String(s))
}

// containsFold reports whether substr occurs in s, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(fold(s), fold(substr))
}
