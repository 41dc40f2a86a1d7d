package engine

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/roach88/apothecary/internal/catalog"
)

// DomainCombination prefixes combination fingerprints. The version suffix
// leaves room for a future change of algorithm.
const DomainCombination = "apothecary/combination/v1"

// Key returns the order-independent uniqueness key of a combination.
func Key(baseID, ingredientA, ingredientB string) string {
	return catalog.CombinationKey(baseID, ingredientA, ingredientB)
}

// Fingerprint returns a fixed-width hex identifier for a combination key.
// Format: SHA256(domain + 0x00 + key).
func Fingerprint(key string) string {
	return hashWithDomain(DomainCombination, []byte(key))
}

func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
