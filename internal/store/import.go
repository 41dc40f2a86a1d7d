package store

import (
	"fmt"

	"github.com/roach88/apothecary/internal/catalog"
)

// Replace swaps the whole catalog for the document encoded in data.
//
// The incoming document goes through Migrate first, so legacy exports are
// accepted. The previous file is kept in the backup directory by the save.
// Returns the migration diagnostics of the incoming document.
func (s *Store) Replace(data []byte) ([]catalog.Issue, error) {
	incoming, issues, err := Migrate(data, s.now(), s.newID())
	if err != nil {
		return nil, fmt.Errorf("import catalog: %w", err)
	}

	err = s.Mutate(func(doc *catalog.Document) error {
		*doc = *incoming
		return nil
	})
	if err != nil {
		return issues, fmt.Errorf("import catalog: %w", err)
	}

	s.logger.Info("catalog replaced",
		"ingredients", len(incoming.Ingredients),
		"potions", len(incoming.Potions),
		"diagnostics", len(issues),
	)
	return issues, nil
}
