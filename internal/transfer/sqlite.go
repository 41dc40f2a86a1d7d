package transfer

import (
	"cmp"
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/apothecary/internal/catalog"
)

//go:embed export_schema.sql
var exportSchemaSQL string

// ExportSQLite writes the bases, ingredients and potions of doc into a new
// SQLite database at path. An existing file at path is replaced.
//
// The export is a snapshot for ad-hoc SQL; nothing reads it back.
func ExportSQLite(ctx context.Context, path string, doc *catalog.Document) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("export sqlite: remove previous export: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("export sqlite: open: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("export sqlite: connect: %w", err)
	}
	if _, err := db.ExecContext(ctx, exportSchemaSQL); err != nil {
		return fmt.Errorf("export sqlite: create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("export sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertBases(ctx, tx, doc); err != nil {
		return fmt.Errorf("export sqlite: %w", err)
	}
	if err := insertIngredients(ctx, tx, doc); err != nil {
		return fmt.Errorf("export sqlite: %w", err)
	}
	if err := insertPotions(ctx, tx, doc); err != nil {
		return fmt.Errorf("export sqlite: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("export sqlite: commit: %w", err)
	}
	return nil
}

func insertBases(ctx context.Context, tx *sql.Tx, doc *catalog.Document) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO bases (id, name, potion_type, description, rarity) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare bases: %w", err)
	}
	defer stmt.Close()

	for _, b := range doc.BasesSorted() {
		if _, err := stmt.ExecContext(ctx, b.ID, b.Name, string(b.PotionType), b.Description, string(b.Rarity)); err != nil {
			return fmt.Errorf("insert base %s: %w", b.ID, err)
		}
	}
	return nil
}

func insertIngredients(ctx context.Context, tx *sql.Tx, doc *catalog.Document) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ingredients (id, name, effect, type, quality, duration, rarity, description, allowed_potion_types)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ingredients: %w", err)
	}
	defer stmt.Close()

	// Keyed by map key so an id mismatch cannot collide on the primary key.
	for _, key := range sortedKeys(doc.Ingredients) {
		ing := doc.Ingredients[key]
		allowed := ing.AllowedPotionTypes
		if allowed == nil {
			allowed = []catalog.BaseCategory{}
		}
		allowedJSON, err := json.Marshal(allowed)
		if err != nil {
			return fmt.Errorf("encode allow-list of %s: %w", key, err)
		}
		_, err = stmt.ExecContext(ctx, key, ing.Name, ing.Effect, string(ing.Type), string(ing.Quality),
			ing.Duration, string(ing.Rarity), ing.Description, string(allowedJSON))
		if err != nil {
			return fmt.Errorf("insert ingredient %s: %w", key, err)
		}
	}
	return nil
}

func insertPotions(ctx context.Context, tx *sql.Tx, doc *catalog.Document) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO potions (id, name, base, ingredient1, ingredient2, category, created_at, is_favorite, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare potions: %w", err)
	}
	defer stmt.Close()

	for _, key := range sortedKeys(doc.Potions) {
		p := doc.Potions[key]
		created := ""
		if !p.CreatedAt.IsZero() {
			created = p.CreatedAt.Format(time.RFC3339)
		}
		_, err := stmt.ExecContext(ctx, key, p.Name, p.Base, p.Ingredient1, p.Ingredient2,
			string(p.Category), created, p.IsFavorite, p.Notes)
		if err != nil {
			return fmt.Errorf("insert potion %s: %w", key, err)
		}
	}
	return nil
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}
