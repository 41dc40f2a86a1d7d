package transfer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/roach88/apothecary/internal/catalog"
)

// CreatedLayout formats potion creation times in CSV exports.
const CreatedLayout = "02/01/2006 15:04"

// utf8BOM lets spreadsheet applications detect the encoding.
const utf8BOM = "\ufeff"

// PotionHeaders are the column headers of a potion CSV export.
var PotionHeaders = []string{"Name", "Base", "Category", "Ingredient1", "Ingredient2", "Created", "Favorite", "Notes"}

// IngredientHeaders are the column headers of an ingredient CSV export.
var IngredientHeaders = []string{"Name", "Effect", "Type", "Quality", "Duration", "Rarity", "Description"}

// WritePotionsCSV writes potions as CSV, in the given order. Base and
// ingredient ids are replaced by display names; a reference that does not
// resolve is written as the raw id.
func WritePotionsCSV(w io.Writer, doc *catalog.Document, potions []catalog.Potion) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write potions csv: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(PotionHeaders); err != nil {
		return fmt.Errorf("write potions csv: %w", err)
	}
	for _, p := range potions {
		row := []string{
			p.Name,
			baseName(doc, p.Base),
			string(p.Category),
			ingredientName(doc, p.Ingredient1),
			ingredientName(doc, p.Ingredient2),
			formatCreated(p.CreatedAt),
			yesNo(p.IsFavorite),
			p.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write potions csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write potions csv: %w", err)
	}
	return nil
}

// WriteIngredientsCSV writes ingredients as CSV, in the given order.
func WriteIngredientsCSV(w io.Writer, ingredients []catalog.Ingredient) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write ingredients csv: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(IngredientHeaders); err != nil {
		return fmt.Errorf("write ingredients csv: %w", err)
	}
	for _, ing := range ingredients {
		row := []string{
			ing.Name,
			ing.Effect,
			string(ing.Type),
			string(ing.Quality),
			ing.Duration,
			string(ing.Rarity),
			ing.Description,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write ingredients csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write ingredients csv: %w", err)
	}
	return nil
}

func baseName(doc *catalog.Document, id string) string {
	if b, ok := doc.Bases[id]; ok && b.Name != "" {
		return b.Name
	}
	return id
}

func ingredientName(doc *catalog.Document, id string) string {
	if ing, ok := doc.Ingredients[id]; ok && ing.Name != "" {
		return ing.Name
	}
	return id
}

func formatCreated(ts catalog.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(CreatedLayout)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
