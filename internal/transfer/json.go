package transfer

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/roach88/apothecary/internal/catalog"
	"github.com/roach88/apothecary/internal/store"
)

// IngredientExport is the envelope of an ingredient JSON export. ReadIngredients
// accepts it back.
type IngredientExport struct {
	Version          string                        `json:"version"`
	ExportDate       catalog.Timestamp             `json:"export_date"`
	TotalIngredients int                           `json:"total_ingredients"`
	Ingredients      map[string]catalog.Ingredient `json:"ingredients"`
}

// WriteDocumentJSON writes the whole document in its on-disk shape.
func WriteDocumentJSON(w io.Writer, doc *catalog.Document) error {
	out := doc.Clone()
	out.RefreshCounts()
	data, err := store.EncodeDocument(out)
	if err != nil {
		return fmt.Errorf("write document json: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write document json: %w", err)
	}
	return nil
}

// WriteIngredientsJSON writes every ingredient of doc in an export envelope
// stamped with now.
func WriteIngredientsJSON(w io.Writer, doc *catalog.Document, now time.Time) error {
	export := IngredientExport{
		Version:          catalog.CurrentVersion,
		ExportDate:       catalog.NewTimestamp(now),
		TotalIngredients: len(doc.Ingredients),
		Ingredients:      doc.Ingredients,
	}
	if export.Ingredients == nil {
		export.Ingredients = map[string]catalog.Ingredient{}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("write ingredients json: %w", err)
	}
	return nil
}
