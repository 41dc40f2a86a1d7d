package transfer

import (
	"time"

	"github.com/roach88/apothecary/internal/catalog"
	"github.com/roach88/apothecary/internal/testutil"
)

// fixtureDocument is a small catalog with one dangling ingredient reference.
func fixtureDocument() *catalog.Document {
	doc := catalog.NewDocument(testutil.Epoch, "test-catalog")
	all := []catalog.BaseCategory{catalog.CategoryPotion, catalog.CategoryRemedy}

	doc.Ingredients["sauge"] = catalog.Ingredient{
		ID: "sauge", Name: "Sauge", Effect: "Purification", Type: catalog.Positive,
		Quality: catalog.QualityMinor, Duration: "Instant", Rarity: catalog.RarityCommon,
		AllowedPotionTypes: all,
	}
	doc.Ingredients["ortie"] = catalog.Ingredient{
		ID: "ortie", Name: "Ortie", Effect: "Entanglement", Type: catalog.Negative,
		Quality: catalog.QualityMinor, Duration: "1 minute", Rarity: catalog.RarityCommon,
		Description: "Stinging plant", AllowedPotionTypes: all,
	}

	doc.Potions["potion_1"] = catalog.Potion{
		ID: "potion_1", Name: "Potion Minor de Purification et Entanglement",
		Base: "eau", Ingredient1: "sauge", Ingredient2: "ortie", Category: catalog.QualityMinor,
		CreatedAt: catalog.NewTimestamp(testutil.Epoch), IsFavorite: true,
		Notes: `Brewed at dawn, "strong"`,
	}
	doc.Potions["potion_2"] = catalog.Potion{
		ID: "potion_2", Name: "Remedy : Minor de Entanglement et Purification",
		Base: "quartz", Ingredient1: "ortie", Ingredient2: "ghost", Category: catalog.QualityMinor,
		CreatedAt: catalog.NewTimestamp(time.Date(2024, time.March, 16, 9, 5, 0, 0, time.UTC)),
	}
	return doc
}
