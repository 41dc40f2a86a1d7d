package transfer

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestWritePotionsCSV_Golden(t *testing.T) {
	doc := fixtureDocument()

	var buf bytes.Buffer
	require.NoError(t, WritePotionsCSV(&buf, doc, doc.PotionsSorted()))

	newGoldie(t).Assert(t, "potions_csv", buf.Bytes())
}

func TestWriteIngredientsCSV_Golden(t *testing.T) {
	doc := fixtureDocument()

	var buf bytes.Buffer
	require.NoError(t, WriteIngredientsCSV(&buf, doc.IngredientsSorted()))

	newGoldie(t).Assert(t, "ingredients_csv", buf.Bytes())
}

func TestWritePotionsCSV_ParsesBack(t *testing.T) {
	doc := fixtureDocument()

	var buf bytes.Buffer
	require.NoError(t, WritePotionsCSV(&buf, doc, doc.PotionsSorted()))

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), utf8BOM))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, PotionHeaders, rows[0])
	assert.Equal(t, "Eau", rows[1][1], "base id resolved to its name")
	assert.Equal(t, "15/03/2024 14:30", rows[1][5])
	assert.Equal(t, "Yes", rows[1][6])
	assert.Equal(t, `Brewed at dawn, "strong"`, rows[1][7])
	assert.Equal(t, "ghost", rows[2][4], "dangling reference kept as id")
	assert.Equal(t, "No", rows[2][6])
}

func TestWritePotionsCSV_EmptyList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePotionsCSV(&buf, fixtureDocument(), nil))
	assert.Equal(t, utf8BOM+strings.Join(PotionHeaders, ",")+"\n", buf.String())
}
