package cli

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededCatalog(t *testing.T) *testCatalog {
	t.Helper()
	c := newTestCatalog(t)
	c.mustRun("potion", "create", "eau", "sauge", "ortie")
	c.mustRun("potion", "create", "quartz", "lotus", "ortie")
	c.mustRun("potion", "favorite", "potion_2")
	return c
}

func TestExportJSON(t *testing.T) {
	c := seededCatalog(t)
	out := c.path("exports/catalog.json")

	res := c.mustRun("export", "json", out)
	assert.Equal(t, "Exported catalog (2 potions, 5 ingredients) to "+out+"\n", res.Stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc struct {
		Version     string                    `json:"version"`
		Bases       map[string]map[string]any `json:"bases"`
		Ingredients map[string]map[string]any `json:"ingredients"`
		Potions     map[string]map[string]any `json:"potions"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "2.0", doc.Version)
	assert.Len(t, doc.Bases, 6)
	assert.Len(t, doc.Ingredients, 5)
	assert.Len(t, doc.Potions, 2)
}

func TestExportJSON_DefaultPath(t *testing.T) {
	c := seededCatalog(t)
	cfg := c.writeFile("apothecary.yaml", "export_dir: "+c.path("out")+"\n")

	_, resp := c.runJSON("export", "json", "--config", cfg)
	var result struct {
		File  string `json:"file"`
		Count int    `json:"count"`
	}
	decodeData(t, resp, &result)
	assert.Equal(t, c.path("out/catalog_20240315_143000.json"), result.File)
	assert.Equal(t, 2, result.Count)
	assert.FileExists(t, result.File)
}

func TestExportCSV(t *testing.T) {
	c := seededCatalog(t)
	out := c.path("potions.csv")

	res := c.mustRun("export", "csv", out)
	assert.Contains(t, res.Stdout, "Exported 2 potion(s)")

	rows := readCSV(t, out)
	require.Len(t, rows, 3)
	assert.Equal(t, "\ufeffName", rows[0][0])

	c.mustRun("export", "csv", out, "--favorites")
	rows = readCSV(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "Remedy : Minor de Charm / Seduction et Entanglement", rows[1][0])
	assert.Equal(t, "Poudre de quartz", rows[1][1])
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExportSQLite(t *testing.T) {
	c := seededCatalog(t)
	out := c.path("catalog.sqlite")

	res := c.mustRun("export", "sqlite", out)
	assert.Equal(t, "Exported catalog to "+out+"\n", res.Stdout)

	db, err := sql.Open("sqlite3", out)
	require.NoError(t, err)
	defer db.Close()

	var potions, favorites int
	require.NoError(t, db.QueryRow("SELECT COUNT(*), SUM(is_favorite) FROM potions").Scan(&potions, &favorites))
	assert.Equal(t, 2, potions)
	assert.Equal(t, 1, favorites)

	var base string
	require.NoError(t, db.QueryRow("SELECT base FROM potions WHERE id = 'potion_2'").Scan(&base))
	assert.Equal(t, "quartz", base)

	// A second export replaces the first.
	c.mustRun("potion", "delete", "potion_1")
	c.mustRun("export", "sqlite", out)
	db2, err := sql.Open("sqlite3", out)
	require.NoError(t, err)
	defer db2.Close()
	require.NoError(t, db2.QueryRow("SELECT COUNT(*) FROM potions").Scan(&potions))
	assert.Equal(t, 1, potions)
}

func TestImport_RequiresYes(t *testing.T) {
	c := seededCatalog(t)
	out := c.path("catalog.json")
	c.mustRun("export", "json", out)

	res := c.run("import", out)
	assert.Equal(t, ExitCommandError, res.Code)
	assert.Contains(t, res.Stderr, "--yes")
}

func TestImport_ReplacesCatalog(t *testing.T) {
	src := seededCatalog(t)
	out := src.path("catalog.json")
	src.mustRun("export", "json", out)

	dst := newTestCatalog(t)
	dst.mustRun("ingredient", "add", "--name", "Romarin", "--effect", "Clarity",
		"--type", "positive", "--quality", "Minor", "--duration", "Instant")

	res := dst.mustRun("import", out, "--yes")
	assert.Equal(t, "Imported catalog: 5 ingredient(s), 2 potion(s)\n", res.Stdout)

	res = dst.mustRun("ingredient", "list", "--search", "romarin")
	assert.Contains(t, res.Stdout, "No ingredients.")

	res = dst.mustRun("potion", "list", "--favorites")
	assert.Contains(t, res.Stdout, "potion_2")

	backups, err := os.ReadDir(dst.path("backups"))
	require.NoError(t, err)
	assert.NotEmpty(t, backups)
}

func TestImport_LegacyDocumentReportsConversion(t *testing.T) {
	c := newTestCatalog(t)
	file := c.writeFile("legacy.json", `{"version": "1.0"}`)

	res, resp := c.runJSON("import", file, "--yes")
	require.Equal(t, ExitSuccess, res.Code, res.Stderr)

	var result ImportResult
	decodeData(t, resp, &result)
	assert.Equal(t, 0, result.Potions)
	require.NotEmpty(t, result.Diagnostics)
	assert.Equal(t, "W302", result.Diagnostics[0].Code)
}

func TestImport_InvalidFile(t *testing.T) {
	c := newTestCatalog(t)

	res := c.run("import", c.path("missing.json"), "--yes")
	assert.Equal(t, ExitCommandError, res.Code)

	file := c.writeFile("garbage.json", "not json at all")
	res = c.run("import", file, "--yes")
	assert.Equal(t, ExitCommandError, res.Code)
}
