package store

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/apothecary/internal/catalog"
	"github.com/roach88/apothecary/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openTestStore opens a store in a temp dir with a fixed clock.
func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "catalog.json")
	return openTestStoreAt(t, path, opts...)
}

func openTestStoreAt(t *testing.T, path string, opts ...Option) *Store {
	t.Helper()
	base := []Option{
		WithClock(testutil.NewFixedClock(testutil.Epoch).Now),
		WithIDGenerator(testutil.NewFixedIDGenerator("").Generate),
		WithLogger(discardLogger()),
	}
	s, err := Open(path, append(base, opts...)...)
	require.NoError(t, err)
	return s
}

func testIngredient(name, effect string, polarity catalog.Polarity, quality catalog.Quality) catalog.Ingredient {
	return catalog.Ingredient{
		ID:       catalog.IngredientID(name),
		Name:     name,
		Effect:   effect,
		Type:     polarity,
		Quality:  quality,
		Duration: "Instant",
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

