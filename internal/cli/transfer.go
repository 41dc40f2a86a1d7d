package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/apothecary/internal/catalog"
	"github.com/roach88/apothecary/internal/query"
	"github.com/roach88/apothecary/internal/store"
	"github.com/roach88/apothecary/internal/transfer"
)

// ExportTimeLayout formats the timestamp of default export file names.
const ExportTimeLayout = store.BackupTimeLayout

// NewExportCommand creates the export command group.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog",
		Long: `Export the catalog. Without a path, a timestamped file is written to the
export directory.`,
	}
	cmd.AddCommand(newExportCSVCommand(rootOpts))
	cmd.AddCommand(newExportJSONCommand(rootOpts))
	cmd.AddCommand(newExportSQLiteCommand(rootOpts))
	return cmd
}

func newExportCSVCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PotionListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "csv [file]",
		Short: "Export potions as CSV",
		Long: `Export potions as a UTF-8 CSV file readable by spreadsheets. The list
filters select which potions are written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sortKey, err := query.ParsePotionSort(opts.Sort)
			if err != nil {
				return newFormatter(rootOpts, cmd).FailWith(CodeCommand, ExitCommandError, err.Error(), nil, err)
			}
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			doc := s.store.Document()
			potions := query.Potions(doc, potionFilter(opts), sortKey)
			path := exportPath(s, args, "potions", ".csv", s.clock.Now())

			if err := writeExport(path, func(w io.Writer) error {
				return transfer.WritePotionsCSV(w, doc, potions)
			}); err != nil {
				return s.out.FailWith(CodeCommand, ExitCommandError, "failed to export potions", nil, err)
			}
			return s.out.Success(exportResult(path, len(potions)), func(w io.Writer) {
				fmt.Fprintf(w, "Exported %d potion(s) to %s\n", len(potions), path)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Search, "search", "", "case-insensitive substring of the name")
	cmd.Flags().BoolVar(&opts.Favorites, "favorites", false, "favorites only")
	cmd.Flags().StringVar(&opts.Category, "category", "", "tier (Minor, Major, Legendary, Mythical)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort key (name|category|created|base)")
	return cmd
}

func newExportJSONCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "json [file]",
		Short: "Export the whole catalog document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			doc := s.store.Document()
			path := exportPath(s, args, "catalog", ".json", s.clock.Now())

			if err := writeExport(path, func(w io.Writer) error {
				return transfer.WriteDocumentJSON(w, doc)
			}); err != nil {
				return s.out.FailWith(CodeCommand, ExitCommandError, "failed to export catalog", nil, err)
			}
			return s.out.Success(exportResult(path, len(doc.Potions)), func(w io.Writer) {
				fmt.Fprintf(w, "Exported catalog (%d potions, %d ingredients) to %s\n",
					len(doc.Potions), len(doc.Ingredients), path)
			})
		},
	}
}

func newExportSQLiteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sqlite [file]",
		Short: "Export the catalog as a SQLite database",
		Long: `Export bases, ingredients and potions as tables of a new SQLite database.
An existing file at the path is replaced.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			doc := s.store.Document()
			path := exportPath(s, args, "catalog", ".sqlite", s.clock.Now())

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return s.out.FailWith(CodeCommand, ExitCommandError, "failed to create export directory", nil, err)
			}
			if err := transfer.ExportSQLite(cmd.Context(), path, doc); err != nil {
				return s.out.FailWith(CodeCommand, ExitCommandError, "failed to export catalog", nil, err)
			}
			return s.out.Success(exportResult(path, len(doc.Potions)), func(w io.Writer) {
				fmt.Fprintf(w, "Exported catalog to %s\n", path)
			})
		},
	}
}

// ImportResult is the outcome of a catalog import.
type ImportResult struct {
	File        string          `json:"file"`
	Ingredients int             `json:"ingredients"`
	Potions     int             `json:"potions"`
	Diagnostics []catalog.Issue `json:"diagnostics"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the catalog with an exported document",
		Long: `Replace the whole catalog with a document exported by "apothecary export
json" or written by an older version. The current catalog is kept in the
backup directory. Requires --yes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			if !yes {
				return out.FailWith(CodeCommand, ExitCommandError,
					"import replaces the whole catalog; pass --yes to confirm", nil, nil)
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return out.FailWith(CodeCommand, ExitCommandError, "failed to read import file", nil, err)
			}

			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			issues, err := s.store.Replace(data)
			if err != nil {
				return s.out.FailWith(CodeCommand, ExitCommandError, "failed to import catalog", nil, err)
			}

			doc := s.store.Document()
			result := ImportResult{
				File:        args[0],
				Ingredients: len(doc.Ingredients),
				Potions:     len(doc.Potions),
				Diagnostics: append([]catalog.Issue{}, issues...),
			}
			return s.out.Success(result, func(w io.Writer) {
				fmt.Fprintf(w, "Imported catalog: %d ingredient(s), %d potion(s)\n", result.Ingredients, result.Potions)
				for _, issue := range issues {
					fmt.Fprintf(w, "  %s\n", issue)
				}
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm replacing the catalog")
	return cmd
}

// exportPath returns the path given on the command line, or
// <export dir>/<prefix>_<timestamp><ext>.
func exportPath(s *session, args []string, prefix, ext string, now time.Time) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return filepath.Join(s.cfg.ExportDir, prefix+"_"+now.Format(ExportTimeLayout)+ext)
}

// writeExport creates path, including missing directories, and fills it with
// write.
func writeExport(path string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func exportResult(path string, count int) map[string]any {
	return map[string]any{"file": path, "count": count}
}
