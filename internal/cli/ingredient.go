package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/apothecary/internal/catalog"
	"github.com/roach88/apothecary/internal/query"
	"github.com/roach88/apothecary/internal/store"
	"github.com/roach88/apothecary/internal/transfer"
)

// NewIngredientCommand creates the ingredient command group.
func NewIngredientCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingredient",
		Short: "Manage ingredients",
	}
	cmd.AddCommand(newIngredientAddCommand(rootOpts))
	cmd.AddCommand(newIngredientEditCommand(rootOpts))
	cmd.AddCommand(newIngredientDeleteCommand(rootOpts))
	cmd.AddCommand(newIngredientListCommand(rootOpts))
	cmd.AddCommand(newIngredientImportCommand(rootOpts))
	cmd.AddCommand(newIngredientExportCommand(rootOpts))
	return cmd
}

// IngredientFlags holds the editable fields of an ingredient.
type IngredientFlags struct {
	Name        string
	Effect      string
	Type        string
	Quality     string
	Duration    string
	Rarity      string
	Description string
	Allowed     []string
}

func (f *IngredientFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.Name, "name", "", "display name (the id is derived from it)")
	fl.StringVar(&f.Effect, "effect", "", "effect")
	fl.StringVar(&f.Type, "type", "", "polarity (positive|negative)")
	fl.StringVar(&f.Quality, "quality", "", "tier (Minor|Major|Legendary|Mythical)")
	fl.StringVar(&f.Duration, "duration", "", "duration, e.g. Instant or \"1 hour\"")
	fl.StringVar(&f.Rarity, "rarity", "", "rarity (Common|Rare|Legendary|Mythical)")
	fl.StringVar(&f.Description, "description", "", "free text")
	fl.StringSliceVar(&f.Allowed, "allow", nil, "base categories the ingredient may be used with (default all)")
}

// apply copies the flags set on cmd onto ing.
func (f *IngredientFlags) apply(cmd *cobra.Command, ing catalog.Ingredient) catalog.Ingredient {
	changed := cmd.Flags().Changed
	if changed("name") {
		ing.Name = f.Name
	}
	if changed("effect") {
		ing.Effect = f.Effect
	}
	if changed("type") {
		ing.Type = catalog.Polarity(strings.ToLower(f.Type))
	}
	if changed("quality") {
		ing.Quality = catalog.Quality(f.Quality)
	}
	if changed("duration") {
		ing.Duration = f.Duration
	}
	if changed("rarity") {
		ing.Rarity = catalog.Rarity(f.Rarity)
	}
	if changed("description") {
		ing.Description = f.Description
	}
	if changed("allow") {
		ing.AllowedPotionTypes = make([]catalog.BaseCategory, 0, len(f.Allowed))
		for _, c := range f.Allowed {
			ing.AllowedPotionTypes = append(ing.AllowedPotionTypes, catalog.BaseCategory(c))
		}
	}
	return ing
}

func newIngredientAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &IngredientFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an ingredient",
		Long: `Add an ingredient to the catalog.

Name, effect, type, quality and duration are required. The id is derived from
the name and must not be taken.

Example:
  apothecary ingredient add --name "Racine d'Ortie" --effect Entanglement \
    --type negative --quality Minor --duration "1 minute" --allow Poison,Unguent`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			saved, err := s.store.PutIngredient(flags.apply(cmd, catalog.Ingredient{}), "")
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Success(saved, func(w io.Writer) {
				fmt.Fprintf(w, "Added %s (%s)\n", saved.ID, saved.Name)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newIngredientEditCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &IngredientFlags{}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an ingredient",
		Long: `Edit an ingredient. Only the given fields change.

Renaming changes the id; every potion using the old id is updated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			existing, ok := s.store.Document().Ingredients[args[0]]
			if !ok {
				return s.out.Fail(&store.Error{Code: store.ErrCodeNotFound, Message: "ingredient not found", Subject: args[0]})
			}
			saved, err := s.store.PutIngredient(flags.apply(cmd, existing), args[0])
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Success(saved, func(w io.Writer) {
				if saved.ID != args[0] {
					fmt.Fprintf(w, "Renamed %s to %s\n", args[0], saved.ID)
					return
				}
				fmt.Fprintf(w, "Updated %s\n", saved.ID)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newIngredientDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an ingredient",
		Long: `Delete an ingredient. Potions using it are kept and reported by
"apothecary check".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			found, err := s.store.DeleteIngredient(args[0])
			if err != nil {
				return s.out.Fail(err)
			}
			if !found {
				return s.out.Fail(&store.Error{Code: store.ErrCodeNotFound, Message: "ingredient not found", Subject: args[0]})
			}
			return s.out.Success(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %s\n", args[0])
			})
		},
	}
}

// IngredientListOptions holds flags for ingredient list.
type IngredientListOptions struct {
	*RootOptions
	Search string
	Type   string
	Base   string
	Sort   string
}

func newIngredientListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngredientListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ingredients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sortKey, err := query.ParseIngredientSort(opts.Sort)
			if err != nil {
				return newFormatter(rootOpts, cmd).FailWith(CodeCommand, ExitCommandError, err.Error(), nil, err)
			}
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			ingredients := query.Ingredients(s.store.Document(), query.IngredientFilter{
				Search: opts.Search,
				Type:   catalog.NormalizePolarity(strings.ToLower(opts.Type)),
				Base:   opts.Base,
			}, sortKey)
			return s.out.Success(ingredients, func(w io.Writer) {
				writeIngredientTable(w, ingredients)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Search, "search", "", "case-insensitive substring of the name")
	cmd.Flags().StringVar(&opts.Type, "type", "", "polarity (positive|negative)")
	cmd.Flags().StringVar(&opts.Base, "base", "", "only ingredients usable with this base id")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort key (name|type|quality|rarity)")
	return cmd
}

func writeIngredientTable(w io.Writer, ingredients []catalog.Ingredient) {
	if len(ingredients) == 0 {
		fmt.Fprintln(w, "No ingredients.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEFFECT\tTYPE\tQUALITY\tDURATION\tRARITY")
	for _, ing := range ingredients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			ing.ID, ing.Name, ing.Effect, ing.Type, ing.Quality, ing.Duration, ing.Rarity)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d ingredient(s)\n", len(ingredients))
}

// IngredientImportResult is the outcome of an ingredient import.
type IngredientImportResult struct {
	File string `json:"file"`
	store.UpsertReport
}

func newIngredientImportCommand(rootOpts *RootOptions) *cobra.Command {
	var onConflict string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import ingredients from a JSON file",
		Long: `Import ingredients from a JSON file.

The file is either an ingredient export or an object mapping ids to records.
Invalid records are skipped and reported. For ids already in the catalog,
--on-conflict decides: skip (default), replace, or abort the import at the
first conflict.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			resolution, err := store.ParseResolution(onConflict)
			if err != nil {
				return out.FailWith(CodeCommand, ExitCommandError, err.Error(), nil, err)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return out.FailWith(CodeCommand, ExitCommandError, "failed to open import file", nil, err)
			}
			defer f.Close()

			read, err := transfer.ReadIngredients(f)
			if err != nil {
				return out.FailWith(CodeCommand, ExitCommandError, "failed to read import file", nil, err)
			}

			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			report, err := s.store.UpsertIngredients(read.Ingredients, store.Always(resolution))
			if err != nil {
				return s.out.Fail(err)
			}
			report.Skipped += len(read.Diagnostics)
			report.Diagnostics = append(read.Diagnostics, report.Diagnostics...)

			result := IngredientImportResult{File: args[0], UpsertReport: report}
			return s.out.Success(result, func(w io.Writer) {
				fmt.Fprintf(w, "Imported %d ingredient(s) (%d replaced, %d skipped)\n",
					report.Imported, report.Replaced, report.Skipped)
				if report.Aborted {
					fmt.Fprintln(w, "Import aborted at the first conflict")
				}
				for _, d := range report.Diagnostics {
					fmt.Fprintf(w, "  %s\n", d)
				}
			})
		},
	}

	cmd.Flags().StringVar(&onConflict, "on-conflict", "skip", "existing ids: skip|replace|abort")
	return cmd
}

func newIngredientExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export ingredients as JSON or CSV",
		Long: `Export every ingredient. A path ending in .csv writes CSV, anything
else writes JSON. Without a path, a timestamped JSON file is written to the
export directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			now := s.clock.Now()
			path := exportPath(s, args, "ingredients", ".json", now)

			err = writeExport(path, func(w io.Writer) error {
				if strings.EqualFold(filepath.Ext(path), ".csv") {
					return transfer.WriteIngredientsCSV(w, s.store.Document().IngredientsSorted())
				}
				return transfer.WriteIngredientsJSON(w, s.store.Document(), now)
			})
			if err != nil {
				return s.out.FailWith(CodeCommand, ExitCommandError, "failed to export ingredients", nil, err)
			}
			return s.out.Success(exportResult(path, len(s.store.Document().Ingredients)), func(w io.Writer) {
				fmt.Fprintf(w, "Exported %d ingredient(s) to %s\n", len(s.store.Document().Ingredients), path)
			})
		},
	}
}
