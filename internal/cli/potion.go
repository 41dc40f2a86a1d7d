package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/apothecary/internal/catalog"
	"github.com/roach88/apothecary/internal/engine"
	"github.com/roach88/apothecary/internal/query"
	"github.com/roach88/apothecary/internal/store"
)

// NewPotionCommand creates the potion command group.
func NewPotionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "potion",
		Short: "Create, edit and list potions",
	}
	cmd.AddCommand(newPotionCreateCommand(rootOpts))
	cmd.AddCommand(newPotionDeleteCommand(rootOpts))
	cmd.AddCommand(newPotionFavoriteCommand(rootOpts))
	cmd.AddCommand(newPotionNotesCommand(rootOpts))
	cmd.AddCommand(newPotionListCommand(rootOpts))
	cmd.AddCommand(newPotionShowCommand(rootOpts))
	return cmd
}

// PotionCreateOptions holds flags for potion create.
type PotionCreateOptions struct {
	*RootOptions
	Force   bool // record even if an ingredient does not allow the base
	Preview bool // show the potion without recording it
}

func newPotionCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PotionCreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <base> <ingredient1> <ingredient2>",
		Short: "Record a new combination",
		Long: `Record the potion brewed from a base and two ingredients.

The combination must be new: the same base with the same two ingredients, in
either order, is rejected. Both ingredients must allow the category of the
base unless --force is given.

Exit codes:
  0 - Potion recorded
  1 - Combination rejected (duplicate, unknown id, incompatible)
  2 - Command error

Examples:
  apothecary potion create eau sauge ortie
  apothecary potion create quartz sauge belladone --preview`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPotionCreate(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "ignore ingredient allow-lists")
	cmd.Flags().BoolVar(&opts.Preview, "preview", false, "show the potion without recording it")
	return cmd
}

func runPotionCreate(opts *PotionCreateOptions, baseID, a, b string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	compat, err := s.engine.CheckCompatibility(baseID, a, b)
	if err != nil && !engine.IsUnknownReference(err) {
		return s.out.Fail(err)
	}
	// Unknown and identical ids are left to Create, which reports them in
	// its own order.
	if err == nil && a != b && !compat.OK() && !opts.Force {
		return s.out.FailWith(CodeIncompatible, ExitFailure,
			fmt.Sprintf("%s not allowed with %s bases (use --force to record anyway)",
				strings.Join(compat.Incompatible, ", "), compat.Category),
			compat, nil)
	}

	var p catalog.Potion
	if opts.Preview {
		p, err = s.engine.Preview(baseID, a, b)
	} else {
		p, err = s.engine.Create(baseID, a, b)
	}
	if err != nil {
		return s.out.Fail(err)
	}

	return s.out.Success(p, func(w io.Writer) {
		verb := "Created"
		if opts.Preview {
			verb = "Would create"
		}
		fmt.Fprintf(w, "%s %s: %s\n", verb, p.ID, p.Name)
	})
}

func newPotionDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a potion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			found, err := s.engine.Delete(args[0])
			if err != nil {
				return s.out.Fail(err)
			}
			if !found {
				return s.out.Fail(potionNotFound(args[0]))
			}
			return s.out.Success(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %s\n", args[0])
			})
		},
	}
}

func newPotionFavoriteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <id>",
		Short: "Toggle the favorite flag of a potion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			id := args[0]
			if _, ok := s.store.Document().Potions[id]; !ok {
				return s.out.Fail(potionNotFound(id))
			}
			favorite, err := s.engine.ToggleFavorite(id)
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Success(map[string]any{"id": id, "favorite": favorite}, func(w io.Writer) {
				if favorite {
					fmt.Fprintf(w, "%s added to favorites\n", id)
				} else {
					fmt.Fprintf(w, "%s removed from favorites\n", id)
				}
			})
		},
	}
}

func newPotionNotesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "notes <id> [text]",
		Short: "Replace the notes of a potion",
		Long:  "Replace the notes of a potion. Without text the notes are cleared.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			text := ""
			if len(args) == 2 {
				text = args[1]
			}
			found, err := s.engine.UpdateNotes(args[0], text)
			if err != nil {
				return s.out.Fail(err)
			}
			if !found {
				return s.out.Fail(potionNotFound(args[0]))
			}
			return s.out.Success(map[string]string{"id": args[0], "notes": text}, func(w io.Writer) {
				fmt.Fprintf(w, "Notes of %s updated\n", args[0])
			})
		},
	}
}

// PotionListOptions holds flags for potion list.
type PotionListOptions struct {
	*RootOptions
	Search    string
	Favorites bool
	Category  string
	Sort      string
}

func newPotionListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PotionListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List potions",
		Long: `List potions, optionally filtered and sorted.

Examples:
  apothecary potion list --favorites
  apothecary potion list --search soin --sort created`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPotionList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Search, "search", "", "case-insensitive substring of the name")
	cmd.Flags().BoolVar(&opts.Favorites, "favorites", false, "favorites only")
	cmd.Flags().StringVar(&opts.Category, "category", "", "tier (Minor, Major, Legendary, Mythical)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort key (name|category|created|base)")
	return cmd
}

func runPotionList(opts *PotionListOptions, cmd *cobra.Command) error {
	sortKey, err := query.ParsePotionSort(opts.Sort)
	if err != nil {
		return newFormatter(opts.RootOptions, cmd).FailWith(CodeCommand, ExitCommandError, err.Error(), nil, err)
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	doc := s.store.Document()
	potions := query.Potions(doc, potionFilter(opts), sortKey)
	return s.out.Success(potions, func(w io.Writer) {
		writePotionTable(w, doc, potions)
	})
}

func potionFilter(opts *PotionListOptions) query.PotionFilter {
	return query.PotionFilter{
		Search:        opts.Search,
		FavoritesOnly: opts.Favorites,
		Category:      catalog.NormalizeQuality(opts.Category),
	}
}

func writePotionTable(w io.Writer, doc *catalog.Document, potions []catalog.Potion) {
	if len(potions) == 0 {
		fmt.Fprintln(w, "No potions.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBASE\tCATEGORY\tFAVORITE")
	for _, p := range potions {
		fav := ""
		if p.IsFavorite {
			fav = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, baseLabel(doc, p.Base), p.Category, fav)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d potion(s)\n", len(potions))
}

// PotionDetail is a potion with its references resolved.
type PotionDetail struct {
	catalog.Potion
	BaseName        string `json:"base_name"`
	Ingredient1Name string `json:"ingredient1_name"`
	Ingredient2Name string `json:"ingredient2_name"`
	Fingerprint     string `json:"fingerprint"`
}

func newPotionShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a potion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			doc := s.store.Document()
			p, ok := doc.Potions[args[0]]
			if !ok {
				return s.out.Fail(potionNotFound(args[0]))
			}
			detail := PotionDetail{
				Potion:          p,
				BaseName:        baseLabel(doc, p.Base),
				Ingredient1Name: ingredientLabel(doc, p.Ingredient1),
				Ingredient2Name: ingredientLabel(doc, p.Ingredient2),
				Fingerprint:     engine.Fingerprint(p.Key()),
			}
			return s.out.Success(detail, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "ID:\t%s\n", p.ID)
				fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
				fmt.Fprintf(tw, "Base:\t%s\n", detail.BaseName)
				fmt.Fprintf(tw, "Ingredients:\t%s + %s\n", detail.Ingredient1Name, detail.Ingredient2Name)
				fmt.Fprintf(tw, "Category:\t%s\n", p.Category)
				fmt.Fprintf(tw, "Created:\t%s\n", p.CreatedAt.Format(time.DateTime))
				fmt.Fprintf(tw, "Favorite:\t%t\n", p.IsFavorite)
				fmt.Fprintf(tw, "Fingerprint:\t%s\n", detail.Fingerprint[:16])
				if p.Notes != "" {
					fmt.Fprintf(tw, "Notes:\t%s\n", p.Notes)
				}
				tw.Flush()
			})
		},
	}
}

func potionNotFound(id string) error {
	return &store.Error{Code: store.ErrCodeNotFound, Message: "potion not found", Subject: id}
}

// baseLabel returns the display name of a base, or the raw id when the base
// no longer exists.
func baseLabel(doc *catalog.Document, id string) string {
	if b, ok := doc.Bases[id]; ok {
		return b.Name
	}
	return id
}

func ingredientLabel(doc *catalog.Document, id string) string {
	if ing, ok := doc.Ingredients[id]; ok {
		return ing.Name
	}
	return id
}
