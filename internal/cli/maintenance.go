package cli

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/apothecary/internal/catalog"
	"github.com/roach88/apothecary/internal/engine"
)

// NewBaseCommand creates the base command group. Bases are fixed; they can
// only be listed.
func NewBaseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "base",
		Short: "Inspect bases",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List bases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			bases := s.store.Document().BasesSorted()
			return s.out.Success(bases, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tRARITY")
				for _, b := range bases {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, b.Name, b.PotionType, b.Rarity)
				}
				tw.Flush()
			})
		},
	})
	return cmd
}

// CheckResult is the outcome of an integrity check.
type CheckResult struct {
	Clean  bool            `json:"clean"`
	Issues []catalog.Issue `json:"issues"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report catalog integrity issues",
		Long: `Report records that are inconsistent: ingredients stored under the wrong
key or missing required fields, and potions naming a missing base or
ingredient. Nothing is repaired.

Exit codes:
  0 - No issues
  1 - Issues found
  2 - Command error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			issues := s.store.CheckIntegrity()
			if len(issues) > 0 {
				if rootOpts.Format != "json" {
					for _, issue := range issues {
						fmt.Fprintln(s.out.Writer, issue)
					}
				}
				return s.out.FailWith(CodeIntegrity, ExitFailure,
					fmt.Sprintf("%d integrity issue(s)", len(issues)),
					CheckResult{Issues: issues}, nil)
			}
			return s.out.Success(CheckResult{Clean: true, Issues: []catalog.Issue{}}, func(w io.Writer) {
				fmt.Fprintln(w, "✓ Catalog is consistent")
			})
		},
	}
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			doc := s.store.Document()
			st := s.engine.Statistics()
			return s.out.Success(st, func(w io.Writer) {
				writeStatistics(w, doc, st)
			})
		},
	}
}

func writeStatistics(w io.Writer, doc *catalog.Document, st engine.Statistics) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Potions:\t%d\n", st.TotalPotions)
	fmt.Fprintf(tw, "Favorites:\t%d\n", st.Favorites)
	fmt.Fprintf(tw, "Ingredients:\t%d (%d positive, %d negative)\n", st.TotalIngredients, st.Positive, st.Negative)
	fmt.Fprintf(tw, "Bases:\t%d\n", st.TotalBases)
	if st.MostUsed != "" {
		fmt.Fprintf(tw, "Most used:\t%s (%d)\n", ingredientLabel(doc, st.MostUsed), st.MostUsedCount)
	}
	for _, q := range catalog.Qualities {
		if n := st.ByCategory[q]; n > 0 {
			fmt.Fprintf(tw, "  %s:\t%d\n", q, n)
		}
	}
	bases := make([]string, 0, len(st.ByBase))
	for id := range st.ByBase {
		bases = append(bases, id)
	}
	slices.Sort(bases)
	for _, id := range bases {
		fmt.Fprintf(tw, "  %s:\t%d\n", baseLabel(doc, id), st.ByBase[id])
	}
	tw.Flush()
}

// NewSuggestCommand creates the suggest command.
func NewSuggestCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Suggest an untried combination",
		Long: `Draw a random combination of a base with one positive and one negative
ingredient that both allow it and that has not been recorded yet.

Exit codes:
  0 - Suggestion printed
  1 - Every combination has been tried
  2 - Command error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			sug, err := s.engine.Suggest()
			if err != nil {
				return s.out.Fail(err)
			}
			doc := s.store.Document()
			return s.out.Success(sug, func(w io.Writer) {
				fmt.Fprintf(w, "Try %s + %s + %s\n",
					baseLabel(doc, sug.Base), ingredientLabel(doc, sug.Positive), ingredientLabel(doc, sug.Negative))
				fmt.Fprintf(w, "  apothecary potion create %s %s %s\n", sug.Base, sug.Positive, sug.Negative)
			})
		},
	}
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the sample ingredients",
		Long:  "Add the built-in sample ingredients. Ingredients that already exist are left unchanged.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			added, err := s.store.SeedSamples()
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Success(map[string]int{"added": added}, func(w io.Writer) {
				fmt.Fprintf(w, "Added %d sample ingredient(s)\n", added)
			})
		},
	}
}
