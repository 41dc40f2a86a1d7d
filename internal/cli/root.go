package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/apothecary/internal/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	EnvFile    string
	DataFile   string
	BackupDir  string

	// LookupEnv overrides os.LookupEnv when resolving the configuration.
	LookupEnv func(key string) (string, bool)

	// Clock and Rand override the engine's wall clock and random source.
	Clock engine.Clock
	Rand  engine.Rand
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the apothecary CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apothecary",
		Short: "Apothecary - potion catalog",
		Long: `Record potions brewed from a base and two ingredients.

The catalog is a single JSON document. Every change is saved immediately and
the previous version is kept in the backup directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigFile, "config", "", "YAML config file (default apothecary.yaml if present)")
	flags.StringVar(&opts.EnvFile, "env-file", "", "dotenv file (default .env if present)")
	flags.StringVar(&opts.DataFile, "data", "", "catalog document (overrides config)")
	flags.StringVar(&opts.BackupDir, "backup-dir", "", "backup directory (overrides config)")

	cmd.AddCommand(NewPotionCommand(opts))
	cmd.AddCommand(NewIngredientCommand(opts))
	cmd.AddCommand(NewBaseCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewSuggestCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Execute runs the root command with args and returns the process exit code.
// Errors already written through an OutputFormatter are not printed again.
func Execute(args []string, stdout, stderr io.Writer) int {
	return execute(newRootCommand(&RootOptions{}), args, stdout, stderr)
}

func execute(cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || !exitErr.reported {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return GetExitCode(err)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
