package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/apothecary/internal/config"
	"github.com/roach88/apothecary/internal/engine"
	"github.com/roach88/apothecary/internal/store"
)

// session bundles what a catalog command needs.
type session struct {
	cfg    *config.Config
	store  *store.Store
	engine *engine.Engine
	out    *OutputFormatter
	logger *slog.Logger
	clock  engine.Clock
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// newLogger returns a text logger on w. Info and above by default, Debug with
// --verbose. In JSON mode only warnings are logged so scripts see a quiet
// stderr.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Format == "json" {
		level = slog.LevelWarn
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig resolves the configuration and applies the flag overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
		LookupEnv:  opts.LookupEnv,
	})
	if err != nil {
		return nil, err
	}
	if opts.DataFile != "" {
		cfg.DataFile = opts.DataFile
	}
	if opts.BackupDir != "" {
		cfg.BackupDir = opts.BackupDir
	}
	return cfg, nil
}

// openSession loads the configuration and the catalog.
//
// A catalog that cannot be read is replaced by a default document and
// reported as a warning. A newly created catalog is seeded with the sample
// ingredients when the configuration asks for it.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	out := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, out.FailWith(CodeCommand, ExitCommandError, "failed to load configuration", nil, err)
	}

	logger := newLogger(opts, out.GetErrWriter())

	storeOpts := []store.Option{
		store.WithBackupDir(cfg.BackupDir),
		store.WithLogger(logger),
	}
	if opts.Clock != nil {
		storeOpts = append(storeOpts, store.WithClock(opts.Clock.Now))
	}

	st, err := store.Open(cfg.DataFile, storeOpts...)
	if err != nil {
		if !store.IsLoadError(err) {
			return nil, out.FailWith(CodeCommand, ExitCommandError, "failed to open catalog", nil, err)
		}
		out.Warn("%v", err)
	}
	for _, notice := range st.Notices() {
		out.VerboseLog("migration: %s", notice)
	}

	if st.Fresh() && cfg.SeedSamples {
		added, err := st.SeedSamples()
		if err != nil {
			return nil, out.FailWith(CodeCommand, ExitCommandError, "failed to seed sample ingredients", nil, err)
		}
		logger.Debug("new catalog seeded", "path", cfg.DataFile, "ingredients", added)
	}

	var clock engine.Clock = engine.SystemClock{}
	if opts.Clock != nil {
		clock = opts.Clock
	}
	engOpts := []engine.Option{engine.WithLogger(logger), engine.WithClock(clock)}
	if opts.Rand != nil {
		engOpts = append(engOpts, engine.WithRand(opts.Rand))
	}

	return &session{
		cfg:    cfg,
		store:  st,
		engine: engine.New(st, engOpts...),
		out:    out,
		logger: logger,
		clock:  clock,
	}, nil
}
