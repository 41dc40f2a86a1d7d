// Package config resolves the settings of the apothecary command line.
//
// Precedence, lowest first: built-in defaults, the YAML config file, a .env
// file, process environment variables, command-line flags (applied by the
// caller).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when no config file is named and it exists.
const DefaultConfigFile = "apothecary.yaml"

// DefaultEnvFile is read when no .env file is named and it exists.
const DefaultEnvFile = ".env"

// Environment variables overriding the config file.
const (
	EnvDataFile    = "APOTHECARY_DATA_FILE"
	EnvBackupDir   = "APOTHECARY_BACKUP_DIR"
	EnvExportDir   = "APOTHECARY_EXPORT_DIR"
	EnvSeedSamples = "APOTHECARY_SEED_SAMPLES"
)

// Config holds the resolved settings.
type Config struct {
	// DataFile is the catalog document.
	DataFile string `yaml:"data_file"`

	// BackupDir receives a copy of the previous document on every save.
	BackupDir string `yaml:"backup_dir"`

	// ExportDir is where exports without an explicit path are written.
	ExportDir string `yaml:"export_dir"`

	// SeedSamples adds the sample ingredients to a newly created catalog.
	SeedSamples bool `yaml:"seed_samples"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataFile:    "data/potions_data.json",
		BackupDir:   "backups",
		ExportDir:   ".",
		SeedSamples: true,
	}
}

// Options controls where Load looks for settings.
type Options struct {
	// ConfigFile is a YAML file to read. Empty means DefaultConfigFile if it
	// exists. A named file that does not exist is an error.
	ConfigFile string

	// EnvFile is a dotenv file to read. Empty means DefaultEnvFile if it
	// exists. A named file that does not exist is an error.
	EnvFile string

	// LookupEnv reads process environment variables. Defaults to
	// os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// Load resolves the settings according to opts.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	if err := cfg.readYAML(opts.ConfigFile); err != nil {
		return nil, err
	}

	dotenv, err := readDotenv(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	// Process variables take precedence over the .env file.
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataFile) == "" {
		return fmt.Errorf("config: data_file must not be empty")
	}
	return nil
}

func (c *Config) readYAML(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func readDotenv(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

func (c *Config) applyEnv(env func(string) (string, bool)) error {
	if v, ok := env(EnvDataFile); ok && v != "" {
		c.DataFile = v
	}
	if v, ok := env(EnvBackupDir); ok && v != "" {
		c.BackupDir = v
	}
	if v, ok := env(EnvExportDir); ok && v != "" {
		c.ExportDir = v
	}
	if v, ok := env(EnvSeedSamples); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvSeedSamples, err)
		}
		c.SeedSamples = b
	}
	return nil
}
