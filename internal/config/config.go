// Package config loads project configuration from shem.toml or shem.yaml,
// searched from the current directory upward to a project boundary.
// Grounded on the teacher's internal/config/config.go.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/shem-sql/shem/internal/shemerr"
)

// Config is the decoded project configuration.
type Config struct {
	Database  DatabaseConfig  `toml:"database" yaml:"database"`
	SchemaDir string          `toml:"schema_dir" yaml:"schema_dir"`
	Shadow    ShadowConfig    `toml:"shadow" yaml:"shadow"`
	Migration MigrationConfig `toml:"migration" yaml:"migration"`
}

type DatabaseConfig struct {
	URL string `toml:"url" yaml:"url"`
}

type ShadowConfig struct {
	// URL, when set, points at the Postgres server shadow databases are
	// created on; empty means reuse Database.URL's host/credentials with a
	// generated database name.
	URL string `toml:"url" yaml:"url"`
}

type MigrationConfig struct {
	Dir   string `toml:"dir" yaml:"dir"`
	Table string `toml:"table" yaml:"table"`
}

const defaultMigrationTable = "_shem_migrations"

// Load searches upward from dir for shem.toml or shem.yaml (TOML preferred
// when both exist), decodes it, then applies the DATABASE_URL environment
// override. dir defaults to the current working directory when empty.
func Load(dir string) (*Config, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, shemerr.New(shemerr.KindConnectionError, "determining working directory", err)
		}
		dir = wd
	}

	_ = godotenv.Load(filepath.Join(dir, ".env"))

	path, format, err := findConfigFile(dir)
	cfg := &Config{
		SchemaDir: "schema",
		Migration: MigrationConfig{Dir: "migrations", Table: defaultMigrationTable},
	}
	if err == nil {
		if decodeErr := decodeInto(cfg, path, format); decodeErr != nil {
			return nil, decodeErr
		}
	}
	if cfg.Migration.Table == "" {
		cfg.Migration.Table = defaultMigrationTable
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	return cfg, nil
}

type fileFormat int

const (
	formatTOML fileFormat = iota
	formatYAML
)

// findConfigFile walks dir upward looking for shem.toml or shem.yaml,
// stopping once it passes a directory containing .git or go.mod — the
// project boundary markers, matching the teacher's isProjectRoot.
func findConfigFile(dir string) (string, fileFormat, error) {
	for {
		for _, candidate := range []struct {
			name   string
			format fileFormat
		}{
			{"shem.toml", formatTOML},
			{"shem.yaml", formatYAML},
			{"shem.yml", formatYAML},
		} {
			path := filepath.Join(dir, candidate.name)
			if _, err := os.Stat(path); err == nil {
				return path, candidate.format, nil
			}
		}

		if isProjectRoot(dir) {
			return "", 0, fmt.Errorf("no shem.toml or shem.yaml found")
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", 0, fmt.Errorf("no shem.toml or shem.yaml found")
		}
		dir = parent
	}
}

func isProjectRoot(dir string) bool {
	for _, marker := range []string{".git", "go.mod"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

func decodeInto(cfg *Config, path string, format fileFormat) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	switch format {
	case formatTOML:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return nil
}
