package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReadsTOMLConfig(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "go.mod"), "module fixture\n")
	mustWrite(t, filepath.Join(dir, "shem.toml"), `
schema_dir = "db/schema"

[database]
url = "postgres://localhost/fixture"

[migration]
dir = "db/migrations"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SchemaDir != "db/schema" {
		t.Errorf("SchemaDir = %q, want db/schema", cfg.SchemaDir)
	}
	if cfg.Database.URL != "postgres://localhost/fixture" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Migration.Table != defaultMigrationTable {
		t.Errorf("Migration.Table = %q, want default", cfg.Migration.Table)
	}
}

func TestLoadReadsYAMLConfig(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "go.mod"), "module fixture\n")
	mustWrite(t, filepath.Join(dir, "shem.yaml"), "schema_dir: schema\ndatabase:\n  url: postgres://localhost/y\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/y" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
}

func TestLoadEnvironmentOverridesDatabaseURL(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "go.mod"), "module fixture\n")
	mustWrite(t, filepath.Join(dir, "shem.toml"), "[database]\nurl = \"postgres://from-file\"\n")

	t.Setenv("DATABASE_URL", "postgres://from-env")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.URL != "postgres://from-env" {
		t.Errorf("Database.URL = %q, want env override", cfg.Database.URL)
	}
}

func TestLoadWithoutConfigFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "go.mod"), "module fixture\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SchemaDir != "schema" {
		t.Errorf("SchemaDir = %q, want default", cfg.SchemaDir)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
}
