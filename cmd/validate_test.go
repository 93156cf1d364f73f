package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateCommandMetadata(t *testing.T) {
	if validateCmd == nil {
		t.Fatal("validateCmd should not be nil")
	}
	if validateCmd.Use != "validate [file]" {
		t.Errorf("expected Use to be %q, got %q", "validate [file]", validateCmd.Use)
	}
}

func TestRunValidateAcceptsWellFormedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.sql")
	sql := "CREATE TABLE widgets (id integer PRIMARY KEY, name text NOT NULL);"
	if err := os.WriteFile(path, []byte(sql), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if err := runValidate(validateCmd, []string{path}); err != nil {
		t.Fatalf("runValidate: %v", err)
	}
}

func TestRunValidateRejectsUnsupportedStatement(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.sql")
	if err := os.WriteFile(path, []byte("VACUUM widgets;"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if err := runValidate(validateCmd, []string{path}); err == nil {
		t.Fatal("expected an error for an unsupported statement")
	}
}
