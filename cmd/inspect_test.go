package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInspectCommandMetadata(t *testing.T) {
	if inspectCmd == nil {
		t.Fatal("inspectCmd should not be nil")
	}
	if inspectCmd.Use != "inspect [file]" {
		t.Errorf("expected Use to be %q, got %q", "inspect [file]", inspectCmd.Use)
	}
}

func TestRunInspectPrintsParsedObjects(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.sql")
	sql := "CREATE TABLE widgets (id integer PRIMARY KEY, name text NOT NULL);"
	if err := os.WriteFile(path, []byte(sql), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if err := runInspect(inspectCmd, []string{path}); err != nil {
		t.Fatalf("runInspect: %v", err)
	}
}
