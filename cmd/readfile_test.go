package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadFileOrStdinReadsNamedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.sql")
	if err := os.WriteFile(path, []byte("CREATE TABLE widgets (id integer);"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	got, err := readFileOrStdin(path)
	if err != nil {
		t.Fatalf("readFileOrStdin: %v", err)
	}
	if got != "CREATE TABLE widgets (id integer);" {
		t.Errorf("unexpected contents: %q", got)
	}
}

func TestReadFileOrStdinReportsMissingFile(t *testing.T) {
	if _, err := readFileOrStdin(filepath.Join(t.TempDir(), "missing.sql")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
