package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shem-sql/shem/internal/emitter"
)

func TestWriteTimestampedFileCreatesDirAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")

	path, err := writeTimestampedFile(dir, "add_widgets", "CREATE TABLE widgets (id integer);\n")
	if err != nil {
		t.Fatalf("writeTimestampedFile: %v", err)
	}

	if !strings.HasSuffix(path, "_add_widgets.sql") {
		t.Errorf("expected filename to end with _add_widgets.sql, got %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if !strings.Contains(string(data), "CREATE TABLE widgets") {
		t.Errorf("expected written contents to contain the migration body, got %q", string(data))
	}
}

func TestWriteMigrationFileRendersEachStatementWithTrailingSemicolon(t *testing.T) {
	dir := t.TempDir()
	plan := emitter.Plan{Statements: []emitter.Statement{
		{SQL: "CREATE TABLE widgets (id integer)"},
		{SQL: "CREATE INDEX ON widgets (id);"},
	}}

	path, err := writeMigrationFile(dir, "mixed", plan)
	if err != nil {
		t.Fatalf("writeMigrationFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading migration file: %v", err)
	}
	body := string(data)
	if strings.Count(body, ";") != 2 {
		t.Errorf("expected exactly one trailing semicolon per statement, got %q", body)
	}
}
