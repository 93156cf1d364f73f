package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shem-sql/shem/internal/schema"
)

func TestLoadDirAccumulatesAcrossFilesInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "01_tables.sql", "CREATE TABLE public.users (id integer NOT NULL, name text);")
	writeFile(t, dir, "02_indexes.sql", "CREATE INDEX users_name_idx ON public.users (name);")

	result, err := LoadDir(dir, "public")
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(result.OfKind(schema.KindIndex)) != 1 {
		t.Fatalf("expected the cross-file index reference to resolve, got %+v", result.Objects)
	}
}

func TestLoadDirReturnsParseErrorWithFileContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.sql", "this is not valid SQL;;;")

	_, err := LoadDir(dir, "public")
	if err == nil {
		t.Fatal("expected a parse error")
	}
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}
