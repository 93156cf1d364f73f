package cmd

import (
	"os"
	"path/filepath"

	"github.com/shem-sql/shem/internal/migrate"
	"github.com/shem-sql/shem/internal/shemerr"
)

// writeTimestampedFile writes body to dir/<UTC timestamp>_<name>.sql,
// creating dir if it does not exist yet.
func writeTimestampedFile(dir, name, body string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", shemerr.New(shemerr.KindConnectionError, "creating migrations directory", err)
	}
	path := filepath.Join(dir, migrate.FileName(timestampVersion(), name))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", shemerr.New(shemerr.KindConnectionError, "writing migration file", err)
	}
	return path, nil
}
