package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shem-sql/shem/internal/schema"
	"github.com/shem-sql/shem/internal/shemerr"
)

// LoadDir reads every .sql file under dir (recursively, in lexical path
// order so a numbered file-naming convention like 01_schemas.sql,
// 02_tables.sql controls declaration order) and lowers them into one Schema
// Model, accumulated across files so cross-file references resolve once
// every file has been read.
func LoadDir(dir, defaultSchema string) (*schema.Schema, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".sql") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, shemerr.New(shemerr.KindConnectionError, "walking schema directory "+dir, err)
	}
	sort.Strings(paths)

	p := New(defaultSchema)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, shemerr.New(shemerr.KindConnectionError, "reading schema file "+path, err)
		}
		if err := p.Parse(string(data)); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return p.Result(), nil
}
