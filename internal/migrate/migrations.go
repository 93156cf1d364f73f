package migrate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/shem-sql/shem/internal/shemerr"
	"github.com/shem-sql/shem/internal/sqlgrammar"
)

// versionNamePattern matches the migrations/<UTC-timestamp>_<name>.sql file
// layout: a 14-digit YYYYMMDDHHMMSS version, an underscore, then the name.
var versionNamePattern = regexp.MustCompile(`^(\d{14})_(.+)\.sql$`)

// Migration is one parsed migration file: a version (the timestamp prefix,
// which doubles as its primary key in the history table), a human-readable
// name, the statements to execute in order, and a checksum of the file's
// raw contents taken at discovery time.
type Migration struct {
	Version    string
	Name       string
	Path       string
	Statements []string
	Checksum   string
}

// Discover reads every migration file in dir, parses its version/name out of
// the filename, splits its contents into statements using the embedded
// grammar (never a regex, so dollar-quoted function bodies survive), and
// returns them sorted by version ascending. Grounded on spec's migration
// file layout; splitting is sqlgrammar.SplitStatements, the same boundary
// the declarative parser uses for multi-statement SQL.
func Discover(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, shemerr.New(shemerr.KindConnectionError, fmt.Sprintf("reading migrations directory %s", dir), err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := versionNamePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, shemerr.New(shemerr.KindConnectionError, fmt.Sprintf("reading migration file %s", path), err)
		}

		stmts, err := sqlgrammar.SplitStatements(string(data))
		if err != nil {
			return nil, shemerr.Parsef("splitting migration file %s", err, path)
		}

		migrations = append(migrations, Migration{
			Version:    m[1],
			Name:       m[2],
			Path:       path,
			Statements: stmts,
			Checksum:   Checksum(data),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// Checksum returns the stable content hash stored alongside a migration's
// history row, matching the internal/schema hashing idiom used everywhere
// else in this repository (sha256 over stable bytes, hex-encoded).
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FileName returns the canonical migrations/<version>_<name>.sql filename
// for a migration, the inverse of versionNamePattern.
func FileName(version, name string) string {
	return fmt.Sprintf("%s_%s.sql", version, name)
}

// Pending returns the migrations from all whose version is not already
// recorded in history, in version order — exactly the set migrate applies.
func Pending(all []Migration, history map[string]string) []Migration {
	var pending []Migration
	for _, m := range all {
		if _, ok := history[m.Version]; !ok {
			pending = append(pending, m)
		}
	}
	return pending
}
