package sqlgrammar

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// SplitStatements breaks a migration file into individual statement strings,
// respecting quoted strings, dollar-quoted function bodies, and comments the
// way the grammar's own scanner does — a naive split on ";" corrupts any
// migration containing a PL/pgSQL function body.
func SplitStatements(sql string) ([]string, error) {
	result, err := pg_query.SplitWithScanner(sql)
	if err != nil {
		return nil, fmt.Errorf("splitting sql into statements: %w", err)
	}
	return result, nil
}
