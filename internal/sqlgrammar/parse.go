// Package sqlgrammar is the thin boundary between this repository and the
// embedded PostgreSQL grammar: it is the only package that calls pg_query_go's
// parse, fingerprint and normalize functions. The parser and emitter packages
// import pg_query_go too, for its AST node types.
package sqlgrammar

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Statement pairs a parsed AST root with the exact source text it was
// parsed from, so callers that need to report errors or render comments can
// point back at the original SQL rather than a reformatted version.
type Statement struct {
	Node *pg_query.Node
	Text string
}

// Parse lowers a single- or multi-statement SQL string into its AST
// statements. Parse errors surface the embedded grammar's own message,
// which already includes a line/column position.
func Parse(sql string) ([]Statement, error) {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("parsing sql: %w", err)
	}

	stmts := make([]Statement, 0, len(result.Stmts))
	for _, raw := range result.Stmts {
		text := sliceStatement(sql, raw)
		stmts = append(stmts, Statement{Node: raw.Stmt, Text: text})
	}
	return stmts, nil
}

// sliceStatement extracts the exact source substring a RawStmt covers using
// its reported byte location and length, then trims surrounding whitespace;
// no semicolon is stripped here. A length of 0 runs to the end of sql.
func sliceStatement(sql string, raw *pg_query.RawStmt) string {
	start := int(raw.StmtLocation)
	length := int(raw.StmtLen)
	if start < 0 || start > len(sql) {
		return strings.TrimSpace(sql)
	}
	end := start + length
	if length == 0 || end > len(sql) {
		end = len(sql)
	}
	return strings.TrimSpace(sql[start:end])
}

// Fingerprint returns a stable identifier for a statement's shape
// independent of literal values.
func Fingerprint(sql string) (string, error) {
	fp, err := pg_query.Fingerprint(sql)
	if err != nil {
		return "", fmt.Errorf("fingerprinting sql: %w", err)
	}
	return fp, nil
}

// Normalize replaces literal constants in sql with parameter placeholders,
// used when comparing two renderings of the same expression for
// equivalence without being sensitive to the exact literals chosen.
func Normalize(sql string) (string, error) {
	out, err := pg_query.Normalize(sql)
	if err != nil {
		return "", fmt.Errorf("normalizing sql: %w", err)
	}
	return out, nil
}
