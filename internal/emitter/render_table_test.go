package emitter

import (
	"strings"
	"testing"

	"github.com/shem-sql/shem/internal/schema"
)

func TestQuoteIdentLeavesSafeNamesBare(t *testing.T) {
	for _, name := range []string{"widgets", "customer_id", "_private", "a1"} {
		if got := quoteIdent(name); got != name {
			t.Errorf("quoteIdent(%q) = %q, want unchanged", name, got)
		}
	}
}

func TestQuoteIdentQuotesReservedWordsAndSpecialChars(t *testing.T) {
	cases := map[string]string{
		"order":     `"order"`,
		"select":    `"select"`,
		"User":      `"User"`,
		"weird col": `"weird col"`,
	}
	for in, want := range cases {
		if got := quoteIdent(in); got != want {
			t.Errorf("quoteIdent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQuoteIdentEscapesEmbeddedDoubleQuotes(t *testing.T) {
	if got := quoteIdent(`wei"rd`); got != `"wei""rd"` {
		t.Errorf(`quoteIdent with embedded quote = %q, want "wei""rd"`, got)
	}
}

func TestRenderCreateTableQuotesReservedWordTableName(t *testing.T) {
	tbl := schema.Table{
		Schema:  "public",
		Name:    "order",
		Columns: []schema.Column{{Name: "select", Type: "integer"}},
	}
	stmts := renderCreateTable(tbl)
	if len(stmts) == 0 {
		t.Fatal("expected at least one statement")
	}
	sql := stmts[0].SQL
	if !strings.Contains(sql, `"order"`) {
		t.Errorf("expected quoted table name in %q", sql)
	}
	if !strings.Contains(sql, `"select"`) {
		t.Errorf("expected quoted column name in %q", sql)
	}
}

func TestRenderPrimaryKeyDefaultsToPostgresNamingConvention(t *testing.T) {
	pk := schema.PrimaryKeyConstraint{Columns: []string{"id"}}
	got := renderPrimaryKey("widgets", pk)
	want := `CONSTRAINT widgets_pkey PRIMARY KEY (id)`
	if got != want {
		t.Errorf("renderPrimaryKey() = %q, want %q", got, want)
	}
}

func TestRenderPrimaryKeyKeepsExplicitName(t *testing.T) {
	pk := schema.PrimaryKeyConstraint{Name: "widgets_custom_pk", Columns: []string{"id"}}
	got := renderPrimaryKey("widgets", pk)
	if !strings.Contains(got, "CONSTRAINT widgets_custom_pk") {
		t.Errorf("expected explicit constraint name preserved, got %q", got)
	}
}
