package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shem-sql/shem/internal/emitter"
)

func TestPrintPlanMarksDestructiveStatements(t *testing.T) {
	plan := emitter.Plan{Statements: []emitter.Statement{
		{SQL: "CREATE TABLE widgets (id integer);"},
		{SQL: "DROP TABLE gadgets;", Destructive: true, DestructiveReason: "drops a table"},
	}}

	var buf bytes.Buffer
	printPlan(plan, &buf)

	out := buf.String()
	if !strings.Contains(out, "CREATE TABLE widgets") {
		t.Errorf("expected create statement in output, got %q", out)
	}
	if !strings.Contains(out, "DROP TABLE gadgets") {
		t.Errorf("expected drop statement in output, got %q", out)
	}
	if !strings.Contains(out, "1 destructive statement") {
		t.Errorf("expected a destructive-count summary, got %q", out)
	}
}

func TestCountDestructive(t *testing.T) {
	plan := emitter.Plan{Statements: []emitter.Statement{
		{SQL: "a", Destructive: true},
		{SQL: "b"},
		{SQL: "c", Destructive: true},
	}}
	if got := countDestructive(plan); got != 2 {
		t.Errorf("countDestructive = %d, want 2", got)
	}
}
