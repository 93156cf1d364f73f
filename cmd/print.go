package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/shem-sql/shem/internal/emitter"
)

// printPlan renders a Plan the way shem diff --dry-run shows it: one line
// per statement in plan order, each prefixed with its lock mode in
// brackets; destructive statements are marked "! " and printed in red, and
// a count of them follows the list.
func printPlan(plan emitter.Plan, w io.Writer) {
	for _, stmt := range plan.Statements {
		marker := "  "
		printer := fmt.Fprintf
		if stmt.Destructive {
			marker = "! "
			printer = color.New(color.FgRed).Fprintf
		}
		printer(w, "%s[%s] %s\n", marker, stmt.LockMode, stmt.SQL)
	}
	if plan.HasDestructive() {
		_, _ = color.New(color.FgYellow).Fprintf(w, "\n%d destructive statement(s) — pass --force to apply\n", countDestructive(plan))
	}
}

func countDestructive(plan emitter.Plan) int {
	n := 0
	for _, s := range plan.Statements {
		if s.Destructive {
			n++
		}
	}
	return n
}
