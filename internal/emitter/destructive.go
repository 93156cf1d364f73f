package emitter

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/shem-sql/shem/internal/sqlgrammar"
)

// annotateDestructive re-parses every statement's SQL text and flags it
// destructive if its AST contains a DROP statement of any object kind, a
// TRUNCATE, or an ALTER TABLE ... DROP COLUMN. Grounded on the teacher's
// validate_sql_safety.go detectDataLossOperations, reused as a scan over
// the plan's own rendered SQL instead of a hand-authored migration file.
func annotateDestructive(plan *Plan) error {
	for i := range plan.Statements {
		stmt := &plan.Statements[i]
		parsed, err := sqlgrammar.Parse(stmt.SQL)
		if err != nil {
			// Comments and a handful of DDL forms pg_query doesn't lower
			// (CREATE COLLATION, CREATE SERVER) fail to reparse here; the
			// render-time flag set in render_table.go/render_misc.go for
			// those already covers the only destructive case among them
			// (none — collations and servers carry no data).
			continue
		}
		for _, s := range parsed {
			destructive, reason := destructiveOperation(s.Node)
			if destructive {
				stmt.Destructive = true
				stmt.DestructiveReason = reason
			}
		}
	}
	return nil
}

func destructiveOperation(node *pg_query.Node) (bool, string) {
	switch n := node.Node.(type) {
	case *pg_query.Node_DropStmt:
		return true, fmt.Sprintf("drops %s", dropObjectName(n.DropStmt))
	case *pg_query.Node_TruncateStmt:
		return true, "removes every row from the truncated table"
	case *pg_query.Node_AlterTableStmt:
		return alterTableDestructive(n.AlterTableStmt)
	default:
		return false, ""
	}
}

func dropObjectName(d *pg_query.DropStmt) string {
	switch d.RemoveType {
	case pg_query.ObjectType_OBJECT_TABLE:
		return "a table and all of its rows"
	case pg_query.ObjectType_OBJECT_SCHEMA:
		return "a schema and everything in it"
	case pg_query.ObjectType_OBJECT_SEQUENCE:
		return "a sequence (dependent identity columns lose their generator)"
	default:
		return "an object"
	}
}

func alterTableDestructive(a *pg_query.AlterTableStmt) (bool, string) {
	for _, cmd := range a.Cmds {
		alterCmd, ok := cmd.Node.(*pg_query.Node_AlterTableCmd)
		if !ok {
			continue
		}
		if alterCmd.AlterTableCmd.Subtype == pg_query.AlterTableType_AT_DropColumn {
			return true, fmt.Sprintf("drops column %q and its data", alterCmd.AlterTableCmd.Name)
		}
	}
	return false, ""
}
