package parser

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/shem-sql/shem/internal/schema"
)

// lowerAlterTable applies the subset of ALTER TABLE forms that appear in a
// declarative schema file rather than a migration: enabling or disabling
// row-level security, adding a column, and adding a constraint out-of-line
// from its CREATE TABLE so that two tables with mutual foreign keys can both
// be declared (§4.D.2's
// cycle-breaking case starts here, at authoring time, not only at emission
// time). Every other subcommand is a migration-only operation and is
// rejected as unsupported in this context.
func (p *Parser) lowerAlterTable(stmt *pg_query.AlterTableStmt, src string) error {
	tblSchema, name := relationName(stmt.Relation, p.defaultSchema)
	id := schema.Identity{Schema: tblSchema, Name: name, Kind: schema.KindTable}
	obj, ok := p.result.Get(id)
	if !ok {
		return unsupported(fmt.Sprintf("ALTER TABLE %s before its CREATE TABLE", id))
	}
	tbl := obj.(schema.Table)

	for _, cmdNode := range stmt.Cmds {
		cmd, ok := cmdNode.Node.(*pg_query.Node_AlterTableCmd)
		if !ok {
			continue
		}
		if err := applyAlterTableCmd(&tbl, cmd.AlterTableCmd, src); err != nil {
			return err
		}
	}

	p.result.Put(tbl)
	return nil
}

func applyAlterTableCmd(tbl *schema.Table, cmd *pg_query.AlterTableCmd, src string) error {
	switch cmd.Subtype {
	case pg_query.AlterTableType_AT_EnableRowSecurity:
		tbl.RLSEnabled = true
	case pg_query.AlterTableType_AT_DisableRowSecurity:
		tbl.RLSEnabled = false
	case pg_query.AlterTableType_AT_AddConstraint:
		c, ok := cmd.Def.Node.(*pg_query.Node_Constraint)
		if !ok {
			return unsupported("ALTER TABLE ADD CONSTRAINT with non-constraint definition")
		}
		applyTableConstraint(tbl, c.Constraint, constraintColumns(c.Constraint))
	case pg_query.AlterTableType_AT_AddColumn:
		cd, ok := cmd.Def.Node.(*pg_query.Node_ColumnDef)
		if !ok {
			return unsupported("ALTER TABLE ADD COLUMN with non-column definition")
		}
		col, constraints, err := lowerColumnDef(cd.ColumnDef, src)
		if err != nil {
			return err
		}
		tbl.Columns = append(tbl.Columns, col)
		for _, c := range constraints {
			applyTableConstraint(tbl, c, []string{col.Name})
		}
	default:
		return unsupported(fmt.Sprintf("ALTER TABLE subcommand %s outside a migration", cmd.Subtype))
	}
	return nil
}
