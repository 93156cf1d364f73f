package parser

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/shem-sql/shem/internal/schema"
	"github.com/shem-sql/shem/internal/shemerr"
)

// lowerCreateTable turns a CreateStmt into a schema.Table, distributing
// column constraints onto the Column and hoisting table-level constraints
// into the matching slice. Grounded on the teacher's parseCreateTable /
// parseColumnDef / parseColumnConstraint.
func (p *Parser) lowerCreateTable(stmt *pg_query.CreateStmt, src string) error {
	tableSchema, name := relationName(stmt.Relation, p.defaultSchema)
	tbl := schema.Table{Schema: tableSchema, Name: name}

	for _, rv := range stmt.Inherits {
		if r, ok := rv.Node.(*pg_query.Node_RangeVar); ok {
			tbl.Inherits = append(tbl.Inherits, qualifiedRelationName(r.RangeVar, p.defaultSchema))
		}
	}

	for _, elt := range stmt.TableElts {
		switch e := elt.Node.(type) {
		case *pg_query.Node_ColumnDef:
			col, constraints, err := lowerColumnDef(e.ColumnDef, src)
			if err != nil {
				return err
			}
			tbl.Columns = append(tbl.Columns, col)
			for _, c := range constraints {
				applyTableConstraint(&tbl, c, []string{col.Name})
			}
		case *pg_query.Node_Constraint:
			applyTableConstraint(&tbl, e.Constraint, constraintColumns(e.Constraint))
		}
	}

	p.result.Put(tbl)
	return nil
}

// lowerColumnDef extracts a Column plus any constraints attached inline
// (NOT NULL, DEFAULT, PRIMARY KEY, UNIQUE, CHECK, REFERENCES, GENERATED).
func lowerColumnDef(cd *pg_query.ColumnDef, src string) (schema.Column, []*pg_query.Constraint, error) {
	col := schema.Column{
		Name:     cd.Colname,
		Type:     formatTypeName(cd.TypeName),
		Nullable: true,
	}

	var constraints []*pg_query.Constraint
	for _, cn := range cd.Constraints {
		c, ok := cn.Node.(*pg_query.Node_Constraint)
		if !ok {
			continue
		}
		constraint := c.Constraint
		switch constraint.Contype {
		case pg_query.ConstrType_CONSTR_NOTNULL:
			col.Nullable = false
		case pg_query.ConstrType_CONSTR_NULL:
			col.Nullable = true
		case pg_query.ConstrType_CONSTR_DEFAULT:
			col.Default = formatExpr(constraint.RawExpr, src)
		case pg_query.ConstrType_CONSTR_IDENTITY:
			if constraint.GeneratedWhen == "a" {
				col.Identity = schema.IdentityAlways
			} else {
				col.Identity = schema.IdentityByDefault
			}
		case pg_query.ConstrType_CONSTR_GENERATED:
			col.Generated = formatExpr(constraint.RawExpr, src)
		default:
			constraints = append(constraints, constraint)
		}
	}

	return col, constraints, nil
}

// applyTableConstraint folds one table- or column-level constraint into
// the owning Table's constraint slices.
func applyTableConstraint(tbl *schema.Table, c *pg_query.Constraint, cols []string) {
	switch c.Contype {
	case pg_query.ConstrType_CONSTR_PRIMARY:
		keys := constraintColumns(c)
		if len(keys) == 0 {
			keys = cols
		}
		tbl.PrimaryKey = &schema.PrimaryKeyConstraint{Name: c.Conname, Columns: keys}
	case pg_query.ConstrType_CONSTR_UNIQUE:
		keys := constraintColumns(c)
		if len(keys) == 0 {
			keys = cols
		}
		tbl.Unique = append(tbl.Unique, schema.UniqueConstraint{Name: c.Conname, Columns: keys})
	case pg_query.ConstrType_CONSTR_CHECK:
		tbl.Checks = append(tbl.Checks, schema.CheckConstraint{Name: c.Conname, Expression: exprText(c.RawExpr)})
	case pg_query.ConstrType_CONSTR_FOREIGN:
		refSchema, refTable := "", ""
		if c.Pktable != nil {
			refSchema, refTable = relationName(c.Pktable, tbl.Schema)
		}
		keys := cols
		if fk := constraintKeys(c.FkAttrs); len(fk) > 0 {
			keys = fk
		}
		tbl.ForeignKeys = append(tbl.ForeignKeys, schema.ForeignKeyConstraint{
			Name:              c.Conname,
			Columns:           keys,
			ReferencedSchema:  refSchema,
			ReferencedTable:   refTable,
			ReferencedColumns: constraintKeys(c.PkAttrs),
			OnDelete:          foreignKeyAction(c.FkDelAction),
			OnUpdate:          foreignKeyAction(c.FkUpdAction),
			Deferrable:        c.Deferrable,
			InitiallyDeferred: c.Initdeferred,
		})
	case pg_query.ConstrType_CONSTR_EXCLUSION:
		tbl.Exclusions = append(tbl.Exclusions, schema.ExclusionConstraint{Name: c.Conname})
	}
}

// exprText is a package-local alias kept distinct from formatExpr's
// signature so constraint lowering reads naturally; CHECK expressions in
// table constraints don't have ready access to the enclosing statement's
// source slice at this call site, so opaque raw-text recovery is skipped in
// favor of the structured formatter, which covers every CHECK shape the
// declarative format is expected to use.
func exprText(node *pg_query.Node) string {
	return formatExpr(node, "")
}

func constraintColumns(c *pg_query.Constraint) []string {
	return constraintKeys(c.Keys)
}

func constraintKeys(nodes []*pg_query.Node) []string {
	var out []string
	for _, n := range nodes {
		if s, ok := n.Node.(*pg_query.Node_String_); ok {
			out = append(out, s.String_.Sval)
		}
	}
	return out
}

func foreignKeyAction(action string) string {
	switch action {
	case "c":
		return "CASCADE"
	case "r":
		return "RESTRICT"
	case "n":
		return "SET NULL"
	case "d":
		return "SET DEFAULT"
	default:
		return "NO ACTION"
	}
}

func relationName(rv *pg_query.RangeVar, defaultSchema string) (string, string) {
	if rv == nil {
		return defaultSchema, ""
	}
	s := rv.Schemaname
	if s == "" {
		s = defaultSchema
	}
	return s, rv.Relname
}

func qualifiedRelationName(rv *pg_query.RangeVar, defaultSchema string) string {
	s, n := relationName(rv, defaultSchema)
	return s + "." + n
}

// unsupported builds the UnsupportedStatement error returned for statement
// kinds and subcommands this parser does not lower.
func unsupported(what string) error {
	return shemerr.UnsupportedStatementf("unsupported statement: %s", what)
}
