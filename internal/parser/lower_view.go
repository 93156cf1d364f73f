package parser

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/shem-sql/shem/internal/schema"
)

// lowerCreateView turns a ViewStmt into a schema.View. The query body is
// kept as normalized SQL text (via sqlgrammar.Normalize at the caller) so
// comparisons against an introspected pg_get_viewdef() rendering aren't
// sensitive to incidental reformatting.
func (p *Parser) lowerCreateView(stmt *pg_query.ViewStmt, queryText string) error {
	viewSchema, name := relationName(stmt.View, p.defaultSchema)
	v := schema.View{
		Schema:      viewSchema,
		Name:        name,
		Query:       queryText,
		CheckOption: viewCheckOption(stmt.WithCheckOption),
	}
	for _, opt := range stmt.Options {
		if d, ok := opt.Node.(*pg_query.Node_DefElem); ok && d.DefElem.Defname == "security_barrier" {
			v.SecurityBarrier = true
		}
	}
	p.result.Put(v)
	return nil
}

func viewCheckOption(opt pg_query.ViewCheckOption) schema.CheckOption {
	switch opt {
	case pg_query.ViewCheckOption_VIEW_CHECK_OPTION_LOCAL:
		return schema.CheckOptionLocal
	case pg_query.ViewCheckOption_VIEW_CHECK_OPTION_CASCADED:
		return schema.CheckOptionCascaded
	default:
		return schema.CheckOptionNone
	}
}

// lowerCreateMaterializedView turns a CreateTableAsStmt targeting a
// materialized view into a schema.MaterializedView.
func (p *Parser) lowerCreateMaterializedView(stmt *pg_query.CreateTableAsStmt, queryText string) error {
	if stmt.Into == nil || stmt.Into.Rel == nil {
		return unsupported("CREATE MATERIALIZED VIEW missing target relation")
	}
	mvSchema, name := relationName(stmt.Into.Rel, p.defaultSchema)
	mv := schema.MaterializedView{
		Schema:      mvSchema,
		Name:        name,
		Query:       queryText,
		PopulateNow: !stmt.Into.SkipData,
	}
	p.result.Put(mv)
	return nil
}
