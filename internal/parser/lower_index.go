package parser

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/shem-sql/shem/internal/schema"
)

// lowerCreateIndex turns an IndexStmt into a schema.Index. Grounded on the
// teacher's commented-out index handling in internal/schema/parser.go,
// filled in to cover key expressions, INCLUDE columns, and partial
// predicates.
func (p *Parser) lowerCreateIndex(stmt *pg_query.IndexStmt, src string) error {
	idxSchema, table := relationName(stmt.Relation, p.defaultSchema)
	idx := schema.Index{
		Schema: idxSchema,
		Name:   stmt.Idxname,
		Table:  table,
		Method: stmt.AccessMethod,
		Unique: stmt.Unique,
	}
	if idx.Method == "" {
		idx.Method = "btree"
	}

	for _, p := range stmt.IndexParams {
		ip, ok := p.Node.(*pg_query.Node_IndexElem)
		if !ok {
			continue
		}
		key := schema.IndexKey{
			Expression: ip.IndexElem.Name,
			Collation:  collationName(ip.IndexElem.Collation),
			Opclass:    opclassName(ip.IndexElem.Opclass),
			Desc:       ip.IndexElem.Ordering == pg_query.SortByDir_SORTBY_DESC,
			NullsFirst: ip.IndexElem.NullsOrdering == pg_query.SortByNulls_SORTBY_NULLS_FIRST,
		}
		if key.Expression == "" && ip.IndexElem.Expr != nil {
			key.Expression = formatExpr(ip.IndexElem.Expr, src)
		}
		idx.Keys = append(idx.Keys, key)
	}

	for _, inc := range stmt.IndexIncludingParams {
		if ip, ok := inc.Node.(*pg_query.Node_IndexElem); ok {
			idx.Include = append(idx.Include, ip.IndexElem.Name)
		}
	}

	if stmt.WhereClause != nil {
		idx.Predicate = formatExpr(stmt.WhereClause, src)
	}

	p.result.Put(idx)
	return nil
}

func collationName(nodes []*pg_query.Node) string {
	parts := constraintKeys(nodes)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func opclassName(nodes []*pg_query.Node) string {
	return collationName(nodes)
}
