package introspector

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/shem-sql/shem/internal/schema"
	"github.com/shem-sql/shem/internal/shemerr"
)

func (in *Introspector) introspectViews(ctx context.Context, tx *sql.Tx, schemas []string) ([]schema.Object, error) {
	filter, args := qualifiedSchemaFilter("n.nspname", schemas)
	rows, err := tx.QueryContext(ctx, `
		SELECT n.nspname, c.relname, pg_get_viewdef(c.oid, true), c.reloptions,
		       obj_description(c.oid, 'pg_class')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind = 'v' AND `+filter+` AND `+extensionOwnedFilter("c.oid")+`
		ORDER BY n.nspname, c.relname`, args...)
	if err != nil {
		return nil, shemerr.Introspectionf("listing views", err)
	}
	defer rows.Close()

	var objs []schema.Object
	for rows.Next() {
		var v schema.View
		var options pq.StringArray
		var comment sql.NullString
		if err := rows.Scan(&v.Schema, &v.Name, &v.Query, &options, &comment); err != nil {
			return nil, shemerr.Introspectionf("scanning view row", err)
		}
		v.CheckOption, v.SecurityBarrier = parseViewOptions(options)
		v.Comment = comment.String
		objs = append(objs, v)
	}
	return objs, rows.Err()
}

func (in *Introspector) introspectMaterializedViews(ctx context.Context, tx *sql.Tx, schemas []string) ([]schema.Object, error) {
	filter, args := qualifiedSchemaFilter("n.nspname", schemas)
	rows, err := tx.QueryContext(ctx, `
		SELECT n.nspname, c.relname, pg_get_viewdef(c.oid, true), c.relispopulated,
		       obj_description(c.oid, 'pg_class')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind = 'm' AND `+filter+` AND `+extensionOwnedFilter("c.oid")+`
		ORDER BY n.nspname, c.relname`, args...)
	if err != nil {
		return nil, shemerr.Introspectionf("listing materialized views", err)
	}
	defer rows.Close()

	type mvRow struct {
		schema, name, query string
		populated           bool
		comment             sql.NullString
	}
	var mvRows []mvRow
	for rows.Next() {
		var r mvRow
		if err := rows.Scan(&r.schema, &r.name, &r.query, &r.populated, &r.comment); err != nil {
			return nil, shemerr.Introspectionf("scanning materialized view row", err)
		}
		mvRows = append(mvRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	objs := make([]schema.Object, 0, len(mvRows))
	for _, r := range mvRows {
		mv := schema.MaterializedView{Schema: r.schema, Name: r.name, Query: r.query, PopulateNow: r.populated}
		mv.Comment = r.comment.String
		idxObjs, err := in.introspectIndexesForRelation(ctx, tx, r.schema, r.name)
		if err != nil {
			return nil, err
		}
		mv.Indexes = idxObjs
		objs = append(objs, mv)
	}
	return objs, nil
}

// introspectIndexesForRelation is used for materialized-view indexes, which
// the Schema Model embeds on MaterializedView.Indexes rather than as
// standalone Index objects, since a materialized view's indexes only ever
// make sense alongside it.
func (in *Introspector) introspectIndexesForRelation(ctx context.Context, tx *sql.Tx, schema_, relName string) ([]schema.Index, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT ic.relname, am.amname, ix.indisunique, pg_get_expr(ix.indpred, ix.indrelid)
		FROM pg_index ix
		JOIN pg_class ic ON ic.oid = ix.indexrelid
		JOIN pg_class tc ON tc.oid = ix.indrelid
		JOIN pg_namespace n ON n.oid = tc.relnamespace
		JOIN pg_am am ON am.oid = ic.relam
		WHERE n.nspname = $1 AND tc.relname = $2
		ORDER BY ic.relname`, schema_, relName)
	if err != nil {
		return nil, shemerr.Introspectionf("listing indexes for %s.%s", err, schema_, relName)
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var idx schema.Index
		var predicate sql.NullString
		if err := rows.Scan(&idx.Name, &idx.Method, &idx.Unique, &predicate); err != nil {
			return nil, shemerr.Introspectionf("scanning index row", err)
		}
		idx.Schema = schema_
		idx.Table = relName
		idx.Predicate = predicate.String
		keys, err := in.introspectIndexKeys(ctx, tx, schema_, idx.Name)
		if err != nil {
			return nil, err
		}
		idx.Keys = keys
		indexes = append(indexes, idx)
	}
	return indexes, rows.Err()
}

// parseViewOptions reads the "key=value" entries pg_class.reloptions stores
// for views (check_option, security_barrier) into the Schema Model's typed
// fields.
func parseViewOptions(opts pq.StringArray) (schema.CheckOption, bool) {
	checkOption := schema.CheckOptionNone
	securityBarrier := false
	for _, o := range opts {
		switch {
		case hasOptionValue(o, "check_option", "local"):
			checkOption = schema.CheckOptionLocal
		case hasOptionValue(o, "check_option", "cascaded"):
			checkOption = schema.CheckOptionCascaded
		case hasOptionValue(o, "security_barrier", "true"):
			securityBarrier = true
		}
	}
	return checkOption, securityBarrier
}

func hasOptionValue(opt, key, value string) bool {
	return opt == key+"="+value
}
