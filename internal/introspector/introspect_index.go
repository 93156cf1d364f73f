package introspector

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/shem-sql/shem/internal/schema"
	"github.com/shem-sql/shem/internal/shemerr"
)

// introspectIndexes reads every non-constraint index on an ordinary or
// partitioned table. Indexes backing a primary key or unique constraint are
// skipped since Table.PrimaryKey and Table.Unique already carry them, and
// materialized-view indexes are skipped since introspectMaterializedViews
// embeds them on MaterializedView.Indexes instead; either would otherwise
// double-count one physical index under two identities.
func (in *Introspector) introspectIndexes(ctx context.Context, tx *sql.Tx, schemas []string) ([]schema.Object, error) {
	filter, args := qualifiedSchemaFilter("n.nspname", schemas)
	rows, err := tx.QueryContext(ctx, `
		SELECT n.nspname, ic.relname, tc.relname, am.amname, ix.indisunique,
		       pg_get_expr(ix.indpred, ix.indrelid),
		       obj_description(ic.oid, 'pg_class')
		FROM pg_index ix
		JOIN pg_class ic ON ic.oid = ix.indexrelid
		JOIN pg_class tc ON tc.oid = ix.indrelid
		JOIN pg_namespace n ON n.oid = ic.relnamespace
		JOIN pg_am am ON am.oid = ic.relam
		WHERE `+filter+`
		  AND tc.relkind IN ('r', 'p')
		  AND NOT EXISTS (SELECT 1 FROM pg_constraint con WHERE con.conindid = ix.indexrelid)
		  AND `+extensionOwnedFilter("ic.oid")+`
		ORDER BY n.nspname, ic.relname`, args...)
	if err != nil {
		return nil, shemerr.Introspectionf("listing indexes", err)
	}
	defer rows.Close()

	type idxRow struct {
		oid       int64
		schema    string
		name      string
		table     string
		method    string
		unique    bool
		predicate sql.NullString
		comment   sql.NullString
	}
	var idxRows []idxRow
	for rows.Next() {
		var r idxRow
		if err := rows.Scan(&r.schema, &r.name, &r.table, &r.method, &r.unique, &r.predicate, &r.comment); err != nil {
			return nil, shemerr.Introspectionf("scanning index row", err)
		}
		idxRows = append(idxRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	objs := make([]schema.Object, 0, len(idxRows))
	for _, r := range idxRows {
		keys, err := in.introspectIndexKeys(ctx, tx, r.schema, r.name)
		if err != nil {
			return nil, err
		}
		idx := schema.Index{
			Schema: r.schema,
			Name:   r.name,
			Table:  r.table,
			Method: r.method,
			Keys:   keys,
			Unique: r.unique,
		}
		if r.predicate.Valid {
			idx.Predicate = r.predicate.String
		}
		if r.comment.Valid {
			idx.Comment = r.comment.String
		}
		objs = append(objs, idx)
	}
	return objs, nil
}

// introspectIndexKeys reads key columns/expressions in index attribute
// order, since pg_index.indkey order is not reliably recoverable through a
// join without also decoding indexprs for expression keys.
func (in *Introspector) introspectIndexKeys(ctx context.Context, tx *sql.Tx, schema_, name string) ([]schema.IndexKey, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT
		    COALESCE(a.attname, pg_get_indexdef(ix.indexrelid, k.ord::int, false)) AS key_expr,
		    co.collname,
		    op.opcname,
		    (ix.indoption[k.ord] & 1) = 1 AS desc_order,
		    (ix.indoption[k.ord] & 2) = 2 AS nulls_first
		FROM pg_class ic
		JOIN pg_namespace n ON n.oid = ic.relnamespace
		JOIN pg_index ix ON ix.indexrelid = ic.oid
		JOIN generate_series(1, ix.indnkeyatts) AS k(ord) ON true
		LEFT JOIN pg_attribute a ON a.attrelid = ix.indrelid AND a.attnum = ix.indkey[k.ord - 1]
		LEFT JOIN pg_collation co ON co.oid = ix.indcollation[k.ord - 1] AND co.collname <> 'default'
		LEFT JOIN pg_opclass op ON op.oid = ix.indclass[k.ord - 1] AND NOT op.opcdefault
		WHERE n.nspname = $1 AND ic.relname = $2
		ORDER BY k.ord`, schema_, name)
	if err != nil {
		return nil, shemerr.Introspectionf("listing index keys for %s.%s", err, schema_, name)
	}
	defer rows.Close()

	var keys []schema.IndexKey
	for rows.Next() {
		var k schema.IndexKey
		var collation, opclass sql.NullString
		if err := rows.Scan(&k.Expression, &collation, &opclass, &k.Desc, &k.NullsFirst); err != nil {
			return nil, shemerr.Introspectionf("scanning index key row", err)
		}
		k.Collation = collation.String
		k.Opclass = opclass.String
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (in *Introspector) introspectExtensions(ctx context.Context, tx *sql.Tx, _ []string) ([]schema.Object, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT e.extname, e.extversion, n.nspname
		FROM pg_extension e
		JOIN pg_namespace n ON n.oid = e.extnamespace
		ORDER BY e.extname`)
	if err != nil {
		return nil, shemerr.Introspectionf("listing extensions", err)
	}
	defer rows.Close()

	var objs []schema.Object
	for rows.Next() {
		var ext schema.Extension
		if err := rows.Scan(&ext.Name, &ext.RequestedVersion, &ext.Schema); err != nil {
			return nil, shemerr.Introspectionf("scanning extension row", err)
		}
		objs = append(objs, ext)
	}
	return objs, rows.Err()
}

func (in *Introspector) introspectSequences(ctx context.Context, tx *sql.Tx, schemas []string) ([]schema.Object, error) {
	filter, args := qualifiedSchemaFilter("n.nspname", schemas)
	rows, err := tx.QueryContext(ctx, `
		SELECT n.nspname, c.relname, s.seqstart, s.seqincrement, s.seqmin, s.seqmax, s.seqcache, s.seqcycle,
		       ot.relname, oa.attname,
		       obj_description(c.oid, 'pg_class')
		FROM pg_sequence s
		JOIN pg_class c ON c.oid = s.seqrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN pg_depend d ON d.objid = c.oid AND d.deptype = 'a'
		LEFT JOIN pg_class ot ON ot.oid = d.refobjid
		LEFT JOIN pg_attribute oa ON oa.attrelid = d.refobjid AND oa.attnum = d.refobjsubid
		WHERE `+filter+` AND `+extensionOwnedFilter("c.oid")+`
		ORDER BY n.nspname, c.relname`, args...)
	if err != nil {
		return nil, shemerr.Introspectionf("listing sequences", err)
	}
	defer rows.Close()

	var objs []schema.Object
	for rows.Next() {
		var seq schema.Sequence
		var owningTable, owningColumn, comment sql.NullString
		if err := rows.Scan(&seq.Schema, &seq.Name, &seq.Start, &seq.Increment, &seq.Min, &seq.Max, &seq.Cache, &seq.Cycle,
			&owningTable, &owningColumn, &comment); err != nil {
			return nil, shemerr.Introspectionf("scanning sequence row", err)
		}
		seq.OwnedByTable = owningTable.String
		seq.OwnedByColumn = owningColumn.String
		seq.Comment = comment.String
		objs = append(objs, seq)
	}
	return objs, rows.Err()
}

func (in *Introspector) introspectEnums(ctx context.Context, tx *sql.Tx, schemas []string) ([]schema.Object, error) {
	filter, args := qualifiedSchemaFilter("n.nspname", schemas)
	rows, err := tx.QueryContext(ctx, `
		SELECT n.nspname, t.typname,
		       (SELECT array_agg(e.enumlabel ORDER BY e.enumsortorder) FROM pg_enum e WHERE e.enumtypid = t.oid),
		       obj_description(t.oid, 'pg_type')
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE t.typtype = 'e' AND `+filter+` AND `+extensionOwnedFilter("t.oid")+`
		ORDER BY n.nspname, t.typname`, args...)
	if err != nil {
		return nil, shemerr.Introspectionf("listing enums", err)
	}
	defer rows.Close()

	var objs []schema.Object
	for rows.Next() {
		var e schema.Enum
		var labels pq.StringArray
		var comment sql.NullString
		if err := rows.Scan(&e.Schema, &e.Name, &labels, &comment); err != nil {
			return nil, shemerr.Introspectionf("scanning enum row", err)
		}
		e.Labels = []string(labels)
		e.Comment = comment.String
		objs = append(objs, e)
	}
	return objs, rows.Err()
}
