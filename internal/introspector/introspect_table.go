package introspector

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"github.com/shem-sql/shem/internal/schema"
	"github.com/shem-sql/shem/internal/shemerr"
)

func (in *Introspector) introspectTables(ctx context.Context, tx *sql.Tx, schemas []string) ([]schema.Object, error) {
	filter, args := qualifiedSchemaFilter("n.nspname", schemas)
	rows, err := tx.QueryContext(ctx, `
		SELECT c.oid, n.nspname, c.relname, c.relrowsecurity,
		       obj_description(c.oid, 'pg_class'),
		       pi.inhparents
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN LATERAL (
			SELECT array_agg(pn.nspname || '.' || pc.relname ORDER BY inh.inhseqno) AS inhparents
			FROM pg_inherits inh
			JOIN pg_class pc ON pc.oid = inh.inhparent
			JOIN pg_namespace pn ON pn.oid = pc.relnamespace
			WHERE inh.inhrelid = c.oid
		) pi ON true
		WHERE c.relkind IN ('r', 'p') AND `+filter+`
		  AND `+extensionOwnedFilter("c.oid")+`
		ORDER BY n.nspname, c.relname`, args...)
	if err != nil {
		return nil, shemerr.Introspectionf("listing tables", err)
	}
	defer rows.Close()

	type tableRow struct {
		oid     int64
		schema  string
		name    string
		rls     bool
		comment sql.NullString
		parents pq.StringArray
	}
	var tableRows []tableRow
	for rows.Next() {
		var tr tableRow
		if err := rows.Scan(&tr.oid, &tr.schema, &tr.name, &tr.rls, &tr.comment, &tr.parents); err != nil {
			return nil, shemerr.Introspectionf("scanning table row", err)
		}
		tableRows = append(tableRows, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	objs := make([]schema.Object, 0, len(tableRows))
	for _, tr := range tableRows {
		tbl := schema.Table{
			Schema:     tr.schema,
			Name:       tr.name,
			RLSEnabled: tr.rls,
			Inherits:   []string(tr.parents),
		}
		if tr.comment.Valid {
			tbl.Comment = tr.comment.String
		}

		cols, err := in.introspectColumns(ctx, tx, tr.oid)
		if err != nil {
			return nil, err
		}
		tbl.Columns = cols

		pk, uniques, checks, fks, err := in.introspectConstraints(ctx, tx, tr.oid)
		if err != nil {
			return nil, err
		}
		tbl.PrimaryKey = pk
		tbl.Unique = uniques
		tbl.Checks = checks
		tbl.ForeignKeys = fks

		objs = append(objs, tbl)
	}
	return objs, nil
}

func (in *Introspector) introspectColumns(ctx context.Context, tx *sql.Tx, relOid int64) ([]schema.Column, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT a.attname,
		       pg_catalog.format_type(a.atttypid, a.atttypmod),
		       NOT a.attnotnull,
		       COALESCE(pg_get_expr(ad.adbin, ad.adrelid), ''),
		       a.attidentity,
		       COALESCE(pg_get_expr(gd.adbin, gd.adrelid), ''),
		       col_description(a.attrelid, a.attnum)
		FROM pg_attribute a
		LEFT JOIN pg_attrdef ad ON ad.adrelid = a.attrelid AND ad.adnum = a.attnum AND a.attidentity = ''
		LEFT JOIN pg_attrdef gd ON gd.adrelid = a.attrelid AND gd.adnum = a.attnum AND a.attgenerated = 's'
		WHERE a.attrelid = $1 AND a.attnum > 0 AND NOT a.attisdropped
		ORDER BY a.attnum`, relOid)
	if err != nil {
		return nil, shemerr.Introspectionf("listing columns", err)
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var c schema.Column
		var identity string
		var comment sql.NullString
		if err := rows.Scan(&c.Name, &c.Type, &c.Nullable, &c.Default, &identity, &c.Generated, &comment); err != nil {
			return nil, shemerr.Introspectionf("scanning column row", err)
		}
		switch identity {
		case "a":
			c.Identity = schema.IdentityAlways
		case "d":
			c.Identity = schema.IdentityByDefault
		default:
			c.Identity = schema.IdentityNone
		}
		if comment.Valid {
			c.Comment = comment.String
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// introspectConstraints reads every table constraint kind in one pass over
// pg_constraint, splitting rows out by contype the way the server itself
// groups primary keys ('p'), uniques ('u'), checks ('c') and foreign keys
// ('f') apart.
func (in *Introspector) introspectConstraints(ctx context.Context, tx *sql.Tx, relOid int64) (
	pk *schema.PrimaryKeyConstraint, uniques []schema.UniqueConstraint,
	checks []schema.CheckConstraint, fks []schema.ForeignKeyConstraint, err error,
) {
	rows, err := tx.QueryContext(ctx, `
		SELECT con.conname, con.contype,
		       (SELECT array_agg(a.attname ORDER BY ord)
		          FROM unnest(con.conkey) WITH ORDINALITY AS u(attnum, ord)
		          JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = u.attnum),
		       pg_get_constraintdef(con.oid),
		       fn.nspname, fc.relname,
		       (SELECT array_agg(a.attname ORDER BY ord)
		          FROM unnest(con.confkey) WITH ORDINALITY AS u(attnum, ord)
		          JOIN pg_attribute a ON a.attrelid = con.confrelid AND a.attnum = u.attnum),
		       con.confupdtype, con.confdeltype, con.condeferrable, con.condeferred
		FROM pg_constraint con
		LEFT JOIN pg_class fc ON fc.oid = con.confrelid
		LEFT JOIN pg_namespace fn ON fn.oid = fc.relnamespace
		WHERE con.conrelid = $1
		ORDER BY con.contype, con.conname`, relOid)
	if err != nil {
		return nil, nil, nil, nil, shemerr.Introspectionf("listing constraints", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var contype string
		var cols pq.StringArray
		var def string
		var fschema, ftable sql.NullString
		var fcols pq.StringArray
		var confupdtype, confdeltype sql.NullString
		var deferrable, deferred bool

		if err := rows.Scan(&name, &contype, &cols, &def, &fschema, &ftable, &fcols, &confupdtype, &confdeltype, &deferrable, &deferred); err != nil {
			return nil, nil, nil, nil, shemerr.Introspectionf("scanning constraint row", err)
		}

		switch contype {
		case "p":
			pk = &schema.PrimaryKeyConstraint{Name: name, Columns: []string(cols)}
		case "u":
			uniques = append(uniques, schema.UniqueConstraint{Name: name, Columns: []string(cols)})
		case "c":
			checks = append(checks, schema.CheckConstraint{Name: name, Expression: checkExprFromDef(def)})
		case "f":
			fks = append(fks, schema.ForeignKeyConstraint{
				Name:              name,
				Columns:           []string(cols),
				ReferencedSchema:  fschema.String,
				ReferencedTable:   ftable.String,
				ReferencedColumns: []string(fcols),
				OnUpdate:          fkActionSQL(confupdtype.String),
				OnDelete:          fkActionSQL(confdeltype.String),
				Deferrable:        deferrable,
				InitiallyDeferred: deferred,
			})
		}
	}
	return pk, uniques, checks, fks, rows.Err()
}

func fkActionSQL(code string) string {
	switch code {
	case "a":
		return "NO ACTION"
	case "r":
		return "RESTRICT"
	case "c":
		return "CASCADE"
	case "n":
		return "SET NULL"
	case "d":
		return "SET DEFAULT"
	default:
		return ""
	}
}

// checkExprFromDef strips the "CHECK (...)" envelope pg_get_constraintdef
// wraps every check expression in, leaving the bare expression the parser
// side's normalization also produces.
func checkExprFromDef(def string) string {
	const prefix = "CHECK ("
	if strings.HasPrefix(def, prefix) && strings.HasSuffix(def, ")") {
		return def[len(prefix) : len(def)-1]
	}
	return def
}
