package introspector

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/shem-sql/shem/internal/schema"
	"github.com/shem-sql/shem/internal/shemerr"
)

func (in *Introspector) introspectDomains(ctx context.Context, tx *sql.Tx, schemas []string) ([]schema.Object, error) {
	filter, args := qualifiedSchemaFilter("n.nspname", schemas)
	rows, err := tx.QueryContext(ctx, `
		SELECT n.nspname, t.typname, pg_catalog.format_type(t.typbasetype, t.typtypmod), t.typnotnull,
		       COALESCE(t.typdefault, ''), t.oid,
		       obj_description(t.oid, 'pg_type')
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE t.typtype = 'd' AND `+filter+` AND `+extensionOwnedFilter("t.oid")+`
		ORDER BY n.nspname, t.typname`, args...)
	if err != nil {
		return nil, shemerr.Introspectionf("listing domains", err)
	}
	defer rows.Close()

	type domainRow struct {
		schema, name, base string
		notNull            bool
		def                string
		oid                int64
		comment            sql.NullString
	}
	var domainRows []domainRow
	for rows.Next() {
		var r domainRow
		if err := rows.Scan(&r.schema, &r.name, &r.base, &r.notNull, &r.def, &r.oid, &r.comment); err != nil {
			return nil, shemerr.Introspectionf("scanning domain row", err)
		}
		domainRows = append(domainRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	objs := make([]schema.Object, 0, len(domainRows))
	for _, r := range domainRows {
		d := schema.Domain{Schema: r.schema, Name: r.name, BaseType: r.base, NotNull: r.notNull, Default: r.def}
		d.Comment = r.comment.String
		checks, err := in.introspectDomainChecks(ctx, tx, r.oid)
		if err != nil {
			return nil, err
		}
		d.Checks = checks
		objs = append(objs, d)
	}
	return objs, nil
}

func (in *Introspector) introspectDomainChecks(ctx context.Context, tx *sql.Tx, typeOid int64) ([]schema.CheckConstraint, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT conname, pg_get_constraintdef(oid)
		FROM pg_constraint
		WHERE contypid = $1 AND contype = 'c'
		ORDER BY conname`, typeOid)
	if err != nil {
		return nil, shemerr.Introspectionf("listing domain checks", err)
	}
	defer rows.Close()

	var checks []schema.CheckConstraint
	for rows.Next() {
		var name, def string
		if err := rows.Scan(&name, &def); err != nil {
			return nil, shemerr.Introspectionf("scanning domain check row", err)
		}
		checks = append(checks, schema.CheckConstraint{Name: name, Expression: checkExprFromDef(def)})
	}
	return checks, rows.Err()
}

func (in *Introspector) introspectCompositeTypes(ctx context.Context, tx *sql.Tx, schemas []string) ([]schema.Object, error) {
	filter, args := qualifiedSchemaFilter("n.nspname", schemas)
	rows, err := tx.QueryContext(ctx, `
		SELECT n.nspname, t.typname, c.oid, obj_description(t.oid, 'pg_type')
		FROM pg_type t
		JOIN pg_namespace n ON n.oid = t.typnamespace
		JOIN pg_class c ON c.oid = t.typrelid
		WHERE t.typtype = 'c' AND c.relkind = 'c' AND `+filter+` AND `+extensionOwnedFilter("t.oid")+`
		ORDER BY n.nspname, t.typname`, args...)
	if err != nil {
		return nil, shemerr.Introspectionf("listing composite types", err)
	}
	defer rows.Close()

	type compRow struct {
		schema, name string
		relOid       int64
		comment      sql.NullString
	}
	var compRows []compRow
	for rows.Next() {
		var r compRow
		if err := rows.Scan(&r.schema, &r.name, &r.relOid, &r.comment); err != nil {
			return nil, shemerr.Introspectionf("scanning composite type row", err)
		}
		compRows = append(compRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	objs := make([]schema.Object, 0, len(compRows))
	for _, r := range compRows {
		attrs, err := in.introspectCompositeAttrs(ctx, tx, r.relOid)
		if err != nil {
			return nil, err
		}
		ct := schema.CompositeType{Schema: r.schema, Name: r.name, Attributes: attrs}
		ct.Comment = r.comment.String
		objs = append(objs, ct)
	}
	return objs, nil
}

func (in *Introspector) introspectCompositeAttrs(ctx context.Context, tx *sql.Tx, relOid int64) ([]schema.CompositeAttr, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT a.attname, pg_catalog.format_type(a.atttypid, a.atttypmod)
		FROM pg_attribute a
		WHERE a.attrelid = $1 AND a.attnum > 0 AND NOT a.attisdropped
		ORDER BY a.attnum`, relOid)
	if err != nil {
		return nil, shemerr.Introspectionf("listing composite type attributes", err)
	}
	defer rows.Close()

	var attrs []schema.CompositeAttr
	for rows.Next() {
		var a schema.CompositeAttr
		if err := rows.Scan(&a.Name, &a.Type); err != nil {
			return nil, shemerr.Introspectionf("scanning composite attribute row", err)
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

func (in *Introspector) introspectTriggers(ctx context.Context, tx *sql.Tx, schemas []string) ([]schema.Object, error) {
	filter, args := qualifiedSchemaFilter("n.nspname", schemas)
	rows, err := tx.QueryContext(ctx, `
		SELECT n.nspname, t.tgname, c.relname, t.tgtype, p.proname,
		       t.tgconstraint <> 0, t.tgdeferrable, t.tginitdeferred,
		       pg_get_expr(t.tgqual, t.tgrelid),
		       obj_description(t.oid, 'pg_trigger')
		FROM pg_trigger t
		JOIN pg_class c ON c.oid = t.tgrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_proc p ON p.oid = t.tgfoid
		WHERE NOT t.tgisinternal AND `+filter+`
		ORDER BY n.nspname, t.tgname`, args...)
	if err != nil {
		return nil, shemerr.Introspectionf("listing triggers", err)
	}
	defer rows.Close()

	var objs []schema.Object
	for rows.Next() {
		var schemaName, name, table, funcName string
		var tgtype int32
		var isConstraint, deferrable, deferred bool
		var when, comment sql.NullString

		if err := rows.Scan(&schemaName, &name, &table, &tgtype, &funcName, &isConstraint, &deferrable, &deferred, &when, &comment); err != nil {
			return nil, shemerr.Introspectionf("scanning trigger row", err)
		}

		base := schema.Trigger{
			Schema:     schemaName,
			Name:       name,
			Table:      table,
			Timing:     triggerTimingFromBitmask(tgtype),
			Events:     triggerEventsFromBitmask(tgtype),
			ForEachRow: tgtype&(1<<0) != 0,
			Function:   funcName,
			When:       when.String,
		}
		base.Comment = comment.String

		if isConstraint {
			objs = append(objs, schema.ConstraintTrigger{Trigger: base, Deferrable: deferrable, InitiallyDeferred: deferred})
		} else {
			objs = append(objs, base)
		}
	}
	return objs, rows.Err()
}

// Bitmask layout matches PostgreSQL's TRIGGER_TYPE_* constants in
// pg_trigger.h: bit 0 row-level, bit 1 BEFORE, bits 2-5 the INSERT, DELETE,
// UPDATE and TRUNCATE events, bit 6 INSTEAD OF (neither timing bit: AFTER).
func triggerTimingFromBitmask(tgtype int32) schema.TriggerTiming {
	switch {
	case tgtype&(1<<6) != 0:
		return schema.TriggerInsteadOf
	case tgtype&(1<<1) != 0:
		return schema.TriggerBefore
	default:
		return schema.TriggerAfter
	}
}

func triggerEventsFromBitmask(tgtype int32) []string {
	var events []string
	if tgtype&(1<<2) != 0 {
		events = append(events, "INSERT")
	}
	if tgtype&(1<<4) != 0 {
		events = append(events, "UPDATE")
	}
	if tgtype&(1<<3) != 0 {
		events = append(events, "DELETE")
	}
	if tgtype&(1<<5) != 0 {
		events = append(events, "TRUNCATE")
	}
	return events
}

func (in *Introspector) introspectPolicies(ctx context.Context, tx *sql.Tx, schemas []string) ([]schema.Object, error) {
	filter, args := qualifiedSchemaFilter("n.nspname", schemas)
	rows, err := tx.QueryContext(ctx, `
		SELECT n.nspname, p.polname, c.relname, p.polcmd, p.polpermissive,
		       pg_get_expr(p.polqual, p.polrelid),
		       pg_get_expr(p.polwithcheck, p.polrelid),
		       (SELECT array_agg(r.rolname ORDER BY r.rolname)
		          FROM unnest(p.polroles) AS ur(oid)
		          JOIN pg_roles r ON r.oid = ur.oid)
		FROM pg_policy p
		JOIN pg_class c ON c.oid = p.polrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE `+filter+`
		ORDER BY n.nspname, p.polname`, args...)
	if err != nil {
		return nil, shemerr.Introspectionf("listing policies", err)
	}
	defer rows.Close()

	var objs []schema.Object
	for rows.Next() {
		var p schema.Policy
		var cmd string
		var using, withCheck sql.NullString
		var roles pq.StringArray

		if err := rows.Scan(&p.Schema, &p.Name, &p.Table, &cmd, &p.Permissive, &using, &withCheck, &roles); err != nil {
			return nil, shemerr.Introspectionf("scanning policy row", err)
		}
		p.Command = policyCommandFromCode(cmd)
		p.Using = using.String
		p.WithCheck = withCheck.String
		p.Roles = []string(roles)
		objs = append(objs, p)
	}
	return objs, rows.Err()
}

func policyCommandFromCode(code string) schema.PolicyCommand {
	switch code {
	case "r":
		return schema.PolicySelect
	case "a":
		return schema.PolicyInsert
	case "w":
		return schema.PolicyUpdate
	case "d":
		return schema.PolicyDelete
	default:
		return schema.PolicyAll
	}
}
