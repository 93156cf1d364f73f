package introspector

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/shem-sql/shem/internal/schema"
	"github.com/shem-sql/shem/internal/shemerr"
)

func (in *Introspector) introspectCollations(ctx context.Context, tx *sql.Tx, schemas []string) ([]schema.Object, error) {
	filter, args := qualifiedSchemaFilter("n.nspname", schemas)
	rows, err := tx.QueryContext(ctx, `
		SELECT n.nspname, c.collname, c.collprovider, COALESCE(c.colliculocale, c.collcollate, ''), c.collisdeterministic
		FROM pg_collation c
		JOIN pg_namespace n ON n.oid = c.collnamespace
		WHERE `+filter+` AND `+extensionOwnedFilter("c.oid")+`
		ORDER BY n.nspname, c.collname`, args...)
	if err != nil {
		return nil, shemerr.Introspectionf("listing collations", err)
	}
	defer rows.Close()

	var objs []schema.Object
	for rows.Next() {
		var c schema.Collation
		var provider string
		if err := rows.Scan(&c.Schema, &c.Name, &provider, &c.Locale, &c.Deterministic); err != nil {
			return nil, shemerr.Introspectionf("scanning collation row", err)
		}
		switch provider {
		case "i":
			c.Provider = "icu"
		default:
			c.Provider = "libc"
		}
		objs = append(objs, c)
	}
	return objs, rows.Err()
}

func (in *Introspector) introspectForeignServers(ctx context.Context, tx *sql.Tx, _ []string) ([]schema.Object, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT s.srvname, w.fdwname,
		       (SELECT array_agg(o) FROM unnest(s.srvoptions) o)
		FROM pg_foreign_server s
		JOIN pg_foreign_data_wrapper w ON w.oid = s.srvfdw
		ORDER BY s.srvname`)
	if err != nil {
		return nil, shemerr.Introspectionf("listing foreign servers", err)
	}
	defer rows.Close()

	var objs []schema.Object
	for rows.Next() {
		var srv schema.ForeignServer
		var options pq.StringArray
		if err := rows.Scan(&srv.Name, &srv.Wrapper, &options); err != nil {
			return nil, shemerr.Introspectionf("scanning foreign server row", err)
		}
		srv.Options = parseOptionPairs(options)
		objs = append(objs, srv)
	}
	return objs, rows.Err()
}

func (in *Introspector) introspectEventTriggers(ctx context.Context, tx *sql.Tx, _ []string) ([]schema.Object, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT e.evtname, e.evtevent, e.evtenabled <> 'D', p.proname,
		       (SELECT array_agg(t) FROM unnest(e.evttags) t)
		FROM pg_event_trigger e
		JOIN pg_proc p ON p.oid = e.evtfoid
		ORDER BY e.evtname`)
	if err != nil {
		return nil, shemerr.Introspectionf("listing event triggers", err)
	}
	defer rows.Close()

	var objs []schema.Object
	for rows.Next() {
		var et schema.EventTrigger
		var tags pq.StringArray
		if err := rows.Scan(&et.Name, &et.Event, &et.Enabled, &et.Function, &tags); err != nil {
			return nil, shemerr.Introspectionf("scanning event trigger row", err)
		}
		et.Tags = []string(tags)
		objs = append(objs, et)
	}
	return objs, rows.Err()
}

func (in *Introspector) introspectRules(ctx context.Context, tx *sql.Tx, schemas []string) ([]schema.Object, error) {
	filter, args := qualifiedSchemaFilter("n.nspname", schemas)
	rows, err := tx.QueryContext(ctx, `
		SELECT n.nspname, r.rulename, c.relname, r.ev_type, r.is_instead, pg_get_ruledef(r.oid)
		FROM pg_rewrite r
		JOIN pg_class c ON c.oid = r.ev_class
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE r.rulename <> '_RETURN' AND `+filter+`
		ORDER BY n.nspname, r.rulename`, args...)
	if err != nil {
		return nil, shemerr.Introspectionf("listing rules", err)
	}
	defer rows.Close()

	var objs []schema.Object
	for rows.Next() {
		var r schema.Rule
		var evType, def string
		if err := rows.Scan(&r.Schema, &r.Name, &r.Table, &evType, &r.Instead, &def); err != nil {
			return nil, shemerr.Introspectionf("scanning rule row", err)
		}
		r.Event = ruleEventFromCode(evType)
		r.Actions = []string{def}
		objs = append(objs, r)
	}
	return objs, rows.Err()
}

func ruleEventFromCode(code string) string {
	switch code {
	case "1":
		return "SELECT"
	case "2":
		return "UPDATE"
	case "3":
		return "INSERT"
	case "4":
		return "DELETE"
	default:
		return ""
	}
}

// parseOptionPairs reads PostgreSQL's "key=value" option arrays
// (pg_foreign_server.srvoptions) into a plain map.
func parseOptionPairs(opts pq.StringArray) map[string]string {
	if len(opts) == 0 {
		return nil
	}
	out := make(map[string]string, len(opts))
	for _, o := range opts {
		key, value := splitOption(o)
		out[key] = value
	}
	return out
}

func splitOption(o string) (string, string) {
	for i := 0; i < len(o); i++ {
		if o[i] == '=' {
			return o[:i], o[i+1:]
		}
	}
	return o, ""
}
