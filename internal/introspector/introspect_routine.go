package introspector

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/shem-sql/shem/internal/schema"
	"github.com/shem-sql/shem/internal/shemerr"
)

func (in *Introspector) introspectFunctions(ctx context.Context, tx *sql.Tx, schemas []string) ([]schema.Object, error) {
	filter, args := qualifiedSchemaFilter("n.nspname", schemas)
	rows, err := tx.QueryContext(ctx, `
		SELECT n.nspname, p.proname, p.prokind, l.lanname,
		       pg_get_functiondef(p.oid),
		       p.provolatile, p.proisstrict, p.prosecdef, p.proretset,
		       pg_catalog.format_type(p.prorettype, NULL),
		       p.proargnames, p.proargmodes,
		       (SELECT array_agg(pg_catalog.format_type(a.oid, NULL))
		          FROM unnest(coalesce(p.proallargtypes, p.proargtypes::oid[])) WITH ORDINALITY AS a(oid, ord)
		          ORDER BY a.ord),
		       obj_description(p.oid, 'pg_proc')
		FROM pg_proc p
		JOIN pg_namespace n ON n.oid = p.pronamespace
		JOIN pg_language l ON l.oid = p.prolang
		WHERE `+filter+` AND `+extensionOwnedFilter("p.oid")+`
		ORDER BY n.nspname, p.proname`, args...)
	if err != nil {
		return nil, shemerr.Introspectionf("listing functions", err)
	}
	defer rows.Close()

	var objs []schema.Object
	for rows.Next() {
		var schemaName, name, kind, lang, body, volatility, returnType string
		var strict, secdef, setOf bool
		var argNames, argModes, argTypes pq.StringArray
		var comment sql.NullString

		if err := rows.Scan(&schemaName, &name, &kind, &lang, &body, &volatility, &strict, &secdef, &setOf,
			&returnType, &argNames, &argModes, &argTypes, &comment); err != nil {
			return nil, shemerr.Introspectionf("scanning function row", err)
		}

		f := schema.Function{
			Schema:          schemaName,
			Name:            name,
			Language:        lang,
			Body:            body,
			Volatility:      volatilityFromCode(volatility),
			Strict:          strict,
			SecurityDefiner: secdef,
			IsProcedure:     kind == "p",
		}
		f.Comment = comment.String
		f.Params = buildParams(argNames, argModes, argTypes)
		if setOf {
			f.Returns = schema.ReturnSpec{SetOf: true, Type: returnType}
		} else {
			f.Returns = schema.ReturnSpec{Type: returnType}
		}
		objs = append(objs, f)
	}
	return objs, rows.Err()
}

func volatilityFromCode(code string) schema.Volatility {
	switch code {
	case "i":
		return schema.VolatilityImmutable
	case "s":
		return schema.VolatilityStable
	default:
		return schema.VolatilityVolatile
	}
}

func buildParams(names, modes, types pq.StringArray) []schema.Param {
	n := len(types)
	if len(names) > n {
		n = len(names)
	}
	params := make([]schema.Param, 0, n)
	for i := 0; i < n; i++ {
		p := schema.Param{Mode: schema.ParamIn}
		if i < len(names) {
			p.Name = names[i]
		}
		if i < len(types) {
			p.Type = types[i]
		}
		if i < len(modes) {
			switch modes[i] {
			case "o":
				p.Mode = schema.ParamOut
			case "b":
				p.Mode = schema.ParamInOut
			case "v":
				p.Mode = schema.ParamVariadic
			default:
				p.Mode = schema.ParamIn
			}
		}
		params = append(params, p)
	}
	return params
}
