package emitter

import (
	"fmt"
	"strings"

	"github.com/shem-sql/shem/internal/differ"
	"github.com/shem-sql/shem/internal/schema"
)

// renderGenericDrop builds the DROP statement for every kind that isn't a
// table (tables go through renderDropTable). annotateDestructive later flags
// every DROP it can reparse as destructive, these included.
func renderGenericDrop(id schema.Identity) Statement {
	lock := lockAccessExclusive
	var sql string
	switch id.Kind {
	case schema.KindIndex:
		sql = fmt.Sprintf("DROP INDEX %s.%s;", id.Schema, id.Name)
		lock = lockShareUpdateExclusive
	case schema.KindView:
		sql = fmt.Sprintf("DROP VIEW %s.%s;", id.Schema, id.Name)
	case schema.KindMaterializedView:
		sql = fmt.Sprintf("DROP MATERIALIZED VIEW %s.%s;", id.Schema, id.Name)
	case schema.KindFunction:
		sql = fmt.Sprintf("DROP FUNCTION %s.%s(%s);", id.Schema, id.Name, id.Signature)
	case schema.KindProcedure:
		sql = fmt.Sprintf("DROP PROCEDURE %s.%s(%s);", id.Schema, id.Name, id.Signature)
	case schema.KindSequence:
		sql = fmt.Sprintf("DROP SEQUENCE %s.%s;", id.Schema, id.Name)
	case schema.KindEnum, schema.KindCompositeType, schema.KindDomain, schema.KindRangeType:
		sql = fmt.Sprintf("DROP TYPE %s.%s;", id.Schema, id.Name)
	case schema.KindExtension:
		sql = fmt.Sprintf("DROP EXTENSION %s;", id.Name)
	case schema.KindSchema:
		sql = fmt.Sprintf("DROP SCHEMA %s;", id.Name)
	case schema.KindTrigger, schema.KindConstraintTrigger:
		sql = fmt.Sprintf("DROP TRIGGER %s ON %s.%s;", id.Name, id.Schema, id.Signature)
	case schema.KindEventTrigger:
		sql = fmt.Sprintf("DROP EVENT TRIGGER %s;", id.Name)
	case schema.KindPolicy:
		sql = fmt.Sprintf("DROP POLICY %s ON %s.%s;", id.Name, id.Schema, id.Signature)
	case schema.KindRule:
		sql = fmt.Sprintf("DROP RULE %s ON %s.%s;", id.Name, id.Schema, id.Signature)
	case schema.KindForeignServer:
		sql = fmt.Sprintf("DROP SERVER %s;", id.Name)
	case schema.KindCollation:
		sql = fmt.Sprintf("DROP COLLATION %s.%s;", id.Schema, id.Name)
	case schema.KindComment:
		sql = fmt.Sprintf("COMMENT ON %s IS NULL;", commentTargetRef(id))
		lock = lockNone
	default:
		sql = fmt.Sprintf("-- unsupported drop for %s", id)
	}
	destructive, reason := destructiveKind(id.Kind)
	return Statement{SQL: sql, Identity: id, LockMode: lock, Destructive: destructive, DestructiveReason: reason}
}

func destructiveKind(k schema.Kind) (bool, string) {
	switch k {
	case schema.KindTable, schema.KindSequence, schema.KindSchema:
		return true, "drops an object that may hold data"
	default:
		return false, ""
	}
}

func commentTargetRef(id schema.Identity) string {
	return fmt.Sprintf("%s %s.%s", strings.ToUpper(string(id.Kind)), id.Schema, id.Name)
}

// renderGenericCreateOrAlter renders the single statement a create or alter
// change produces for every kind whose full definition is always replaced as
// a unit, rather than diffed column-by-column the way tables are.
func renderGenericCreateOrAlter(c differ.Change) (Statement, error) {
	id := c.Identity
	obj := c.New
	switch id.Kind {
	case schema.KindIndex:
		idx, ok := obj.(schema.Index)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing index descriptor", id)
		}
		return renderIndex(idx), nil
	case schema.KindView:
		v, ok := obj.(schema.View)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing view descriptor", id)
		}
		return renderView(v), nil
	case schema.KindMaterializedView:
		mv, ok := obj.(schema.MaterializedView)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing materialized view descriptor", id)
		}
		return renderMaterializedView(mv), nil
	case schema.KindFunction, schema.KindProcedure:
		fn, ok := obj.(schema.Function)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing function descriptor", id)
		}
		return renderFunction(fn), nil
	case schema.KindSequence:
		seq, ok := obj.(schema.Sequence)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing sequence descriptor", id)
		}
		return renderSequence(seq), nil
	case schema.KindEnum:
		e, ok := obj.(schema.Enum)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing enum descriptor", id)
		}
		return renderEnum(e), nil
	case schema.KindCompositeType:
		ct, ok := obj.(schema.CompositeType)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing composite type descriptor", id)
		}
		return renderCompositeType(ct), nil
	case schema.KindDomain:
		d, ok := obj.(schema.Domain)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing domain descriptor", id)
		}
		return renderDomain(d), nil
	case schema.KindRangeType:
		rt, ok := obj.(schema.RangeType)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing range type descriptor", id)
		}
		return renderRangeType(rt), nil
	case schema.KindExtension:
		ext, ok := obj.(schema.Extension)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing extension descriptor", id)
		}
		return renderExtension(ext), nil
	case schema.KindSchema:
		so, ok := obj.(schema.SchemaObject)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing schema descriptor", id)
		}
		return renderSchemaObject(so), nil
	case schema.KindTrigger:
		tr, ok := obj.(schema.Trigger)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing trigger descriptor", id)
		}
		return renderTrigger(tr), nil
	case schema.KindConstraintTrigger:
		ct, ok := obj.(schema.ConstraintTrigger)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing constraint trigger descriptor", id)
		}
		return renderConstraintTrigger(ct), nil
	case schema.KindEventTrigger:
		et, ok := obj.(schema.EventTrigger)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing event trigger descriptor", id)
		}
		return renderEventTrigger(et), nil
	case schema.KindPolicy:
		p, ok := obj.(schema.Policy)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing policy descriptor", id)
		}
		return renderPolicy(p), nil
	case schema.KindRule:
		r, ok := obj.(schema.Rule)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing rule descriptor", id)
		}
		return renderRule(r), nil
	case schema.KindForeignServer:
		fs, ok := obj.(schema.ForeignServer)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing foreign server descriptor", id)
		}
		return renderForeignServer(fs), nil
	case schema.KindCollation:
		col, ok := obj.(schema.Collation)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing collation descriptor", id)
		}
		return renderCollation(col), nil
	case schema.KindComment:
		cm, ok := obj.(schema.Comment)
		if !ok {
			return Statement{}, fmt.Errorf("emitter: change for %s missing comment descriptor", id)
		}
		return renderComment(cm), nil
	default:
		return Statement{}, fmt.Errorf("emitter: unhandled kind %s", id.Kind)
	}
}

func renderIndex(idx schema.Index) Statement {
	var keyParts []string
	for _, k := range idx.Keys {
		part := k.Expression
		if k.Collation != "" {
			part += " COLLATE " + k.Collation
		}
		if k.Opclass != "" {
			part += " " + k.Opclass
		}
		if k.Desc {
			part += " DESC"
		}
		if k.NullsFirst {
			part += " NULLS FIRST"
		}
		keyParts = append(keyParts, part)
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	include := ""
	if len(idx.Include) > 0 {
		include = fmt.Sprintf(" INCLUDE (%s)", strings.Join(idx.Include, ", "))
	}
	where := ""
	if idx.Predicate != "" {
		where = " WHERE " + idx.Predicate
	}
	method := idx.Method
	if method == "" {
		method = "btree"
	}
	sql := fmt.Sprintf("CREATE %sINDEX %s ON %s.%s USING %s (%s)%s%s;",
		unique, idx.Name, idx.Schema, idx.Table, method, strings.Join(keyParts, ", "), include, where)
	return Statement{SQL: sql, Identity: idx.Identity(), LockMode: lockShareUpdateExclusive}
}

func renderView(v schema.View) Statement {
	opts := viewOptions(v)
	sql := fmt.Sprintf("CREATE OR REPLACE%s VIEW %s.%s AS %s;", opts, v.Schema, v.Name, v.Query)
	return Statement{SQL: sql, Identity: v.Identity(), LockMode: lockAccessExclusive}
}

func viewOptions(v schema.View) string {
	if v.SecurityBarrier {
		return " SECURITY_BARRIER"
	}
	return ""
}

func renderMaterializedView(mv schema.MaterializedView) Statement {
	withData := "WITH DATA"
	if !mv.PopulateNow {
		withData = "WITH NO DATA"
	}
	sql := fmt.Sprintf("CREATE MATERIALIZED VIEW %s.%s AS %s %s;", mv.Schema, mv.Name, mv.Query, withData)
	return Statement{SQL: sql, Identity: mv.Identity(), LockMode: lockAccessExclusive}
}

func renderFunction(fn schema.Function) Statement {
	var params []string
	for _, p := range fn.Params {
		part := ""
		switch p.Mode {
		case schema.ParamOut:
			part = "OUT "
		case schema.ParamInOut:
			part = "INOUT "
		case schema.ParamVariadic:
			part = "VARIADIC "
		}
		if p.Name != "" {
			part += p.Name + " "
		}
		part += p.Type
		if p.Default != "" {
			part += " DEFAULT " + p.Default
		}
		params = append(params, part)
	}

	verb := "FUNCTION"
	if fn.IsProcedure {
		verb = "PROCEDURE"
	}

	returns := ""
	if !fn.IsProcedure {
		returns = " RETURNS " + renderReturnSpec(fn.Returns)
	}

	var opts []string
	if fn.Language != "" {
		opts = append(opts, "LANGUAGE "+fn.Language)
	}
	if fn.Volatility != "" {
		opts = append(opts, strings.ToUpper(string(fn.Volatility)))
	}
	if fn.Strict {
		opts = append(opts, "STRICT")
	}
	if fn.SecurityDefiner {
		opts = append(opts, "SECURITY DEFINER")
	}
	optsText := ""
	if len(opts) > 0 {
		optsText = " " + strings.Join(opts, " ")
	}

	sql := fmt.Sprintf("CREATE OR REPLACE %s %s.%s(%s)%s%s AS $shem$%s$shem$;",
		verb, fn.Schema, fn.Name, strings.Join(params, ", "), returns, optsText, fn.Body)
	return Statement{SQL: sql, Identity: fn.Identity(), LockMode: lockAccessExclusive}
}

func renderReturnSpec(r schema.ReturnSpec) string {
	setof := ""
	if r.SetOf {
		setof = "SETOF "
	}
	if len(r.Table) > 0 {
		var cols []string
		for _, p := range r.Table {
			cols = append(cols, p.Name+" "+p.Type)
		}
		return fmt.Sprintf("TABLE (%s)", strings.Join(cols, ", "))
	}
	return setof + r.Type
}

func renderSequence(seq schema.Sequence) Statement {
	sql := fmt.Sprintf("CREATE SEQUENCE %s.%s START WITH %d INCREMENT BY %d MINVALUE %d MAXVALUE %d CACHE %d%s;",
		seq.Schema, seq.Name, seq.Start, seq.Increment, seq.Min, seq.Max, seq.Cache, cycleClause(seq.Cycle))
	return Statement{SQL: sql, Identity: seq.Identity(), LockMode: lockAccessExclusive}
}

func cycleClause(cycle bool) string {
	if cycle {
		return " CYCLE"
	}
	return " NO CYCLE"
}

func renderEnum(e schema.Enum) Statement {
	labels := make([]string, len(e.Labels))
	for i, l := range e.Labels {
		labels[i] = quoteLiteral(l)
	}
	sql := fmt.Sprintf("CREATE TYPE %s.%s AS ENUM (%s);", e.Schema, e.Name, strings.Join(labels, ", "))
	return Statement{SQL: sql, Identity: e.Identity(), LockMode: lockAccessExclusive}
}

// renderAlterEnum appends each new label with its own ALTER TYPE ... ADD
// VALUE statement; Postgres requires one statement per added value (and,
// before 12, that it run outside the migration's transaction), so these
// are never folded into a single statement the way other CREATE OR
// REPLACE-style changes are. Grounded on differ.enumAppendedLabels, the
// only enum delta that can be expressed this way instead of a recreate.
func renderAlterEnum(id schema.Identity, d differ.EnumDiff) []Statement {
	qualified := quoteQualified(id.Schema, id.Name)
	stmts := make([]Statement, len(d.AddedLabels))
	for i, label := range d.AddedLabels {
		stmts[i] = Statement{
			SQL:      fmt.Sprintf("ALTER TYPE %s ADD VALUE %s;", qualified, quoteLiteral(label)),
			Identity: id,
			LockMode: lockAccessExclusive,
		}
	}
	return stmts
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func renderCompositeType(ct schema.CompositeType) Statement {
	var attrs []string
	for _, a := range ct.Attributes {
		attrs = append(attrs, a.Name+" "+a.Type)
	}
	sql := fmt.Sprintf("CREATE TYPE %s.%s AS (%s);", ct.Schema, ct.Name, strings.Join(attrs, ", "))
	return Statement{SQL: sql, Identity: ct.Identity(), LockMode: lockAccessExclusive}
}

func renderDomain(d schema.Domain) Statement {
	var parts []string
	if d.Default != "" {
		parts = append(parts, "DEFAULT "+d.Default)
	}
	if d.NotNull {
		parts = append(parts, "NOT NULL")
	}
	for _, c := range d.Checks {
		parts = append(parts, renderCheck(c))
	}
	extra := ""
	if len(parts) > 0 {
		extra = " " + strings.Join(parts, " ")
	}
	sql := fmt.Sprintf("CREATE DOMAIN %s.%s AS %s%s;", d.Schema, d.Name, d.BaseType, extra)
	return Statement{SQL: sql, Identity: d.Identity(), LockMode: lockAccessExclusive}
}

func renderRangeType(rt schema.RangeType) Statement {
	opts := []string{"SUBTYPE = " + rt.Subtype}
	if rt.SubtypeOpclass != "" {
		opts = append(opts, "SUBTYPE_OPCLASS = "+rt.SubtypeOpclass)
	}
	if rt.Collation != "" {
		opts = append(opts, "COLLATION = "+rt.Collation)
	}
	if rt.CanonicalFunc != "" {
		opts = append(opts, "CANONICAL = "+rt.CanonicalFunc)
	}
	if rt.DiffFunc != "" {
		opts = append(opts, "SUBTYPE_DIFF = "+rt.DiffFunc)
	}
	sql := fmt.Sprintf("CREATE TYPE %s.%s AS RANGE (%s);", rt.Schema, rt.Name, strings.Join(opts, ", "))
	return Statement{SQL: sql, Identity: rt.Identity(), LockMode: lockAccessExclusive}
}

func renderExtension(ext schema.Extension) Statement {
	version := ""
	if ext.RequestedVersion != "" {
		version = fmt.Sprintf(" VERSION %q", ext.RequestedVersion)
	}
	schemaClause := ""
	if ext.Schema != "" {
		schemaClause = " SCHEMA " + ext.Schema
	}
	sql := fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %s%s%s;", ext.Name, schemaClause, version)
	return Statement{SQL: sql, Identity: ext.Identity(), LockMode: lockAccessExclusive}
}

func renderSchemaObject(so schema.SchemaObject) Statement {
	owner := ""
	if so.Owner != "" {
		owner = " AUTHORIZATION " + so.Owner
	}
	sql := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s%s;", so.Name, owner)
	return Statement{SQL: sql, Identity: so.Identity(), LockMode: lockNone}
}

func renderTrigger(tr schema.Trigger) Statement {
	sql := fmt.Sprintf("CREATE OR REPLACE TRIGGER %s %s %s ON %s.%s FOR EACH %s%s EXECUTE FUNCTION %s(%s);",
		tr.Name, triggerTimingSQL(tr.Timing), strings.Join(tr.Events, " OR "), tr.Schema, tr.Table,
		forEach(tr.ForEachRow), whenClause(tr.When), tr.Function, strings.Join(tr.FunctionArgs, ", "))
	return Statement{SQL: sql, Identity: tr.Identity(), LockMode: lockShareRowExclusive}
}

func renderConstraintTrigger(ct schema.ConstraintTrigger) Statement {
	deferrable := ""
	if ct.Deferrable {
		deferrable = " DEFERRABLE"
		if ct.InitiallyDeferred {
			deferrable += " INITIALLY DEFERRED"
		}
	}
	sql := fmt.Sprintf("CREATE CONSTRAINT TRIGGER %s %s %s ON %s.%s%s FOR EACH %s%s EXECUTE FUNCTION %s(%s);",
		ct.Name, triggerTimingSQL(ct.Timing), strings.Join(ct.Events, " OR "), ct.Schema, ct.Table,
		deferrable, forEach(ct.ForEachRow), whenClause(ct.When), ct.Function, strings.Join(ct.FunctionArgs, ", "))
	return Statement{SQL: sql, Identity: ct.Identity(), LockMode: lockShareRowExclusive}
}

func triggerTimingSQL(t schema.TriggerTiming) string {
	switch t {
	case schema.TriggerBefore:
		return "BEFORE"
	case schema.TriggerInsteadOf:
		return "INSTEAD OF"
	default:
		return "AFTER"
	}
}

func forEach(row bool) string {
	if row {
		return "ROW"
	}
	return "STATEMENT"
}

func whenClause(when string) string {
	if when == "" {
		return ""
	}
	return " WHEN (" + when + ")"
}

func renderEventTrigger(et schema.EventTrigger) Statement {
	tags := ""
	if len(et.Tags) > 0 {
		quoted := make([]string, len(et.Tags))
		for i, t := range et.Tags {
			quoted[i] = "'" + t + "'"
		}
		tags = fmt.Sprintf(" WHEN TAG IN (%s)", strings.Join(quoted, ", "))
	}
	sql := fmt.Sprintf("CREATE EVENT TRIGGER %s ON %s%s EXECUTE FUNCTION %s();", et.Name, et.Event, tags, et.Function)
	return Statement{SQL: sql, Identity: et.Identity(), LockMode: lockNone}
}

func renderPolicy(p schema.Policy) Statement {
	permissive := "PERMISSIVE"
	if !p.Permissive {
		permissive = "RESTRICTIVE"
	}
	roles := "public"
	if len(p.Roles) > 0 {
		roles = strings.Join(p.Roles, ", ")
	}
	using := ""
	if p.Using != "" {
		using = " USING (" + p.Using + ")"
	}
	withCheck := ""
	if p.WithCheck != "" {
		withCheck = " WITH CHECK (" + p.WithCheck + ")"
	}
	sql := fmt.Sprintf("CREATE POLICY %s ON %s.%s AS %s FOR %s TO %s%s%s;",
		p.Name, p.Schema, p.Table, permissive, p.Command, roles, using, withCheck)
	return Statement{SQL: sql, Identity: p.Identity(), LockMode: lockAccessExclusive}
}

func renderRule(r schema.Rule) Statement {
	instead := "ALSO"
	if r.Instead {
		instead = "INSTEAD"
	}
	where := ""
	if r.Where != "" {
		where = " WHERE " + r.Where
	}
	sql := fmt.Sprintf("CREATE OR REPLACE RULE %s AS ON %s TO %s.%s%s DO %s %s;",
		r.Name, r.Event, r.Schema, r.Table, where, instead, strings.Join(r.Actions, "; "))
	return Statement{SQL: sql, Identity: r.Identity(), LockMode: lockAccessExclusive}
}

func renderForeignServer(fs schema.ForeignServer) Statement {
	var opts []string
	for k, v := range fs.Options {
		opts = append(opts, fmt.Sprintf("%s %q", k, v))
	}
	optsText := ""
	if len(opts) > 0 {
		optsText = fmt.Sprintf(" OPTIONS (%s)", strings.Join(opts, ", "))
	}
	sql := fmt.Sprintf("CREATE SERVER %s FOREIGN DATA WRAPPER %s%s;", fs.Name, fs.Wrapper, optsText)
	return Statement{SQL: sql, Identity: fs.Identity(), LockMode: lockNone}
}

func renderCollation(c schema.Collation) Statement {
	sql := fmt.Sprintf("CREATE COLLATION %s.%s (PROVIDER = %s, LOCALE = %q, DETERMINISTIC = %t);",
		c.Schema, c.Name, c.Provider, c.Locale, c.Deterministic)
	return Statement{SQL: sql, Identity: c.Identity(), LockMode: lockNone}
}

func renderComment(c schema.Comment) Statement {
	sql := fmt.Sprintf("COMMENT ON %s IS %q;", commentTargetRef(c.Target), c.Text)
	return Statement{SQL: sql, Identity: c.Identity(), LockMode: lockNone}
}
