package parser

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/shem-sql/shem/internal/schema"
)

// lowerCreateFunction turns a CreateFunctionStmt (covers both CREATE
// FUNCTION and CREATE PROCEDURE) into a schema.Function. The body is kept
// as opaque, byte-preserved source text rather than further parsed —
// PL/pgSQL bodies are a separate embedded language the grammar does not
// lower, matching how the teacher treats function bodies as opaque blobs.
func (p *Parser) lowerCreateFunction(stmt *pg_query.CreateFunctionStmt) error {
	fnSchema, name := qualifiedTypeName(stmt.Funcname, p.defaultSchema)
	fn := schema.Function{
		Schema:      fnSchema,
		Name:        name,
		IsProcedure: stmt.IsProcedure,
		Volatility:  schema.VolatilityVolatile,
	}

	for _, param := range stmt.Parameters {
		fp, ok := param.Node.(*pg_query.Node_FunctionParameter)
		if !ok {
			continue
		}
		fn.Params = append(fn.Params, schema.Param{
			Name: fp.FunctionParameter.Name,
			Mode: paramMode(fp.FunctionParameter.Mode),
			Type: formatTypeName(fp.FunctionParameter.ArgType),
		})
	}

	if stmt.ReturnType != nil {
		fn.Returns.Type = formatTypeName(stmt.ReturnType)
	}

	for _, opt := range stmt.Options {
		d, ok := opt.Node.(*pg_query.Node_DefElem)
		if !ok {
			continue
		}
		applyFunctionOption(&fn, d.DefElem)
	}

	p.result.Put(fn)
	return nil
}

func paramMode(m pg_query.FunctionParameterMode) schema.ParamMode {
	switch m {
	case pg_query.FunctionParameterMode_FUNC_PARAM_OUT:
		return schema.ParamOut
	case pg_query.FunctionParameterMode_FUNC_PARAM_INOUT:
		return schema.ParamInOut
	case pg_query.FunctionParameterMode_FUNC_PARAM_VARIADIC:
		return schema.ParamVariadic
	default:
		return schema.ParamIn
	}
}

func applyFunctionOption(fn *schema.Function, d *pg_query.DefElem) {
	switch d.Defname {
	case "language":
		fn.Language = defElemString(d)
	case "as":
		fn.Body = functionBody(d)
	case "security":
		fn.SecurityDefiner = defElemBool(d)
	case "strict":
		fn.Strict = defElemBool(d)
	case "volatility":
		switch strings.ToLower(defElemString(d)) {
		case "immutable":
			fn.Volatility = schema.VolatilityImmutable
		case "stable":
			fn.Volatility = schema.VolatilityStable
		default:
			fn.Volatility = schema.VolatilityVolatile
		}
	}
}

func functionBody(d *pg_query.DefElem) string {
	if d.Arg == nil {
		return ""
	}
	if list, ok := d.Arg.Node.(*pg_query.Node_List); ok {
		parts := constraintKeys(list.List.Items)
		return strings.Join(parts, "\n")
	}
	if s, ok := d.Arg.Node.(*pg_query.Node_String_); ok {
		return s.String_.Sval
	}
	return ""
}

// defElemBool reports a DefElem's boolean value. A bare option with no
// argument is present-means-true; one with an argument is read as a SQL
// boolean literal, either a Boolean node (as STRICT and SECURITY DEFINER
// produce) or the string "true".
func defElemBool(d *pg_query.DefElem) bool {
	if d.Arg == nil {
		return true
	}
	if b, ok := d.Arg.Node.(*pg_query.Node_Boolean); ok {
		return b.Boolean.Boolval
	}
	return strings.EqualFold(defElemString(d), "true")
}

// trigger type bitmask values from PostgreSQL's trigger.h, used to decode
// CreateTrigStmt.Timing / .Events since the grammar reports them as a raw
// bitmask rather than a friendlier enum.
const (
	triggerTypeRow     = 1 << 0
	triggerTypeBefore  = 1 << 1
	triggerTypeInsert  = 1 << 2
	triggerTypeDelete  = 1 << 3
	triggerTypeUpdate  = 1 << 4
	triggerTypeTruncate = 1 << 5
	triggerTypeInstead = 1 << 6
)

func (p *Parser) lowerCreateTrigger(stmt *pg_query.CreateTrigStmt, src string) error {
	trgSchema, table := relationName(stmt.Relation, p.defaultSchema)
	_, fnName := qualifiedTypeName(stmt.Funcname, p.defaultSchema)

	t := schema.Trigger{
		Schema:     trgSchema,
		Name:       stmt.Trigname,
		Table:      table,
		Timing:     triggerTiming(stmt.Timing),
		Events:     triggerEvents(stmt.Events),
		ForEachRow: stmt.Row,
		Function:   fnName,
	}
	for _, a := range stmt.Args {
		if s, ok := a.Node.(*pg_query.Node_String_); ok {
			t.FunctionArgs = append(t.FunctionArgs, s.String_.Sval)
		}
	}
	if stmt.WhenClause != nil {
		t.When = formatExpr(stmt.WhenClause, src)
	}

	if stmt.Isconstraint {
		ct := schema.ConstraintTrigger{Trigger: t, Deferrable: stmt.Deferrable, InitiallyDeferred: stmt.Initdeferred}
		p.result.Put(ct)
		return nil
	}
	p.result.Put(t)
	return nil
}

func triggerTiming(bits uint32) schema.TriggerTiming {
	switch {
	case bits&triggerTypeInstead != 0:
		return schema.TriggerInsteadOf
	case bits&triggerTypeBefore != 0:
		return schema.TriggerBefore
	default:
		return schema.TriggerAfter
	}
}

func triggerEvents(bits uint32) []string {
	var events []string
	if bits&triggerTypeInsert != 0 {
		events = append(events, "INSERT")
	}
	if bits&triggerTypeUpdate != 0 {
		events = append(events, "UPDATE")
	}
	if bits&triggerTypeDelete != 0 {
		events = append(events, "DELETE")
	}
	if bits&triggerTypeTruncate != 0 {
		events = append(events, "TRUNCATE")
	}
	return events
}

func (p *Parser) lowerCreatePolicy(stmt *pg_query.CreatePolicyStmt, src string) error {
	polSchema, table := relationName(stmt.Table, p.defaultSchema)
	pol := schema.Policy{
		Schema:     polSchema,
		Name:       stmt.PolicyName,
		Table:      table,
		Command:    policyCommand(stmt.CmdName),
		Permissive: stmt.Permissive,
	}
	for _, r := range stmt.Roles {
		if rs, ok := r.Node.(*pg_query.Node_RoleSpec); ok {
			pol.Roles = append(pol.Roles, rs.RoleSpec.Rolename)
		}
	}
	if stmt.Qual != nil {
		pol.Using = formatExpr(stmt.Qual, src)
	}
	if stmt.WithCheck != nil {
		pol.WithCheck = formatExpr(stmt.WithCheck, src)
	}
	p.result.Put(pol)
	return nil
}

func policyCommand(cmd string) schema.PolicyCommand {
	switch strings.ToLower(cmd) {
	case "select":
		return schema.PolicySelect
	case "insert":
		return schema.PolicyInsert
	case "update":
		return schema.PolicyUpdate
	case "delete":
		return schema.PolicyDelete
	default:
		return schema.PolicyAll
	}
}
