package parser

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// formatExpr renders a parsed expression node back into normalized SQL
// text for storage in the Schema Model (defaults, CHECK constraints, index
// predicates, policy USING/WITH CHECK clauses). It covers the expression
// shapes that actually appear in declarative schemas — literals, simple
// function calls, type casts, operators, boolean combinations, column
// references — and falls back to sliceByLocation for anything else, which
// returns raw source text from the node's start to the end of src rather
// than the expression alone.
//
// Grounded on the teacher's internal/schema/parser.go formatExpr.
func formatExpr(node *pg_query.Node, src string) string {
	if node == nil {
		return ""
	}
	switch n := node.Node.(type) {
	case *pg_query.Node_AConst:
		return formatAConst(n.AConst)
	case *pg_query.Node_ColumnRef:
		return formatColumnRef(n.ColumnRef)
	case *pg_query.Node_FuncCall:
		return formatFuncCall(n.FuncCall, src)
	case *pg_query.Node_TypeCast:
		return formatTypeCast(n.TypeCast, src)
	case *pg_query.Node_AExpr:
		return formatAExpr(n.AExpr, src)
	case *pg_query.Node_BoolExpr:
		return formatBoolExpr(n.BoolExpr, src)
	case *pg_query.Node_NullTest:
		return formatNullTest(n.NullTest, src)
	case *pg_query.Node_SqlvalueFunction:
		return formatSQLValueFunction(n.SqlvalueFunction)
	case *pg_query.Node_CaseExpr:
		return sliceByLocation(node, src)
	default:
		return sliceByLocation(node, src)
	}
}

func formatAConst(c *pg_query.A_Const) string {
	if c == nil {
		return "NULL"
	}
	if c.Isnull {
		return "NULL"
	}
	switch v := c.Val.(type) {
	case *pg_query.A_Const_Ival:
		return fmt.Sprintf("%d", v.Ival.Ival)
	case *pg_query.A_Const_Fval:
		return v.Fval.Fval
	case *pg_query.A_Const_Sval:
		return "'" + strings.ReplaceAll(v.Sval.Sval, "'", "''") + "'"
	case *pg_query.A_Const_Boolval:
		if v.Boolval.Boolval {
			return "true"
		}
		return "false"
	case *pg_query.A_Const_Bsval:
		return v.Bsval.Bsval
	default:
		return "NULL"
	}
}

func formatColumnRef(ref *pg_query.ColumnRef) string {
	var parts []string
	for _, f := range ref.Fields {
		switch v := f.Node.(type) {
		case *pg_query.Node_String_:
			parts = append(parts, v.String_.Sval)
		case *pg_query.Node_AStar:
			parts = append(parts, "*")
		}
	}
	return strings.Join(parts, ".")
}

func formatFuncCall(fc *pg_query.FuncCall, src string) string {
	var name []string
	for _, n := range fc.Funcname {
		if s, ok := n.Node.(*pg_query.Node_String_); ok {
			name = append(name, s.String_.Sval)
		}
	}
	var args []string
	for _, a := range fc.Args {
		args = append(args, formatExpr(a, src))
	}
	return fmt.Sprintf("%s(%s)", strings.Join(name, "."), strings.Join(args, ", "))
}

func formatTypeCast(tc *pg_query.TypeCast, src string) string {
	inner := formatExpr(tc.Arg, src)
	typeName := formatTypeName(tc.TypeName)
	// PostgreSQL canonicalizes simple string-literal casts as 'lit'::type,
	// matching what information_schema.column_default reports, so this
	// shape compares equal against introspected defaults without further
	// normalization.
	return fmt.Sprintf("%s::%s", inner, typeName)
}

func formatAExpr(e *pg_query.A_Expr, src string) string {
	op := "?"
	for _, n := range e.Name {
		if s, ok := n.Node.(*pg_query.Node_String_); ok {
			op = s.String_.Sval
		}
	}
	left := formatExpr(e.Lexpr, src)
	right := formatExpr(e.Rexpr, src)
	if left == "" {
		return fmt.Sprintf("%s %s", op, right)
	}
	return fmt.Sprintf("%s %s %s", left, op, right)
}

func formatBoolExpr(e *pg_query.BoolExpr, src string) string {
	var parts []string
	for _, a := range e.Args {
		parts = append(parts, formatExpr(a, src))
	}
	switch e.Boolop {
	case pg_query.BoolExprType_AND_EXPR:
		return strings.Join(parts, " AND ")
	case pg_query.BoolExprType_OR_EXPR:
		return strings.Join(parts, " OR ")
	case pg_query.BoolExprType_NOT_EXPR:
		if len(parts) == 1 {
			return "NOT " + parts[0]
		}
	}
	return strings.Join(parts, " ")
}

func formatNullTest(n *pg_query.NullTest, src string) string {
	arg := formatExpr(n.Arg, src)
	if n.Nulltesttype == pg_query.NullTestType_IS_NOT_NULL {
		return arg + " IS NOT NULL"
	}
	return arg + " IS NULL"
}

func formatSQLValueFunction(f *pg_query.SQLValueFunction) string {
	switch f.Op {
	case pg_query.SQLValueFunctionOp_SVFOP_CURRENT_TIMESTAMP:
		return "CURRENT_TIMESTAMP"
	case pg_query.SQLValueFunctionOp_SVFOP_CURRENT_DATE:
		return "CURRENT_DATE"
	case pg_query.SQLValueFunctionOp_SVFOP_CURRENT_USER:
		return "CURRENT_USER"
	default:
		return "CURRENT_TIMESTAMP"
	}
}

// sliceByLocation recovers source text for an expression node, used as a
// fallback for expression shapes formatExpr doesn't special-case. It trusts
// the node's reported byte offset but has no end offset, so it returns the
// remainder of src from that offset, trimmed, including any text after the
// expression; when nodeLocation knows no offset for the node, it returns all
// of src trimmed.
func sliceByLocation(node *pg_query.Node, src string) string {
	loc := nodeLocation(node)
	if loc < 0 || loc >= len(src) {
		return strings.TrimSpace(src)
	}
	return strings.TrimSpace(src[loc:])
}

func nodeLocation(node *pg_query.Node) int {
	if node == nil {
		return -1
	}
	switch n := node.Node.(type) {
	case *pg_query.Node_CaseExpr:
		return int(n.CaseExpr.Location)
	case *pg_query.Node_AConst:
		return int(n.AConst.Location)
	case *pg_query.Node_ColumnRef:
		return int(n.ColumnRef.Location)
	case *pg_query.Node_FuncCall:
		return int(n.FuncCall.Location)
	default:
		return -1
	}
}

// formatTypeName renders a TypeName node into its canonical textual
// spelling, including array brackets and typmods (precision/scale, length).
// Grounded on the teacher's formatTypeName/typeMap.
func formatTypeName(tn *pg_query.TypeName) string {
	if tn == nil {
		return ""
	}
	var parts []string
	for _, n := range tn.Names {
		if s, ok := n.Node.(*pg_query.Node_String_); ok {
			if s.String_.Sval == "pg_catalog" {
				continue
			}
			parts = append(parts, s.String_.Sval)
		}
	}
	name := strings.Join(parts, ".")
	if mods := formatTypmods(tn.Typmods); mods != "" {
		name += mods
	}
	for range tn.ArrayBounds {
		name += "[]"
	}
	return name
}

func formatTypmods(mods []*pg_query.Node) string {
	if len(mods) == 0 {
		return ""
	}
	var vals []string
	for _, m := range mods {
		if c, ok := m.Node.(*pg_query.Node_AConst); ok {
			vals = append(vals, formatAConst(c.AConst))
		}
	}
	if len(vals) == 0 {
		return ""
	}
	return "(" + strings.Join(vals, ",") + ")"
}
