package parser

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/shem-sql/shem/internal/schema"
)

func (p *Parser) lowerComment(stmt *pg_query.CommentStmt) error {
	target, ok := commentTarget(stmt, p.defaultSchema)
	if !ok {
		return unsupported("COMMENT ON target")
	}
	p.result.Put(schema.Comment{Target: target, Text: stmt.Comment})
	return nil
}

// commentTarget resolves the object a COMMENT ON statement names back into
// an Identity. Only the object kinds this parser lowers elsewhere are
// supported; anything else is reported to the caller as unhandled so a
// comment is never silently dropped.
func commentTarget(stmt *pg_query.CommentStmt, defaultSchema string) (schema.Identity, bool) {
	if stmt.Object == nil {
		return schema.Identity{}, false
	}
	switch obj := stmt.Object.Node.(type) {
	case *pg_query.Node_List:
		parts := constraintKeys(obj.List.Items)
		kind, ok := commentObjectKind(stmt.Objtype)
		if !ok || len(parts) == 0 {
			return schema.Identity{}, false
		}
		sc, name := splitQualifiedParts(parts, defaultSchema)
		return schema.Identity{Schema: sc, Name: name, Kind: kind}, true
	case *pg_query.Node_String_:
		kind, ok := commentObjectKind(stmt.Objtype)
		if !ok {
			return schema.Identity{}, false
		}
		return schema.Identity{Name: obj.String_.Sval, Kind: kind}, true
	default:
		return schema.Identity{}, false
	}
}

func splitQualifiedParts(parts []string, defaultSchema string) (string, string) {
	if len(parts) == 1 {
		return defaultSchema, parts[0]
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}

func commentObjectKind(t pg_query.ObjectType) (schema.Kind, bool) {
	switch t {
	case pg_query.ObjectType_OBJECT_TABLE:
		return schema.KindTable, true
	case pg_query.ObjectType_OBJECT_COLUMN:
		return schema.KindTable, true
	case pg_query.ObjectType_OBJECT_INDEX:
		return schema.KindIndex, true
	case pg_query.ObjectType_OBJECT_VIEW:
		return schema.KindView, true
	case pg_query.ObjectType_OBJECT_MATVIEW:
		return schema.KindMaterializedView, true
	case pg_query.ObjectType_OBJECT_FUNCTION:
		return schema.KindFunction, true
	case pg_query.ObjectType_OBJECT_PROCEDURE:
		return schema.KindProcedure, true
	case pg_query.ObjectType_OBJECT_SEQUENCE:
		return schema.KindSequence, true
	case pg_query.ObjectType_OBJECT_TYPE:
		return schema.KindCompositeType, true
	case pg_query.ObjectType_OBJECT_DOMAIN:
		return schema.KindDomain, true
	case pg_query.ObjectType_OBJECT_TRIGGER:
		return schema.KindTrigger, true
	case pg_query.ObjectType_OBJECT_POLICY:
		return schema.KindPolicy, true
	case pg_query.ObjectType_OBJECT_SCHEMA:
		return schema.KindSchema, true
	default:
		return "", false
	}
}

func (p *Parser) lowerRule(stmt *pg_query.RuleStmt, src string) error {
	ruleSchema, table := relationName(stmt.Relation, p.defaultSchema)
	r := schema.Rule{
		Schema:  ruleSchema,
		Name:    stmt.Rulename,
		Table:   table,
		Event:   cmdTypeName(stmt.Event),
		Instead: stmt.Instead,
	}
	if stmt.WhereClause != nil {
		r.Where = formatExpr(stmt.WhereClause, src)
	}
	p.result.Put(r)
	return nil
}

func cmdTypeName(cmd pg_query.CmdType) string {
	switch cmd {
	case pg_query.CmdType_CMD_SELECT:
		return "SELECT"
	case pg_query.CmdType_CMD_INSERT:
		return "INSERT"
	case pg_query.CmdType_CMD_UPDATE:
		return "UPDATE"
	case pg_query.CmdType_CMD_DELETE:
		return "DELETE"
	default:
		return "NOTHING"
	}
}

func (p *Parser) lowerCreateForeignServer(stmt *pg_query.CreateForeignServerStmt) error {
	srv := schema.ForeignServer{
		Name:    stmt.Servername,
		Wrapper: stmt.Fdwname,
		Options: make(map[string]string),
	}
	for _, o := range stmt.Options {
		if d, ok := o.Node.(*pg_query.Node_DefElem); ok {
			srv.Options[d.DefElem.Defname] = defElemString(d.DefElem)
		}
	}
	p.result.Put(srv)
	return nil
}

func (p *Parser) lowerDefineCollation(stmt *pg_query.DefineStmt) error {
	colSchema, name := qualifiedTypeName(stmt.Defnames, p.defaultSchema)
	c := schema.Collation{Schema: colSchema, Name: name, Deterministic: true}
	for _, d := range stmt.Definition {
		def, ok := d.Node.(*pg_query.Node_DefElem)
		if !ok {
			continue
		}
		switch def.DefElem.Defname {
		case "provider":
			c.Provider = defElemString(def.DefElem)
		case "locale":
			c.Locale = defElemString(def.DefElem)
		case "deterministic":
			c.Deterministic = defElemBool(def.DefElem)
		}
	}
	p.result.Put(c)
	return nil
}
