// Package parser lowers declarative SQL DDL into a schema.Schema. It never
// talks to a live database — introspector does that — so the two halves of
// the declarative/live comparison share nothing but the Schema Model type.
package parser

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/shem-sql/shem/internal/schema"
	"github.com/shem-sql/shem/internal/shemerr"
	"github.com/shem-sql/shem/internal/sqlgrammar"
)

// Parser accumulates lowered objects across possibly many source files; a
// multi-file declarative schema is just repeated calls to Parse against the
// same Parser so cross-file forward references (a CREATE INDEX in one file
// against a CREATE TABLE in another) resolve once every file has been read.
type Parser struct {
	defaultSchema string
	result        *schema.Schema
}

// New returns a Parser that assigns defaultSchema to any unqualified
// relation or type name it lowers.
func New(defaultSchema string) *Parser {
	if defaultSchema == "" {
		defaultSchema = "public"
	}
	return &Parser{defaultSchema: defaultSchema, result: schema.New()}
}

// Parse lowers every statement in sql into the Parser's accumulated Schema.
// A statement whose DDL kind is recognized but not yet handled produces an
// UnsupportedStatement error; parse failures from the grammar itself
// produce a ParseError. Both are returned immediately — the declarative
// format is expected to be valid SQL end to end, so the parser does not
// attempt partial recovery.
func (p *Parser) Parse(sql string) error {
	stmts, err := sqlgrammar.Parse(sql)
	if err != nil {
		return shemerr.Parsef("parsing declarative schema", err)
	}
	for _, stmt := range stmts {
		if err := p.lowerStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Result returns the Schema Model accumulated so far.
func (p *Parser) Result() *schema.Schema {
	return p.result
}

func (p *Parser) lowerStatement(stmt sqlgrammar.Statement) error {
	switch n := stmt.Node.Node.(type) {
	case *pg_query.Node_CreateStmt:
		return p.lowerCreateTable(n.CreateStmt, stmt.Text)
	case *pg_query.Node_IndexStmt:
		return p.lowerCreateIndex(n.IndexStmt, stmt.Text)
	case *pg_query.Node_ViewStmt:
		query, err := sqlgrammar.Normalize(stmt.Text)
		if err != nil {
			query = stmt.Text
		}
		return p.lowerCreateView(n.ViewStmt, query)
	case *pg_query.Node_CreateTableAsStmt:
		return p.lowerCreateMaterializedView(n.CreateTableAsStmt, stmt.Text)
	case *pg_query.Node_CreateEnumStmt:
		return p.lowerCreateEnum(n.CreateEnumStmt)
	case *pg_query.Node_CompositeTypeStmt:
		return p.lowerCompositeType(n.CompositeTypeStmt)
	case *pg_query.Node_CreateDomainStmt:
		return p.lowerCreateDomain(n.CreateDomainStmt, stmt.Text)
	case *pg_query.Node_CreateSeqStmt:
		return p.lowerCreateSequence(n.CreateSeqStmt)
	case *pg_query.Node_CreateExtensionStmt:
		return p.lowerCreateExtension(n.CreateExtensionStmt)
	case *pg_query.Node_CreateSchemaStmt:
		return p.lowerCreateSchema(n.CreateSchemaStmt)
	case *pg_query.Node_CreateFunctionStmt:
		return p.lowerCreateFunction(n.CreateFunctionStmt)
	case *pg_query.Node_CreateTrigStmt:
		return p.lowerCreateTrigger(n.CreateTrigStmt, stmt.Text)
	case *pg_query.Node_CreatePolicyStmt:
		return p.lowerCreatePolicy(n.CreatePolicyStmt, stmt.Text)
	case *pg_query.Node_RuleStmt:
		return p.lowerRule(n.RuleStmt, stmt.Text)
	case *pg_query.Node_CreateForeignServerStmt:
		return p.lowerCreateForeignServer(n.CreateForeignServerStmt)
	case *pg_query.Node_DefineStmt:
		if n.DefineStmt.Kind == pg_query.ObjectType_OBJECT_COLLATION {
			return p.lowerDefineCollation(n.DefineStmt)
		}
		return unsupported(fmt.Sprintf("DEFINE statement for %s", n.DefineStmt.Kind))
	case *pg_query.Node_CommentStmt:
		return p.lowerComment(n.CommentStmt)
	case *pg_query.Node_AlterTableStmt:
		return p.lowerAlterTable(n.AlterTableStmt, stmt.Text)
	default:
		return unsupported(fmt.Sprintf("%T", n))
	}
}
