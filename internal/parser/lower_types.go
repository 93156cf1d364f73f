package parser

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/shem-sql/shem/internal/schema"
)

func (p *Parser) lowerCreateEnum(stmt *pg_query.CreateEnumStmt) error {
	enumSchema, name := qualifiedTypeName(stmt.TypeName, p.defaultSchema)
	e := schema.Enum{Schema: enumSchema, Name: name}
	for _, v := range stmt.Vals {
		if s, ok := v.Node.(*pg_query.Node_String_); ok {
			e.Labels = append(e.Labels, s.String_.Sval)
		}
	}
	p.result.Put(e)
	return nil
}

func (p *Parser) lowerCompositeType(stmt *pg_query.CompositeTypeStmt) error {
	ctSchema, name := relationName(stmt.Typevar, p.defaultSchema)
	ct := schema.CompositeType{Schema: ctSchema, Name: name}
	for _, col := range stmt.Coldeflist {
		cd, ok := col.Node.(*pg_query.Node_ColumnDef)
		if !ok {
			continue
		}
		ct.Attributes = append(ct.Attributes, schema.CompositeAttr{
			Name: cd.ColumnDef.Colname,
			Type: formatTypeName(cd.ColumnDef.TypeName),
		})
	}
	p.result.Put(ct)
	return nil
}

func (p *Parser) lowerCreateDomain(stmt *pg_query.CreateDomainStmt, src string) error {
	domSchema, name := qualifiedTypeName(stmt.Domainname, p.defaultSchema)
	d := schema.Domain{
		Schema:   domSchema,
		Name:     name,
		BaseType: formatTypeName(stmt.TypeName),
	}
	for _, cn := range stmt.Constraints {
		c, ok := cn.Node.(*pg_query.Node_Constraint)
		if !ok {
			continue
		}
		switch c.Constraint.Contype {
		case pg_query.ConstrType_CONSTR_NOTNULL:
			d.NotNull = true
		case pg_query.ConstrType_CONSTR_DEFAULT:
			d.Default = formatExpr(c.Constraint.RawExpr, src)
		case pg_query.ConstrType_CONSTR_CHECK:
			d.Checks = append(d.Checks, schema.CheckConstraint{
				Name:       c.Constraint.Conname,
				Expression: formatExpr(c.Constraint.RawExpr, src),
			})
		}
	}
	p.result.Put(d)
	return nil
}

func (p *Parser) lowerCreateSequence(stmt *pg_query.CreateSeqStmt) error {
	seqSchema, name := relationName(stmt.Sequence, p.defaultSchema)
	seq := schema.Sequence{
		Schema:    seqSchema,
		Name:      name,
		Start:     1,
		Increment: 1,
		Cache:     1,
	}
	for _, o := range stmt.Options {
		d, ok := o.Node.(*pg_query.Node_DefElem)
		if !ok {
			continue
		}
		applySequenceOption(&seq, d.DefElem)
	}
	p.result.Put(seq)
	return nil
}

func applySequenceOption(seq *schema.Sequence, d *pg_query.DefElem) {
	val := defElemInt(d)
	switch d.Defname {
	case "start":
		seq.Start = val
	case "increment":
		seq.Increment = val
	case "minvalue":
		seq.Min = val
	case "maxvalue":
		seq.Max = val
	case "cache":
		seq.Cache = val
	case "cycle":
		seq.Cycle = true
	case "owned_by":
		if list, ok := d.Arg.Node.(*pg_query.Node_List); ok {
			parts := constraintKeys(list.List.Items)
			if len(parts) >= 2 {
				seq.OwnedByTable = parts[len(parts)-2]
				seq.OwnedByColumn = parts[len(parts)-1]
			}
		}
	}
}

func defElemInt(d *pg_query.DefElem) int64 {
	if d.Arg == nil {
		return 0
	}
	if c, ok := d.Arg.Node.(*pg_query.Node_Integer); ok {
		return int64(c.Integer.Ival)
	}
	if c, ok := d.Arg.Node.(*pg_query.Node_AConst); ok {
		if iv, ok := c.AConst.Val.(*pg_query.A_Const_Ival); ok {
			return int64(iv.Ival.Ival)
		}
	}
	return 0
}

func (p *Parser) lowerCreateExtension(stmt *pg_query.CreateExtensionStmt) error {
	ext := schema.Extension{Name: stmt.Extname}
	for _, o := range stmt.Options {
		d, ok := o.Node.(*pg_query.Node_DefElem)
		if !ok {
			continue
		}
		switch d.DefElem.Defname {
		case "schema":
			ext.Schema = defElemString(d.DefElem)
		case "new_version", "version":
			ext.RequestedVersion = defElemString(d.DefElem)
		}
	}
	p.result.Put(ext)
	return nil
}

func defElemString(d *pg_query.DefElem) string {
	if d.Arg == nil {
		return ""
	}
	if s, ok := d.Arg.Node.(*pg_query.Node_String_); ok {
		return s.String_.Sval
	}
	return ""
}

func (p *Parser) lowerCreateSchema(stmt *pg_query.CreateSchemaStmt) error {
	s := schema.SchemaObject{Name: stmt.Schemaname}
	if stmt.Authrole != nil {
		s.Owner = stmt.Authrole.Rolename
	}
	p.result.Put(s)
	return nil
}

func qualifiedTypeName(nodes []*pg_query.Node, defaultSchema string) (string, string) {
	parts := constraintKeys(nodes)
	switch len(parts) {
	case 0:
		return defaultSchema, ""
	case 1:
		return defaultSchema, parts[0]
	default:
		return parts[len(parts)-2], parts[len(parts)-1]
	}
}
