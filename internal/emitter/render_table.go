package emitter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shem-sql/shem/internal/differ"
	"github.com/shem-sql/shem/internal/schema"
)

// renderCreateTable emits CREATE TABLE with its primary key, unique and
// check constraints inline, an ENABLE ROW LEVEL SECURITY statement when RLS
// is on, and one trailing ALTER TABLE ... ADD CONSTRAINT per foreign key
// left on tbl. Emit's splitTableCreate clears tbl.ForeignKeys before calling
// it and appends those foreign keys at the end of the plan, so that two
// tables with mutual foreign keys can both be created in the same plan. Grounded
// on the teacher's database/postgres/generator.go CreateTable/
// FormatColumnDefinition.
func renderCreateTable(tbl schema.Table) []Statement {
	var lines []string
	for _, col := range tbl.Columns {
		lines = append(lines, "  "+renderColumnDefinition(col))
	}
	if tbl.PrimaryKey != nil {
		lines = append(lines, "  "+renderPrimaryKey(tbl.Name, *tbl.PrimaryKey))
	}
	for _, u := range tbl.Unique {
		lines = append(lines, "  "+renderUnique(u))
	}
	for _, c := range tbl.Checks {
		lines = append(lines, "  "+renderCheck(c))
	}

	inherits := ""
	if len(tbl.Inherits) > 0 {
		inherits = fmt.Sprintf(" INHERITS (%s)", strings.Join(tbl.Inherits, ", "))
	}

	sql := fmt.Sprintf("CREATE TABLE %s (\n%s\n)%s;", quoteQualified(tbl.Schema, tbl.Name), strings.Join(lines, ",\n"), inherits)

	stmts := []Statement{{SQL: sql, Identity: tbl.Identity(), LockMode: lockAccessExclusive}}
	if tbl.RLSEnabled {
		stmts = append(stmts, Statement{
			SQL:      fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY;", quoteQualified(tbl.Schema, tbl.Name)),
			Identity: tbl.Identity(),
			LockMode: lockAccessExclusive,
		})
	}
	for _, fk := range tbl.ForeignKeys {
		stmts = append(stmts, renderAddForeignKey(tbl, fk))
	}
	return stmts
}

func renderColumnDefinition(col schema.Column) string {
	parts := []string{quoteIdent(col.Name), col.Type}
	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if col.Default != "" {
		parts = append(parts, "DEFAULT "+col.Default)
	}
	switch col.Identity {
	case schema.IdentityAlways:
		parts = append(parts, "GENERATED ALWAYS AS IDENTITY")
	case schema.IdentityByDefault:
		parts = append(parts, "GENERATED BY DEFAULT AS IDENTITY")
	}
	if col.Generated != "" {
		parts = append(parts, fmt.Sprintf("GENERATED ALWAYS AS (%s) STORED", col.Generated))
	}
	return strings.Join(parts, " ")
}

func renderPrimaryKey(tableName string, pk schema.PrimaryKeyConstraint) string {
	name := pk.Name
	if name == "" {
		// Matches the name Postgres itself assigns an unnamed primary key, so a
		// parse-then-introspect round trip doesn't see a spurious rename.
		name = tableName + "_pkey"
	}
	return fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)", quoteIdent(name), quoteIdentList(pk.Columns))
}

func renderUnique(u schema.UniqueConstraint) string {
	return fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)", quoteIdent(u.Name), quoteIdentList(u.Columns))
}

func renderCheck(c schema.CheckConstraint) string {
	return fmt.Sprintf("CONSTRAINT %s CHECK (%s)", quoteIdent(c.Name), c.Expression)
}

func renderAddForeignKey(tbl schema.Table, fk schema.ForeignKeyConstraint) Statement {
	sql := fmt.Sprintf(
		"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)%s%s;",
		quoteQualified(tbl.Schema, tbl.Name), quoteIdent(fk.Name), quoteIdentList(fk.Columns),
		quoteQualified(fk.ReferencedSchema, fk.ReferencedTable), quoteIdentList(fk.ReferencedColumns),
		onClause("ON DELETE", fk.OnDelete), onClause("ON UPDATE", fk.OnUpdate),
	)
	return Statement{SQL: sql, Identity: tbl.Identity(), LockMode: lockShareRowExclusive}
}

func onClause(verb, action string) string {
	if action == "" || action == "NO ACTION" {
		return ""
	}
	return " " + verb + " " + action
}

func renderDropTable(tbl schema.Table) Statement {
	return Statement{
		SQL:         fmt.Sprintf("DROP TABLE %s;", quoteQualified(tbl.Schema, tbl.Name)),
		Identity:    tbl.Identity(),
		LockMode:    lockAccessExclusive,
		Destructive: true,
		DestructiveReason: "drops all rows and the table definition",
	}
}

// renderAlterTable turns a differ.TableDiff into the sequence of ALTER
// TABLE statements that carry it out: add columns, drop columns, alter
// column types/defaults/nullability, add/drop constraints, toggle RLS.
// Grounded on the teacher's AddColumn/DropColumn/ModifyColumn.
func renderAlterTable(id schema.Identity, td differ.TableDiff) []Statement {
	qualified := quoteQualified(id.Schema, id.Name)
	var stmts []Statement

	for _, col := range td.AddedColumns {
		stmts = append(stmts, Statement{
			SQL:      fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", qualified, renderColumnDefinition(col)),
			Identity: id, LockMode: lockAccessExclusive,
		})
	}
	for _, alt := range td.AlteredColumns {
		stmts = append(stmts, renderAlterColumn(qualified, id, alt)...)
	}
	for _, fk := range td.DroppedForeignKeys {
		stmts = append(stmts, Statement{
			SQL:      fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", qualified, quoteIdent(fk.Name)),
			Identity: id, LockMode: lockAccessExclusive,
		})
	}
	for _, name := range td.DroppedColumns {
		stmts = append(stmts, Statement{
			SQL:         fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", qualified, quoteIdent(name)),
			Identity:    id,
			LockMode:    lockAccessExclusive,
			Destructive: true,
			DestructiveReason: fmt.Sprintf("drops column %q and its data", name),
		})
	}
	if td.PrimaryKeyDropped != nil {
		stmts = append(stmts, Statement{
			SQL:      fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", qualified, quoteIdent(td.PrimaryKeyDropped.Name)),
			Identity: id, LockMode: lockAccessExclusive,
		})
	}
	if td.PrimaryKeyAdded != nil {
		stmts = append(stmts, Statement{
			SQL:      fmt.Sprintf("ALTER TABLE %s ADD %s;", qualified, renderPrimaryKey(id.Name, *td.PrimaryKeyAdded)),
			Identity: id, LockMode: lockAccessExclusive,
		})
	}
	for _, u := range td.DroppedUnique {
		stmts = append(stmts, Statement{SQL: fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", qualified, quoteIdent(u.Name)), Identity: id, LockMode: lockAccessExclusive})
	}
	for _, u := range td.AddedUnique {
		stmts = append(stmts, Statement{SQL: fmt.Sprintf("ALTER TABLE %s ADD %s;", qualified, renderUnique(u)), Identity: id, LockMode: lockShareRowExclusive})
	}
	for _, c := range td.DroppedChecks {
		stmts = append(stmts, Statement{SQL: fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", qualified, quoteIdent(c.Name)), Identity: id, LockMode: lockAccessExclusive})
	}
	for _, c := range td.AddedChecks {
		stmts = append(stmts, Statement{SQL: fmt.Sprintf("ALTER TABLE %s ADD %s;", qualified, renderCheck(c)), Identity: id, LockMode: lockShareUpdateExclusive})
	}
	for _, fk := range td.AddedForeignKeys {
		stmts = append(stmts, Statement{
			SQL: fmt.Sprintf(
				"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)%s%s;",
				qualified, quoteIdent(fk.Name), quoteIdentList(fk.Columns),
				quoteQualified(fk.ReferencedSchema, fk.ReferencedTable), quoteIdentList(fk.ReferencedColumns),
				onClause("ON DELETE", fk.OnDelete), onClause("ON UPDATE", fk.OnUpdate),
			),
			Identity: id, LockMode: lockShareRowExclusive,
		})
	}
	if td.RLSEnabled {
		stmts = append(stmts, Statement{SQL: fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY;", qualified), Identity: id, LockMode: lockAccessExclusive})
	}
	if td.RLSDisabled {
		stmts = append(stmts, Statement{SQL: fmt.Sprintf("ALTER TABLE %s DISABLE ROW LEVEL SECURITY;", qualified), Identity: id, LockMode: lockAccessExclusive})
	}

	return stmts
}

func renderAlterColumn(qualified string, id schema.Identity, alt differ.ColumnAlteration) []Statement {
	var stmts []Statement
	col := quoteIdent(alt.Name)
	if alt.Old.Type != alt.New.Type {
		stmts = append(stmts, Statement{
			SQL:      fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::%s;", qualified, col, alt.New.Type, col, alt.New.Type),
			Identity: id, LockMode: lockAccessExclusive,
		})
	}
	if alt.Old.Nullable != alt.New.Nullable {
		verb := "SET NOT NULL"
		if alt.New.Nullable {
			verb = "DROP NOT NULL"
		}
		stmts = append(stmts, Statement{SQL: fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s;", qualified, col, verb), Identity: id, LockMode: lockAccessExclusive})
	}
	if alt.Old.Default != alt.New.Default {
		if alt.New.Default == "" {
			stmts = append(stmts, Statement{SQL: fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT;", qualified, col), Identity: id, LockMode: lockAccessExclusive})
		} else {
			stmts = append(stmts, Statement{SQL: fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s;", qualified, col, alt.New.Default), Identity: id, LockMode: lockAccessExclusive})
		}
	}
	return stmts
}

// safeIdentPattern matches identifiers Postgres accepts unquoted: lowercase
// letters, digits and underscores, not starting with a digit.
var safeIdentPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// reservedWords is a representative subset of the Postgres reserved key
// word list (not the full ~70-entry table) covering the ones most likely
// to collide with a real column or table name.
var reservedWords = map[string]bool{
	"all": true, "analyse": true, "analyze": true, "and": true, "any": true,
	"as": true, "asc": true, "between": true, "case": true, "check": true,
	"collate": true, "column": true, "constraint": true, "create": true,
	"default": true, "desc": true, "distinct": true, "do": true, "else": true,
	"end": true, "except": true, "false": true, "for": true, "foreign": true,
	"from": true, "grant": true, "group": true, "having": true, "in": true,
	"index": true, "insert": true, "intersect": true, "into": true, "is": true,
	"join": true, "key": true, "limit": true, "not": true, "null": true,
	"offset": true, "on": true, "or": true, "order": true, "primary": true,
	"references": true, "select": true, "set": true, "table": true, "then": true,
	"to": true, "true": true, "union": true, "unique": true, "update": true,
	"user": true, "using": true, "values": true, "when": true, "where": true,
	"with": true,
}

// quoteIdent double-quotes name when it isn't a safe lowercase identifier
// Postgres would accept bare: a reserved word, anything with uppercase or
// special characters, or a leading digit. Grounded on the teacher's
// database/postgres/driver.go quoteIdentifier, generalized to only quote
// when necessary instead of unconditionally, so generated SQL stays
// readable for the common case.
func quoteIdent(name string) string {
	if safeIdentPattern.MatchString(name) && !reservedWords[name] {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteIdentList(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quoteIdent(n)
	}
	return strings.Join(out, ", ")
}

func quoteQualified(schemaName, name string) string {
	return quoteIdent(schemaName) + "." + quoteIdent(name)
}
