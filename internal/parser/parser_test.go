package parser

import (
	"testing"

	"github.com/shem-sql/shem/internal/schema"
)

func TestParseCreateTableWithConstraints(t *testing.T) {
	p := New("public")
	err := p.Parse(`
		create table users (
			id serial primary key,
			email text not null unique,
			age integer check (age >= 0),
			created_at timestamptz default now()
		);
	`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	obj, ok := p.Result().Get(schema.Identity{Schema: "public", Name: "users", Kind: schema.KindTable})
	if !ok {
		t.Fatalf("expected users table to be lowered")
	}
	tbl := obj.(schema.Table)
	if len(tbl.Columns) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(tbl.Columns))
	}
	if tbl.PrimaryKey == nil || len(tbl.PrimaryKey.Columns) != 1 || tbl.PrimaryKey.Columns[0] != "id" {
		t.Errorf("expected primary key on id, got %+v", tbl.PrimaryKey)
	}
	if len(tbl.Unique) != 1 {
		t.Errorf("expected one unique constraint, got %d", len(tbl.Unique))
	}
	if len(tbl.Checks) != 1 {
		t.Errorf("expected one check constraint, got %d", len(tbl.Checks))
	}
}

func TestParseCreateTableForeignKey(t *testing.T) {
	p := New("public")
	err := p.Parse(`
		create table users (id serial primary key);
		create table orders (
			id serial primary key,
			user_id integer references users(id) on delete cascade
		);
	`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	obj, ok := p.Result().Get(schema.Identity{Schema: "public", Name: "orders", Kind: schema.KindTable})
	if !ok {
		t.Fatalf("expected orders table to be lowered")
	}
	tbl := obj.(schema.Table)
	if len(tbl.ForeignKeys) != 1 {
		t.Fatalf("expected one foreign key, got %d", len(tbl.ForeignKeys))
	}
	fk := tbl.ForeignKeys[0]
	if fk.ReferencedTable != "users" || fk.OnDelete != "CASCADE" {
		t.Errorf("unexpected foreign key: %+v", fk)
	}
}

func TestParseCreateIndexWithPredicate(t *testing.T) {
	p := New("public")
	err := p.Parse(`
		create table users (id serial primary key, email text, active boolean);
		create unique index users_email_idx on users (email) where active;
	`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	obj, ok := p.Result().Get(schema.Identity{Schema: "public", Name: "users_email_idx", Kind: schema.KindIndex})
	if !ok {
		t.Fatalf("expected index to be lowered")
	}
	idx := obj.(schema.Index)
	if !idx.Unique {
		t.Errorf("expected unique index")
	}
	if len(idx.Keys) != 1 || idx.Keys[0].Expression != "email" {
		t.Errorf("unexpected index keys: %+v", idx.Keys)
	}
}

func TestParseCreateEnum(t *testing.T) {
	p := New("public")
	if err := p.Parse(`create type status as enum ('open', 'closed');`); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	obj, ok := p.Result().Get(schema.Identity{Schema: "public", Name: "status", Kind: schema.KindEnum})
	if !ok {
		t.Fatalf("expected enum to be lowered")
	}
	e := obj.(schema.Enum)
	if len(e.Labels) != 2 || e.Labels[0] != "open" || e.Labels[1] != "closed" {
		t.Errorf("unexpected enum labels: %+v", e.Labels)
	}
}

func TestParseCreateExtension(t *testing.T) {
	p := New("public")
	if err := p.Parse(`create extension if not exists "uuid-ossp" with schema public;`); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	obj, ok := p.Result().Get(schema.Identity{Name: "uuid-ossp", Kind: schema.KindExtension})
	if !ok {
		t.Fatalf("expected extension to be lowered")
	}
	ext := obj.(schema.Extension)
	if ext.Schema != "public" {
		t.Errorf("expected extension schema public, got %q", ext.Schema)
	}
}

func TestParseEnableRowLevelSecurity(t *testing.T) {
	p := New("public")
	err := p.Parse(`
		create table users (id serial primary key);
		alter table users enable row level security;
	`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	obj, _ := p.Result().Get(schema.Identity{Schema: "public", Name: "users", Kind: schema.KindTable})
	if !obj.(schema.Table).RLSEnabled {
		t.Errorf("expected RLS to be enabled after ALTER TABLE")
	}
}

func TestParseUnsupportedStatementReturnsError(t *testing.T) {
	p := New("public")
	err := p.Parse(`grant select on all tables in schema public to readonly;`)
	if err == nil {
		t.Fatalf("expected error for unsupported statement")
	}
}
