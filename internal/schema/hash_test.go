package schema

import "testing"

func buildFixtureSchema() *Schema {
	s := New()
	s.Put(Table{
		Schema:  "public",
		Name:    "users",
		Columns: []Column{{Name: "id", Type: "integer"}, {Name: "email", Type: "text"}},
	})
	s.Put(Index{Schema: "public", Name: "users_email_idx", Table: "users", Unique: true})
	return s
}

func TestHashIsStableAcrossIdenticalSchemas(t *testing.T) {
	a, err := Hash(buildFixtureSchema())
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	b, err := Hash(buildFixtureSchema())
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if a != b {
		t.Errorf("expected identical schemas to hash equal, got %q and %q", a, b)
	}
}

func TestHashChangesWhenSchemaChanges(t *testing.T) {
	base, err := Hash(buildFixtureSchema())
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	changed := buildFixtureSchema()
	changed.Put(Table{Schema: "public", Name: "orders"})
	withOrders, err := Hash(changed)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if base == withOrders {
		t.Errorf("expected adding a table to change the hash")
	}
}

func TestHashIgnoresCosmeticDefaultDifferences(t *testing.T) {
	s1 := New()
	s1.Put(Table{Schema: "public", Name: "t", Columns: []Column{{Name: "id", Type: "serial"}}})

	s2 := New()
	s2.Put(Table{Schema: "public", Name: "t", Columns: []Column{{Name: "id", Type: "integer", Default: "nextval('t_id_seq'::regclass)"}}})

	h1, err := Hash(s1)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := Hash(s2)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if h1 != h2 {
		t.Errorf("expected serial and equivalent introspected column to hash equal")
	}
}
