package emitter

import (
	"strings"
	"testing"

	"github.com/shem-sql/shem/internal/differ"
	"github.com/shem-sql/shem/internal/schema"
)

func TestEmitCreateTableDefersForeignKeys(t *testing.T) {
	current := schema.New()
	desired := schema.New()
	desired.Put(schema.Table{
		Schema:  "public",
		Name:    "orders",
		Columns: []schema.Column{{Name: "id", Type: "integer", Nullable: false}, {Name: "customer_id", Type: "integer"}},
		ForeignKeys: []schema.ForeignKeyConstraint{
			{Name: "orders_customer_id_fkey", Columns: []string{"customer_id"}, ReferencedSchema: "public", ReferencedTable: "customers", ReferencedColumns: []string{"id"}},
		},
	})
	desired.Put(schema.Table{Schema: "public", Name: "customers", Columns: []schema.Column{{Name: "id", Type: "integer"}}})

	plan, err := Emit(differ.Diff(current, desired), current, desired)
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}

	var sawCreateOrders, sawAddFK bool
	createOrdersIdx, addFKIdx := -1, -1
	for i, s := range plan.Statements {
		if strings.Contains(s.SQL, "CREATE TABLE public.orders") {
			sawCreateOrders = true
			createOrdersIdx = i
		}
		if strings.Contains(s.SQL, "ADD CONSTRAINT orders_customer_id_fkey") {
			sawAddFK = true
			addFKIdx = i
		}
	}
	if !sawCreateOrders || !sawAddFK {
		t.Fatalf("expected both create table and add foreign key statements, got %+v", plan.Statements)
	}
	if addFKIdx < createOrdersIdx {
		t.Errorf("expected foreign key to be added after table creation")
	}
}

func TestEmitFlagsDropTableDestructive(t *testing.T) {
	current := schema.New()
	current.Put(schema.Table{Schema: "public", Name: "legacy", Columns: []schema.Column{{Name: "id", Type: "integer"}}})
	desired := schema.New()

	plan, err := Emit(differ.Diff(current, desired), current, desired)
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if !plan.HasDestructive() {
		t.Fatalf("expected DROP TABLE to be flagged destructive, got %+v", plan.Statements)
	}
}

func TestEmitFlagsDropColumnDestructive(t *testing.T) {
	current := schema.New()
	current.Put(schema.Table{Schema: "public", Name: "users", Columns: []schema.Column{{Name: "id", Type: "integer"}, {Name: "legacy", Type: "text"}}})
	desired := schema.New()
	desired.Put(schema.Table{Schema: "public", Name: "users", Columns: []schema.Column{{Name: "id", Type: "integer"}}})

	plan, err := Emit(differ.Diff(current, desired), current, desired)
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if !plan.HasDestructive() {
		t.Fatalf("expected DROP COLUMN to be flagged destructive, got %+v", plan.Statements)
	}
}

func TestEmitNonDestructiveCreateDoesNotFlag(t *testing.T) {
	current := schema.New()
	desired := schema.New()
	desired.Put(schema.Table{Schema: "public", Name: "users", Columns: []schema.Column{{Name: "id", Type: "integer"}}})

	plan, err := Emit(differ.Diff(current, desired), current, desired)
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if plan.HasDestructive() {
		t.Fatalf("expected create-only plan to have no destructive statements, got %+v", plan.Statements)
	}
}

func TestEmitRecreateIndexDropsThenCreates(t *testing.T) {
	current := schema.New()
	current.Put(schema.Index{Schema: "public", Name: "idx", Table: "users", Keys: []schema.IndexKey{{Expression: "a"}}})
	desired := schema.New()
	desired.Put(schema.Index{Schema: "public", Name: "idx", Table: "users", Keys: []schema.IndexKey{{Expression: "b"}}})

	plan, err := Emit(differ.Diff(current, desired), current, desired)
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if len(plan.Statements) != 2 {
		t.Fatalf("expected drop + create, got %+v", plan.Statements)
	}
	if !strings.Contains(plan.Statements[0].SQL, "DROP INDEX") {
		t.Errorf("expected drop first, got %s", plan.Statements[0].SQL)
	}
	if !strings.Contains(plan.Statements[1].SQL, "CREATE INDEX") {
		t.Errorf("expected create second, got %s", plan.Statements[1].SQL)
	}
}

func TestEmitEnumAppendEmitsAlterTypeAddValue(t *testing.T) {
	current := schema.New()
	current.Put(schema.Enum{Schema: "public", Name: "user_role", Labels: []string{"admin", "member"}})
	desired := schema.New()
	desired.Put(schema.Enum{Schema: "public", Name: "user_role", Labels: []string{"admin", "member", "owner"}})

	plan, err := Emit(differ.Diff(current, desired), current, desired)
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if len(plan.Statements) != 1 {
		t.Fatalf("expected exactly one statement, got %+v", plan.Statements)
	}
	want := "ALTER TYPE public.user_role ADD VALUE 'owner';"
	if plan.Statements[0].SQL != want {
		t.Errorf("SQL = %q, want %q", plan.Statements[0].SQL, want)
	}
	if plan.HasDestructive() {
		t.Error("an enum label append should never be flagged destructive")
	}
}

func TestEmitEnumReorderRecreatesType(t *testing.T) {
	current := schema.New()
	current.Put(schema.Enum{Schema: "public", Name: "user_role", Labels: []string{"admin", "member"}})
	desired := schema.New()
	desired.Put(schema.Enum{Schema: "public", Name: "user_role", Labels: []string{"member", "admin"}})

	plan, err := Emit(differ.Diff(current, desired), current, desired)
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if len(plan.Statements) != 2 {
		t.Fatalf("expected drop + create, got %+v", plan.Statements)
	}
	if !strings.Contains(plan.Statements[0].SQL, "DROP TYPE") {
		t.Errorf("expected drop first, got %s", plan.Statements[0].SQL)
	}
	if !strings.Contains(plan.Statements[1].SQL, "CREATE TYPE") {
		t.Errorf("expected create second, got %s", plan.Statements[1].SQL)
	}
}

func TestEmitViewChangeUsesCreateOrReplace(t *testing.T) {
	current := schema.New()
	current.Put(schema.View{Schema: "public", Name: "active_users", Query: "select 1"})
	desired := schema.New()
	desired.Put(schema.View{Schema: "public", Name: "active_users", Query: "select 2"})

	plan, err := Emit(differ.Diff(current, desired), current, desired)
	if err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if len(plan.Statements) != 1 || !strings.Contains(plan.Statements[0].SQL, "CREATE OR REPLACE") {
		t.Fatalf("expected a single CREATE OR REPLACE VIEW statement, got %+v", plan.Statements)
	}
}
