package differ

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shem-sql/shem/internal/schema"
)

func TestDiffDetectsCreatedTable(t *testing.T) {
	current := schema.New()
	desired := schema.New()
	desired.Put(schema.Table{Schema: "public", Name: "users"})

	cs := Diff(current, desired)
	if len(cs.Changes) != 1 || cs.Changes[0].Kind != ChangeCreate {
		t.Fatalf("expected one create change, got %+v", cs.Changes)
	}
}

func TestDiffDetectsDroppedTable(t *testing.T) {
	current := schema.New()
	current.Put(schema.Table{Schema: "public", Name: "users"})
	desired := schema.New()

	cs := Diff(current, desired)
	if len(cs.Changes) != 1 || cs.Changes[0].Kind != ChangeDrop {
		t.Fatalf("expected one drop change, got %+v", cs.Changes)
	}
}

func TestDiffUnchangedTableProducesNoChange(t *testing.T) {
	tbl := schema.Table{Schema: "public", Name: "users", Columns: []schema.Column{{Name: "id", Type: "integer"}}}
	current := schema.New()
	current.Put(tbl)
	desired := schema.New()
	desired.Put(tbl)

	cs := Diff(current, desired)
	if !cs.IsEmpty() {
		t.Fatalf("expected no changes for identical tables, got %+v", cs.Changes)
	}
}

func TestDiffAlterAddsAndDropsColumns(t *testing.T) {
	current := schema.New()
	current.Put(schema.Table{
		Schema:  "public",
		Name:    "users",
		Columns: []schema.Column{{Name: "id", Type: "integer"}, {Name: "legacy_flag", Type: "boolean"}},
	})
	desired := schema.New()
	desired.Put(schema.Table{
		Schema:  "public",
		Name:    "users",
		Columns: []schema.Column{{Name: "id", Type: "integer"}, {Name: "email", Type: "text"}},
	})

	cs := Diff(current, desired)
	if len(cs.Changes) != 1 || cs.Changes[0].Kind != ChangeAlter {
		t.Fatalf("expected one alter change, got %+v", cs.Changes)
	}
	td := cs.Changes[0].TableDiff
	if len(td.AddedColumns) != 1 || td.AddedColumns[0].Name != "email" {
		t.Errorf("expected email to be added, got %+v", td.AddedColumns)
	}
	if len(td.DroppedColumns) != 1 || td.DroppedColumns[0] != "legacy_flag" {
		t.Errorf("expected legacy_flag to be dropped, got %+v", td.DroppedColumns)
	}
}

func TestDiffViewUsesAlterNotRecreate(t *testing.T) {
	current := schema.New()
	current.Put(schema.View{Schema: "public", Name: "v", Query: "select 1"})
	desired := schema.New()
	desired.Put(schema.View{Schema: "public", Name: "v", Query: "select 2"})

	cs := Diff(current, desired)
	if len(cs.Changes) != 1 || cs.Changes[0].Kind != ChangeAlter {
		t.Fatalf("expected view change to be Alter, got %+v", cs.Changes)
	}
}

func TestDiffIndexUsesRecreate(t *testing.T) {
	current := schema.New()
	current.Put(schema.Index{Schema: "public", Name: "idx", Table: "users", Keys: []schema.IndexKey{{Expression: "a"}}})
	desired := schema.New()
	desired.Put(schema.Index{Schema: "public", Name: "idx", Table: "users", Keys: []schema.IndexKey{{Expression: "b"}}})

	cs := Diff(current, desired)
	if len(cs.Changes) != 1 || cs.Changes[0].Kind != ChangeRecreate {
		t.Fatalf("expected index change to be Recreate, got %+v", cs.Changes)
	}
}

func TestDiffDetectsPrimaryKeyChange(t *testing.T) {
	current := schema.New()
	current.Put(schema.Table{Schema: "public", Name: "t", PrimaryKey: &schema.PrimaryKeyConstraint{Name: "t_pkey", Columns: []string{"id"}}})
	desired := schema.New()
	desired.Put(schema.Table{Schema: "public", Name: "t", PrimaryKey: &schema.PrimaryKeyConstraint{Name: "t_pkey", Columns: []string{"id", "tenant_id"}}})

	cs := Diff(current, desired)
	td := cs.Changes[0].TableDiff
	if td.PrimaryKeyAdded == nil || td.PrimaryKeyDropped == nil {
		t.Fatalf("expected primary key change to report both added and dropped, got %+v", td)
	}
}

func TestDiffRLSToggle(t *testing.T) {
	current := schema.New()
	current.Put(schema.Table{Schema: "public", Name: "t", RLSEnabled: false})
	desired := schema.New()
	desired.Put(schema.Table{Schema: "public", Name: "t", RLSEnabled: true})

	cs := Diff(current, desired)
	td := cs.Changes[0].TableDiff
	if !td.RLSEnabled {
		t.Errorf("expected RLSEnabled to be flagged")
	}
}

func TestDiffAlterReportsExactColumnDelta(t *testing.T) {
	current := schema.New()
	current.Put(schema.Table{
		Schema:  "public",
		Name:    "orders",
		Columns: []schema.Column{{Name: "id", Type: "integer"}, {Name: "status", Type: "text"}},
	})
	desired := schema.New()
	desired.Put(schema.Table{
		Schema:  "public",
		Name:    "orders",
		Columns: []schema.Column{{Name: "id", Type: "integer"}, {Name: "status", Type: "text", Nullable: true}},
	})

	cs := Diff(current, desired)
	got := cs.Changes[0].TableDiff.AlteredColumns
	if len(got) != 1 {
		t.Fatalf("expected exactly one altered column, got %+v", got)
	}
	wantAltered := ColumnAlteration{
		Name: "status",
		Old:  schema.Column{Name: "status", Type: "text"},
		New:  schema.Column{Name: "status", Type: "text", Nullable: true},
	}
	if diff := cmp.Diff(wantAltered, got[0]); diff != "" {
		t.Errorf("unexpected altered column (-want +got):\n%s", diff)
	}
}

func TestDiffEnumAppendProducesAlterWithAddedLabels(t *testing.T) {
	current := schema.New()
	current.Put(schema.Enum{Schema: "public", Name: "user_role", Labels: []string{"admin", "member"}})
	desired := schema.New()
	desired.Put(schema.Enum{Schema: "public", Name: "user_role", Labels: []string{"admin", "member", "owner"}})

	cs := Diff(current, desired)
	if len(cs.Changes) != 1 || cs.Changes[0].Kind != ChangeAlter {
		t.Fatalf("expected a single alter change, got %+v", cs.Changes)
	}
	if cs.Changes[0].EnumDiff == nil {
		t.Fatal("expected EnumDiff to be populated")
	}
	if diff := cmp.Diff([]string{"owner"}, cs.Changes[0].EnumDiff.AddedLabels); diff != "" {
		t.Errorf("unexpected added labels (-want +got):\n%s", diff)
	}
}

func TestDiffEnumReorderProducesRecreate(t *testing.T) {
	current := schema.New()
	current.Put(schema.Enum{Schema: "public", Name: "user_role", Labels: []string{"admin", "member"}})
	desired := schema.New()
	desired.Put(schema.Enum{Schema: "public", Name: "user_role", Labels: []string{"member", "admin"}})

	cs := Diff(current, desired)
	if len(cs.Changes) != 1 || cs.Changes[0].Kind != ChangeRecreate {
		t.Fatalf("expected a recreate change for a reordered enum, got %+v", cs.Changes)
	}
}

func TestDiffEnumLabelRemovalProducesRecreate(t *testing.T) {
	current := schema.New()
	current.Put(schema.Enum{Schema: "public", Name: "user_role", Labels: []string{"admin", "member", "owner"}})
	desired := schema.New()
	desired.Put(schema.Enum{Schema: "public", Name: "user_role", Labels: []string{"admin", "member"}})

	cs := Diff(current, desired)
	if len(cs.Changes) != 1 || cs.Changes[0].Kind != ChangeRecreate {
		t.Fatalf("expected a recreate change for a shrunk enum, got %+v", cs.Changes)
	}
}
