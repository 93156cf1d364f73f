package emitter

import (
	"testing"

	"github.com/shem-sql/shem/internal/differ"
	"github.com/shem-sql/shem/internal/schema"
)

func TestOrderRunsTablesBeforeIndexesAndExtensionsFirst(t *testing.T) {
	desired := schema.New()
	desired.Put(schema.Index{Schema: "public", Name: "idx_users_email", Table: "users"})
	desired.Put(schema.Table{Schema: "public", Name: "users"})
	desired.Put(schema.Extension{Name: "pgcrypto"})

	cs := differ.ChangeSet{Changes: []differ.Change{
		{Identity: schema.Identity{Schema: "public", Name: "idx_users_email", Kind: schema.KindIndex}, Kind: differ.ChangeCreate,
			New: schema.Index{Schema: "public", Name: "idx_users_email", Table: "users"}},
		{Identity: schema.Identity{Schema: "public", Name: "users", Kind: schema.KindTable}, Kind: differ.ChangeCreate,
			New: schema.Table{Schema: "public", Name: "users"}},
		{Identity: schema.Identity{Name: "pgcrypto", Kind: schema.KindExtension}, Kind: differ.ChangeCreate,
			New: schema.Extension{Name: "pgcrypto"}},
	}}

	creates, drops := Order(cs, schema.New(), desired)
	if len(drops) != 0 {
		t.Fatalf("expected no drops, got %+v", drops)
	}
	if len(creates) != 3 {
		t.Fatalf("expected 3 creates, got %d", len(creates))
	}
	if creates[0].Identity.Kind != schema.KindExtension {
		t.Errorf("expected extension first, got %s", creates[0].Identity.Kind)
	}
	if creates[1].Identity.Kind != schema.KindTable {
		t.Errorf("expected table second, got %s", creates[1].Identity.Kind)
	}
	if creates[2].Identity.Kind != schema.KindIndex {
		t.Errorf("expected index last, got %s", creates[2].Identity.Kind)
	}
}

func TestOrderDropsRunInReverseCreationOrder(t *testing.T) {
	current := schema.New()
	current.Put(schema.Table{Schema: "public", Name: "users"})
	current.Put(schema.Index{Schema: "public", Name: "idx_users_email", Table: "users"})

	cs := differ.ChangeSet{Changes: []differ.Change{
		{Identity: schema.Identity{Schema: "public", Name: "users", Kind: schema.KindTable}, Kind: differ.ChangeDrop,
			Old: schema.Table{Schema: "public", Name: "users"}},
		{Identity: schema.Identity{Schema: "public", Name: "idx_users_email", Kind: schema.KindIndex}, Kind: differ.ChangeDrop,
			Old: schema.Index{Schema: "public", Name: "idx_users_email", Table: "users"}},
	}}

	_, drops := Order(cs, current, schema.New())
	if len(drops) != 2 {
		t.Fatalf("expected 2 drops, got %d", len(drops))
	}
	if drops[0].Identity.Kind != schema.KindIndex {
		t.Errorf("expected index dropped before table, got %s first", drops[0].Identity.Kind)
	}
}

func TestOrderSplitsRecreateIntoDropThenCreate(t *testing.T) {
	old := schema.Index{Schema: "public", Name: "idx", Table: "users", Keys: []schema.IndexKey{{Expression: "a"}}}
	new := schema.Index{Schema: "public", Name: "idx", Table: "users", Keys: []schema.IndexKey{{Expression: "b"}}}
	cs := differ.ChangeSet{Changes: []differ.Change{
		{Identity: old.Identity(), Kind: differ.ChangeRecreate, Old: old, New: new},
	}}

	creates, drops := Order(cs, schema.New(), schema.New())
	if len(drops) != 1 || drops[0].Kind != differ.ChangeDrop {
		t.Fatalf("expected recreate to produce a drop, got %+v", drops)
	}
	if len(creates) != 1 || creates[0].Kind != differ.ChangeCreate {
		t.Fatalf("expected recreate to produce a create, got %+v", creates)
	}
}

func TestOrderTopologicallySortsViewOnView(t *testing.T) {
	desired := schema.New()
	desired.Put(schema.View{Schema: "public", Name: "a_view", Query: "select * from public.b_view"})
	desired.Put(schema.View{Schema: "public", Name: "b_view", Query: "select 1"})

	cs := differ.ChangeSet{Changes: []differ.Change{
		{Identity: schema.Identity{Schema: "public", Name: "a_view", Kind: schema.KindView}, Kind: differ.ChangeCreate,
			New: desired.Objects[schema.Identity{Schema: "public", Name: "a_view", Kind: schema.KindView}]},
		{Identity: schema.Identity{Schema: "public", Name: "b_view", Kind: schema.KindView}, Kind: differ.ChangeCreate,
			New: desired.Objects[schema.Identity{Schema: "public", Name: "b_view", Kind: schema.KindView}]},
	}}

	creates, _ := Order(cs, schema.New(), desired)
	if len(creates) != 2 {
		t.Fatalf("expected 2 creates, got %d", len(creates))
	}
	if creates[0].Identity.Name != "b_view" {
		t.Fatalf("expected b_view (the dependency) created before a_view, got order %+v", creates)
	}
}

func TestOrderTopologicallySortsTableInherits(t *testing.T) {
	desired := schema.New()
	parent := schema.Table{Schema: "public", Name: "base"}
	child := schema.Table{Schema: "public", Name: "derived", Inherits: []string{"public.base"}}
	desired.Put(parent)
	desired.Put(child)

	cs := differ.ChangeSet{Changes: []differ.Change{
		{Identity: child.Identity(), Kind: differ.ChangeCreate, New: child},
		{Identity: parent.Identity(), Kind: differ.ChangeCreate, New: parent},
	}}

	creates, _ := Order(cs, schema.New(), desired)
	if len(creates) != 2 {
		t.Fatalf("expected 2 creates, got %d", len(creates))
	}
	if creates[0].Identity.Name != "base" {
		t.Fatalf("expected base created before derived despite alphabetical order, got %+v", creates)
	}
}
