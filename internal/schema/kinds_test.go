package schema

import "testing"

func TestCreationRankOrdersExtensionsBeforeTables(t *testing.T) {
	if CreationRank(KindExtension) >= CreationRank(KindTable) {
		t.Fatalf("extensions must rank before tables: extension=%d table=%d",
			CreationRank(KindExtension), CreationRank(KindTable))
	}
}

func TestCreationRankOrdersTablesBeforeIndexes(t *testing.T) {
	if CreationRank(KindTable) >= CreationRank(KindIndex) {
		t.Fatalf("tables must rank before indexes: table=%d index=%d",
			CreationRank(KindTable), CreationRank(KindIndex))
	}
}

func TestCreationRankUnknownKindSortsLast(t *testing.T) {
	if got := CreationRank(Kind("nonsense")); got != 99 {
		t.Fatalf("CreationRank(unknown) = %d, want 99", got)
	}
}

func TestIdentityString(t *testing.T) {
	tests := []struct {
		name string
		id   Identity
		want string
	}{
		{
			name: "plain table",
			id:   Identity{Schema: "public", Name: "users", Kind: KindTable},
			want: "public.users [table]",
		},
		{
			name: "overloaded function",
			id:   Identity{Schema: "public", Name: "area", Kind: KindFunction, Signature: "integer,integer"},
			want: "public.area(integer,integer) [function]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIdentityLess(t *testing.T) {
	a := Identity{Schema: "a", Name: "z"}
	b := Identity{Schema: "b", Name: "a"}
	if !a.Less(b) {
		t.Errorf("expected schema a < schema b regardless of name")
	}
	c := Identity{Schema: "a", Name: "a"}
	if !c.Less(a) {
		t.Errorf("expected same-schema comparison to fall back to name")
	}
}
