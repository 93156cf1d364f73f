package schema

import "sort"

// DependsOn returns the identities obj must be created after (and dropped
// before). The set is deliberately conservative: when in doubt an edge is
// included, because the emitter's topological sort only needs a superset of
// the true dependency graph to produce a valid ordering, and a missed edge
// can produce SQL that fails against a real server.
func DependsOn(s *Schema, obj Object) []Identity {
	var deps []Identity
	add := func(schemaName, name string, kind Kind, sig string) {
		if name == "" {
			return
		}
		deps = append(deps, Identity{Schema: schemaName, Name: name, Kind: kind, Signature: sig})
	}

	switch o := obj.(type) {
	case Table:
		for _, col := range o.Columns {
			addTypeDeps(s, &deps, o.Schema, col.Type)
		}
		for _, parent := range o.Inherits {
			sc, nm := splitQualified(parent, o.Schema)
			add(sc, nm, KindTable, "")
		}
		for _, fk := range o.ForeignKeys {
			refSchema := fk.ReferencedSchema
			if refSchema == "" {
				refSchema = o.Schema
			}
			add(refSchema, fk.ReferencedTable, KindTable, "")
		}

	case Index:
		add(o.Schema, o.Table, KindTable, "")

	case View:
		for _, rel := range referencedRelations(s, o.Schema, o.Query) {
			deps = append(deps, rel)
		}

	case MaterializedView:
		for _, rel := range referencedRelations(s, o.Schema, o.Query) {
			deps = append(deps, rel)
		}

	case Function:
		for _, p := range o.Params {
			addTypeDeps(s, &deps, o.Schema, p.Type)
		}
		if o.Returns.Type != "" {
			addTypeDeps(s, &deps, o.Schema, o.Returns.Type)
		}
		for _, p := range o.Returns.Table {
			addTypeDeps(s, &deps, o.Schema, p.Type)
		}

	case Trigger:
		add(o.Schema, o.Table, KindTable, "")
		add(o.Schema, o.Function, KindFunction, "")

	case ConstraintTrigger:
		add(o.Schema, o.Table, KindTable, "")
		add(o.Schema, o.Function, KindFunction, "")

	case EventTrigger:
		add("", o.Function, KindFunction, "")

	case Policy:
		add(o.Schema, o.Table, KindTable, "")

	case Rule:
		add(o.Schema, o.Table, KindTable, "")

	case Domain:
		addTypeDeps(s, &deps, o.Schema, o.BaseType)

	case CompositeType:
		for _, attr := range o.Attributes {
			addTypeDeps(s, &deps, o.Schema, attr.Type)
		}

	case RangeType:
		addTypeDeps(s, &deps, o.Schema, o.Subtype)

	case Sequence:
		add(o.Schema, o.OwnedByTable, KindTable, "")

	case Comment:
		deps = append(deps, o.Target)

	case Extension, Enum, ForeignServer, Collation, SchemaObject:
		// no intra-model dependencies
	}

	return dedupeIdentities(deps)
}

// addTypeDeps records a dependency edge on typeName if it resolves to an
// enum, composite type, domain, or range type already known to the schema.
// Built-in types (int4, text, …) never match and contribute no edge.
func addTypeDeps(s *Schema, deps *[]Identity, defaultSchema, typeName string) {
	if s == nil || typeName == "" {
		return
	}
	schemaName, name := splitQualified(typeName, defaultSchema)
	for _, k := range []Kind{KindEnum, KindCompositeType, KindDomain, KindRangeType} {
		id := Identity{Schema: schemaName, Name: name, Kind: k}
		if _, ok := s.Get(id); ok {
			*deps = append(*deps, id)
			return
		}
	}
}

// referencedRelations approximates the tables/views a view or materialized
// view query reads, by looking for the bare name of every table/view
// identity already known to the schema as a whole word in the query text;
// the schema part of an identity is not compared. This is intentionally an
// over-approximation (§4.A): it can add a spurious edge when a name collides
// with a string literal or a same-named object in another schema, which is
// the safe direction for a dependency oracle.
func referencedRelations(s *Schema, defaultSchema, query string) []Identity {
	if s == nil {
		return nil
	}
	var out []Identity
	for id := range s.Objects {
		if id.Kind != KindTable && id.Kind != KindView && id.Kind != KindMaterializedView {
			continue
		}
		if containsWord(query, id.Name) {
			out = append(out, id)
		}
	}
	return out
}

func splitQualified(qualified, defaultSchema string) (schemaName, name string) {
	for i := 0; i < len(qualified); i++ {
		if qualified[i] == '.' {
			return qualified[:i], qualified[i+1:]
		}
	}
	return defaultSchema, qualified
}

func containsWord(haystack, word string) bool {
	if word == "" {
		return false
	}
	idx := 0
	for {
		pos := indexFrom(haystack, word, idx)
		if pos < 0 {
			return false
		}
		before := pos == 0 || !isIdentByte(haystack[pos-1])
		after := pos+len(word) >= len(haystack) || !isIdentByte(haystack[pos+len(word)])
		if before && after {
			return true
		}
		idx = pos + 1
	}
}

func indexFrom(haystack, needle string, from int) int {
	if from >= len(haystack) {
		return -1
	}
	rest := haystack[from:]
	for i := 0; i+len(needle) <= len(rest); i++ {
		if rest[i:i+len(needle)] == needle {
			return from + i
		}
	}
	return -1
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func dedupeIdentities(ids []Identity) []Identity {
	seen := make(map[Identity]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
