// Package differ compares two Schema Models — a "current" (introspected)
// state and a "desired" (declarative) state — and produces the set of
// changes needed to move from one to the other.
package differ

import (
	"sort"

	"github.com/shem-sql/shem/internal/schema"
)

// ChangeKind is the decision the differ reaches for one identity.
type ChangeKind string

const (
	ChangeCreate   ChangeKind = "create"
	ChangeDrop     ChangeKind = "drop"
	ChangeAlter    ChangeKind = "alter"
	ChangeRecreate ChangeKind = "recreate"
)

// Change is one object-level decision. TableDiff is populated only when
// Kind is ChangeAlter and Identity.Kind is KindTable, and EnumDiff only when
// Kind is ChangeAlter and Identity.Kind is KindEnum; other alterable kinds
// (view, function) carry their full New descriptor instead, since a
// CREATE OR REPLACE statement needs the whole definition, not a delta.
type Change struct {
	Identity  schema.Identity
	Kind      ChangeKind
	Old       schema.Object
	New       schema.Object
	TableDiff *TableDiff
	EnumDiff  *EnumDiff
}

// ChangeSet is every change needed to move current to desired, unordered;
// internal/emitter imposes the dependency-respecting order.
type ChangeSet struct {
	Changes []Change
}

// Diff compares current against desired and returns the changes required.
// Grounded on the teacher's internal/schema/diff.go DiffSchemas, generalized
// from tables-only to every object kind.
func Diff(current, desired *schema.Schema) ChangeSet {
	var cs ChangeSet

	ids := unionIdentities(current, desired)
	for _, id := range ids {
		oldObj, inOld := current.Get(id)
		newObj, inNew := desired.Get(id)

		switch {
		case inNew && !inOld:
			cs.Changes = append(cs.Changes, Change{Identity: id, Kind: ChangeCreate, New: newObj})
		case inOld && !inNew:
			cs.Changes = append(cs.Changes, Change{Identity: id, Kind: ChangeDrop, Old: oldObj})
		default:
			if schema.Equal(oldObj, newObj) {
				continue
			}
			if id.Kind == schema.KindTable {
				td := diffTables(oldObj.(schema.Table), newObj.(schema.Table))
				cs.Changes = append(cs.Changes, Change{Identity: id, Kind: ChangeAlter, Old: oldObj, New: newObj, TableDiff: &td})
				continue
			}
			if id.Kind == schema.KindEnum {
				if added, ok := enumAppendedLabels(oldObj.(schema.Enum), newObj.(schema.Enum)); ok {
					cs.Changes = append(cs.Changes, Change{Identity: id, Kind: ChangeAlter, Old: oldObj, New: newObj, EnumDiff: &EnumDiff{AddedLabels: added}})
					continue
				}
				cs.Changes = append(cs.Changes, Change{Identity: id, Kind: ChangeRecreate, Old: oldObj, New: newObj})
				continue
			}
			if supportsReplace(id.Kind) {
				cs.Changes = append(cs.Changes, Change{Identity: id, Kind: ChangeAlter, Old: oldObj, New: newObj})
				continue
			}
			cs.Changes = append(cs.Changes, Change{Identity: id, Kind: ChangeRecreate, Old: oldObj, New: newObj})
		}
	}

	return cs
}

// supportsReplace reports whether a kind can be updated with a
// CREATE OR REPLACE-style statement instead of a drop and recreate. Enums
// are handled earlier by enumAppendedLabels and never reach this check.
// Every other kind uses the Recreate policy (Open Question decision:
// collations and foreign servers have no granular ALTER surface worth
// modeling).
func supportsReplace(k schema.Kind) bool {
	switch k {
	case schema.KindView, schema.KindFunction, schema.KindProcedure:
		return true
	default:
		return false
	}
}

func unionIdentities(a, b *schema.Schema) []schema.Identity {
	seen := make(map[schema.Identity]bool, len(a.Objects)+len(b.Objects))
	var ids []schema.Identity
	for id := range a.Objects {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for id := range b.Objects {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

// IsEmpty reports whether a ChangeSet has no changes, mirroring the
// teacher's SchemaDiff.IsEmpty.
func (cs ChangeSet) IsEmpty() bool {
	return len(cs.Changes) == 0
}
