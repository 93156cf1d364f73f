// Package emitter turns a differ.ChangeSet into an ordered, runnable SQL
// migration plan: one statement per change, sequenced so that every
// CREATE happens after whatever it depends on and every DROP happens
// before whatever depended on it.
package emitter

import (
	"sort"

	"github.com/shem-sql/shem/internal/differ"
	"github.com/shem-sql/shem/internal/schema"
)

// Order sequences a ChangeSet's changes for emission. Creates run forward by
// creation rank (extensions before tables before indexes before views, …)
// with schema.DependsOn breaking ties within a rank — a view selecting from
// another view, a table INHERITS-ing another table, a domain built on
// another domain — so a dependent object never gets emitted before the
// object it names. Drops run in the exact reverse of that order, so nothing
// is dropped while a surviving (or not-yet-dropped) object still depends on
// it. A Recreate is split into a drop of the old descriptor, ordered with
// the other drops, and a create of the new one, ordered with the other
// creates; Emit runs every drop before any create.
//
// current and desired are the schemas the old and new sides of each change
// were read from; they are passed to DependsOn so it can resolve a column's
// or parameter's type name to an enum/domain/composite/range identity.
//
// Foreign keys on newly created tables are never ordered here — Emit's
// splitTableCreate (emitter.go) holds them back from the initial CREATE
// TABLE and Emit appends them at the end of the plan once every table in the
// batch exists, which is what actually breaks a cycle between two tables
// with mutual foreign keys. Grounded on the teacher's hand-ordered
// planner.GeneratePlan step sequence, generalized from a fixed nine-step
// list into an explicit rank table (schema.CreationRank) plus
// schema.DependsOn as the within-layer topological key.
func Order(cs differ.ChangeSet, current, desired *schema.Schema) (creates []differ.Change, drops []differ.Change) {
	for _, c := range cs.Changes {
		switch c.Kind {
		case differ.ChangeDrop:
			drops = append(drops, c)
		case differ.ChangeRecreate:
			drops = append(drops, differ.Change{Identity: c.Identity, Kind: differ.ChangeDrop, Old: c.Old})
			creates = append(creates, differ.Change{Identity: c.Identity, Kind: differ.ChangeCreate, New: c.New})
		default:
			creates = append(creates, c)
		}
	}

	creates = topoOrder(creates, desired, func(c differ.Change) (schema.Object, bool) {
		if c.New == nil {
			return nil, false
		}
		return c.New, true
	})

	dropsForward := topoOrder(drops, current, func(c differ.Change) (schema.Object, bool) {
		if c.Old == nil {
			return nil, false
		}
		return c.Old, true
	})
	drops = reverseChanges(dropsForward)

	return creates, drops
}

func forwardLess(a, b schema.Identity) bool {
	ra, rb := schema.CreationRank(a.Kind), schema.CreationRank(b.Kind)
	if ra != rb {
		return ra < rb
	}
	return a.Less(b)
}

// topoOrder arranges changes so that every change whose descriptor
// schema.DependsOn names another changed identity comes after that
// identity's change. Among changes with no ordering relationship, it falls
// back to forwardLess (creation rank, then name) so unrelated objects keep
// the previous deterministic order. depSchema resolves type names to
// identities for DependsOn; objOf extracts the descriptor a change carries
// (New for creates, Old for drops) and reports false when the change has
// none (nothing to derive edges from).
func topoOrder(changes []differ.Change, depSchema *schema.Schema, objOf func(differ.Change) (schema.Object, bool)) []differ.Change {
	if len(changes) == 0 {
		return changes
	}

	byID := make(map[schema.Identity]differ.Change, len(changes))
	present := make(map[schema.Identity]bool, len(changes))
	for _, c := range changes {
		byID[c.Identity] = c
		present[c.Identity] = true
	}

	indegree := make(map[schema.Identity]int, len(changes))
	dependents := make(map[schema.Identity][]schema.Identity, len(changes))
	for _, c := range changes {
		indegree[c.Identity] = 0
	}
	for _, c := range changes {
		obj, ok := objOf(c)
		if !ok {
			continue
		}
		for _, dep := range schema.DependsOn(depSchema, obj) {
			if dep == c.Identity || !present[dep] {
				continue
			}
			indegree[c.Identity]++
			dependents[dep] = append(dependents[dep], c.Identity)
		}
	}

	var ready []schema.Identity
	for _, c := range changes {
		if indegree[c.Identity] == 0 {
			ready = append(ready, c.Identity)
		}
	}

	ordered := make([]differ.Change, 0, len(changes))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return forwardLess(ready[i], ready[j]) })
		next := ready[0]
		ready = ready[1:]
		ordered = append(ordered, byID[next])
		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(ordered) != len(changes) {
		// A cycle in the dependency graph (e.g. two domains each referencing
		// the other) means no valid order exists; fall back to the plain
		// rank/name order rather than silently dropping the changes that
		// couldn't be scheduled.
		fallback := append([]differ.Change(nil), changes...)
		sort.SliceStable(fallback, func(i, j int) bool { return forwardLess(fallback[i].Identity, fallback[j].Identity) })
		return fallback
	}

	return ordered
}

func reverseChanges(in []differ.Change) []differ.Change {
	out := make([]differ.Change, len(in))
	for i, c := range in {
		out[len(in)-1-i] = c
	}
	return out
}
