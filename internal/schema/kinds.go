// Package schema holds the canonical, language-neutral representation of a
// PostgreSQL database: the Schema Model. Both the declarative parser and the
// live-database introspector populate this same type, so the differ never
// needs to know where a Schema came from.
package schema

import "fmt"

// Kind is the closed set of object kinds the model understands.
type Kind string

const (
	KindSchema            Kind = "schema"
	KindExtension         Kind = "extension"
	KindEnum              Kind = "enum"
	KindCompositeType     Kind = "composite_type"
	KindDomain            Kind = "domain"
	KindRangeType         Kind = "range_type"
	KindSequence          Kind = "sequence"
	KindTable             Kind = "table"
	KindIndex             Kind = "index"
	KindView              Kind = "view"
	KindMaterializedView  Kind = "materialized_view"
	KindFunction          Kind = "function"
	KindProcedure         Kind = "procedure"
	KindTrigger           Kind = "trigger"
	KindConstraintTrigger Kind = "constraint_trigger"
	KindEventTrigger      Kind = "event_trigger"
	KindPolicy            Kind = "policy"
	KindRule              Kind = "rule"
	KindForeignServer     Kind = "foreign_server"
	KindCollation         Kind = "collation"
	KindComment           Kind = "comment"
)

// kindOrder gives the forward creation order: lower values are created
// first, and drops walk this list in reverse.
var kindOrder = map[Kind]int{
	KindExtension:         0,
	KindSchema:             1,
	KindCollation:         2,
	KindEnum:              3,
	KindCompositeType:     3,
	KindDomain:            4,
	KindRangeType:         4,
	KindSequence:          5,
	KindTable:             6,
	KindIndex:             7,
	KindView:              8,
	KindMaterializedView:  9,
	KindFunction:          10,
	KindProcedure:         10,
	KindTrigger:           11,
	KindConstraintTrigger: 11,
	KindEventTrigger:      11,
	KindPolicy:            12,
	KindForeignServer:     12,
	KindRule:              13,
	KindComment:           14,
}

// CreationRank returns the forward topological layer for a kind, used as the
// primary ordering key before dependency edges and lexicographic tie-breaks
// are applied.
func CreationRank(k Kind) int {
	if r, ok := kindOrder[k]; ok {
		return r
	}
	return 99
}

// Identity is the stable identity of an object: (schema, name, kind, and a
// signature discriminator for objects — functions, procedures — that can be
// overloaded). Two descriptors sharing an Identity must be byte-equivalent
// after normalization or the differ reports a change.
type Identity struct {
	Schema    string
	Name      string
	Kind      Kind
	Signature string // argument type signature; empty for non-overloadable kinds
}

func (id Identity) String() string {
	if id.Signature != "" {
		return fmt.Sprintf("%s.%s(%s) [%s]", id.Schema, id.Name, id.Signature, id.Kind)
	}
	return fmt.Sprintf("%s.%s [%s]", id.Schema, id.Name, id.Kind)
}

// Less gives the lexicographic tie-breaker: (schema, name, signature).
func (id Identity) Less(other Identity) bool {
	if id.Schema != other.Schema {
		return id.Schema < other.Schema
	}
	if id.Name != other.Name {
		return id.Name < other.Name
	}
	return id.Signature < other.Signature
}
