package emitter

import (
	"fmt"

	"github.com/shem-sql/shem/internal/differ"
	"github.com/shem-sql/shem/internal/schema"
)

// LockMode names the strongest PostgreSQL lock a statement is expected to
// take on the objects it touches. Grounded on the teacher's internal/locks
// classification table, generalized from index-only to every statement kind
// the renderers in render_table.go and render_misc.go produce.
type LockMode string

const (
	lockAccessExclusive     LockMode = "ACCESS EXCLUSIVE"
	lockShareRowExclusive   LockMode = "SHARE ROW EXCLUSIVE"
	lockShareUpdateExclusive LockMode = "SHARE UPDATE EXCLUSIVE"
	lockNone                LockMode = "NONE"
)

// Statement is one executable unit of a migration plan.
type Statement struct {
	SQL               string
	Identity          schema.Identity
	LockMode          LockMode
	Destructive       bool
	DestructiveReason string
}

// Plan is the ordered, fully-rendered output of Emit: every statement a
// migration needs to run, in the order it must run in.
type Plan struct {
	Statements []Statement
}

// HasDestructive reports whether any statement in the plan is flagged
// destructive, the signal shem diff uses to refuse writing a migration
// file unless --force is given.
func (p Plan) HasDestructive() bool {
	for _, s := range p.Statements {
		if s.Destructive {
			return true
		}
	}
	return false
}

// Emit renders a ChangeSet into a runnable Plan: Order decides what runs
// before what, render produces the SQL text for each change, and foreign
// keys on newly created tables are deferred to a second pass so that two
// tables created in the same migration can reference each other. current
// and desired are the schemas the ChangeSet's Old and New sides came from;
// Order needs them to resolve dependency edges between changed objects.
func Emit(cs differ.ChangeSet, current, desired *schema.Schema) (Plan, error) {
	creates, drops := Order(cs, current, desired)

	var plan Plan
	for _, c := range drops {
		stmts, err := renderDrop(c)
		if err != nil {
			return Plan{}, err
		}
		plan.Statements = append(plan.Statements, stmts...)
	}

	var deferredForeignKeys []Statement
	for _, c := range creates {
		stmts, deferredFKs, err := renderCreateOrAlter(c)
		if err != nil {
			return Plan{}, err
		}
		plan.Statements = append(plan.Statements, stmts...)
		deferredForeignKeys = append(deferredForeignKeys, deferredFKs...)
	}
	plan.Statements = append(plan.Statements, deferredForeignKeys...)

	if err := annotateDestructive(&plan); err != nil {
		return Plan{}, err
	}
	annotateLocks(&plan)

	return plan, nil
}

func renderDrop(c differ.Change) ([]Statement, error) {
	switch c.Identity.Kind {
	case schema.KindTable:
		tbl, ok := c.Old.(schema.Table)
		if !ok {
			return nil, fmt.Errorf("emitter: drop change for %s missing table descriptor", c.Identity)
		}
		return []Statement{renderDropTable(tbl)}, nil
	default:
		return []Statement{renderGenericDrop(c.Identity)}, nil
	}
}

func renderCreateOrAlter(c differ.Change) (stmts []Statement, deferredForeignKeys []Statement, err error) {
	switch c.Identity.Kind {
	case schema.KindTable:
		switch c.Kind {
		case differ.ChangeCreate:
			tbl, ok := c.New.(schema.Table)
			if !ok {
				return nil, nil, fmt.Errorf("emitter: create change for %s missing table descriptor", c.Identity)
			}
			return splitTableCreate(tbl)
		case differ.ChangeAlter:
			if c.TableDiff == nil {
				return nil, nil, fmt.Errorf("emitter: alter change for %s missing table diff", c.Identity)
			}
			return renderAlterTable(c.Identity, *c.TableDiff), nil, nil
		}
	case schema.KindEnum:
		if c.Kind == differ.ChangeAlter {
			if c.EnumDiff == nil {
				return nil, nil, fmt.Errorf("emitter: alter change for %s missing enum diff", c.Identity)
			}
			return renderAlterEnum(c.Identity, *c.EnumDiff), nil, nil
		}
		fallthrough
	default:
		stmt, err := renderGenericCreateOrAlter(c)
		if err != nil {
			return nil, nil, err
		}
		return []Statement{stmt}, nil, nil
	}
	return nil, nil, fmt.Errorf("emitter: unhandled change %+v", c)
}

// splitTableCreate separates a table's own CREATE TABLE (plus RLS, primary
// key, unique and check constraints) from its foreign keys, which the
// caller appends only after every table in the batch has been created.
func splitTableCreate(tbl schema.Table) (stmts []Statement, deferredForeignKeys []Statement, err error) {
	fks := tbl.ForeignKeys
	tbl.ForeignKeys = nil
	stmts = renderCreateTable(tbl)
	for _, fk := range fks {
		deferredForeignKeys = append(deferredForeignKeys, renderAddForeignKey(tbl, fk))
	}
	return stmts, deferredForeignKeys, nil
}
