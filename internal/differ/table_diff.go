package differ

import "github.com/shem-sql/shem/internal/schema"

// TableDiff is the fine-grained delta between two versions of the same
// table. Grounded on the teacher's internal/schema/diff.go TableDiff /
// ColumnDiff, generalized to cover every constraint kind a table carries.
type TableDiff struct {
	AddedColumns   []schema.Column
	DroppedColumns []string
	AlteredColumns []ColumnAlteration

	PrimaryKeyAdded   *schema.PrimaryKeyConstraint
	PrimaryKeyDropped *schema.PrimaryKeyConstraint

	AddedUnique   []schema.UniqueConstraint
	DroppedUnique []schema.UniqueConstraint

	AddedChecks   []schema.CheckConstraint
	DroppedChecks []schema.CheckConstraint

	AddedForeignKeys   []schema.ForeignKeyConstraint
	DroppedForeignKeys []schema.ForeignKeyConstraint

	RLSEnabled  bool
	RLSDisabled bool
}

// ColumnAlteration is a column present on both sides whose definition
// changed.
type ColumnAlteration struct {
	Name string
	Old  schema.Column
	New  schema.Column
}

func diffTables(old, new schema.Table) TableDiff {
	var td TableDiff

	oldCols := columnsByName(old.Columns)
	newCols := columnsByName(new.Columns)

	for name, col := range newCols {
		if _, ok := oldCols[name]; !ok {
			td.AddedColumns = append(td.AddedColumns, col)
		}
	}
	for name, col := range oldCols {
		if newCol, ok := newCols[name]; !ok {
			td.DroppedColumns = append(td.DroppedColumns, name)
		} else if !schema.EqualColumns(col, newCol) {
			td.AlteredColumns = append(td.AlteredColumns, ColumnAlteration{Name: name, Old: col, New: newCol})
		}
	}

	td.PrimaryKeyAdded, td.PrimaryKeyDropped = diffPrimaryKey(old.PrimaryKey, new.PrimaryKey)
	td.AddedUnique, td.DroppedUnique = diffUnique(old.Unique, new.Unique)
	td.AddedChecks, td.DroppedChecks = diffChecks(old.Checks, new.Checks)
	td.AddedForeignKeys, td.DroppedForeignKeys = diffForeignKeys(old.ForeignKeys, new.ForeignKeys)

	td.RLSEnabled = !old.RLSEnabled && new.RLSEnabled
	td.RLSDisabled = old.RLSEnabled && !new.RLSEnabled

	return td
}

func columnsByName(cols []schema.Column) map[string]schema.Column {
	m := make(map[string]schema.Column, len(cols))
	for _, c := range cols {
		m[c.Name] = c
	}
	return m
}

func diffPrimaryKey(old, new *schema.PrimaryKeyConstraint) (added, dropped *schema.PrimaryKeyConstraint) {
	switch {
	case old == nil && new != nil:
		return new, nil
	case old != nil && new == nil:
		return nil, old
	case old != nil && new != nil && !sameColumns(old.Columns, new.Columns):
		return new, old
	default:
		return nil, nil
	}
}

func diffUnique(old, new []schema.UniqueConstraint) (added, dropped []schema.UniqueConstraint) {
	oldByName := uniqueByName(old)
	newByName := uniqueByName(new)
	for name, u := range newByName {
		if existing, ok := oldByName[name]; !ok || !sameColumns(existing.Columns, u.Columns) {
			added = append(added, u)
		}
	}
	for name, u := range oldByName {
		if existing, ok := newByName[name]; !ok || !sameColumns(existing.Columns, u.Columns) {
			dropped = append(dropped, u)
		}
	}
	return added, dropped
}

func uniqueByName(cs []schema.UniqueConstraint) map[string]schema.UniqueConstraint {
	m := make(map[string]schema.UniqueConstraint, len(cs))
	for _, c := range cs {
		m[c.Name] = c
	}
	return m
}

func diffChecks(old, new []schema.CheckConstraint) (added, dropped []schema.CheckConstraint) {
	oldByName := checksByName(old)
	newByName := checksByName(new)
	for name, c := range newByName {
		if existing, ok := oldByName[name]; !ok || schema.NormalizeExpr(existing.Expression) != schema.NormalizeExpr(c.Expression) {
			added = append(added, c)
		}
	}
	for name, c := range oldByName {
		if existing, ok := newByName[name]; !ok || schema.NormalizeExpr(existing.Expression) != schema.NormalizeExpr(c.Expression) {
			dropped = append(dropped, c)
		}
	}
	return added, dropped
}

func checksByName(cs []schema.CheckConstraint) map[string]schema.CheckConstraint {
	m := make(map[string]schema.CheckConstraint, len(cs))
	for _, c := range cs {
		m[c.Name] = c
	}
	return m
}

func diffForeignKeys(old, new []schema.ForeignKeyConstraint) (added, dropped []schema.ForeignKeyConstraint) {
	oldByName := fkByName(old)
	newByName := fkByName(new)
	for name, fk := range newByName {
		if existing, ok := oldByName[name]; !ok || !sameFK(existing, fk) {
			added = append(added, fk)
		}
	}
	for name, fk := range oldByName {
		if existing, ok := newByName[name]; !ok || !sameFK(existing, fk) {
			dropped = append(dropped, fk)
		}
	}
	return added, dropped
}

func fkByName(fks []schema.ForeignKeyConstraint) map[string]schema.ForeignKeyConstraint {
	m := make(map[string]schema.ForeignKeyConstraint, len(fks))
	for _, fk := range fks {
		m[fk.Name] = fk
	}
	return m
}

func sameFK(a, b schema.ForeignKeyConstraint) bool {
	return sameColumns(a.Columns, b.Columns) &&
		a.ReferencedSchema == b.ReferencedSchema &&
		a.ReferencedTable == b.ReferencedTable &&
		sameColumns(a.ReferencedColumns, b.ReferencedColumns) &&
		a.OnDelete == b.OnDelete &&
		a.OnUpdate == b.OnUpdate
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsEmpty reports whether a TableDiff changes nothing.
func (td TableDiff) IsEmpty() bool {
	return len(td.AddedColumns) == 0 && len(td.DroppedColumns) == 0 && len(td.AlteredColumns) == 0 &&
		td.PrimaryKeyAdded == nil && td.PrimaryKeyDropped == nil &&
		len(td.AddedUnique) == 0 && len(td.DroppedUnique) == 0 &&
		len(td.AddedChecks) == 0 && len(td.DroppedChecks) == 0 &&
		len(td.AddedForeignKeys) == 0 && len(td.DroppedForeignKeys) == 0 &&
		!td.RLSEnabled && !td.RLSDisabled
}
