package schema

import "reflect"

// Equal reports whether two descriptors of the same identity are
// byte-equivalent after normalization. The differ calls this to decide
// between "unchanged" and "altered" once it has matched two objects by
// Identity; it never compares objects of differing identity.
func Equal(a, b Object) bool {
	na, nb := normalizeObject(a), normalizeObject(b)
	return reflect.DeepEqual(na, nb)
}

// EqualColumns reports whether two Columns are equivalent after
// normalization. Exposed separately from Equal so the differ can compare
// individual columns of a table without needing a throwaway Object wrapper.
func EqualColumns(a, b Column) bool {
	return reflect.DeepEqual(normalizeColumn(a), normalizeColumn(b))
}

// normalizeObject returns a copy of obj with normalization applied to the
// fields the differ must treat as equivalent under reformatting (type
// spellings and case, whitespace and enclosing parentheses of expression
// text such as defaults and checks). Kinds
// with nothing to normalize are returned unchanged.
func normalizeObject(obj Object) Object {
	switch o := obj.(type) {
	case Table:
		cols := make([]Column, len(o.Columns))
		for i, c := range o.Columns {
			cols[i] = normalizeColumn(c)
		}
		o.Columns = cols
		checks := make([]CheckConstraint, len(o.Checks))
		for i, c := range o.Checks {
			checks[i] = CheckConstraint{Name: c.Name, Expression: NormalizeExpr(c.Expression)}
		}
		o.Checks = checks
		return o
	case Column:
		return normalizeColumn(o)
	case Index:
		if o.Predicate != "" {
			o.Predicate = NormalizeExpr(o.Predicate)
		}
		return o
	case View:
		o.Query = NormalizeExpr(o.Query)
		return o
	case MaterializedView:
		o.Query = NormalizeExpr(o.Query)
		return o
	case Domain:
		o.BaseType = NormalizeTypeName(o.BaseType)
		if o.Default != "" {
			o.Default = NormalizeExpr(o.Default)
		}
		checks := make([]CheckConstraint, len(o.Checks))
		for i, c := range o.Checks {
			checks[i] = CheckConstraint{Name: c.Name, Expression: NormalizeExpr(c.Expression)}
		}
		o.Checks = checks
		return o
	case Policy:
		if o.Using != "" {
			o.Using = NormalizeExpr(o.Using)
		}
		if o.WithCheck != "" {
			o.WithCheck = NormalizeExpr(o.WithCheck)
		}
		return o
	case Trigger:
		if o.When != "" {
			o.When = NormalizeExpr(o.When)
		}
		return o
	default:
		return obj
	}
}

func normalizeColumn(c Column) Column {
	c.Type = NormalizeTypeName(c.Type)
	switch {
	case c.Default == "":
		// nothing to normalize
	case IsSerialDefault(c.Default):
		// A declarative "serial" column never writes out its own default;
		// the introspector always sees the nextval(...) PostgreSQL attaches.
		// Dropping it here lets the two representations compare equal.
		c.Default = ""
	default:
		c.Default = NormalizeExpr(c.Default)
	}
	if c.Generated != "" {
		c.Generated = NormalizeExpr(c.Generated)
	}
	return c
}
