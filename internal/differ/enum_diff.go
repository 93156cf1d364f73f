package differ

import "github.com/shem-sql/shem/internal/schema"

// EnumDiff captures an enum change that is pure label appends, the only
// shape of enum delta Postgres can apply with ALTER TYPE ... ADD VALUE
// instead of a drop and recreate.
type EnumDiff struct {
	AddedLabels []string
}

// enumAppendedLabels reports the labels new adds after old's labels, and
// whether old's labels are an exact, unmodified prefix of new's — the only
// case ALTER TYPE ... ADD VALUE can express. Any reordering, removal, or
// mid-list insertion is not an append and falls through to a recreate.
func enumAppendedLabels(old, new schema.Enum) ([]string, bool) {
	if len(new.Labels) <= len(old.Labels) {
		return nil, false
	}
	for i, label := range old.Labels {
		if new.Labels[i] != label {
			return nil, false
		}
	}
	return new.Labels[len(old.Labels):], true
}
