package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Hash computes a deterministic SHA-256 digest of a Schema Model. Two Schema
// values that are structurally equal after normalization always hash to the
// same digest regardless of map iteration order, since objects are sorted by
// Identity before marshaling. Grounded on the teacher's schema_hash.go.
func Hash(s *Schema) (string, error) {
	norm, err := normalizeForHash(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(norm)
	return hex.EncodeToString(sum[:]), nil
}

// entry pairs an Identity with its normalized descriptor for deterministic
// marshaling. The json tags fix entry's own two keys; the descriptor is
// marshaled with encoding/json's defaults, so its keys follow the field order
// of its type in model.go.
type entry struct {
	Identity Identity `json:"identity"`
	Object   Object   `json:"object"`
}

func normalizeForHash(s *Schema) ([]byte, error) {
	entries := make([]entry, 0, len(s.Objects))
	for id, obj := range s.Objects {
		entries = append(entries, entry{Identity: id, Object: normalizeObject(obj)})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Identity, entries[j].Identity
		if !a.Less(b) && !b.Less(a) {
			return a.Kind < b.Kind
		}
		return a.Less(b)
	})
	return json.Marshal(entries)
}
