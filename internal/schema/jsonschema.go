package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var modelJSONSchema []byte

// MarshalJSON renders the Schema Model as a JSON document suitable for
// round-tripping through ValidateJSON: a flat
// array of {identity, object} entries, sorted by Identity for stable output.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return normalizeForHash(s)
}

// ValidateJSON checks a rendered Schema Model document against the embedded
// JSON Schema, returning a joined error listing every violation found.
// Grounded on the teacher's LoadJSONSchema / ValidateJSONSchema.
func ValidateJSON(doc []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(modelJSONSchema)
	docLoader := gojsonschema.NewBytesLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("loading json schema document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var msgs []string
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema model failed json schema validation: %s", strings.Join(msgs, "; "))
}

// DecodeJSON parses a previously rendered document back into entry form
// without reconstructing concrete Object values; used by tests that only
// need to assert on identity presence and shape, not full typed decoding.
func DecodeJSON(doc []byte) ([]map[string]json.RawMessage, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("decoding schema model json: %w", err)
	}
	return raw, nil
}
