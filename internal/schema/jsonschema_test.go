package schema

import "testing"

func TestMarshalJSONRoundTripsThroughValidateJSON(t *testing.T) {
	s := buildFixtureSchema()
	doc, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if err := ValidateJSON(doc); err != nil {
		t.Fatalf("ValidateJSON() error = %v", err)
	}
}

func TestValidateJSONRejectsUnknownKind(t *testing.T) {
	doc := []byte(`[{"identity":{"Schema":"public","Name":"x","Kind":"bogus"},"object":{}}]`)
	if err := ValidateJSON(doc); err == nil {
		t.Fatalf("expected validation error for unknown kind")
	}
}

func TestDecodeJSONReturnsEntries(t *testing.T) {
	s := buildFixtureSchema()
	doc, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	entries, err := DecodeJSON(doc)
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (table + index), got %d", len(entries))
	}
}
