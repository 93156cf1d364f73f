package schema

import "testing"

func TestNormalizeTypeNameAliases(t *testing.T) {
	tests := map[string]string{
		"INT4":      "integer",
		"varchar":   "character varying",
		"serial":    "integer",
		"bigserial": "bigint",
		"text":      "text",
	}
	for in, want := range tests {
		if got := NormalizeTypeName(in); got != want {
			t.Errorf("NormalizeTypeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsSerialDefault(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{"nextval('users_id_seq'::regclass)", true},
		{"NEXTVAL('users_id_seq'::regclass)", true},
		{"0", false},
		{"gen_random_uuid()", false},
	}
	for _, tt := range tests {
		if got := IsSerialDefault(tt.expr); got != tt.want {
			t.Errorf("IsSerialDefault(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestNormalizeExprStripsParensAndWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(a = 1)", "a = 1"},
		{"  a   =   1  ", "a = 1"},
		{"((a = 1))", "a = 1"},
		{"(a = 1) and (b = 2)", "(a = 1) and (b = 2)"},
	}
	for _, tt := range tests {
		if got := NormalizeExpr(tt.in); got != tt.want {
			t.Errorf("NormalizeExpr(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
