package introspector

import (
	"testing"

	"github.com/lib/pq"

	"github.com/shem-sql/shem/internal/schema"
)

func TestQualifiedSchemaFilterBuildsPlaceholders(t *testing.T) {
	filter, args := qualifiedSchemaFilter("n.nspname", []string{"public", "billing"})
	if filter != "n.nspname IN ($1, $2)" {
		t.Errorf("unexpected filter: %q", filter)
	}
	if len(args) != 2 || args[0] != "public" || args[1] != "billing" {
		t.Errorf("unexpected args: %+v", args)
	}
}

func TestQualifiedSchemaFilterEmptyMeansEverything(t *testing.T) {
	filter, args := qualifiedSchemaFilter("n.nspname", nil)
	if filter != "1=1" || args != nil {
		t.Errorf("expected an always-true filter, got %q, %+v", filter, args)
	}
}

func TestFkActionSQLMapsPgCodes(t *testing.T) {
	cases := map[string]string{"a": "NO ACTION", "r": "RESTRICT", "c": "CASCADE", "n": "SET NULL", "d": "SET DEFAULT", "": ""}
	for code, want := range cases {
		if got := fkActionSQL(code); got != want {
			t.Errorf("fkActionSQL(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestCheckExprFromDefStripsEnvelope(t *testing.T) {
	got := checkExprFromDef("CHECK ((price > (0)::numeric))")
	want := "(price > (0)::numeric)"
	if got != want {
		t.Errorf("checkExprFromDef = %q, want %q", got, want)
	}
}

func TestCheckExprFromDefLeavesUnrecognizedTextAlone(t *testing.T) {
	if got := checkExprFromDef("not a check def"); got != "not a check def" {
		t.Errorf("expected passthrough, got %q", got)
	}
}

func TestVolatilityFromCode(t *testing.T) {
	if volatilityFromCode("i") != schema.VolatilityImmutable {
		t.Error("expected immutable for code i")
	}
	if volatilityFromCode("s") != schema.VolatilityStable {
		t.Error("expected stable for code s")
	}
	if volatilityFromCode("v") != schema.VolatilityVolatile {
		t.Error("expected volatile for code v")
	}
}

func TestBuildParamsAssignsModesAndTypes(t *testing.T) {
	names := pq.StringArray{"user_id", "result"}
	modes := pq.StringArray{"i", "o"}
	types := pq.StringArray{"integer", "text"}

	params := buildParams(names, modes, types)
	if len(params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(params))
	}
	if params[0].Mode != schema.ParamIn || params[0].Name != "user_id" || params[0].Type != "integer" {
		t.Errorf("unexpected first param: %+v", params[0])
	}
	if params[1].Mode != schema.ParamOut || params[1].Name != "result" {
		t.Errorf("unexpected second param: %+v", params[1])
	}
}

func TestTriggerTimingFromBitmask(t *testing.T) {
	const before = 1 << 1
	const insteadOf = 1 << 6
	if triggerTimingFromBitmask(before) != schema.TriggerBefore {
		t.Error("expected before timing")
	}
	if triggerTimingFromBitmask(insteadOf) != schema.TriggerInsteadOf {
		t.Error("expected instead-of timing")
	}
	if triggerTimingFromBitmask(0) != schema.TriggerAfter {
		t.Error("expected after as the default timing")
	}
}

func TestTriggerEventsFromBitmask(t *testing.T) {
	const insert = 1 << 2
	const update = 1 << 4
	events := triggerEventsFromBitmask(insert | update)
	if len(events) != 2 || events[0] != "INSERT" || events[1] != "UPDATE" {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestPolicyCommandFromCode(t *testing.T) {
	cases := map[string]schema.PolicyCommand{
		"r": schema.PolicySelect, "a": schema.PolicyInsert,
		"w": schema.PolicyUpdate, "d": schema.PolicyDelete, "*": schema.PolicyAll,
	}
	for code, want := range cases {
		if got := policyCommandFromCode(code); got != want {
			t.Errorf("policyCommandFromCode(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestParseViewOptionsReadsCheckOptionAndSecurityBarrier(t *testing.T) {
	checkOption, barrier := parseViewOptions(pq.StringArray{"check_option=cascaded", "security_barrier=true"})
	if checkOption != schema.CheckOptionCascaded {
		t.Errorf("expected cascaded check option, got %q", checkOption)
	}
	if !barrier {
		t.Error("expected security barrier to be true")
	}
}

func TestParseOptionPairsSplitsKeyValueEntries(t *testing.T) {
	opts := parseOptionPairs(pq.StringArray{"host=localhost", "port=5432"})
	if opts["host"] != "localhost" || opts["port"] != "5432" {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestRuleEventFromCode(t *testing.T) {
	if ruleEventFromCode("3") != "INSERT" {
		t.Error("expected INSERT for code 3")
	}
	if ruleEventFromCode("9") != "" {
		t.Error("expected empty string for an unrecognized code")
	}
}
