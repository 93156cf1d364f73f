package cmd

import "testing"

func TestDiffCommandMetadata(t *testing.T) {
	if diffCmd == nil {
		t.Fatal("diffCmd should not be nil")
	}
	if diffCmd.Use != "diff" {
		t.Errorf("expected Use to be %q, got %q", "diff", diffCmd.Use)
	}
	if diffCmd.Flags().Lookup("database-url") == nil {
		t.Error("expected --database-url flag")
	}
	if diffCmd.Flags().Lookup("name") == nil {
		t.Error("expected --name flag")
	}
	if diffCmd.Flags().Lookup("force") == nil {
		t.Error("expected --force flag")
	}
	if diffCmd.Flags().Lookup("dry-run") == nil {
		t.Error("expected --dry-run flag")
	}
}

func TestFirstNonEmptyPrefersFirstSetValue(t *testing.T) {
	if got := firstNonEmpty("", "", "fallback"); got != "fallback" {
		t.Errorf("firstNonEmpty = %q, want %q", got, "fallback")
	}
	if got := firstNonEmpty("flag-value", "config-value"); got != "flag-value" {
		t.Errorf("firstNonEmpty = %q, want %q", got, "flag-value")
	}
}

func TestTimestampVersionMatchesMigrationFilePattern(t *testing.T) {
	v := timestampVersion()
	if len(v) != 14 {
		t.Errorf("expected a 14-digit timestamp version, got %q", v)
	}
}
