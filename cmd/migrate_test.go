package cmd

import "testing"

func TestMigrateCommandMetadata(t *testing.T) {
	if migrateCmd == nil {
		t.Fatal("migrateCmd should not be nil")
	}
	if migrateCmd.Use != "migrate" {
		t.Errorf("expected Use to be %q, got %q", "migrate", migrateCmd.Use)
	}
	if migrateCmd.Flags().Lookup("history-table") == nil {
		t.Error("expected --history-table flag")
	}
	if migrateCmd.Flags().Lookup("verbose") == nil {
		t.Error("expected --verbose flag")
	}
}

func TestResetCommandMetadata(t *testing.T) {
	if resetCmd == nil {
		t.Fatal("resetCmd should not be nil")
	}
	if resetCmd.Use != "reset" {
		t.Errorf("expected Use to be %q, got %q", "reset", resetCmd.Use)
	}
	if resetCmd.Flags().Lookup("version") == nil {
		t.Error("expected --version flag")
	}
}

func TestIntrospectCommandMetadata(t *testing.T) {
	if introspectCmd == nil {
		t.Fatal("introspectCmd should not be nil")
	}
	if introspectCmd.Flags().Lookup("output") == nil {
		t.Error("expected --output flag")
	}
}
