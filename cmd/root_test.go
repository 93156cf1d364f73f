package cmd

import "testing"

func TestRootCommand(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd should not be nil")
	}
	if rootCmd.Use != "shem" {
		t.Errorf("expected Use to be %q, got %q", "shem", rootCmd.Use)
	}
	if rootCmd.Short == "" {
		t.Error("rootCmd.Short should not be empty")
	}
}

func TestCommandsRegistered(t *testing.T) {
	expected := map[string]bool{
		"init":       false,
		"diff":       false,
		"migrate":    false,
		"reset":      false,
		"inspect":    false,
		"validate":   false,
		"introspect": false,
	}
	for _, c := range rootCmd.Commands() {
		if _, ok := expected[c.Name()]; ok {
			expected[c.Name()] = true
		}
	}
	for name, registered := range expected {
		if !registered {
			t.Errorf("expected command %q to be registered", name)
		}
	}
}
