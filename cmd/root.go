// Package cmd wires the shem command-line verbs onto cobra. Grounded on the
// teacher's cmd/root.go plus cmd/init.go, cmd/plan.go, cmd/introspect.go,
// cmd/validate.go, generalized from lockplane's schema-file/database
// duality onto shem's SQL-files-vs-live-database model.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shem",
	Short: "shem manages PostgreSQL schemas declaratively.",
	Long: `shem compares a directory of declarative SQL files against a live
PostgreSQL database, emits the ordered SQL needed to reconcile them, and
applies or records that SQL as a versioned migration.`,
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
