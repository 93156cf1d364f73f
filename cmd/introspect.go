package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/shem-sql/shem/internal/differ"
	"github.com/shem-sql/shem/internal/emitter"
	"github.com/shem-sql/shem/internal/introspector"
	"github.com/shem-sql/shem/internal/schema"
)

var (
	introspectDatabaseURL string
	introspectOutput      string
)

var introspectCmd = &cobra.Command{
	Use:   "introspect",
	Short: "Dump a live database's catalog as declarative SQL",
	Long: `Introspect the target database and write its full catalog out as a
declarative SQL file, in the same dialect "shem diff" emits and "shem
validate"/"shem migrate" consume.`,
	RunE: runIntrospect,
}

func init() {
	rootCmd.AddCommand(introspectCmd)
	introspectCmd.Flags().StringVar(&introspectDatabaseURL, "database-url", "", "Database connection string (required)")
	introspectCmd.Flags().StringVar(&introspectOutput, "output", "", "Output directory to populate with declarative SQL (required)")
	_ = introspectCmd.MarkFlagRequired("database-url")
	_ = introspectCmd.MarkFlagRequired("output")
}

func runIntrospect(cmd *cobra.Command, args []string) error {
	db, err := sql.Open("postgres", introspectDatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	observed, err := introspector.New(db).Introspect(ctx)
	if err != nil {
		return err
	}

	empty := schema.New()
	cs := differ.Diff(empty, observed)
	plan, err := emitter.Emit(cs, empty, observed)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(introspectOutput, 0o755); err != nil {
		return err
	}
	var sb strings.Builder
	for _, stmt := range plan.Statements {
		sb.WriteString(stmt.SQL)
		if !strings.HasSuffix(strings.TrimSpace(stmt.SQL), ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	path := filepath.Join(introspectOutput, "schema.sql")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d statements)\n", path, len(plan.Statements))
	return nil
}
