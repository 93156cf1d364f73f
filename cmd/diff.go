package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/shem-sql/shem/internal/config"
	"github.com/shem-sql/shem/internal/differ"
	"github.com/shem-sql/shem/internal/emitter"
	"github.com/shem-sql/shem/internal/introspector"
	"github.com/shem-sql/shem/internal/migrate"
	"github.com/shem-sql/shem/internal/parser"
	"github.com/shem-sql/shem/internal/shadowdb"
)

var (
	diffDatabaseURL string
	diffSchemaDir   string
	diffName        string
	diffForce       bool
	diffDryRun      bool
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Emit a new migration file from the current declarative schema",
	Long: `Introspect the target database, parse the declarative schema directory,
diff the two, validate the emitted SQL against a transient shadow database,
and write the result as a new migration file.

With --dry-run, the plan is printed instead of written and no shadow
database is created.`,
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVar(&diffDatabaseURL, "database-url", "", "Database connection string (defaults to shem.toml/shem.yaml + DATABASE_URL)")
	diffCmd.Flags().StringVar(&diffSchemaDir, "schema-dir", "", "Declarative schema directory (defaults to shem.toml/shem.yaml)")
	diffCmd.Flags().StringVarP(&diffName, "name", "m", "change", "Name segment of the generated migration file")
	diffCmd.Flags().BoolVar(&diffForce, "force", false, "Write the migration file even if it contains destructive statements")
	diffCmd.Flags().BoolVar(&diffDryRun, "dry-run", false, "Print the plan instead of writing a migration file")
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	dbURL := firstNonEmpty(diffDatabaseURL, cfg.Database.URL)
	if dbURL == "" {
		fatalf("no database URL configured; pass --database-url or set database.url in shem.toml")
	}
	schemaDir := firstNonEmpty(diffSchemaDir, cfg.SchemaDir)

	desired, err := parser.LoadDir(schemaDir, "public")
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	current, err := introspector.New(db).Introspect(ctx)
	if err != nil {
		return err
	}

	cs := differ.Diff(current, desired)
	if cs.IsEmpty() {
		fmt.Println("no changes")
		return nil
	}

	plan, err := emitter.Emit(cs, current, desired)
	if err != nil {
		return err
	}

	if diffDryRun {
		printPlan(plan, cmd.OutOrStdout())
		return nil
	}

	if plan.HasDestructive() && !diffForce {
		fatalf("plan contains destructive statements; re-run with --force to write it anyway")
	}

	if shadowURL := firstNonEmpty(cfg.Shadow.URL, dbURL); shadowURL != "" {
		history, err := migrate.Discover(firstNonEmpty(cfg.Migration.Dir, "migrations"))
		if err != nil {
			return err
		}
		historySQL := make([]string, 0)
		for _, m := range history {
			historySQL = append(historySQL, m.Statements...)
		}
		desiredSQL := make([]string, len(plan.Statements))
		for i, s := range plan.Statements {
			desiredSQL[i] = s.SQL
		}

		result, err := shadowdb.New(shadowURL).Validate(ctx, historySQL, desiredSQL, desired)
		if err != nil {
			return err
		}
		if !result.OK() {
			return fmt.Errorf("shadow validation diverged from the desired model: %d unexpected change(s)", len(result.Mismatch.Changes))
		}
	}

	dir := firstNonEmpty(cfg.Migration.Dir, "migrations")
	path, err := writeMigrationFile(dir, diffName, plan)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func writeMigrationFile(dir, name string, plan emitter.Plan) (string, error) {
	var sb strings.Builder
	for _, stmt := range plan.Statements {
		sb.WriteString(stmt.SQL)
		if !strings.HasSuffix(strings.TrimSpace(stmt.SQL), ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	return writeTimestampedFile(dir, name, sb.String())
}

func timestampVersion() string {
	return time.Now().UTC().Format("20060102150405")
}
