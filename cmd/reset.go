package cmd

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/shem-sql/shem/internal/config"
	"github.com/shem-sql/shem/internal/migrate"
)

var (
	resetDatabaseURL string
	resetDir         string
	resetTable       string
	resetVersion     string
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Roll the target database back to the state at a given migration version",
	Long: `Drop every object in the target database's public schema, then replay
every migration up to and including --version in order. This is a
destructive operation: everything in the target database is discarded
before replay begins.`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().StringVar(&resetDatabaseURL, "database-url", "", "Database connection string")
	resetCmd.Flags().StringVar(&resetDir, "dir", "", "Migrations directory (defaults to shem.toml/shem.yaml)")
	resetCmd.Flags().StringVar(&resetTable, "history-table", "", "Migration history table name")
	resetCmd.Flags().StringVar(&resetVersion, "version", "", "Target version to roll to (required)")
	_ = resetCmd.MarkFlagRequired("version")
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	dbURL := firstNonEmpty(resetDatabaseURL, cfg.Database.URL)
	if dbURL == "" {
		fatalf("no database URL configured; pass --database-url or set database.url in shem.toml")
	}
	dir := firstNonEmpty(resetDir, cfg.Migration.Dir)
	table := firstNonEmpty(resetTable, cfg.Migration.Table)

	all, err := migrate.Discover(dir)
	if err != nil {
		return err
	}
	var target []migrate.Migration
	found := false
	for _, m := range all {
		target = append(target, m)
		if m.Version == resetVersion {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("no migration with version %s found in %s", resetVersion, dir)
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "DROP SCHEMA public CASCADE; CREATE SCHEMA public;"); err != nil {
		return fmt.Errorf("dropping target schema before replay: %w", err)
	}

	runner := migrate.New(db, table)
	if err := runner.EnsureHistoryTable(ctx); err != nil {
		return err
	}
	for _, m := range target {
		if err := runner.Apply(ctx, m); err != nil {
			return err
		}
	}

	fmt.Printf("reset to %s (%d migration(s) replayed)\n", resetVersion, len(target))
	return nil
}
