package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/shem-sql/shem/internal/config"
	"github.com/shem-sql/shem/internal/migrate"
	"github.com/shem-sql/shem/internal/shemerr"
)

var (
	migrateDatabaseURL string
	migrateDir         string
	migrateTable       string
	migrateVerbose     bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migration files against the target database",
	Long: `Discover migration files under the configured migrations directory,
apply every one not yet recorded in the history table, and stop immediately
(leaving already-applied migrations untouched) on the first failure.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&migrateDatabaseURL, "database-url", "", "Database connection string")
	migrateCmd.Flags().StringVar(&migrateDir, "dir", "", "Migrations directory (defaults to shem.toml/shem.yaml)")
	migrateCmd.Flags().StringVar(&migrateTable, "history-table", "", "Migration history table name")
	migrateCmd.Flags().BoolVarP(&migrateVerbose, "verbose", "v", false, "Print each statement as it runs")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	dbURL := firstNonEmpty(migrateDatabaseURL, cfg.Database.URL)
	if dbURL == "" {
		fatalf("no database URL configured; pass --database-url or set database.url in shem.toml")
	}
	dir := firstNonEmpty(migrateDir, cfg.Migration.Dir)
	table := firstNonEmpty(migrateTable, cfg.Migration.Table)

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return err
	}
	defer db.Close()

	runner := migrate.New(db, table)
	runner.Verbose = migrateVerbose

	applied, err := runner.ApplyPending(context.Background(), dir)
	if err != nil {
		var divergence *shemerr.Error
		if errors.As(err, &divergence) && divergence.Kind == shemerr.KindHistoryDivergence {
			fmt.Printf("%d migration(s) applied before the divergence was found\n", len(applied))
		}
		return err
	}

	if len(applied) == 0 {
		fmt.Println("no pending migrations")
		return nil
	}
	for _, m := range applied {
		fmt.Printf("applied %s\n", migrate.FileName(m.Version, m.Name))
	}
	return nil
}
