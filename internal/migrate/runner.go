// Package migrate discovers migration files on disk and applies the
// pending ones against a live database inside one transaction per file,
// tracking what has already run in a history table so repeated runs are
// idempotent. Grounded on the teacher's internal/executor/executor.go
// ApplyPlan (transaction-per-run, verbose tracing via fatih/color).
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/shem-sql/shem/internal/shemerr"
)

const defaultHistoryTable = "_shem_migrations"

// Runner applies migration files against a target database, recording each
// run in a history table so a previously-applied migration is never run
// twice.
type Runner struct {
	DB           *sql.DB
	HistoryTable string
	Verbose      bool
}

// New returns a Runner that records history in the named table.
func New(db *sql.DB, historyTable string) *Runner {
	if historyTable == "" {
		historyTable = defaultHistoryTable
	}
	return &Runner{DB: db, HistoryTable: historyTable}
}

// EnsureHistoryTable creates the migration history table if it is missing,
// using the column shape spec's migration runner names: version as the
// primary key, a required checksum, and an applied_at default.
func (r *Runner) EnsureHistoryTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  version TEXT PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  checksum TEXT NOT NULL
);`, r.HistoryTable)
	if _, err := r.DB.ExecContext(ctx, ddl); err != nil {
		return shemerr.Connectionf("creating migration history table %s", err, r.HistoryTable)
	}
	return nil
}

// History returns every migration version recorded in history, mapped to
// its recorded checksum.
func (r *Runner) History(ctx context.Context) (map[string]string, error) {
	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf("SELECT version, checksum FROM %s", r.HistoryTable))
	if err != nil {
		return nil, shemerr.Connectionf("reading migration history", err)
	}
	defer rows.Close()

	history := make(map[string]string)
	for rows.Next() {
		var version, checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			return nil, shemerr.Connectionf("scanning migration history row", err)
		}
		history[version] = checksum
	}
	return history, rows.Err()
}

// CheckDivergence reports a HistoryDivergence error when m's version is
// already recorded in history under a different checksum than m's current
// file contents hash to — meaning the migration file was edited after it
// was applied.
func CheckDivergence(m Migration, history map[string]string) error {
	recorded, ok := history[m.Version]
	if !ok {
		return nil
	}
	if recorded != m.Checksum {
		return shemerr.HistoryDivergencef(
			"migration %s was applied with checksum %s, but the file on disk now hashes to %s",
			FileName(m.Version, m.Name), recorded, m.Checksum,
		)
	}
	return nil
}

// Apply runs one migration's statements inside a transaction, then records
// its version and checksum in the history table. Failure at any statement
// rolls back only this migration; previously-applied migrations are
// untouched since each runs in its own transaction.
func (r *Runner) Apply(ctx context.Context, m Migration) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return shemerr.Connectionf("beginning transaction for migration %s", err, FileName(m.Version, m.Name))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range m.Statements {
		if r.Verbose {
			preview := stmt
			if len(preview) > 200 {
				preview = preview[:200] + "..."
			}
			_, _ = color.New(color.FgYellow).Fprintf(os.Stderr, "  [%s %d/%d] %s\n", m.Version, i+1, len(m.Statements), preview)
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return shemerr.New(shemerr.KindConnectionError,
				fmt.Sprintf("migration %s: statement %d/%d failed", FileName(m.Version, m.Name), i+1, len(m.Statements)), err)
		}
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (version, checksum) VALUES ($1, $2)", r.HistoryTable)
	if _, err := tx.ExecContext(ctx, insertSQL, m.Version, m.Checksum); err != nil {
		return shemerr.Connectionf("recording migration %s in history", err, FileName(m.Version, m.Name))
	}

	if err := tx.Commit(); err != nil {
		return shemerr.Connectionf("committing migration %s", err, FileName(m.Version, m.Name))
	}
	if r.Verbose {
		_, _ = color.New(color.FgGreen).Fprintf(os.Stderr, "  applied %s\n", FileName(m.Version, m.Name))
	}
	return nil
}

// ApplyPending runs every migration in dir not yet recorded in history, in
// version order, aborting immediately (without touching later migrations)
// on the first HistoryDivergence or statement failure.
func (r *Runner) ApplyPending(ctx context.Context, dir string) (applied []Migration, err error) {
	if err := r.EnsureHistoryTable(ctx); err != nil {
		return nil, err
	}

	all, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	history, err := r.History(ctx)
	if err != nil {
		return nil, err
	}

	for _, m := range all {
		if _, ok := history[m.Version]; ok {
			if err := CheckDivergence(m, history); err != nil {
				return applied, err
			}
			continue
		}
		if err := r.Apply(ctx, m); err != nil {
			return applied, err
		}
		applied = append(applied, m)
	}
	return applied, nil
}
