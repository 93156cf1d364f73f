package migrate

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestEnsureHistoryTableCreatesTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS _shem_migrations")).WillReturnResult(sqlmock.NewResult(0, 0))

	r := New(db, "")
	if err := r.EnsureHistoryTable(context.Background()); err != nil {
		t.Fatalf("EnsureHistoryTable: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestApplyRunsStatementsThenRecordsHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	m := Migration{
		Version:    "20260101000000",
		Name:       "create_users",
		Statements: []string{"CREATE TABLE public.users (id integer NOT NULL);"},
		Checksum:   "abc123",
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(m.Statements[0])).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO _shem_migrations")).
		WithArgs(m.Version, m.Checksum).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	r := New(db, "")
	if err := r.Apply(context.Background(), m); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestApplyRollsBackOnStatementFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	m := Migration{
		Version:    "20260102000000",
		Name:       "add_email",
		Statements: []string{"ALTER TABLE public.users ADD COLUMN email text;"},
		Checksum:   "def456",
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(m.Statements[0])).WillReturnError(sqlmock.ErrCancelled)
	mock.ExpectRollback()

	r := New(db, "")
	if err := r.Apply(context.Background(), m); err == nil {
		t.Fatal("expected Apply to return an error on statement failure")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCheckDivergenceDetectsChecksumMismatch(t *testing.T) {
	m := Migration{Version: "20260101000000", Name: "create_users", Checksum: "new-hash"}
	history := map[string]string{"20260101000000": "old-hash"}

	if err := CheckDivergence(m, history); err == nil {
		t.Fatal("expected a history divergence error")
	}
}

func TestCheckDivergenceIgnoresUnappliedMigration(t *testing.T) {
	m := Migration{Version: "20260103000000", Name: "not_yet_applied", Checksum: "anything"}

	if err := CheckDivergence(m, map[string]string{}); err != nil {
		t.Fatalf("expected no error for a migration not yet in history, got %v", err)
	}
}

func TestPendingFiltersOutAppliedVersions(t *testing.T) {
	all := []Migration{
		{Version: "20260101000000", Name: "create_users"},
		{Version: "20260102000000", Name: "add_email"},
	}
	history := map[string]string{"20260101000000": "old-hash"}

	pending := Pending(all, history)
	if len(pending) != 1 || pending[0].Version != "20260102000000" {
		t.Fatalf("expected only the unapplied migration, got %+v", pending)
	}
}
