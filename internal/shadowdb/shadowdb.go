// Package shadowdb validates emitted SQL by replaying it into a transient
// PostgreSQL database, introspecting the result, and comparing it against
// the in-memory desired Schema Model before any migration file is written.
// Grounded on the teacher's internal/shadow/reservation.go, redesigned from
// a long-lived JSON-file reservation tracking one shadow database across
// CLI invocations into a single-operation-scoped database that is created,
// used, and dropped within one Validate call — matching the spec's shadow
// database lifecycle (create, replay, introspect, compare, drop
// unconditionally) rather than the teacher's multi-step wizard workflow.
package shadowdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/shem-sql/shem/internal/differ"
	"github.com/shem-sql/shem/internal/introspector"
	"github.com/shem-sql/shem/internal/schema"
	"github.com/shem-sql/shem/internal/shemerr"
)

const namePrefix = "shem_shadow_"

// Validator creates a transient database, replays history + desired-state
// SQL into it, and compares its introspected shape against a desired Model.
type Validator struct {
	// AdminURL connects to the server's administrative database (the one
	// CREATE DATABASE/DROP DATABASE run against), e.g. postgres:// ... /postgres.
	AdminURL string
}

// New returns a Validator that creates shadow databases on the server
// reachable via adminURL.
func New(adminURL string) *Validator {
	return &Validator{AdminURL: adminURL}
}

// Result carries the outcome of one Validate call.
type Result struct {
	ShadowDatabase string
	Mismatch       differ.ChangeSet
}

// OK reports whether the shadow database introspected to exactly the
// desired Model.
func (r Result) OK() bool { return r.Mismatch.IsEmpty() }

// Validate creates a transient database, executes history followed by
// desiredSQL against it, introspects the result, and diffs it against
// desired. The shadow database is dropped unconditionally, including when
// ctx is cancelled or creation/replay/introspection fails partway through.
func (v *Validator) Validate(ctx context.Context, history, desiredSQL []string, desired *schema.Schema) (Result, error) {
	name := namePrefix + uuid.NewString()
	name = pqQuoteIdentSuffix(name)

	admin, err := sql.Open("postgres", v.AdminURL)
	if err != nil {
		return Result{}, shemerr.Connectionf("opening administrative connection", err)
	}
	defer admin.Close()

	if _, err := admin.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", name)); err != nil {
		return Result{}, shemerr.Connectionf("creating shadow database %s", err, name)
	}
	defer dropShadowDatabase(admin, name)

	shadowURL, err := deriveShadowURL(v.AdminURL, name)
	if err != nil {
		return Result{}, err
	}

	shadow, err := sql.Open("postgres", shadowURL)
	if err != nil {
		return Result{}, shemerr.Connectionf("opening shadow database %s", err, name)
	}
	defer shadow.Close()

	for _, stmt := range history {
		if _, err := shadow.ExecContext(ctx, stmt); err != nil {
			return Result{}, shemerr.ShadowDivergencef("replaying migration history into %s: %v", name, err)
		}
	}
	for _, stmt := range desiredSQL {
		if _, err := shadow.ExecContext(ctx, stmt); err != nil {
			return Result{}, shemerr.ShadowDivergencef("replaying desired-state SQL into %s: %v", name, err)
		}
	}

	observed, err := introspector.New(shadow).Introspect(ctx)
	if err != nil {
		return Result{}, shemerr.ShadowDivergencef("introspecting shadow database %s: %v", name, err)
	}

	mismatch := differ.Diff(observed, desired)
	return Result{ShadowDatabase: name, Mismatch: mismatch}, nil
}

func dropShadowDatabase(admin *sql.DB, name string) {
	// WITH (FORCE) disconnects any lingering session before dropping, so a
	// connection this Validate call itself left open never blocks cleanup.
	_, _ = admin.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", name))
}

// SweepStale drops shem_shadow_* databases orphaned by a panic or abrupt
// termination that skipped the deferred drop in Validate. A database's age
// is measured from its pg_stat_database.stats_reset time, and those older
// than maxAge are dropped; if that age query fails, every shem_shadow_*
// database is dropped regardless of age.
func SweepStale(ctx context.Context, adminURL string, maxAge time.Duration) error {
	admin, err := sql.Open("postgres", adminURL)
	if err != nil {
		return shemerr.Connectionf("opening administrative connection", err)
	}
	defer admin.Close()

	rows, err := admin.QueryContext(ctx, `
		SELECT datname FROM pg_database
		WHERE datname LIKE $1 AND age(now(), (
			SELECT stats_reset FROM pg_stat_database WHERE datname = pg_database.datname
		)) > $2::interval`, namePrefix+"%", fmt.Sprintf("%d seconds", int(maxAge.Seconds())))
	if err != nil {
		// A database whose stats_reset is null is simply left out by the
		// age filter above; only when the query itself fails does the sweep
		// fall back to matching by name alone.
		rows, err = admin.QueryContext(ctx, `SELECT datname FROM pg_database WHERE datname LIKE $1`, namePrefix+"%")
		if err != nil {
			return shemerr.Connectionf("listing shadow databases", err)
		}
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return shemerr.Connectionf("scanning shadow database name", err)
		}
		stale = append(stale, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, name := range stale {
		dropShadowDatabase(admin, name)
	}
	return nil
}

// pqQuoteIdentSuffix replaces hyphens in a generated UUID with underscores
// so the result is a bare PostgreSQL identifier needing no quoting — the
// teacher's reservation names likewise avoid punctuation that would force
// every DDL statement touching them to quote the database name.
func pqQuoteIdentSuffix(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		if name[i] == '-' {
			out[i] = '_'
		} else {
			out[i] = name[i]
		}
	}
	return string(out)
}
