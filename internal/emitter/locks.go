package emitter

import "strings"

// annotateLocks refines the LockMode each renderer assigned by pattern-
// matching the rendered SQL text, the same prefix-based classification the
// teacher's internal/locks.DetectLockMode uses. The renderers already set a
// reasonable default per statement kind; this pass corrects the cases where
// the SQL text itself changes the answer (CONCURRENTLY, NOT VALID).
func annotateLocks(plan *Plan) {
	for i := range plan.Statements {
		stmt := &plan.Statements[i]
		up := strings.ToUpper(stmt.SQL)

		switch {
		case strings.HasPrefix(up, "CREATE INDEX") || strings.HasPrefix(up, "CREATE UNIQUE INDEX"):
			if strings.Contains(up, "CONCURRENTLY") {
				stmt.LockMode = lockShareUpdateExclusive
			} else {
				stmt.LockMode = "SHARE"
			}
		case strings.Contains(up, "ADD CONSTRAINT") && strings.Contains(up, "NOT VALID"):
			stmt.LockMode = lockAccessExclusive
		case strings.Contains(up, "VALIDATE CONSTRAINT"):
			stmt.LockMode = lockShareUpdateExclusive
		case strings.HasPrefix(up, "CREATE TABLE"):
			stmt.LockMode = lockNone
		}
	}
}
