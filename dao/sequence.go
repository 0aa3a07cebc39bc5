package dao

import (
	"context"
)

// requestingUserID pulls the authenticated caller's id out of the request
// context for audit trails. Zero when the context carries none (startup
// tasks, tests).
func requestingUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value("requestingUserID").(int64); ok {
		return id
	}
	return 0
}

// nextIDQuery increments a per-label counter node and hands the new value to
// the rest of the statement as `newId`. Entity ids are numeric because they
// appear in URL paths and cache keys.
const nextIDQuery = `
MERGE (s:Sequence {name: $seqName})
SET s.value = coalesce(s.value, 0) + 1
WITH s.value AS newId
`
