package model

import (
	"strconv"
	"strings"
)

// cacheKeyNone is the sentinel for an absent key component. An explicit
// token keeps keys unambiguous; absence must never collapse two distinct
// requests onto the same key.
const cacheKeyNone = "none"

// CacheKey identifies one cached guard decision.
type CacheKey struct {
	UserID       *int64
	OrgID        *int64
	TeamID       *int64
	RequiredRole Role
}

// String renders the wire format:
// apiv2:user:<id|none>:org:<id|none>:team:<id|none>:guard:roles:<role>
func (k CacheKey) String() string {
	var b strings.Builder
	b.WriteString("apiv2:user:")
	b.WriteString(idOrNone(k.UserID))
	b.WriteString(":org:")
	b.WriteString(idOrNone(k.OrgID))
	b.WriteString(":team:")
	b.WriteString(idOrNone(k.TeamID))
	b.WriteString(":guard:roles:")
	b.WriteString(string(k.RequiredRole))
	return b.String()
}

func idOrNone(id *int64) string {
	if id == nil {
		return cacheKeyNone
	}
	return strconv.FormatInt(*id, 10)
}
