// api/audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	RequestID     string          `json:"request_id,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	UserID        int64           `json:"user_id"`
	Action        string          `json:"action"`
	OrgID         int64           `json:"org_id,omitempty"`
	TeamID        int64           `json:"team_id,omitempty"`
	ResourceID    string          `json:"resource_id,omitempty"`
	RequiredRole  string          `json:"required_role,omitempty"`
	Scope         string          `json:"scope,omitempty"`
	AccessGranted bool            `json:"access_granted"`
	Reason        string          `json:"reason,omitempty"`
	ChangeDetails json.RawMessage `json:"change_details,omitempty"`
}
