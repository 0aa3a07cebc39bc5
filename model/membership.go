package model

import "time"

// Membership role values as stored on the MEMBER_OF relationship. The guard
// prefixes them with the scope (ORG_/TEAM_) before hierarchy comparison.
const (
	MembershipRoleMember = "MEMBER"
	MembershipRoleAdmin  = "ADMIN"
	MembershipRoleOwner  = "OWNER"
)

// Membership is the (user, scope, role) relation. Exactly one of
// OrganizationID and TeamID is set; at most one active membership exists per
// (user, scope) pair.
type Membership struct {
	UserID         int64     `json:"user_id"`
	OrganizationID int64     `json:"organization_id,omitempty"`
	TeamID         int64     `json:"team_id,omitempty"`
	Role           string    `json:"role"`
	Accepted       bool      `json:"accepted"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
