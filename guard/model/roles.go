package model

// Role identifies a privilege level within a scope. Organization and team
// roles form two disjoint ordered sets; SystemAdminRole is orthogonal to
// both and outranks everything.
type Role string

const (
	RoleOrgOwner  Role = "ORG_OWNER"
	RoleOrgAdmin  Role = "ORG_ADMIN"
	RoleOrgMember Role = "ORG_MEMBER"

	RoleTeamOwner  Role = "TEAM_OWNER"
	RoleTeamAdmin  Role = "TEAM_ADMIN"
	RoleTeamMember Role = "TEAM_MEMBER"

	SystemAdminRole Role = "SYSTEM_ADMIN"
)

// OrgRoles and TeamRoles are ordered descending by privilege: index 0 is the
// most privileged role. HasMinimumRole relies on this ordering.
var (
	OrgRoles  = []Role{RoleOrgOwner, RoleOrgAdmin, RoleOrgMember}
	TeamRoles = []Role{RoleTeamOwner, RoleTeamAdmin, RoleTeamMember}
)

// OrgRole maps a stored membership role (OWNER/ADMIN/MEMBER) into the
// organization role set.
func OrgRole(membershipRole string) Role {
	return Role("ORG_" + membershipRole)
}

// TeamRole maps a stored membership role into the team role set.
func TeamRole(membershipRole string) Role {
	return Role("TEAM_" + membershipRole)
}

// IsOrgRole reports whether r belongs to the organization role set.
func IsOrgRole(r Role) bool {
	return containsRole(OrgRoles, r)
}

// IsTeamRole reports whether r belongs to the team role set.
func IsTeamRole(r Role) bool {
	return containsRole(TeamRoles, r)
}

func containsRole(roles []Role, r Role) bool {
	for _, candidate := range roles {
		if candidate == r {
			return true
		}
	}
	return false
}
