package dao

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/schedly/api/model"
	schedly_neo4j "github.com/schedly/api/model/neo4j"
)

func TestOrganizationFromProps(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	org := organizationFromProps(map[string]interface{}{
		"id":                int64(10),
		"name":              "Acme",
		"slug":              "acme",
		"isAdminAPIEnabled": true,
		"createdAt":         createdAt.Format(time.RFC3339),
	})

	assert.Equal(t, int64(10), org.ID)
	assert.Equal(t, "Acme", org.Name)
	assert.Equal(t, "acme", org.Slug)
	assert.True(t, org.IsAdminAPIEnabled)
	assert.True(t, org.CreatedAt.Equal(createdAt))
	// Absent props leave zero values.
	assert.True(t, org.UpdatedAt.IsZero())
}

func TestTeamFromProps(t *testing.T) {
	team := teamFromProps(map[string]interface{}{
		"id":    int64(20),
		"name":  "Platform",
		"slug":  "platform",
		"orgId": int64(10),
	})

	assert.Equal(t, int64(20), team.ID)
	assert.Equal(t, "Platform", team.Name)
	assert.Equal(t, int64(10), team.OrganizationID)
}

func TestMembershipFromProps(t *testing.T) {
	orgMembership := membershipFromProps(schedly_neo4j.LabelOrganization, 10, 7, map[string]interface{}{
		"role":     model.MembershipRoleAdmin,
		"accepted": true,
	})

	assert.Equal(t, int64(7), orgMembership.UserID)
	assert.Equal(t, int64(10), orgMembership.OrganizationID)
	assert.Zero(t, orgMembership.TeamID)
	assert.Equal(t, model.MembershipRoleAdmin, orgMembership.Role)
	assert.True(t, orgMembership.Accepted)

	teamMembership := membershipFromProps(schedly_neo4j.LabelTeam, 20, 7, map[string]interface{}{
		"role":     model.MembershipRoleMember,
		"accepted": false,
	})

	assert.Equal(t, int64(20), teamMembership.TeamID)
	assert.Zero(t, teamMembership.OrganizationID)
	assert.False(t, teamMembership.Accepted)
}

func TestUserFromProps(t *testing.T) {
	user := userFromProps(map[string]interface{}{
		"id":            int64(7),
		"name":          "Jo Nakamura",
		"username":      "jo",
		"email":         "jo@example.com",
		"isSystemAdmin": true,
	})

	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "jo", user.Username)
	assert.True(t, user.IsSystemAdmin)
}
