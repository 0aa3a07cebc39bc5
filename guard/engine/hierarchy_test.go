package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schedly_errors "github.com/schedly/api/errors"
	"github.com/schedly/api/guard/engine"
	guard_model "github.com/schedly/api/guard/model"
)

func TestHasMinimumRole_EveryRoleSatisfiesItself(t *testing.T) {
	for _, role := range guard_model.OrgRoles {
		ok, err := engine.HasMinimumRole(guard_model.OrgRoles, role, role)
		require.NoError(t, err)
		assert.True(t, ok, "role %s should satisfy itself", role)
	}
	for _, role := range guard_model.TeamRoles {
		ok, err := engine.HasMinimumRole(guard_model.TeamRoles, role, role)
		require.NoError(t, err)
		assert.True(t, ok, "role %s should satisfy itself", role)
	}
}

func TestHasMinimumRole_HigherRoleSatisfiesLowerRequirement(t *testing.T) {
	tests := []struct {
		name    string
		roles   []guard_model.Role
		check   guard_model.Role
		minimum guard_model.Role
		want    bool
	}{
		{"owner satisfies member", guard_model.OrgRoles, guard_model.RoleOrgOwner, guard_model.RoleOrgMember, true},
		{"owner satisfies admin", guard_model.OrgRoles, guard_model.RoleOrgOwner, guard_model.RoleOrgAdmin, true},
		{"admin satisfies member", guard_model.OrgRoles, guard_model.RoleOrgAdmin, guard_model.RoleOrgMember, true},
		{"admin does not satisfy owner", guard_model.OrgRoles, guard_model.RoleOrgAdmin, guard_model.RoleOrgOwner, false},
		{"member does not satisfy admin", guard_model.OrgRoles, guard_model.RoleOrgMember, guard_model.RoleOrgAdmin, false},
		{"member does not satisfy owner", guard_model.OrgRoles, guard_model.RoleOrgMember, guard_model.RoleOrgOwner, false},
		{"team owner satisfies team member", guard_model.TeamRoles, guard_model.RoleTeamOwner, guard_model.RoleTeamMember, true},
		{"team member does not satisfy team admin", guard_model.TeamRoles, guard_model.RoleTeamMember, guard_model.RoleTeamAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.HasMinimumRole(tt.roles, tt.check, tt.minimum)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasMinimumRole_UnknownRoleIsError(t *testing.T) {
	// Unknown on either side is a configuration error, and cross-set
	// comparisons are just as invalid.
	_, err := engine.HasMinimumRole(guard_model.OrgRoles, "ORG_SUPERVISOR", guard_model.RoleOrgMember)
	assert.ErrorIs(t, err, schedly_errors.ErrInvalidRole)

	_, err = engine.HasMinimumRole(guard_model.OrgRoles, guard_model.RoleOrgAdmin, "ORG_SUPERVISOR")
	assert.ErrorIs(t, err, schedly_errors.ErrInvalidRole)

	_, err = engine.HasMinimumRole(guard_model.OrgRoles, guard_model.RoleTeamAdmin, guard_model.RoleOrgMember)
	assert.ErrorIs(t, err, schedly_errors.ErrInvalidRole)
}
