package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	guard_model "github.com/schedly/api/guard/model"
)

func ptrInt64(v int64) *int64 { return &v }

func TestCacheKeyString(t *testing.T) {
	tests := []struct {
		name string
		key  guard_model.CacheKey
		want string
	}{
		{
			name: "all components present",
			key: guard_model.CacheKey{
				UserID:       ptrInt64(7),
				OrgID:        ptrInt64(10),
				TeamID:       ptrInt64(20),
				RequiredRole: guard_model.RoleTeamAdmin,
			},
			want: "apiv2:user:7:org:10:team:20:guard:roles:TEAM_ADMIN",
		},
		{
			name: "unauthenticated org request",
			key: guard_model.CacheKey{
				OrgID:        ptrInt64(10),
				RequiredRole: guard_model.RoleOrgMember,
			},
			want: "apiv2:user:none:org:10:team:none:guard:roles:ORG_MEMBER",
		},
		{
			name: "team only",
			key: guard_model.CacheKey{
				UserID:       ptrInt64(7),
				TeamID:       ptrInt64(20),
				RequiredRole: guard_model.RoleTeamMember,
			},
			want: "apiv2:user:7:org:none:team:20:guard:roles:TEAM_MEMBER",
		},
		{
			name: "everything absent",
			key: guard_model.CacheKey{
				RequiredRole: guard_model.SystemAdminRole,
			},
			want: "apiv2:user:none:org:none:team:none:guard:roles:SYSTEM_ADMIN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.String())
		})
	}
}

// Distinct requests must never share a key: absence is encoded, not elided.
func TestCacheKeyDistinguishesAbsentComponents(t *testing.T) {
	withTeam := guard_model.CacheKey{
		UserID:       ptrInt64(7),
		OrgID:        ptrInt64(10),
		TeamID:       ptrInt64(20),
		RequiredRole: guard_model.RoleOrgMember,
	}
	withoutTeam := guard_model.CacheKey{
		UserID:       ptrInt64(7),
		OrgID:        ptrInt64(10),
		RequiredRole: guard_model.RoleOrgMember,
	}

	assert.NotEqual(t, withTeam.String(), withoutTeam.String())
}

func TestRoleSetMapping(t *testing.T) {
	assert.Equal(t, guard_model.RoleOrgAdmin, guard_model.OrgRole("ADMIN"))
	assert.Equal(t, guard_model.RoleTeamOwner, guard_model.TeamRole("OWNER"))

	assert.True(t, guard_model.IsOrgRole(guard_model.RoleOrgOwner))
	assert.False(t, guard_model.IsOrgRole(guard_model.RoleTeamOwner))
	assert.True(t, guard_model.IsTeamRole(guard_model.RoleTeamMember))
	assert.False(t, guard_model.IsTeamRole(guard_model.SystemAdminRole))
}
