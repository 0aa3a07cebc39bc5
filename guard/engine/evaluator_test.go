package engine_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/schedly/api/audit"
	schedly_errors "github.com/schedly/api/errors"
	"github.com/schedly/api/guard/engine"
	guard_model "github.com/schedly/api/guard/model"
	logger "github.com/schedly/api/logging"
	"github.com/schedly/api/model"
	"github.com/schedly/api/test/mock"
)

func TestMain(m *testing.M) {
	logDir, err := os.MkdirTemp("", "guard-engine-test")
	if err != nil {
		panic(err)
	}
	logger.InitLogger(logDir)
	code := m.Run()
	logger.Sync()
	os.RemoveAll(logDir)
	os.Exit(code)
}

// memoryCache is an in-process DecisionCache with a controllable clock, so
// TTL expiry can be tested without sleeping.
type memoryCache struct {
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	allowed   bool
	expiresAt time.Time
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (c *memoryCache) Get(_ context.Context, key string) (*bool, error) {
	entry, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, nil
	}
	allowed := entry.allowed
	return &allowed, nil
}

func (c *memoryCache) Set(_ context.Context, key string, allowed bool, ttl time.Duration) error {
	c.entries[key] = memoryEntry{allowed: allowed, expiresAt: c.now().Add(ttl)}
	return nil
}

func ptrInt64(v int64) *int64 { return &v }

func principal(id int64) *model.Principal {
	return &model.Principal{ID: id, Username: "someone"}
}

func systemAdmin(id int64) *model.Principal {
	return &model.Principal{ID: id, Username: "root", IsSystemAdmin: true}
}

func orgMembership(orgID, userID int64, role string) *model.Membership {
	return &model.Membership{UserID: userID, OrganizationID: orgID, Role: role, Accepted: true}
}

func teamMembership(teamID, userID int64, role string) *model.Membership {
	return &model.Membership{UserID: userID, TeamID: teamID, Role: role, Accepted: true}
}

func TestEvaluate_SystemAdminBypassesResolvers(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := newMemoryCache()
	evaluator := engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)

	decision, err := evaluator.Evaluate(context.Background(), guard_model.AccessRequest{
		Principal:    systemAdmin(1),
		OrgID:        ptrInt64(10),
		TeamID:       ptrInt64(20),
		RequiredRole: guard_model.RoleTeamOwner,
	})

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	memberships.AssertNotCalled(t, "FindMembershipByOrg")
	memberships.AssertNotCalled(t, "FindMembershipByTeam")
	orgs.AssertNotCalled(t, "FetchOrgAdminAPIStatus")
}

func TestEvaluate_UnauthenticatedDeniedAndCached(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := newMemoryCache()
	evaluator := engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)

	req := guard_model.AccessRequest{
		OrgID:        ptrInt64(10),
		RequiredRole: guard_model.RoleOrgMember,
	}

	decision, err := evaluator.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.False(t, decision.Cached)

	decision, err = evaluator.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.True(t, decision.Cached)

	memberships.AssertNotCalled(t, "FindMembershipByOrg")
}

func TestEvaluate_SystemAdminRequiredDeniesRegularUser(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := newMemoryCache()
	evaluator := engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)

	decision, err := evaluator.Evaluate(context.Background(), guard_model.AccessRequest{
		Principal:    principal(7),
		RequiredRole: guard_model.SystemAdminRole,
	})

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	memberships.AssertNotCalled(t, "FindMembershipByOrg")
	memberships.AssertNotCalled(t, "FindMembershipByTeam")
}

func TestEvaluate_OrgScopeAllowsSufficientRole(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := newMemoryCache()
	evaluator := engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)

	memberships.On("FindMembershipByOrg", testify_mock.Anything, int64(10), int64(7)).
		Return(orgMembership(10, 7, model.MembershipRoleAdmin), nil)
	orgs.On("FetchOrgAdminAPIStatus", testify_mock.Anything, int64(10)).
		Return(true, nil)

	decision, err := evaluator.Evaluate(context.Background(), guard_model.AccessRequest{
		Principal:    principal(7),
		OrgID:        ptrInt64(10),
		RequiredRole: guard_model.RoleOrgMember,
	})

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, guard_model.ScopeOrg, decision.Scope)
	memberships.AssertExpectations(t)
	orgs.AssertExpectations(t)
}

func TestEvaluate_OrgScopeNonMemberIsFatalAndUncached(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := newMemoryCache()
	evaluator := engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)

	memberships.On("FindMembershipByOrg", testify_mock.Anything, int64(10), int64(7)).
		Return(nil, nil)

	_, err := evaluator.Evaluate(context.Background(), guard_model.AccessRequest{
		Principal:    principal(7),
		OrgID:        ptrInt64(10),
		RequiredRole: guard_model.RoleOrgMember,
	})

	var forbidden *schedly_errors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, "user is not a member of the organization", forbidden.Reason)
	assert.Empty(t, cache.entries)
}

func TestEvaluate_OrgScopeAdminAPIDisabledIsFatalAndUncached(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := newMemoryCache()
	evaluator := engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)

	memberships.On("FindMembershipByOrg", testify_mock.Anything, int64(10), int64(7)).
		Return(orgMembership(10, 7, model.MembershipRoleOwner), nil)
	orgs.On("FetchOrgAdminAPIStatus", testify_mock.Anything, int64(10)).
		Return(false, nil)

	_, err := evaluator.Evaluate(context.Background(), guard_model.AccessRequest{
		Principal:    principal(7),
		OrgID:        ptrInt64(10),
		RequiredRole: guard_model.RoleOrgOwner,
	})

	var forbidden *schedly_errors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, "organization does not have Admin API access", forbidden.Reason)
	assert.Empty(t, cache.entries)
}

func TestEvaluate_TeamScopeInsufficientRoleIsCachedDenial(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := newMemoryCache()
	evaluator := engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)

	memberships.On("FindMembershipByTeam", testify_mock.Anything, int64(20), int64(7)).
		Return(teamMembership(20, 7, model.MembershipRoleMember), nil).
		Once()

	req := guard_model.AccessRequest{
		Principal:    principal(7),
		TeamID:       ptrInt64(20),
		RequiredRole: guard_model.RoleTeamAdmin,
	}

	decision, err := evaluator.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, guard_model.ScopeTeam, decision.Scope)

	// Second evaluation is served from the cache, including the negative
	// outcome.
	decision, err = evaluator.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.True(t, decision.Cached)
	memberships.AssertExpectations(t)
}

func TestEvaluate_TeamScopeNonMemberIsFatal(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := newMemoryCache()
	evaluator := engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)

	memberships.On("FindMembershipByTeam", testify_mock.Anything, int64(20), int64(7)).
		Return(nil, nil)

	_, err := evaluator.Evaluate(context.Background(), guard_model.AccessRequest{
		Principal:    principal(7),
		TeamID:       ptrInt64(20),
		RequiredRole: guard_model.RoleTeamMember,
	})

	var forbidden *schedly_errors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, "user is not a member of the team", forbidden.Reason)
}

func TestEvaluate_CombinedScopeOrgAdminOverridesTeamRequirement(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := newMemoryCache()
	evaluator := engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)

	memberships.On("FindMembershipByTeam", testify_mock.Anything, int64(20), int64(7)).
		Return(nil, nil)
	memberships.On("FindMembershipByOrg", testify_mock.Anything, int64(10), int64(7)).
		Return(orgMembership(10, 7, model.MembershipRoleOwner), nil)

	decision, err := evaluator.Evaluate(context.Background(), guard_model.AccessRequest{
		Principal:    principal(7),
		OrgID:        ptrInt64(10),
		TeamID:       ptrInt64(20),
		RequiredRole: guard_model.RoleTeamAdmin,
	})

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, guard_model.ScopeOrgTeam, decision.Scope)
}

func TestEvaluate_CombinedScopeOrgMemberWithoutTeamIsFatal(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := newMemoryCache()
	evaluator := engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)

	memberships.On("FindMembershipByTeam", testify_mock.Anything, int64(20), int64(7)).
		Return(nil, nil)
	memberships.On("FindMembershipByOrg", testify_mock.Anything, int64(10), int64(7)).
		Return(orgMembership(10, 7, model.MembershipRoleMember), nil)

	_, err := evaluator.Evaluate(context.Background(), guard_model.AccessRequest{
		Principal:    principal(7),
		OrgID:        ptrInt64(10),
		TeamID:       ptrInt64(20),
		RequiredRole: guard_model.RoleTeamMember,
	})

	var forbidden *schedly_errors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, "user is not part of the team and/or, is not an admin nor an owner of the organization", forbidden.Reason)
}

func TestEvaluate_CombinedScopeNoOrgMembershipIsFatal(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := newMemoryCache()
	evaluator := engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)

	memberships.On("FindMembershipByTeam", testify_mock.Anything, int64(20), int64(7)).
		Return(teamMembership(20, 7, model.MembershipRoleOwner), nil)
	memberships.On("FindMembershipByOrg", testify_mock.Anything, int64(10), int64(7)).
		Return(nil, nil)

	_, err := evaluator.Evaluate(context.Background(), guard_model.AccessRequest{
		Principal:    principal(7),
		OrgID:        ptrInt64(10),
		TeamID:       ptrInt64(20),
		RequiredRole: guard_model.RoleTeamMember,
	})

	var forbidden *schedly_errors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, "user is not part of the organization", forbidden.Reason)
}

func TestEvaluate_CombinedScopeOrgRoleRequirement(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := newMemoryCache()
	evaluator := engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)

	memberships.On("FindMembershipByTeam", testify_mock.Anything, int64(20), int64(7)).
		Return(teamMembership(20, 7, model.MembershipRoleOwner), nil)
	memberships.On("FindMembershipByOrg", testify_mock.Anything, int64(10), int64(7)).
		Return(orgMembership(10, 7, model.MembershipRoleMember), nil)

	// A team OWNER does not satisfy an org-level requirement.
	decision, err := evaluator.Evaluate(context.Background(), guard_model.AccessRequest{
		Principal:    principal(7),
		OrgID:        ptrInt64(10),
		TeamID:       ptrInt64(20),
		RequiredRole: guard_model.RoleOrgAdmin,
	})

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestEvaluate_CacheHitSkipsResolverAfterMembershipChange(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := newMemoryCache()
	evaluator := engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)

	memberships.On("FindMembershipByOrg", testify_mock.Anything, int64(10), int64(7)).
		Return(orgMembership(10, 7, model.MembershipRoleAdmin), nil).
		Once()
	orgs.On("FetchOrgAdminAPIStatus", testify_mock.Anything, int64(10)).
		Return(true, nil).
		Once()

	req := guard_model.AccessRequest{
		Principal:    principal(7),
		OrgID:        ptrInt64(10),
		RequiredRole: guard_model.RoleOrgAdmin,
	}

	decision, err := evaluator.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	// The membership may have been revoked in the meantime; until the TTL
	// lapses the cached answer stands.
	decision, err = evaluator.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.True(t, decision.Cached)
	memberships.AssertExpectations(t)
	orgs.AssertExpectations(t)
}

func TestEvaluate_TTLExpiryTriggersRecomputation(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := newMemoryCache()

	current := time.Now()
	cache.now = func() time.Time { return current }

	evaluator := engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)

	memberships.On("FindMembershipByOrg", testify_mock.Anything, int64(10), int64(7)).
		Return(orgMembership(10, 7, model.MembershipRoleAdmin), nil).
		Twice()
	orgs.On("FetchOrgAdminAPIStatus", testify_mock.Anything, int64(10)).
		Return(true, nil).
		Twice()

	req := guard_model.AccessRequest{
		Principal:    principal(7),
		OrgID:        ptrInt64(10),
		RequiredRole: guard_model.RoleOrgAdmin,
	}

	_, err := evaluator.Evaluate(context.Background(), req)
	require.NoError(t, err)

	current = current.Add(5*time.Minute + time.Second)

	decision, err := evaluator.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, decision.Cached)
	memberships.AssertExpectations(t)
	orgs.AssertExpectations(t)
}

func TestEvaluate_CacheReadFailureComputesFresh(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := new(mock.MockDecisionCache)
	evaluator := engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)

	cache.On("Get", testify_mock.Anything, testify_mock.Anything).
		Return(nil, errors.New("connection refused"))
	cache.On("Set", testify_mock.Anything, testify_mock.Anything, true, 5*time.Minute).
		Return(errors.New("connection refused"))
	memberships.On("FindMembershipByOrg", testify_mock.Anything, int64(10), int64(7)).
		Return(orgMembership(10, 7, model.MembershipRoleAdmin), nil)
	orgs.On("FetchOrgAdminAPIStatus", testify_mock.Anything, int64(10)).
		Return(true, nil)

	decision, err := evaluator.Evaluate(context.Background(), guard_model.AccessRequest{
		Principal:    principal(7),
		OrgID:        ptrInt64(10),
		RequiredRole: guard_model.RoleOrgAdmin,
	})

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.False(t, decision.Cached)
	cache.AssertExpectations(t)
}

func TestEvaluate_UnknownMembershipRoleIsInvalidRoleError(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := newMemoryCache()
	evaluator := engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)

	memberships.On("FindMembershipByOrg", testify_mock.Anything, int64(10), int64(7)).
		Return(orgMembership(10, 7, "SUPERVISOR"), nil)
	orgs.On("FetchOrgAdminAPIStatus", testify_mock.Anything, int64(10)).
		Return(true, nil)

	_, err := evaluator.Evaluate(context.Background(), guard_model.AccessRequest{
		Principal:    principal(7),
		OrgID:        ptrInt64(10),
		RequiredRole: guard_model.RoleOrgMember,
	})

	require.ErrorIs(t, err, schedly_errors.ErrInvalidRole)
	assert.Empty(t, cache.entries)
}

func TestEvaluate_AuditTrailRecordsOutcome(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	cache := newMemoryCache()
	auditService := new(mock.MockAuditService)
	evaluator := engine.NewEvaluator(memberships, orgs, cache, auditService, 5*time.Minute)

	memberships.On("FindMembershipByOrg", testify_mock.Anything, int64(10), int64(7)).
		Return(orgMembership(10, 7, model.MembershipRoleOwner), nil)
	orgs.On("FetchOrgAdminAPIStatus", testify_mock.Anything, int64(10)).
		Return(true, nil)
	auditService.On("LogAccess", testify_mock.Anything, testify_mock.MatchedBy(func(entry audit.AuditLog) bool {
		return entry.Action == "AUTHORIZATION_CHECK" &&
			entry.UserID == 7 &&
			entry.OrgID == 10 &&
			entry.AccessGranted
	})).Return(nil)

	decision, err := evaluator.Evaluate(context.Background(), guard_model.AccessRequest{
		Principal:    principal(7),
		OrgID:        ptrInt64(10),
		RequiredRole: guard_model.RoleOrgOwner,
	})

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	auditService.AssertExpectations(t)
}
