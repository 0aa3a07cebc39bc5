package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schedly/api/audit"
	schedly_errors "github.com/schedly/api/errors"
	guard_model "github.com/schedly/api/guard/model"
	logger "github.com/schedly/api/logging"
	"github.com/schedly/api/model"
)

// MembershipRepository resolves the caller's membership within a scope.
// Absence of a membership is (nil, nil), never an error.
type MembershipRepository interface {
	FindMembershipByOrg(ctx context.Context, orgID, userID int64) (*model.Membership, error)
	FindMembershipByTeam(ctx context.Context, teamID, userID int64) (*model.Membership, error)
}

// OrganizationRepository exposes the org-level Admin API entitlement gate.
type OrganizationRepository interface {
	FetchOrgAdminAPIStatus(ctx context.Context, orgID int64) (bool, error)
}

// DecisionCache is a shared TTL key/value store for computed decisions.
// Get returns nil on a miss; a miss is never an error.
type DecisionCache interface {
	Get(ctx context.Context, key string) (*bool, error)
	Set(ctx context.Context, key string, allowed bool, ttl time.Duration) error
}

// Evaluator answers authorization questions for org/team scoped routes. It
// resolves the caller's memberships, applies the role hierarchy with org
// precedence over team, and caches boolean outcomes. Fatal denials (not a
// member, Admin API disabled) short-circuit as *errors.ForbiddenError and
// are never cached.
type Evaluator struct {
	memberships MembershipRepository
	orgs        OrganizationRepository
	cache       DecisionCache
	audit       audit.Service
	cacheTTL    time.Duration
}

func NewEvaluator(
	memberships MembershipRepository,
	orgs OrganizationRepository,
	cache DecisionCache,
	auditService audit.Service,
	cacheTTL time.Duration,
) *Evaluator {
	return &Evaluator{
		memberships: memberships,
		orgs:        orgs,
		cache:       cache,
		audit:       auditService,
		cacheTTL:    cacheTTL,
	}
}

// Evaluate runs the decision ladder for one request. Branches are evaluated
// in strict order and the first match wins: cache hit, unauthenticated,
// system-admin bypass, system-admin required, org scope, team scope,
// combined scope. A request matching no scope branch is denied.
func (e *Evaluator) Evaluate(ctx context.Context, req guard_model.AccessRequest) (*guard_model.AccessDecision, error) {
	key := e.cacheKey(req)

	if cached := e.cachedDecision(ctx, key); cached != nil {
		return cached, nil
	}

	canAccess := false
	scope := ""
	var evalErr error

	switch {
	case req.Principal == nil:
		logger.Info("User is not authenticated, denying access.")

	case req.Principal.IsSystemAdmin:
		logger.Info("User is system admin, allowing access.",
			zap.Int64("userID", req.Principal.ID))
		canAccess = true

	case req.RequiredRole == guard_model.SystemAdminRole:
		logger.Info("User is not system admin, denying access.",
			zap.Int64("userID", req.Principal.ID))

	case req.OrgID != nil && req.TeamID == nil:
		scope = guard_model.ScopeOrg
		canAccess, evalErr = e.evaluateOrgScope(ctx, req)

	case req.TeamID != nil && req.OrgID == nil:
		scope = guard_model.ScopeTeam
		canAccess, evalErr = e.evaluateTeamScope(ctx, req)

	case req.OrgID != nil && req.TeamID != nil:
		scope = guard_model.ScopeOrgTeam
		canAccess, evalErr = e.evaluateOrgTeamScope(ctx, req)
	}

	if evalErr != nil {
		var forbidden *schedly_errors.ForbiddenError
		if errors.As(evalErr, &forbidden) {
			e.auditDecision(ctx, req, scope, false, forbidden.Reason)
		}
		// Fatal denials and lookup failures propagate uncached.
		return nil, evalErr
	}

	e.auditDecision(ctx, req, scope, canAccess, "")
	e.storeDecision(ctx, key, canAccess)

	return &guard_model.AccessDecision{Allowed: canAccess, Scope: scope}, nil
}

func (e *Evaluator) evaluateOrgScope(ctx context.Context, req guard_model.AccessRequest) (bool, error) {
	membership, err := e.memberships.FindMembershipByOrg(ctx, *req.OrgID, req.Principal.ID)
	if err != nil {
		return false, err
	}
	if membership == nil {
		logger.Info("User is not a member of the organization, denying access.",
			zap.Int64("userID", req.Principal.ID),
			zap.Int64("orgID", *req.OrgID))
		return false, schedly_errors.ErrNotOrgMember
	}

	adminAPIEnabled, err := e.orgs.FetchOrgAdminAPIStatus(ctx, *req.OrgID)
	if err != nil {
		return false, err
	}
	if !adminAPIEnabled {
		logger.Info("Org Admin API access is not enabled, denying access.",
			zap.Int64("orgID", *req.OrgID))
		return false, schedly_errors.ErrAdminAPIDisabled
	}

	if guard_model.IsOrgRole(req.RequiredRole) {
		return HasMinimumRole(guard_model.OrgRoles, guard_model.OrgRole(membership.Role), req.RequiredRole)
	}

	// Required role is not org-scoped: no branch grants access.
	return false, nil
}

func (e *Evaluator) evaluateTeamScope(ctx context.Context, req guard_model.AccessRequest) (bool, error) {
	membership, err := e.memberships.FindMembershipByTeam(ctx, *req.TeamID, req.Principal.ID)
	if err != nil {
		return false, err
	}
	if membership == nil {
		logger.Info("User is not a member of the team, denying access.",
			zap.Int64("userID", req.Principal.ID),
			zap.Int64("teamID", *req.TeamID))
		return false, schedly_errors.ErrNotTeamMember
	}

	if guard_model.IsTeamRole(req.RequiredRole) {
		return HasMinimumRole(guard_model.TeamRoles, guard_model.TeamRole(membership.Role), req.RequiredRole)
	}

	return false, nil
}

// evaluateOrgTeamScope handles routes addressing a team within an org. Org
// outranks team: an org admin or owner passes team-role requirements
// without any team membership.
func (e *Evaluator) evaluateOrgTeamScope(ctx context.Context, req guard_model.AccessRequest) (bool, error) {
	teamMembership, err := e.memberships.FindMembershipByTeam(ctx, *req.TeamID, req.Principal.ID)
	if err != nil {
		return false, err
	}
	orgMembership, err := e.memberships.FindMembershipByOrg(ctx, *req.OrgID, req.Principal.ID)
	if err != nil {
		return false, err
	}

	if orgMembership == nil {
		logger.Info("User is not part of the organization, denying access.",
			zap.Int64("userID", req.Principal.ID),
			zap.Int64("orgID", *req.OrgID))
		return false, schedly_errors.ErrNotPartOfOrg
	}

	if guard_model.IsTeamRole(req.RequiredRole) {
		orgRole := guard_model.OrgRole(orgMembership.Role)
		if orgRole == guard_model.RoleOrgAdmin || orgRole == guard_model.RoleOrgOwner {
			return true, nil
		}

		if teamMembership == nil {
			logger.Info("User is not part of the team and is not an admin nor an owner of the organization, denying access.",
				zap.Int64("userID", req.Principal.ID),
				zap.Int64("orgID", *req.OrgID),
				zap.Int64("teamID", *req.TeamID))
			return false, schedly_errors.ErrNotTeamMemberNorOrgAdmin
		}

		return HasMinimumRole(guard_model.TeamRoles, guard_model.TeamRole(teamMembership.Role), req.RequiredRole)
	}

	if guard_model.IsOrgRole(req.RequiredRole) {
		return HasMinimumRole(guard_model.OrgRoles, guard_model.OrgRole(orgMembership.Role), req.RequiredRole)
	}

	return false, nil
}

func (e *Evaluator) cacheKey(req guard_model.AccessRequest) string {
	key := guard_model.CacheKey{
		OrgID:        req.OrgID,
		TeamID:       req.TeamID,
		RequiredRole: req.RequiredRole,
	}
	if req.Principal != nil {
		key.UserID = &req.Principal.ID
	}
	return key.String()
}

// cachedDecision returns a decision served from the cache, or nil on a
// miss. A cache read failure is logged and treated as a miss; the engine
// never fails open on cache trouble.
func (e *Evaluator) cachedDecision(ctx context.Context, key string) *guard_model.AccessDecision {
	cached, err := e.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("Decision cache read failed, computing fresh",
			zap.Error(err),
			zap.String("key", key))
		return nil
	}
	if cached == nil {
		return nil
	}
	return &guard_model.AccessDecision{Allowed: *cached, Cached: true}
}

func (e *Evaluator) storeDecision(ctx context.Context, key string, allowed bool) {
	if err := e.cache.Set(ctx, key, allowed, e.cacheTTL); err != nil {
		logger.Warn("Decision cache write failed",
			zap.Error(err),
			zap.String("key", key))
	}
}

func (e *Evaluator) auditDecision(ctx context.Context, req guard_model.AccessRequest, scope string, granted bool, reason string) {
	if e.audit == nil {
		return
	}

	entry := audit.AuditLog{
		RequestID:     uuid.New().String(),
		Timestamp:     time.Now(),
		Action:        "AUTHORIZATION_CHECK",
		RequiredRole:  string(req.RequiredRole),
		Scope:         scope,
		AccessGranted: granted,
		Reason:        reason,
	}
	if req.Principal != nil {
		entry.UserID = req.Principal.ID
	}
	if req.OrgID != nil {
		entry.OrgID = *req.OrgID
	}
	if req.TeamID != nil {
		entry.TeamID = *req.TeamID
	}

	if err := e.audit.LogAccess(ctx, entry); err != nil {
		logger.Error("Failed to create audit log for authorization check", zap.Error(err))
	}
}
