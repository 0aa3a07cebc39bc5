package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"

	"github.com/schedly/api/guard/engine"
	guard_model "github.com/schedly/api/guard/model"
	logger "github.com/schedly/api/logging"
	"github.com/schedly/api/middleware"
	"github.com/schedly/api/model"
	"github.com/schedly/api/test/mock"
	"github.com/schedly/api/util"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logDir, err := os.MkdirTemp("", "middleware-test")
	if err != nil {
		panic(err)
	}
	logger.InitLogger(logDir)
	code := m.Run()
	logger.Sync()
	os.RemoveAll(logDir)
	os.Exit(code)
}

func setPrincipal(p *model.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil {
			c.Set(util.ContextKeyPrincipal, p)
		}
		c.Next()
	}
}

func guardedRouter(p *model.Principal, evaluator *engine.Evaluator, requiredRole guard_model.Role) *gin.Engine {
	r := gin.New()
	r.Use(setPrincipal(p))
	r.GET("/organizations/:orgId/teams/:teamId",
		middleware.RolesGuard(evaluator, requiredRole),
		func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	return r
}

func newEvaluator(memberships *mock.MockMembershipRepository, orgs *mock.MockOrganizationRepository) *engine.Evaluator {
	cache := new(mock.MockDecisionCache)
	cache.On("Get", testify_mock.Anything, testify_mock.Anything).Return(nil, nil)
	cache.On("Set", testify_mock.Anything, testify_mock.Anything, testify_mock.Anything, testify_mock.Anything).Return(nil)
	return engine.NewEvaluator(memberships, orgs, cache, nil, 5*time.Minute)
}

func TestRolesGuard_AllowsAuthorizedRequest(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	memberships.On("FindMembershipByTeam", testify_mock.Anything, int64(20), int64(7)).
		Return(&model.Membership{UserID: 7, TeamID: 20, Role: model.MembershipRoleAdmin, Accepted: true}, nil)
	memberships.On("FindMembershipByOrg", testify_mock.Anything, int64(10), int64(7)).
		Return(&model.Membership{UserID: 7, OrganizationID: 10, Role: model.MembershipRoleMember, Accepted: true}, nil)

	r := guardedRouter(&model.Principal{ID: 7}, newEvaluator(memberships, orgs), guard_model.RoleTeamAdmin)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/organizations/10/teams/20", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRolesGuard_FatalDenialCarriesReason(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	memberships.On("FindMembershipByTeam", testify_mock.Anything, int64(20), int64(7)).
		Return(nil, nil)
	memberships.On("FindMembershipByOrg", testify_mock.Anything, int64(10), int64(7)).
		Return(nil, nil)

	r := guardedRouter(&model.Principal{ID: 7}, newEvaluator(memberships, orgs), guard_model.RoleTeamMember)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/organizations/10/teams/20", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "user is not part of the organization")
}

func TestRolesGuard_PlainDenialHidesDetail(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	memberships.On("FindMembershipByTeam", testify_mock.Anything, int64(20), int64(7)).
		Return(&model.Membership{UserID: 7, TeamID: 20, Role: model.MembershipRoleMember, Accepted: true}, nil)
	memberships.On("FindMembershipByOrg", testify_mock.Anything, int64(10), int64(7)).
		Return(&model.Membership{UserID: 7, OrganizationID: 10, Role: model.MembershipRoleMember, Accepted: true}, nil)

	r := guardedRouter(&model.Principal{ID: 7}, newEvaluator(memberships, orgs), guard_model.RoleTeamOwner)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/organizations/10/teams/20", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Access denied")
	assert.NotContains(t, w.Body.String(), "member")
}

func TestRolesGuard_UnauthenticatedDenied(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)

	r := guardedRouter(nil, newEvaluator(memberships, orgs), guard_model.RoleTeamMember)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/organizations/10/teams/20", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	memberships.AssertNotCalled(t, "FindMembershipByTeam")
}

func TestRolesGuard_NonNumericIDIsBadRequest(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)

	r := guardedRouter(&model.Principal{ID: 7}, newEvaluator(memberships, orgs), guard_model.RoleTeamMember)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/organizations/ten/teams/20", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRolesGuard_EvaluationFailureIsServerError(t *testing.T) {
	memberships := new(mock.MockMembershipRepository)
	orgs := new(mock.MockOrganizationRepository)
	// A membership role outside the known set is a configuration problem
	// and must surface as a 500, not a denial.
	memberships.On("FindMembershipByTeam", testify_mock.Anything, int64(20), int64(7)).
		Return(&model.Membership{UserID: 7, TeamID: 20, Role: "SUPERVISOR", Accepted: true}, nil)
	memberships.On("FindMembershipByOrg", testify_mock.Anything, int64(10), int64(7)).
		Return(&model.Membership{UserID: 7, OrganizationID: 10, Role: model.MembershipRoleMember, Accepted: true}, nil)

	r := guardedRouter(&model.Principal{ID: 7}, newEvaluator(memberships, orgs), guard_model.RoleTeamMember)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/organizations/10/teams/20", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
