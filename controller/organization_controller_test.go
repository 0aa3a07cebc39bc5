// api/controller/organization_controller_test.go
package controller_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"

	"github.com/schedly/api/controller"
	schedly_errors "github.com/schedly/api/errors"
	guard_model "github.com/schedly/api/guard/model"
	logger "github.com/schedly/api/logging"
	"github.com/schedly/api/model"
	"github.com/schedly/api/test/mock"
	"github.com/schedly/api/util"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logDir, err := os.MkdirTemp("", "controller-test")
	if err != nil {
		panic(err)
	}
	logger.InitLogger(logDir)
	code := m.Run()
	logger.Sync()
	os.RemoveAll(logDir)
	os.Exit(code)
}

// passthroughGuard skips authorization so handler behavior can be tested in
// isolation; guard outcomes have their own tests in the middleware package.
func passthroughGuard(guard_model.Role) gin.HandlerFunc {
	return func(c *gin.Context) { c.Next() }
}

func setupOrgRouter(orgService *mock.MockOrganizationService) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(util.ContextKeyPrincipal, &model.Principal{ID: 1, Username: "tester"})
		c.Next()
	})
	api := r.Group("/")
	orgController := controller.NewOrganizationController(orgService)
	orgController.RegisterRoutes(api, passthroughGuard)
	return r
}

func TestOrganizationController(t *testing.T) {
	orgService := new(mock.MockOrganizationService)
	router := setupOrgRouter(orgService)

	t.Run("CreateOrganization_Success", func(t *testing.T) {
		orgService.On("CreateOrganization", testify_mock.Anything, testify_mock.Anything, int64(1)).
			Return(&model.Organization{ID: 10, Name: "Acme", Slug: "acme"}, nil).
			Once()

		body := strings.NewReader(`{"name":"Acme","slug":"acme"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/organizations", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"slug":"acme"`)
	})

	t.Run("CreateOrganization_Conflict", func(t *testing.T) {
		orgService.On("CreateOrganization", testify_mock.Anything, testify_mock.Anything, int64(1)).
			Return(nil, schedly_errors.ErrOrganizationConflict).
			Once()

		body := strings.NewReader(`{"name":"Acme","slug":"acme"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/organizations", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("GetOrganization_Success", func(t *testing.T) {
		orgService.On("GetOrganization", testify_mock.Anything, int64(10)).
			Return(&model.Organization{ID: 10, Name: "Acme", Slug: "acme"}, nil).
			Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/organizations/10", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GetOrganization_NotFound", func(t *testing.T) {
		orgService.On("GetOrganization", testify_mock.Anything, int64(99)).
			Return(nil, schedly_errors.ErrOrganizationNotFound).
			Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/organizations/99", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("UpdateOrganization_Success", func(t *testing.T) {
		orgService.On("UpdateOrganization", testify_mock.Anything, testify_mock.MatchedBy(func(org model.Organization) bool {
			return org.ID == 10 && org.Name == "Acme Corp"
		}), int64(1)).
			Return(&model.Organization{ID: 10, Name: "Acme Corp", Slug: "acme"}, nil).
			Once()

		body := strings.NewReader(`{"name":"Acme Corp","slug":"acme"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/organizations/10", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("DeleteOrganization_Success", func(t *testing.T) {
		orgService.On("DeleteOrganization", testify_mock.Anything, int64(10), int64(1)).
			Return(nil).
			Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/organizations/10", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("ListOrganizations_InvalidPagination", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/organizations?limit=abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	orgService.AssertExpectations(t)
}
