// api/controller/organization_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	schedly_errors "github.com/schedly/api/errors"
	guard_model "github.com/schedly/api/guard/model"
	"github.com/schedly/api/model"
	"github.com/schedly/api/service"
	"github.com/schedly/api/util"
	helper_util "github.com/schedly/api/util/helper"
)

type OrganizationController struct {
	organizationService service.IOrganizationService
}

func NewOrganizationController(organizationService service.IOrganizationService) *OrganizationController {
	return &OrganizationController{
		organizationService: organizationService,
	}
}

// RegisterRoutes registers the API routes. Creating and enumerating
// organizations is reserved for the platform operator; everything under a
// concrete :orgId is gated on membership in that organization.
func (oc *OrganizationController) RegisterRoutes(r *gin.RouterGroup, guard GuardFactory) {
	organizations := r.Group("/organizations")
	{
		organizations.POST("", guard(guard_model.SystemAdminRole), oc.CreateOrganization)
		organizations.GET("", guard(guard_model.SystemAdminRole), oc.ListOrganizations)
		organizations.POST("/search", guard(guard_model.SystemAdminRole), oc.SearchOrganizations)
		organizations.GET("/:orgId", guard(guard_model.RoleOrgMember), oc.GetOrganization)
		organizations.PUT("/:orgId", guard(guard_model.RoleOrgAdmin), oc.UpdateOrganization)
		organizations.DELETE("/:orgId", guard(guard_model.RoleOrgOwner), oc.DeleteOrganization)
	}
}

// CreateOrganization endpoint
func (oc *OrganizationController) CreateOrganization(c *gin.Context) {
	var org model.Organization
	if err := c.ShouldBindJSON(&org); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid organization data", schedly_errors.ErrInvalidOrganizationData)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", schedly_errors.ErrUnauthorized)
		return
	}

	createdOrg, err := oc.organizationService.CreateOrganization(c, org, userID)
	if err != nil {
		switch {
		case errors.Is(err, schedly_errors.ErrOrganizationConflict):
			util.RespondWithError(c, http.StatusConflict, "Organization already exists", err)
		case errors.Is(err, schedly_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create organization", schedly_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, createdOrg)
}

// UpdateOrganization endpoint
func (oc *OrganizationController) UpdateOrganization(c *gin.Context) {
	orgID, err := helper_util.GetIDParam(c, "orgId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid organization ID", err)
		return
	}
	var org model.Organization
	if err := c.ShouldBindJSON(&org); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid organization data", err)
		return
	}
	org.ID = orgID
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	updatedOrg, err := oc.organizationService.UpdateOrganization(c, org, userID)
	if err != nil {
		if errors.Is(err, schedly_errors.ErrOrganizationNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Organization not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to update organization", err)
		}
		return
	}

	c.JSON(http.StatusOK, updatedOrg)
}

// DeleteOrganization endpoint
func (oc *OrganizationController) DeleteOrganization(c *gin.Context) {
	orgID, err := helper_util.GetIDParam(c, "orgId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid organization ID", err)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := oc.organizationService.DeleteOrganization(c, orgID, userID); err != nil {
		if errors.Is(err, schedly_errors.ErrOrganizationNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Organization not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete organization", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetOrganization endpoint
func (oc *OrganizationController) GetOrganization(c *gin.Context) {
	orgID, err := helper_util.GetIDParam(c, "orgId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid organization ID", err)
		return
	}

	org, err := oc.organizationService.GetOrganization(c, orgID)
	if err != nil {
		if errors.Is(err, schedly_errors.ErrOrganizationNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Organization not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve organization", err)
		}
		return
	}

	c.JSON(http.StatusOK, org)
}

// ListOrganizations endpoint
func (oc *OrganizationController) ListOrganizations(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", schedly_errors.ErrInvalidPagination)
		return
	}

	orgs, err := oc.organizationService.ListOrganizations(c, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list organizations", err)
		return
	}

	c.JSON(http.StatusOK, orgs)
}

// SearchOrganizations endpoint
func (oc *OrganizationController) SearchOrganizations(c *gin.Context) {
	var criteria model.OrganizationSearchCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid search criteria", schedly_errors.ErrInvalidSearchCriteria)
		return
	}

	orgs, err := oc.organizationService.SearchOrganizations(c, criteria)
	if err != nil {
		if errors.Is(err, schedly_errors.ErrInvalidSearchCriteria) {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid search criteria", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to search organizations", err)
		}
		return
	}

	c.JSON(http.StatusOK, orgs)
}
