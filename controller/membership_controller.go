// api/controller/membership_controller.go
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

type MembershipController struct {
	membershipService service.IMembershipService
}

func NewMembershipController(membershipService service.IMembershipService) *MembershipController {
	return &MembershipController{
		membershipService: membershipService,
	}
}

type roleUpdateRequest struct {
	Role string `json:"role" binding:"required"`
}

// RegisterRoutes registers the API routes. Reading a member list requires
// membership in the scope; changing it requires admin or better.
func (mc *MembershipController) RegisterRoutes(r *gin.RouterGroup, guard GuardFactory) {
	orgMembers := r.Group("/organizations/:orgId/memberships")
	{
		orgMembers.GET("", guard(guard_model.RoleOrgMember), mc.ListOrgMembers)
		orgMembers.POST("", guard(guard_model.RoleOrgAdmin), mc.AddOrgMember)
		orgMembers.PUT("/:userId", guard(guard_model.RoleOrgAdmin), mc.UpdateOrgMemberRole)
		orgMembers.DELETE("/:userId", guard(guard_model.RoleOrgAdmin), mc.RemoveOrgMember)
	}

	teamMembers := r.Group("/organizations/:orgId/teams/:teamId/memberships")
	{
		teamMembers.GET("", guard(guard_model.RoleTeamMember), mc.ListTeamMembers)
		teamMembers.POST("", guard(guard_model.RoleTeamAdmin), mc.AddTeamMember)
		teamMembers.PUT("/:userId", guard(guard_model.RoleTeamAdmin), mc.UpdateTeamMemberRole)
		teamMembers.DELETE("/:userId", guard(guard_model.RoleTeamAdmin), mc.RemoveTeamMember)
	}
}

// AddOrgMember endpoint
func (mc *MembershipController) AddOrgMember(c *gin.Context) {
	orgID, err := helper_util.GetIDParam(c, "orgId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid organization ID", err)
		return
	}
	var membership model.Membership
	if err := c.ShouldBindJSON(&membership); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid membership data", schedly_errors.ErrInvalidMembershipData)
		return
	}
	actorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", schedly_errors.ErrUnauthorized)
		return
	}

	created, err := mc.membershipService.AddOrgMember(c, orgID, membership, actorID)
	if err != nil {
		mc.respondMembershipError(c, err, "Failed to add organization member")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// AddTeamMember endpoint
func (mc *MembershipController) AddTeamMember(c *gin.Context) {
	teamID, err := helper_util.GetIDParam(c, "teamId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid team ID", err)
		return
	}
	var membership model.Membership
	if err := c.ShouldBindJSON(&membership); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid membership data", schedly_errors.ErrInvalidMembershipData)
		return
	}
	actorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", schedly_errors.ErrUnauthorized)
		return
	}

	created, err := mc.membershipService.AddTeamMember(c, teamID, membership, actorID)
	if err != nil {
		mc.respondMembershipError(c, err, "Failed to add team member")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateOrgMemberRole endpoint
func (mc *MembershipController) UpdateOrgMemberRole(c *gin.Context) {
	orgID, err := helper_util.GetIDParam(c, "orgId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid organization ID", err)
		return
	}
	userID, err := helper_util.GetIDParam(c, "userId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user ID", err)
		return
	}
	var req roleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid membership data", schedly_errors.ErrInvalidMembershipData)
		return
	}
	actorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", schedly_errors.ErrUnauthorized)
		return
	}

	updated, err := mc.membershipService.UpdateOrgMemberRole(c, orgID, userID, req.Role, actorID)
	if err != nil {
		mc.respondMembershipError(c, err, "Failed to update organization member role")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// UpdateTeamMemberRole endpoint
func (mc *MembershipController) UpdateTeamMemberRole(c *gin.Context) {
	teamID, err := helper_util.GetIDParam(c, "teamId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid team ID", err)
		return
	}
	userID, err := helper_util.GetIDParam(c, "userId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user ID", err)
		return
	}
	var req roleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid membership data", schedly_errors.ErrInvalidMembershipData)
		return
	}
	actorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", schedly_errors.ErrUnauthorized)
		return
	}

	updated, err := mc.membershipService.UpdateTeamMemberRole(c, teamID, userID, req.Role, actorID)
	if err != nil {
		mc.respondMembershipError(c, err, "Failed to update team member role")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// RemoveOrgMember endpoint
func (mc *MembershipController) RemoveOrgMember(c *gin.Context) {
	orgID, err := helper_util.GetIDParam(c, "orgId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid organization ID", err)
		return
	}
	userID, err := helper_util.GetIDParam(c, "userId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user ID", err)
		return
	}
	actorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", schedly_errors.ErrUnauthorized)
		return
	}

	if err := mc.membershipService.RemoveOrgMember(c, orgID, userID, actorID); err != nil {
		mc.respondMembershipError(c, err, "Failed to remove organization member")
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveTeamMember endpoint
func (mc *MembershipController) RemoveTeamMember(c *gin.Context) {
	teamID, err := helper_util.GetIDParam(c, "teamId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid team ID", err)
		return
	}
	userID, err := helper_util.GetIDParam(c, "userId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user ID", err)
		return
	}
	actorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", schedly_errors.ErrUnauthorized)
		return
	}

	if err := mc.membershipService.RemoveTeamMember(c, teamID, userID, actorID); err != nil {
		mc.respondMembershipError(c, err, "Failed to remove team member")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListOrgMembers endpoint
func (mc *MembershipController) ListOrgMembers(c *gin.Context) {
	orgID, err := helper_util.GetIDParam(c, "orgId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid organization ID", err)
		return
	}

	memberships, err := mc.membershipService.ListOrgMembers(c, orgID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list organization members", err)
		return
	}

	c.JSON(http.StatusOK, memberships)
}

// ListTeamMembers endpoint
func (mc *MembershipController) ListTeamMembers(c *gin.Context) {
	teamID, err := helper_util.GetIDParam(c, "teamId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid team ID", err)
		return
	}

	memberships, err := mc.membershipService.ListTeamMembers(c, teamID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list team members", err)
		return
	}

	c.JSON(http.StatusOK, memberships)
}

func (mc *MembershipController) respondMembershipError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, schedly_errors.ErrOrganizationNotFound):
		util.RespondWithError(c, http.StatusNotFound, "Organization not found", err)
	case errors.Is(err, schedly_errors.ErrTeamNotFound):
		util.RespondWithError(c, http.StatusNotFound, "Team not found", err)
	case errors.Is(err, schedly_errors.ErrUserNotFound):
		util.RespondWithError(c, http.StatusNotFound, "User not found", err)
	case errors.Is(err, schedly_errors.ErrMembershipNotFound):
		util.RespondWithError(c, http.StatusNotFound, "Membership not found", err)
	case errors.Is(err, schedly_errors.ErrMembershipConflict):
		util.RespondWithError(c, http.StatusConflict, "Membership already exists", err)
	case errors.Is(err, schedly_errors.ErrInvalidMembershipData):
		util.RespondWithError(c, http.StatusBadRequest, "Invalid membership data", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, fallback, err)
	}
}
