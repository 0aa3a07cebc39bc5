// api/controller/team_controller.go
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

type TeamController struct {
	teamService service.ITeamService
}

func NewTeamController(teamService service.ITeamService) *TeamController {
	return &TeamController{
		teamService: teamService,
	}
}

// RegisterRoutes registers the API routes. Team routes nest under their
// organization, so requests carry both :orgId and :teamId and the guard
// evaluates the combined scope: an organization admin or owner passes
// team-level requirements without a team membership.
func (tc *TeamController) RegisterRoutes(r *gin.RouterGroup, guard GuardFactory) {
	teams := r.Group("/organizations/:orgId/teams")
	{
		teams.POST("", guard(guard_model.RoleOrgAdmin), tc.CreateTeam)
		teams.GET("", guard(guard_model.RoleOrgMember), tc.ListTeams)
		teams.GET("/:teamId", guard(guard_model.RoleTeamMember), tc.GetTeam)
		teams.PUT("/:teamId", guard(guard_model.RoleTeamAdmin), tc.UpdateTeam)
		teams.DELETE("/:teamId", guard(guard_model.RoleTeamOwner), tc.DeleteTeam)
	}
}

// CreateTeam endpoint
func (tc *TeamController) CreateTeam(c *gin.Context) {
	orgID, err := helper_util.GetIDParam(c, "orgId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid organization ID", err)
		return
	}
	var team model.Team
	if err := c.ShouldBindJSON(&team); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid team data", schedly_errors.ErrInvalidTeamData)
		return
	}
	team.OrganizationID = orgID
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", schedly_errors.ErrUnauthorized)
		return
	}

	createdTeam, err := tc.teamService.CreateTeam(c, team, userID)
	if err != nil {
		switch {
		case errors.Is(err, schedly_errors.ErrOrganizationNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Organization not found", err)
		case errors.Is(err, schedly_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create team", schedly_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, createdTeam)
}

// UpdateTeam endpoint
func (tc *TeamController) UpdateTeam(c *gin.Context) {
	orgID, err := helper_util.GetIDParam(c, "orgId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid organization ID", err)
		return
	}
	teamID, err := helper_util.GetIDParam(c, "teamId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid team ID", err)
		return
	}
	var team model.Team
	if err := c.ShouldBindJSON(&team); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid team data", err)
		return
	}
	team.ID = teamID
	team.OrganizationID = orgID
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	updatedTeam, err := tc.teamService.UpdateTeam(c, team, userID)
	if err != nil {
		if errors.Is(err, schedly_errors.ErrTeamNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Team not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to update team", err)
		}
		return
	}

	c.JSON(http.StatusOK, updatedTeam)
}

// DeleteTeam endpoint
func (tc *TeamController) DeleteTeam(c *gin.Context) {
	teamID, err := helper_util.GetIDParam(c, "teamId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid team ID", err)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := tc.teamService.DeleteTeam(c, teamID, userID); err != nil {
		if errors.Is(err, schedly_errors.ErrTeamNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Team not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete team", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetTeam endpoint
func (tc *TeamController) GetTeam(c *gin.Context) {
	teamID, err := helper_util.GetIDParam(c, "teamId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid team ID", err)
		return
	}

	team, err := tc.teamService.GetTeam(c, teamID)
	if err != nil {
		if errors.Is(err, schedly_errors.ErrTeamNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Team not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve team", err)
		}
		return
	}

	c.JSON(http.StatusOK, team)
}

// ListTeams endpoint
func (tc *TeamController) ListTeams(c *gin.Context) {
	orgID, err := helper_util.GetIDParam(c, "orgId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid organization ID", err)
		return
	}
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", schedly_errors.ErrInvalidPagination)
		return
	}

	teams, err := tc.teamService.ListTeamsByOrg(c, orgID, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list teams", err)
		return
	}

	c.JSON(http.StatusOK, teams)
}
