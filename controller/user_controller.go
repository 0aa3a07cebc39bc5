// api/controller/user_controller.go
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

type UserController struct {
	userService service.IUserService
}

func NewUserController(userService service.IUserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// RegisterRoutes registers the API routes. User administration is a
// platform operator surface; /me is available to any authenticated caller.
func (uc *UserController) RegisterRoutes(r *gin.RouterGroup, guard GuardFactory) {
	users := r.Group("/users")
	{
		users.POST("", guard(guard_model.SystemAdminRole), uc.CreateUser)
		users.GET("/:userId", guard(guard_model.SystemAdminRole), uc.GetUser)
		users.DELETE("/:userId", guard(guard_model.SystemAdminRole), uc.DeleteUser)
	}
	r.GET("/me", uc.GetCurrentUser)
}

// CreateUser endpoint
func (uc *UserController) CreateUser(c *gin.Context) {
	var user model.User
	if err := c.ShouldBindJSON(&user); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user data", schedly_errors.ErrInvalidUserData)
		return
	}
	actorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", schedly_errors.ErrUnauthorized)
		return
	}

	createdUser, err := uc.userService.CreateUser(c, user, actorID)
	if err != nil {
		switch {
		case errors.Is(err, schedly_errors.ErrUserConflict):
			util.RespondWithError(c, http.StatusConflict, "User already exists", err)
		case errors.Is(err, schedly_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create user", schedly_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, createdUser)
}

// GetUser endpoint
func (uc *UserController) GetUser(c *gin.Context) {
	userID, err := helper_util.GetIDParam(c, "userId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user ID", err)
		return
	}

	user, err := uc.userService.GetUser(c, userID)
	if err != nil {
		if errors.Is(err, schedly_errors.ErrUserNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve user", err)
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser endpoint
func (uc *UserController) DeleteUser(c *gin.Context) {
	userID, err := helper_util.GetIDParam(c, "userId")
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user ID", err)
		return
	}
	actorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := uc.userService.DeleteUser(c, userID, actorID); err != nil {
		if errors.Is(err, schedly_errors.ErrUserNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete user", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetCurrentUser endpoint
func (uc *UserController) GetCurrentUser(c *gin.Context) {
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", schedly_errors.ErrUnauthorized)
		return
	}

	user, err := uc.userService.GetUser(c, userID)
	if err != nil {
		if errors.Is(err, schedly_errors.ErrUserNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve user", err)
		}
		return
	}

	c.JSON(http.StatusOK, user)
}
