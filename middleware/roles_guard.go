// api/middleware/roles_guard.go

package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	schedly_errors "github.com/schedly/api/errors"
	"github.com/schedly/api/guard/engine"
	guard_model "github.com/schedly/api/guard/model"
	"github.com/schedly/api/util"
)

// RolesGuard protects a route with a minimum role requirement. The required
// role is declared here, at route registration, and handed to the decision
// engine together with the principal and any orgId/teamId path parameters.
//
// Outcomes map to three channels: a fatal denial is a 403 carrying its
// reason, a plain denial is a 403 with no detail, and an evaluation failure
// (including an invalid role configuration) is a 500.
func RolesGuard(evaluator *engine.Evaluator, requiredRole guard_model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := idParam(c, "orgId")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization ID"})
			c.Abort()
			return
		}
		teamID, ok := idParam(c, "teamId")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team ID"})
			c.Abort()
			return
		}

		request := guard_model.AccessRequest{
			Principal:    util.GetPrincipalFromContext(c),
			OrgID:        orgID,
			TeamID:       teamID,
			RequiredRole: requiredRole,
		}

		decision, err := evaluator.Evaluate(c.Request.Context(), request)
		if err != nil {
			var forbidden *schedly_errors.ForbiddenError
			if errors.As(err, &forbidden) {
				c.JSON(http.StatusForbidden, gin.H{"error": forbidden.Reason})
			} else {
				util.RespondWithError(c, http.StatusInternalServerError, "Authorization check failed", err)
			}
			c.Abort()
			return
		}

		if !decision.Allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// idParam parses an optional numeric path parameter. Absent is (nil, true);
// present but non-numeric is a client error.
func idParam(c *gin.Context, name string) (*int64, bool) {
	raw := c.Param(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &id, true
}
