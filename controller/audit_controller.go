// api/controller/audit_controller.go
package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schedly/api/audit"
	schedly_errors "github.com/schedly/api/errors"
	guard_model "github.com/schedly/api/guard/model"
	"github.com/schedly/api/util"
)

type AuditController struct {
	auditService audit.Service
}

func NewAuditController(auditService audit.Service) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// RegisterRoutes registers the API routes. The audit trail is a platform
// operator surface.
func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup, guard GuardFactory) {
	r.GET("/audit-logs", guard(guard_model.SystemAdminRole), ac.QueryLogs)
}

// QueryLogs endpoint. Filters: from/to (RFC3339, default last 24h),
// userId, orgId.
func (ac *AuditController) QueryLogs(c *gin.Context) {
	to := time.Now()
	from := to.Add(-24 * time.Hour)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid 'from' timestamp", err)
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid 'to' timestamp", err)
			return
		}
		to = parsed
	}

	var userID, orgID int64
	if raw := c.Query("userId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid user ID", err)
			return
		}
		userID = parsed
	}
	if raw := c.Query("orgId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid organization ID", err)
			return
		}
		orgID = parsed
	}

	logs, err := ac.auditService.QueryLogs(c, from, to, userID, orgID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to query audit logs", schedly_errors.ErrInternalServer)
		return
	}

	c.JSON(http.StatusOK, logs)
}
