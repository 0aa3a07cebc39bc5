// api/util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	schedly_errors "github.com/schedly/api/errors"
	logger "github.com/schedly/api/logging"
	"github.com/schedly/api/model"
)

// ContextKeyPrincipal is the gin context key the auth middleware stores the
// authenticated caller under.
const ContextKeyPrincipal = "principal"

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// GetPrincipalFromContext returns the authenticated caller, or nil when the
// request carries no valid credentials.
func GetPrincipalFromContext(c *gin.Context) *model.Principal {
	value, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return nil
	}
	principal, ok := value.(*model.Principal)
	if !ok {
		return nil
	}
	return principal
}

// GetUserIDFromContext returns the caller's user id for audit trails and
// service calls; errors when the request is unauthenticated.
func GetUserIDFromContext(c *gin.Context) (int64, error) {
	principal := GetPrincipalFromContext(c)
	if principal == nil {
		return 0, schedly_errors.ErrUnauthorized
	}
	return principal.ID, nil
}
