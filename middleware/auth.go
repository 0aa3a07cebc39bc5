// api/middleware/auth.go

package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/schedly/api/config"
	logger "github.com/schedly/api/logging"
	"github.com/schedly/api/model"
	"github.com/schedly/api/util"
)

// PrincipalClaims are the claims our bearer tokens carry.
type PrincipalClaims struct {
	jwt.RegisteredClaims
	Username      string `json:"username"`
	IsSystemAdmin bool   `json:"is_system_admin"`
}

// Authenticate resolves the caller from the Authorization header and stores
// a Principal in the request context. It never rejects the request itself:
// unauthenticated and invalid-token requests proceed without a principal
// and are denied by the roles guard on protected routes.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.Next()
			return
		}

		principal, err := parseBearerToken(tokenString)
		if err != nil {
			logger.Warn("Rejected bearer token", zap.Error(err), zap.String("ip", c.ClientIP()))
			c.Next()
			return
		}

		c.Set(util.ContextKeyPrincipal, principal)
		// Audit trails pick the caller id up from the request context.
		c.Set("requestingUserID", principal.ID)

		c.Next()
	}
}

func parseBearerToken(tokenString string) (*model.Principal, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenString, &PrincipalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.GetString("auth.jwtSecret")), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*PrincipalClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token or wrong claims type")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim %q: %w", claims.Subject, err)
	}

	return &model.Principal{
		ID:            userID,
		Username:      claims.Username,
		IsSystemAdmin: claims.IsSystemAdmin,
	}, nil
}
