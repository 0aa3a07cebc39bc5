// api/router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schedly/api/controller"
	"github.com/schedly/api/guard/engine"
	guard_model "github.com/schedly/api/guard/model"
	"github.com/schedly/api/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	evaluator *engine.Evaluator,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))
	router.Use(middleware.Authenticate())

	guard := controller.GuardFactory(func(requiredRole guard_model.Role) gin.HandlerFunc {
		return middleware.RolesGuard(evaluator, requiredRole)
	})

	api := router.Group("/api/v1")

	controllers.Org.RegisterRoutes(api, guard)
	controllers.Team.RegisterRoutes(api, guard)
	controllers.Membership.RegisterRoutes(api, guard)
	controllers.User.RegisterRoutes(api, guard)
	controllers.Audit.RegisterRoutes(api, guard)

	return router
}
