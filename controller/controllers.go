// api/controller/controllers.go
package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/schedly/api/audit"
	guard_model "github.com/schedly/api/guard/model"
	"github.com/schedly/api/service"
)

// GuardFactory builds the role-check middleware for a route. Controllers
// declare the minimum role next to each route registration.
type GuardFactory func(requiredRole guard_model.Role) gin.HandlerFunc

type Controllers struct {
	Org        *OrganizationController
	Team       *TeamController
	Membership *MembershipController
	User       *UserController
	Audit      *AuditController
}

func InitializeControllers(services *service.Services, auditService audit.Service) *Controllers {
	return &Controllers{
		Org:        NewOrganizationController(services.Org),
		Team:       NewTeamController(services.Team),
		Membership: NewMembershipController(services.Membership),
		User:       NewUserController(services.User),
		Audit:      NewAuditController(auditService),
	}
}
