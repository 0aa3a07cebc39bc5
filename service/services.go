// api/service/services.go
package service

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/schedly/api/audit"
	"github.com/schedly/api/dao"
	"github.com/schedly/api/util"
)

type Services struct {
	Org        IOrganizationService
	Team       ITeamService
	Membership IMembershipService
	User       IUserService
}

func InitializeServices(
	driver neo4j.Driver,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	cacheService *util.CacheService,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) (*Services, *dao.MembershipDAO, *dao.OrganizationDAO, error) {
	organizationDAO := dao.NewOrganizationDAO(driver, auditService)
	teamDAO := dao.NewTeamDAO(driver, auditService)
	membershipDAO := dao.NewMembershipDAO(driver, auditService)
	userDAO := dao.NewUserDAO(driver, auditService)

	services := &Services{
		Org:        NewOrganizationService(organizationDAO, validationUtil, cacheService, notificationSvc, eventBus),
		Team:       NewTeamService(teamDAO, validationUtil, cacheService, notificationSvc, eventBus),
		Membership: NewMembershipService(membershipDAO, validationUtil, notificationSvc, eventBus),
		User:       NewUserService(userDAO, validationUtil, cacheService, notificationSvc, eventBus),
	}

	// The DAOs double as the resolver and org repository for the
	// authorization evaluator, so they are returned alongside the services.
	return services, membershipDAO, organizationDAO, nil
}
