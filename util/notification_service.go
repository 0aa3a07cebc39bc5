// api/util/notification_service.go

package util

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/schedly/api/logging"
	"github.com/schedly/api/model"
)

type NotificationService struct {
	// Dependencies such as a message queue client would live here
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (n *NotificationService) NotifyOrganizationChange(ctx context.Context, changeType string, org model.Organization) error {
	logger.Info("Notifying organization change",
		zap.String("changeType", changeType),
		zap.Int64("orgID", org.ID),
		zap.String("orgName", org.Name))
	return nil
}

func (n *NotificationService) NotifyTeamChange(ctx context.Context, changeType string, team model.Team) error {
	logger.Info("Notifying team change",
		zap.String("changeType", changeType),
		zap.Int64("teamID", team.ID),
		zap.String("teamName", team.Name))
	return nil
}

func (n *NotificationService) NotifyMembershipChange(ctx context.Context, changeType string, membership model.Membership) error {
	logger.Info("Notifying membership change",
		zap.String("changeType", changeType),
		zap.Int64("userID", membership.UserID),
		zap.Int64("orgID", membership.OrganizationID),
		zap.Int64("teamID", membership.TeamID),
		zap.String("role", membership.Role))
	return nil
}

func (n *NotificationService) NotifyUserChange(ctx context.Context, changeType string, user model.User) error {
	logger.Info("Notifying user change",
		zap.String("changeType", changeType),
		zap.Int64("userID", user.ID),
		zap.String("userName", user.Username))
	return nil
}
