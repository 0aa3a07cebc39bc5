// api/service/membership_service.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/schedly/api/dao"
	schedly_errors "github.com/schedly/api/errors"
	logger "github.com/schedly/api/logging"
	"github.com/schedly/api/model"
	schedly_neo4j "github.com/schedly/api/model/neo4j"
	"github.com/schedly/api/util"
)

// IMembershipService defines the interface for membership operations
type IMembershipService interface {
	AddOrgMember(ctx context.Context, orgID int64, membership model.Membership, actorID int64) (*model.Membership, error)
	AddTeamMember(ctx context.Context, teamID int64, membership model.Membership, actorID int64) (*model.Membership, error)
	UpdateOrgMemberRole(ctx context.Context, orgID, userID int64, role string, actorID int64) (*model.Membership, error)
	UpdateTeamMemberRole(ctx context.Context, teamID, userID int64, role string, actorID int64) (*model.Membership, error)
	RemoveOrgMember(ctx context.Context, orgID, userID int64, actorID int64) error
	RemoveTeamMember(ctx context.Context, teamID, userID int64, actorID int64) error
	ListOrgMembers(ctx context.Context, orgID int64) ([]*model.Membership, error)
	ListTeamMembers(ctx context.Context, teamID int64) ([]*model.Membership, error)
}

// MembershipService handles business logic for membership operations.
// Membership writes do not touch authorization decision cache entries; those
// expire on their own TTL.
type MembershipService struct {
	membershipDAO   *dao.MembershipDAO
	validationUtil  *util.ValidationUtil
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IMembershipService = &MembershipService{}

// NewMembershipService creates a new instance of MembershipService
func NewMembershipService(membershipDAO *dao.MembershipDAO, validationUtil *util.ValidationUtil, notificationSvc *util.NotificationService, eventBus *util.EventBus) *MembershipService {
	service := &MembershipService{
		membershipDAO:   membershipDAO,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	eventBus.Subscribe("membership.changed", service.handleMembershipChanged)

	return service
}

func (s *MembershipService) handleMembershipChanged(ctx context.Context, event util.Event) error {
	membership := event.Payload.(model.Membership)
	logger.Info("Membership changed event received",
		zap.Int64("userID", membership.UserID),
		zap.Int64("orgID", membership.OrganizationID),
		zap.Int64("teamID", membership.TeamID))

	if err := s.notificationSvc.NotifyMembershipChange(ctx, "changed", membership); err != nil {
		logger.Warn("Failed to send membership change notification", zap.Error(err), zap.Int64("userID", membership.UserID))
	}

	return nil
}

// AddOrgMember attaches a user to an organization with the given role
func (s *MembershipService) AddOrgMember(ctx context.Context, orgID int64, membership model.Membership, actorID int64) (*model.Membership, error) {
	membership.OrganizationID = orgID
	membership.TeamID = 0
	return s.addMember(ctx, schedly_neo4j.LabelOrganization, orgID, membership, actorID)
}

// AddTeamMember attaches a user to a team with the given role
func (s *MembershipService) AddTeamMember(ctx context.Context, teamID int64, membership model.Membership, actorID int64) (*model.Membership, error) {
	membership.TeamID = teamID
	membership.OrganizationID = 0
	return s.addMember(ctx, schedly_neo4j.LabelTeam, teamID, membership, actorID)
}

func (s *MembershipService) addMember(ctx context.Context, scopeLabel string, scopeID int64, membership model.Membership, actorID int64) (*model.Membership, error) {
	if err := s.validationUtil.ValidateMembership(membership); err != nil {
		return nil, fmt.Errorf("%w: %v", schedly_errors.ErrInvalidMembershipData, err)
	}

	created, err := s.membershipDAO.CreateMembership(ctx, scopeLabel, scopeID, membership)
	if err != nil {
		logger.Error("Error creating membership",
			zap.Error(err),
			zap.String("scope", scopeLabel),
			zap.Int64("scopeID", scopeID),
			zap.Int64("userID", membership.UserID),
			zap.Int64("actorID", actorID))
		return nil, err
	}

	s.eventBus.Publish(ctx, "membership.changed", *created)

	logger.Info("Membership created successfully",
		zap.String("scope", scopeLabel),
		zap.Int64("scopeID", scopeID),
		zap.Int64("userID", membership.UserID),
		zap.Int64("actorID", actorID))
	return created, nil
}

// UpdateOrgMemberRole changes the role of an organization member
func (s *MembershipService) UpdateOrgMemberRole(ctx context.Context, orgID, userID int64, role string, actorID int64) (*model.Membership, error) {
	return s.updateMemberRole(ctx, schedly_neo4j.LabelOrganization, orgID, userID, role, actorID)
}

// UpdateTeamMemberRole changes the role of a team member
func (s *MembershipService) UpdateTeamMemberRole(ctx context.Context, teamID, userID int64, role string, actorID int64) (*model.Membership, error) {
	return s.updateMemberRole(ctx, schedly_neo4j.LabelTeam, teamID, userID, role, actorID)
}

func (s *MembershipService) updateMemberRole(ctx context.Context, scopeLabel string, scopeID, userID int64, role string, actorID int64) (*model.Membership, error) {
	if role != model.MembershipRoleMember && role != model.MembershipRoleAdmin && role != model.MembershipRoleOwner {
		return nil, fmt.Errorf("%w: unknown role %q", schedly_errors.ErrInvalidMembershipData, role)
	}

	updated, err := s.membershipDAO.UpdateMembershipRole(ctx, scopeLabel, scopeID, userID, role)
	if err != nil {
		logger.Error("Error updating membership role",
			zap.Error(err),
			zap.String("scope", scopeLabel),
			zap.Int64("scopeID", scopeID),
			zap.Int64("userID", userID),
			zap.Int64("actorID", actorID))
		return nil, err
	}

	s.eventBus.Publish(ctx, "membership.changed", *updated)

	logger.Info("Membership role updated successfully",
		zap.String("scope", scopeLabel),
		zap.Int64("scopeID", scopeID),
		zap.Int64("userID", userID),
		zap.String("role", role),
		zap.Int64("actorID", actorID))
	return updated, nil
}

// RemoveOrgMember detaches a user from an organization
func (s *MembershipService) RemoveOrgMember(ctx context.Context, orgID, userID int64, actorID int64) error {
	return s.removeMember(ctx, schedly_neo4j.LabelOrganization, orgID, userID, actorID)
}

// RemoveTeamMember detaches a user from a team
func (s *MembershipService) RemoveTeamMember(ctx context.Context, teamID, userID int64, actorID int64) error {
	return s.removeMember(ctx, schedly_neo4j.LabelTeam, teamID, userID, actorID)
}

func (s *MembershipService) removeMember(ctx context.Context, scopeLabel string, scopeID, userID int64, actorID int64) error {
	err := s.membershipDAO.DeleteMembership(ctx, scopeLabel, scopeID, userID)
	if err != nil {
		logger.Error("Error deleting membership",
			zap.Error(err),
			zap.String("scope", scopeLabel),
			zap.Int64("scopeID", scopeID),
			zap.Int64("userID", userID),
			zap.Int64("actorID", actorID))
		return fmt.Errorf("failed to delete membership: %w", err)
	}

	membership := model.Membership{UserID: userID}
	if scopeLabel == schedly_neo4j.LabelOrganization {
		membership.OrganizationID = scopeID
	} else {
		membership.TeamID = scopeID
	}
	s.eventBus.Publish(ctx, "membership.changed", membership)

	logger.Info("Membership deleted successfully",
		zap.String("scope", scopeLabel),
		zap.Int64("scopeID", scopeID),
		zap.Int64("userID", userID),
		zap.Int64("actorID", actorID))
	return nil
}

// ListOrgMembers retrieves all memberships of an organization
func (s *MembershipService) ListOrgMembers(ctx context.Context, orgID int64) ([]*model.Membership, error) {
	memberships, err := s.membershipDAO.ListMemberships(ctx, schedly_neo4j.LabelOrganization, orgID)
	if err != nil {
		logger.Error("Error listing organization members", zap.Error(err), zap.Int64("orgID", orgID))
		return nil, fmt.Errorf("failed to list organization members: %w", err)
	}

	return memberships, nil
}

// ListTeamMembers retrieves all memberships of a team
func (s *MembershipService) ListTeamMembers(ctx context.Context, teamID int64) ([]*model.Membership, error) {
	memberships, err := s.membershipDAO.ListMemberships(ctx, schedly_neo4j.LabelTeam, teamID)
	if err != nil {
		logger.Error("Error listing team members", zap.Error(err), zap.Int64("teamID", teamID))
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}

	return memberships, nil
}
