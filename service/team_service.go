// api/service/team_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/schedly/api/dao"
	schedly_errors "github.com/schedly/api/errors"
	logger "github.com/schedly/api/logging"
	"github.com/schedly/api/model"
	"github.com/schedly/api/util"
)

// ITeamService defines the interface for team operations
type ITeamService interface {
	CreateTeam(ctx context.Context, team model.Team, userID int64) (*model.Team, error)
	UpdateTeam(ctx context.Context, team model.Team, userID int64) (*model.Team, error)
	DeleteTeam(ctx context.Context, teamID int64, userID int64) error
	GetTeam(ctx context.Context, teamID int64) (*model.Team, error)
	ListTeamsByOrg(ctx context.Context, orgID int64, limit int, offset int) ([]*model.Team, error)
}

// TeamService handles business logic for team operations
type TeamService struct {
	teamDAO         *dao.TeamDAO
	validationUtil  *util.ValidationUtil
	cacheService    *util.CacheService
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ ITeamService = &TeamService{}

// NewTeamService creates a new instance of TeamService
func NewTeamService(teamDAO *dao.TeamDAO, validationUtil *util.ValidationUtil, cacheService *util.CacheService, notificationSvc *util.NotificationService, eventBus *util.EventBus) *TeamService {
	service := &TeamService{
		teamDAO:         teamDAO,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	// Set up event subscriptions
	eventBus.Subscribe("team.created", service.handleTeamCreated)
	eventBus.Subscribe("team.updated", service.handleTeamUpdated)
	eventBus.Subscribe("team.deleted", service.handleTeamDeleted)

	return service
}

func (s *TeamService) handleTeamCreated(ctx context.Context, event util.Event) error {
	team := event.Payload.(model.Team)
	logger.Info("Team created event received", zap.Int64("teamID", team.ID), zap.Int64("orgID", team.OrganizationID))

	if err := s.notificationSvc.NotifyTeamChange(ctx, "created", team); err != nil {
		logger.Warn("Failed to send team creation notification", zap.Error(err), zap.Int64("teamID", team.ID))
	}

	return nil
}

func (s *TeamService) handleTeamUpdated(ctx context.Context, event util.Event) error {
	payload := event.Payload.(map[string]model.Team)
	newTeam := payload["new"]

	logger.Info("Team updated event received", zap.Int64("teamID", newTeam.ID))

	if err := s.notificationSvc.NotifyTeamChange(ctx, "updated", newTeam); err != nil {
		logger.Warn("Failed to send team update notification", zap.Error(err), zap.Int64("teamID", newTeam.ID))
		// Continue execution despite the error
	}

	return nil
}

func (s *TeamService) handleTeamDeleted(ctx context.Context, event util.Event) error {
	teamID := event.Payload.(int64)
	logger.Info("Team deleted event received", zap.Int64("teamID", teamID))

	if err := s.notificationSvc.NotifyTeamChange(ctx, "deleted", model.Team{ID: teamID}); err != nil {
		logger.Warn("Failed to send team deletion notification", zap.Error(err), zap.Int64("teamID", teamID))
		// Continue execution despite the error
	}

	return nil
}

// CreateTeam handles the creation of a new team inside its parent organization
func (s *TeamService) CreateTeam(ctx context.Context, team model.Team, userID int64) (*model.Team, error) {
	if err := s.validationUtil.ValidateTeam(team); err != nil {
		return nil, fmt.Errorf("invalid team: %w", err)
	}

	team.CreatedAt = time.Now()
	team.UpdatedAt = time.Now()

	teamID, err := s.teamDAO.CreateTeam(ctx, team)
	if err != nil {
		logger.Error("Error creating team", zap.Error(err), zap.Int64("orgID", team.OrganizationID), zap.Int64("userID", userID))
		return nil, err
	}

	team.ID = teamID

	// Update cache
	if err := s.cacheService.SetTeam(ctx, team); err != nil {
		logger.Warn("Failed to cache team", zap.Error(err), zap.Int64("teamID", teamID))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, "team.created", team)

	logger.Info("Team created successfully", zap.Int64("teamID", teamID), zap.Int64("userID", userID))
	return &team, nil
}

// UpdateTeam handles updates to an existing team
func (s *TeamService) UpdateTeam(ctx context.Context, team model.Team, userID int64) (*model.Team, error) {
	if err := s.validationUtil.ValidateTeam(team); err != nil {
		return nil, fmt.Errorf("invalid team: %w", err)
	}

	oldTeam, err := s.teamDAO.GetTeam(ctx, team.ID)
	if err != nil {
		logger.Error("Error retrieving existing team", zap.Error(err), zap.Int64("teamID", team.ID))
		return nil, err
	}

	team.UpdatedAt = time.Now()

	updatedTeam, err := s.teamDAO.UpdateTeam(ctx, team)
	if err != nil {
		logger.Error("Error updating team", zap.Error(err), zap.Int64("teamID", team.ID), zap.Int64("userID", userID))
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	// Update cache
	if err := s.cacheService.SetTeam(ctx, *updatedTeam); err != nil {
		logger.Warn("Failed to update team in cache", zap.Error(err), zap.Int64("teamID", team.ID))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, "team.updated", map[string]model.Team{
		"old": *oldTeam,
		"new": *updatedTeam,
	})

	logger.Info("Team updated successfully", zap.Int64("teamID", team.ID), zap.Int64("userID", userID))
	return updatedTeam, nil
}

// DeleteTeam handles the deletion of a team
func (s *TeamService) DeleteTeam(ctx context.Context, teamID int64, userID int64) error {
	err := s.teamDAO.DeleteTeam(ctx, teamID)
	if err != nil {
		logger.Error("Error deleting team", zap.Error(err), zap.Int64("teamID", teamID), zap.Int64("userID", userID))
		return fmt.Errorf("failed to delete team: %w", err)
	}

	// Remove from cache
	if err := s.cacheService.DeleteTeam(ctx, teamID); err != nil {
		logger.Warn("Failed to delete team from cache", zap.Error(err), zap.Int64("teamID", teamID))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, "team.deleted", teamID)

	logger.Info("Team deleted successfully", zap.Int64("teamID", teamID), zap.Int64("userID", userID))
	return nil
}

// GetTeam retrieves a team by its ID
func (s *TeamService) GetTeam(ctx context.Context, teamID int64) (*model.Team, error) {
	// Try to get from cache first
	cachedTeam, err := s.cacheService.GetTeam(ctx, teamID)
	if err == nil && cachedTeam != nil {
		return cachedTeam, nil
	}

	team, err := s.teamDAO.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, schedly_errors.ErrTeamNotFound) {
			return nil, schedly_errors.ErrTeamNotFound
		}
		logger.Error("Error retrieving team", zap.Error(err), zap.Int64("teamID", teamID))
		return nil, schedly_errors.ErrInternalServer
	}

	// Update cache
	if err := s.cacheService.SetTeam(ctx, *team); err != nil {
		logger.Warn("Failed to cache team", zap.Error(err), zap.Int64("teamID", teamID))
	}

	return team, nil
}

// ListTeamsByOrg retrieves the teams of an organization, possibly with pagination
func (s *TeamService) ListTeamsByOrg(ctx context.Context, orgID int64, limit int, offset int) ([]*model.Team, error) {
	teams, err := s.teamDAO.ListTeamsByOrg(ctx, orgID, limit, offset)
	if err != nil {
		logger.Error("Error listing teams", zap.Error(err), zap.Int64("orgID", orgID), zap.Int("limit", limit), zap.Int("offset", offset))
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	return teams, nil
}
