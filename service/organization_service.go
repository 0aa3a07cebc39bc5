// api/service/organization_service.go
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

// IOrganizationService defines the interface for organization operations
type IOrganizationService interface {
	CreateOrganization(ctx context.Context, org model.Organization, userID int64) (*model.Organization, error)
	UpdateOrganization(ctx context.Context, org model.Organization, userID int64) (*model.Organization, error)
	DeleteOrganization(ctx context.Context, orgID int64, userID int64) error
	GetOrganization(ctx context.Context, orgID int64) (*model.Organization, error)
	ListOrganizations(ctx context.Context, limit int, offset int) ([]*model.Organization, error)
	SearchOrganizations(ctx context.Context, criteria model.OrganizationSearchCriteria) ([]*model.Organization, error)
}

// OrganizationService handles business logic for organization operations
type OrganizationService struct {
	orgDAO          *dao.OrganizationDAO
	validationUtil  *util.ValidationUtil
	cacheService    *util.CacheService
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IOrganizationService = &OrganizationService{}

// NewOrganizationService creates a new instance of OrganizationService
func NewOrganizationService(orgDAO *dao.OrganizationDAO, validationUtil *util.ValidationUtil, cacheService *util.CacheService, notificationSvc *util.NotificationService, eventBus *util.EventBus) *OrganizationService {
	service := &OrganizationService{
		orgDAO:          orgDAO,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	// Set up event subscriptions
	eventBus.Subscribe("organization.created", service.handleOrganizationCreated)
	eventBus.Subscribe("organization.updated", service.handleOrganizationUpdated)
	eventBus.Subscribe("organization.deleted", service.handleOrganizationDeleted)

	return service
}

func (s *OrganizationService) handleOrganizationCreated(ctx context.Context, event util.Event) error {
	org := event.Payload.(model.Organization)
	logger.Info("Organization created event received", zap.Int64("orgID", org.ID))

	if err := s.notificationSvc.NotifyOrganizationChange(ctx, "created", org); err != nil {
		logger.Warn("Failed to send organization creation notification", zap.Error(err), zap.Int64("orgID", org.ID))
	}

	return nil
}

func (s *OrganizationService) handleOrganizationUpdated(ctx context.Context, event util.Event) error {
	payload := event.Payload.(map[string]model.Organization)
	oldOrg, newOrg := payload["old"], payload["new"]

	logger.Info("Organization updated event received",
		zap.Int64("orgID", newOrg.ID),
		zap.Time("oldUpdatedAt", oldOrg.UpdatedAt),
		zap.Time("newUpdatedAt", newOrg.UpdatedAt))

	if err := s.notificationSvc.NotifyOrganizationChange(ctx, "updated", newOrg); err != nil {
		logger.Warn("Failed to send organization update notification", zap.Error(err), zap.Int64("orgID", newOrg.ID))
		// Continue execution despite the error
	}

	return nil
}

func (s *OrganizationService) handleOrganizationDeleted(ctx context.Context, event util.Event) error {
	orgID := event.Payload.(int64)
	logger.Info("Organization deleted event received", zap.Int64("orgID", orgID))

	if err := s.notificationSvc.NotifyOrganizationChange(ctx, "deleted", model.Organization{ID: orgID}); err != nil {
		logger.Warn("Failed to send organization deletion notification", zap.Error(err), zap.Int64("orgID", orgID))
		// Continue execution despite the error
	}

	return nil
}

// CreateOrganization handles the creation of a new organization
func (s *OrganizationService) CreateOrganization(ctx context.Context, org model.Organization, userID int64) (*model.Organization, error) {
	if err := s.validationUtil.ValidateOrganization(org); err != nil {
		return nil, fmt.Errorf("invalid organization: %w", err)
	}

	org.CreatedAt = time.Now()
	org.UpdatedAt = time.Now()

	orgID, err := s.orgDAO.CreateOrganization(ctx, org)
	if err != nil {
		logger.Error("Error creating organization", zap.Error(err), zap.Int64("userID", userID))
		return nil, err
	}

	org.ID = orgID

	// Update cache
	if err := s.cacheService.SetOrganization(ctx, org); err != nil {
		logger.Warn("Failed to cache organization", zap.Error(err), zap.Int64("orgID", orgID))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, "organization.created", org)

	logger.Info("Organization created successfully", zap.Int64("orgID", orgID), zap.Int64("userID", userID))
	return &org, nil
}

// UpdateOrganization handles updates to an existing organization
func (s *OrganizationService) UpdateOrganization(ctx context.Context, org model.Organization, userID int64) (*model.Organization, error) {
	if err := s.validationUtil.ValidateOrganization(org); err != nil {
		return nil, fmt.Errorf("invalid organization: %w", err)
	}

	oldOrg, err := s.orgDAO.GetOrganization(ctx, org.ID)
	if err != nil {
		logger.Error("Error retrieving existing organization", zap.Error(err), zap.Int64("orgID", org.ID))
		return nil, err
	}

	org.UpdatedAt = time.Now()

	updatedOrg, err := s.orgDAO.UpdateOrganization(ctx, org)
	if err != nil {
		logger.Error("Error updating organization", zap.Error(err), zap.Int64("orgID", org.ID), zap.Int64("userID", userID))
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	// Update cache
	if err := s.cacheService.SetOrganization(ctx, *updatedOrg); err != nil {
		logger.Warn("Failed to update organization in cache", zap.Error(err), zap.Int64("orgID", org.ID))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, "organization.updated", map[string]model.Organization{
		"old": *oldOrg,
		"new": *updatedOrg,
	})

	logger.Info("Organization updated successfully", zap.Int64("orgID", org.ID), zap.Int64("userID", userID))
	return updatedOrg, nil
}

// DeleteOrganization handles the deletion of an organization
func (s *OrganizationService) DeleteOrganization(ctx context.Context, orgID int64, userID int64) error {
	err := s.orgDAO.DeleteOrganization(ctx, orgID)
	if err != nil {
		logger.Error("Error deleting organization", zap.Error(err), zap.Int64("orgID", orgID), zap.Int64("userID", userID))
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	// Remove from cache
	if err := s.cacheService.DeleteOrganization(ctx, orgID); err != nil {
		logger.Warn("Failed to delete organization from cache", zap.Error(err), zap.Int64("orgID", orgID))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, "organization.deleted", orgID)

	logger.Info("Organization deleted successfully", zap.Int64("orgID", orgID), zap.Int64("userID", userID))
	return nil
}

// GetOrganization retrieves an organization by its ID
func (s *OrganizationService) GetOrganization(ctx context.Context, orgID int64) (*model.Organization, error) {
	// Try to get from cache first
	cachedOrg, err := s.cacheService.GetOrganization(ctx, orgID)
	if err == nil && cachedOrg != nil {
		return cachedOrg, nil
	}

	org, err := s.orgDAO.GetOrganization(ctx, orgID)
	if err != nil {
		if errors.Is(err, schedly_errors.ErrOrganizationNotFound) {
			return nil, schedly_errors.ErrOrganizationNotFound
		}
		logger.Error("Error retrieving organization", zap.Error(err), zap.Int64("orgID", orgID))
		return nil, schedly_errors.ErrInternalServer
	}

	// Update cache
	if err := s.cacheService.SetOrganization(ctx, *org); err != nil {
		logger.Warn("Failed to cache organization", zap.Error(err), zap.Int64("orgID", orgID))
	}

	return org, nil
}

// ListOrganizations retrieves all organizations, possibly with pagination
func (s *OrganizationService) ListOrganizations(ctx context.Context, limit int, offset int) ([]*model.Organization, error) {
	orgs, err := s.orgDAO.ListOrganizations(ctx, limit, offset)
	if err != nil {
		logger.Error("Error listing organizations", zap.Error(err), zap.Int("limit", limit), zap.Int("offset", offset))
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	return orgs, nil
}

// SearchOrganizations searches for organizations based on the given criteria
func (s *OrganizationService) SearchOrganizations(ctx context.Context, criteria model.OrganizationSearchCriteria) ([]*model.Organization, error) {
	orgs, err := s.orgDAO.SearchOrganizations(ctx, criteria)
	if err != nil {
		logger.Error("Error searching organizations", zap.Error(err), zap.Any("criteria", criteria))
		return nil, fmt.Errorf("failed to search organizations: %w", err)
	}

	return orgs, nil
}
