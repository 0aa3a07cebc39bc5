// api/service/user_service.go
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

// IUserService defines the interface for user operations
type IUserService interface {
	CreateUser(ctx context.Context, user model.User, actorID int64) (*model.User, error)
	GetUser(ctx context.Context, userID int64) (*model.User, error)
	DeleteUser(ctx context.Context, userID int64, actorID int64) error
}

// UserService handles business logic for user operations
type UserService struct {
	userDAO         *dao.UserDAO
	validationUtil  *util.ValidationUtil
	cacheService    *util.CacheService
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IUserService = &UserService{}

// NewUserService creates a new instance of UserService
func NewUserService(userDAO *dao.UserDAO, validationUtil *util.ValidationUtil, cacheService *util.CacheService, notificationSvc *util.NotificationService, eventBus *util.EventBus) *UserService {
	service := &UserService{
		userDAO:         userDAO,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	eventBus.Subscribe("user.created", service.handleUserCreated)
	eventBus.Subscribe("user.deleted", service.handleUserDeleted)

	return service
}

func (s *UserService) handleUserCreated(ctx context.Context, event util.Event) error {
	user := event.Payload.(model.User)
	logger.Info("User created event received", zap.Int64("userID", user.ID))

	if err := s.notificationSvc.NotifyUserChange(ctx, "created", user); err != nil {
		logger.Warn("Failed to send user creation notification", zap.Error(err), zap.Int64("userID", user.ID))
	}

	return nil
}

func (s *UserService) handleUserDeleted(ctx context.Context, event util.Event) error {
	userID := event.Payload.(int64)
	logger.Info("User deleted event received", zap.Int64("userID", userID))

	if err := s.notificationSvc.NotifyUserChange(ctx, "deleted", model.User{ID: userID}); err != nil {
		logger.Warn("Failed to send user deletion notification", zap.Error(err), zap.Int64("userID", userID))
		// Continue execution despite the error
	}

	return nil
}

// CreateUser handles the creation of a new user
func (s *UserService) CreateUser(ctx context.Context, user model.User, actorID int64) (*model.User, error) {
	if err := s.validationUtil.ValidateUser(user); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	userID, err := s.userDAO.CreateUser(ctx, user)
	if err != nil {
		logger.Error("Error creating user", zap.Error(err), zap.Int64("actorID", actorID))
		return nil, err
	}

	user.ID = userID

	// Update cache
	if err := s.cacheService.SetUser(ctx, user); err != nil {
		logger.Warn("Failed to cache user", zap.Error(err), zap.Int64("userID", userID))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, "user.created", user)

	logger.Info("User created successfully", zap.Int64("userID", userID), zap.Int64("actorID", actorID))
	return &user, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	// Try to get from cache first
	cachedUser, err := s.cacheService.GetUser(ctx, userID)
	if err == nil && cachedUser != nil {
		return cachedUser, nil
	}

	user, err := s.userDAO.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, schedly_errors.ErrUserNotFound) {
			return nil, schedly_errors.ErrUserNotFound
		}
		logger.Error("Error retrieving user", zap.Error(err), zap.Int64("userID", userID))
		return nil, schedly_errors.ErrInternalServer
	}

	// Update cache
	if err := s.cacheService.SetUser(ctx, *user); err != nil {
		logger.Warn("Failed to cache user", zap.Error(err), zap.Int64("userID", userID))
	}

	return user, nil
}

// DeleteUser handles the deletion of a user
func (s *UserService) DeleteUser(ctx context.Context, userID int64, actorID int64) error {
	err := s.userDAO.DeleteUser(ctx, userID)
	if err != nil {
		logger.Error("Error deleting user", zap.Error(err), zap.Int64("userID", userID), zap.Int64("actorID", actorID))
		return fmt.Errorf("failed to delete user: %w", err)
	}

	// Remove from cache
	if err := s.cacheService.DeleteUser(ctx, userID); err != nil {
		logger.Warn("Failed to delete user from cache", zap.Error(err), zap.Int64("userID", userID))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, "user.deleted", userID)

	logger.Info("User deleted successfully", zap.Int64("userID", userID), zap.Int64("actorID", actorID))
	return nil
}
