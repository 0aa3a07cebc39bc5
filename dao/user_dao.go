package dao

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/schedly/api/audit"
	schedly_errors "github.com/schedly/api/errors"
	logger "github.com/schedly/api/logging"
	"github.com/schedly/api/model"
	schedly_neo4j "github.com/schedly/api/model/neo4j"
)

type UserDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewUserDAO(driver neo4j.Driver, auditService audit.Service) *UserDAO {
	dao := &UserDAO{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for User", zap.Error(err))
	}
	return dao
}

func (dao *UserDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on User ID")
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_user_id IF NOT EXISTS
        FOR (u:` + schedly_neo4j.LabelUser + `) REQUIRE u.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on User ID", zap.Error(err))
		return err
	}

	return nil
}

func (dao *UserDAO) CreateUser(ctx context.Context, user model.User) (int64, error) {
	start := time.Now()
	logger.Info("Creating new user", zap.String("username", user.Username))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := nextIDQuery + `
        CREATE (u:` + schedly_neo4j.LabelUser + ` {id: newId})
        SET u += $props
        RETURN u.id as id
        `

		params := map[string]interface{}{
			"seqName": schedly_neo4j.LabelUser,
			"props": map[string]interface{}{
				"name":          user.Name,
				"username":      user.Username,
				"email":         user.Email,
				"isSystemAdmin": user.IsSystemAdmin,
				"createdAt":     time.Now().Format(time.RFC3339),
				"updatedAt":     time.Now().Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		return nil, schedly_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create user",
			zap.Error(err),
			zap.String("username", user.Username),
			zap.Duration("duration", duration))
		return 0, err
	}

	userID := result.(int64)
	logger.Info("User created successfully",
		zap.Int64("userID", userID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUserID(ctx),
		Action:        "CREATE_USER",
		ResourceID:    user.Username,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return userID, nil
}

func (dao *UserDAO) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + schedly_neo4j.LabelUser + ` {id: $id})
        RETURN u
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": userID})
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			return userFromProps(node.Props), nil
		}

		return nil, schedly_errors.ErrUserNotFound
	})

	if err != nil {
		return nil, err
	}

	return result.(*model.User), nil
}

func (dao *UserDAO) DeleteUser(ctx context.Context, userID int64) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + schedly_neo4j.LabelUser + ` {id: $id})
        DETACH DELETE u
        RETURN count(u) as deleted
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": userID})
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		if result.Next() {
			if result.Record().Values[0].(int64) == 0 {
				return nil, schedly_errors.ErrUserNotFound
			}
			return nil, nil
		}

		return nil, schedly_errors.ErrInternalServer
	})

	if err != nil {
		logger.Error("Failed to delete user", zap.Error(err), zap.Int64("userID", userID))
		return err
	}

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUserID(ctx),
		Action:        "DELETE_USER",
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func userFromProps(props map[string]interface{}) *model.User {
	user := &model.User{}
	if id, ok := props["id"].(int64); ok {
		user.ID = id
	}
	if name, ok := props["name"].(string); ok {
		user.Name = name
	}
	if username, ok := props["username"].(string); ok {
		user.Username = username
	}
	if email, ok := props["email"].(string); ok {
		user.Email = email
	}
	if isSystemAdmin, ok := props["isSystemAdmin"].(bool); ok {
		user.IsSystemAdmin = isSystemAdmin
	}
	if createdAt, ok := props["createdAt"].(string); ok {
		user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	}
	if updatedAt, ok := props["updatedAt"].(string); ok {
		user.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	}
	return user
}
