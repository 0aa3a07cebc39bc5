package dao

import (
	"context"
	"strconv"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/schedly/api/audit"
	schedly_errors "github.com/schedly/api/errors"
	logger "github.com/schedly/api/logging"
	"github.com/schedly/api/model"
	schedly_neo4j "github.com/schedly/api/model/neo4j"
)

// MembershipDAO manages MEMBER_OF relationships between users and
// organization/team scopes. Its finders are the roles guard's membership
// resolver.
type MembershipDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewMembershipDAO(driver neo4j.Driver, auditService audit.Service) *MembershipDAO {
	return &MembershipDAO{Driver: driver, AuditService: auditService}
}

// FindMembershipByOrg returns the user's membership within the
// organization, or nil when there is none.
func (dao *MembershipDAO) FindMembershipByOrg(ctx context.Context, orgID, userID int64) (*model.Membership, error) {
	return dao.findMembership(ctx, schedly_neo4j.LabelOrganization, orgID, userID)
}

// FindMembershipByTeam returns the user's membership within the team, or
// nil when there is none.
func (dao *MembershipDAO) FindMembershipByTeam(ctx context.Context, teamID, userID int64) (*model.Membership, error) {
	return dao.findMembership(ctx, schedly_neo4j.LabelTeam, teamID, userID)
}

func (dao *MembershipDAO) findMembership(ctx context.Context, scopeLabel string, scopeID, userID int64) (*model.Membership, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + schedly_neo4j.LabelUser + ` {id: $userId})-[r:` + schedly_neo4j.RelMemberOf + `]->(s:` + scopeLabel + ` {id: $scopeId})
        RETURN r
        `
		result, err := transaction.Run(query, map[string]interface{}{
			"userId":  userID,
			"scopeId": scopeID,
		})
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		if result.Next() {
			rel := result.Record().Values[0].(neo4j.Relationship)
			return membershipFromProps(scopeLabel, scopeID, userID, rel.Props), nil
		}

		// Absence of a membership is not an error.
		return (*model.Membership)(nil), nil
	})

	if err != nil {
		return nil, err
	}

	return result.(*model.Membership), nil
}

// CreateMembership merges the MEMBER_OF edge for the given scope. Merging
// keeps the (user, scope) pair unique; a second create overwrites the role.
func (dao *MembershipDAO) CreateMembership(ctx context.Context, scopeLabel string, scopeID int64, membership model.Membership) (*model.Membership, error) {
	start := time.Now()
	logger.Info("Creating membership",
		zap.Int64("userID", membership.UserID),
		zap.String("scope", scopeLabel),
		zap.Int64("scopeID", scopeID),
		zap.String("role", membership.Role))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + schedly_neo4j.LabelUser + ` {id: $userId})
        MATCH (s:` + scopeLabel + ` {id: $scopeId})
        MERGE (u)-[r:` + schedly_neo4j.RelMemberOf + `]->(s)
        ON CREATE SET r.createdAt = $now
        SET r.role = $role, r.accepted = $accepted, r.updatedAt = $now
        RETURN r
        `
		result, err := transaction.Run(query, map[string]interface{}{
			"userId":   membership.UserID,
			"scopeId":  scopeID,
			"role":     membership.Role,
			"accepted": membership.Accepted,
			"now":      time.Now().Format(time.RFC3339),
		})
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		if result.Next() {
			rel := result.Record().Values[0].(neo4j.Relationship)
			return membershipFromProps(scopeLabel, scopeID, membership.UserID, rel.Props), nil
		}

		return nil, schedly_errors.ErrMembershipNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create membership",
			zap.Error(err),
			zap.Int64("userID", membership.UserID),
			zap.Duration("duration", duration))
		return nil, err
	}

	created := result.(*model.Membership)
	logger.Info("Membership created successfully",
		zap.Int64("userID", created.UserID),
		zap.Duration("duration", duration))

	dao.auditMembershipChange(ctx, "CREATE_MEMBERSHIP", scopeLabel, scopeID, created.UserID)

	return created, nil
}

// UpdateMembershipRole changes the role on an existing membership.
func (dao *MembershipDAO) UpdateMembershipRole(ctx context.Context, scopeLabel string, scopeID, userID int64, role string) (*model.Membership, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + schedly_neo4j.LabelUser + ` {id: $userId})-[r:` + schedly_neo4j.RelMemberOf + `]->(s:` + scopeLabel + ` {id: $scopeId})
        SET r.role = $role, r.updatedAt = $now
        RETURN r
        `
		result, err := transaction.Run(query, map[string]interface{}{
			"userId":  userID,
			"scopeId": scopeID,
			"role":    role,
			"now":     time.Now().Format(time.RFC3339),
		})
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		if result.Next() {
			rel := result.Record().Values[0].(neo4j.Relationship)
			return membershipFromProps(scopeLabel, scopeID, userID, rel.Props), nil
		}

		return nil, schedly_errors.ErrMembershipNotFound
	})

	if err != nil {
		logger.Error("Failed to update membership role",
			zap.Error(err),
			zap.Int64("userID", userID),
			zap.String("scope", scopeLabel),
			zap.Int64("scopeID", scopeID))
		return nil, err
	}

	dao.auditMembershipChange(ctx, "UPDATE_MEMBERSHIP", scopeLabel, scopeID, userID)

	return result.(*model.Membership), nil
}

// DeleteMembership removes the membership edge.
func (dao *MembershipDAO) DeleteMembership(ctx context.Context, scopeLabel string, scopeID, userID int64) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + schedly_neo4j.LabelUser + ` {id: $userId})-[r:` + schedly_neo4j.RelMemberOf + `]->(s:` + scopeLabel + ` {id: $scopeId})
        DELETE r
        RETURN count(r) as deleted
        `
		result, err := transaction.Run(query, map[string]interface{}{
			"userId":  userID,
			"scopeId": scopeID,
		})
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		if result.Next() {
			if result.Record().Values[0].(int64) == 0 {
				return nil, schedly_errors.ErrMembershipNotFound
			}
			return nil, nil
		}

		return nil, schedly_errors.ErrInternalServer
	})

	if err != nil {
		logger.Error("Failed to delete membership",
			zap.Error(err),
			zap.Int64("userID", userID),
			zap.String("scope", scopeLabel),
			zap.Int64("scopeID", scopeID))
		return err
	}

	dao.auditMembershipChange(ctx, "DELETE_MEMBERSHIP", scopeLabel, scopeID, userID)

	return nil
}

// ListMemberships returns all memberships of the given scope.
func (dao *MembershipDAO) ListMemberships(ctx context.Context, scopeLabel string, scopeID int64) ([]*model.Membership, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + schedly_neo4j.LabelUser + `)-[r:` + schedly_neo4j.RelMemberOf + `]->(s:` + scopeLabel + ` {id: $scopeId})
        RETURN u.id as userId, r
        ORDER BY u.id
        `
		result, err := transaction.Run(query, map[string]interface{}{"scopeId": scopeID})
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		var memberships []*model.Membership
		for result.Next() {
			record := result.Record()
			userID := record.Values[0].(int64)
			rel := record.Values[1].(neo4j.Relationship)
			memberships = append(memberships, membershipFromProps(scopeLabel, scopeID, userID, rel.Props))
		}
		return memberships, nil
	})

	if err != nil {
		return nil, err
	}

	return result.([]*model.Membership), nil
}

func (dao *MembershipDAO) auditMembershipChange(ctx context.Context, action, scopeLabel string, scopeID, userID int64) {
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUserID(ctx),
		Action:        action,
		ResourceID:    strconv.FormatInt(userID, 10),
		AccessGranted: true,
	}
	switch scopeLabel {
	case schedly_neo4j.LabelOrganization:
		auditLog.OrgID = scopeID
	case schedly_neo4j.LabelTeam:
		auditLog.TeamID = scopeID
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
}

func membershipFromProps(scopeLabel string, scopeID, userID int64, props map[string]interface{}) *model.Membership {
	membership := &model.Membership{UserID: userID}
	switch scopeLabel {
	case schedly_neo4j.LabelOrganization:
		membership.OrganizationID = scopeID
	case schedly_neo4j.LabelTeam:
		membership.TeamID = scopeID
	}
	if role, ok := props["role"].(string); ok {
		membership.Role = role
	}
	if accepted, ok := props["accepted"].(bool); ok {
		membership.Accepted = accepted
	}
	if createdAt, ok := props["createdAt"].(string); ok {
		membership.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	}
	if updatedAt, ok := props["updatedAt"].(string); ok {
		membership.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	}
	return membership
}
