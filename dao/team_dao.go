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

type TeamDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewTeamDAO(driver neo4j.Driver, auditService audit.Service) *TeamDAO {
	dao := &TeamDAO{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Team", zap.Error(err))
	}
	return dao
}

func (dao *TeamDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on Team ID")
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_team_id IF NOT EXISTS
        FOR (t:` + schedly_neo4j.LabelTeam + `) REQUIRE t.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on Team ID", zap.Error(err))
		return err
	}

	return nil
}

// CreateTeam creates the team node and its PART_OF edge to the owning
// organization in one transaction.
func (dao *TeamDAO) CreateTeam(ctx context.Context, team model.Team) (int64, error) {
	start := time.Now()
	logger.Info("Creating new team",
		zap.String("teamName", team.Name),
		zap.Int64("orgID", team.OrganizationID))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := nextIDQuery + `
        MATCH (o:` + schedly_neo4j.LabelOrganization + ` {id: $orgId})
        CREATE (t:` + schedly_neo4j.LabelTeam + ` {id: newId})
        SET t += $props
        CREATE (t)-[:` + schedly_neo4j.RelPartOf + `]->(o)
        RETURN t.id as id
        `

		params := map[string]interface{}{
			"seqName": schedly_neo4j.LabelTeam,
			"orgId":   team.OrganizationID,
			"props": map[string]interface{}{
				"name":      team.Name,
				"slug":      team.Slug,
				"orgId":     team.OrganizationID,
				"createdAt": time.Now().Format(time.RFC3339),
				"updatedAt": time.Now().Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		return nil, schedly_errors.ErrOrganizationNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create team",
			zap.Error(err),
			zap.String("teamName", team.Name),
			zap.Duration("duration", duration))
		return 0, err
	}

	teamID := result.(int64)
	logger.Info("Team created successfully",
		zap.Int64("teamID", teamID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUserID(ctx),
		Action:        "CREATE_TEAM",
		OrgID:         team.OrganizationID,
		TeamID:        teamID,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return teamID, nil
}

func (dao *TeamDAO) UpdateTeam(ctx context.Context, team model.Team) (*model.Team, error) {
	start := time.Now()
	logger.Info("Updating team", zap.Int64("teamID", team.ID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (t:` + schedly_neo4j.LabelTeam + ` {id: $id})
        SET t += $props
        RETURN t
        `

		params := map[string]interface{}{
			"id": team.ID,
			"props": map[string]interface{}{
				"name":      team.Name,
				"slug":      team.Slug,
				"updatedAt": time.Now().Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			return teamFromProps(node.Props), nil
		}

		return nil, schedly_errors.ErrTeamNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to update team",
			zap.Error(err),
			zap.Int64("teamID", team.ID),
			zap.Duration("duration", duration))
		return nil, err
	}

	updatedTeam := result.(*model.Team)
	logger.Info("Team updated successfully",
		zap.Int64("teamID", updatedTeam.ID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUserID(ctx),
		Action:        "UPDATE_TEAM",
		OrgID:         updatedTeam.OrganizationID,
		TeamID:        updatedTeam.ID,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return updatedTeam, nil
}

func (dao *TeamDAO) GetTeam(ctx context.Context, teamID int64) (*model.Team, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (t:` + schedly_neo4j.LabelTeam + ` {id: $id})
        RETURN t
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": teamID})
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			return teamFromProps(node.Props), nil
		}

		return nil, schedly_errors.ErrTeamNotFound
	})

	if err != nil {
		return nil, err
	}

	return result.(*model.Team), nil
}

func (dao *TeamDAO) DeleteTeam(ctx context.Context, teamID int64) error {
	start := time.Now()
	logger.Info("Deleting team", zap.Int64("teamID", teamID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (t:` + schedly_neo4j.LabelTeam + ` {id: $id})
        DETACH DELETE t
        RETURN count(t) as deleted
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": teamID})
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		if result.Next() {
			if result.Record().Values[0].(int64) == 0 {
				return nil, schedly_errors.ErrTeamNotFound
			}
			return nil, nil
		}

		return nil, schedly_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to delete team",
			zap.Error(err),
			zap.Int64("teamID", teamID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Team deleted successfully",
		zap.Int64("teamID", teamID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUserID(ctx),
		Action:        "DELETE_TEAM",
		TeamID:        teamID,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *TeamDAO) ListTeamsByOrg(ctx context.Context, orgID int64, limit int, offset int) ([]*model.Team, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (t:` + schedly_neo4j.LabelTeam + `)-[:` + schedly_neo4j.RelPartOf + `]->(o:` + schedly_neo4j.LabelOrganization + ` {id: $orgId})
        RETURN t
        ORDER BY t.id
        SKIP $offset LIMIT $limit
        `
		result, err := transaction.Run(query, map[string]interface{}{
			"orgId":  orgID,
			"limit":  limit,
			"offset": offset,
		})
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		var teams []*model.Team
		for result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			teams = append(teams, teamFromProps(node.Props))
		}
		return teams, nil
	})

	if err != nil {
		return nil, err
	}

	return result.([]*model.Team), nil
}

func teamFromProps(props map[string]interface{}) *model.Team {
	team := &model.Team{}
	if id, ok := props["id"].(int64); ok {
		team.ID = id
	}
	if name, ok := props["name"].(string); ok {
		team.Name = name
	}
	if slug, ok := props["slug"].(string); ok {
		team.Slug = slug
	}
	if orgID, ok := props["orgId"].(int64); ok {
		team.OrganizationID = orgID
	}
	if createdAt, ok := props["createdAt"].(string); ok {
		team.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	}
	if updatedAt, ok := props["updatedAt"].(string); ok {
		team.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	}
	return team
}
