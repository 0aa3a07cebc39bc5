package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/schedly/api/audit"
	schedly_errors "github.com/schedly/api/errors"
	logger "github.com/schedly/api/logging"
	"github.com/schedly/api/model"
	schedly_neo4j "github.com/schedly/api/model/neo4j"
)

type OrganizationDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewOrganizationDAO(driver neo4j.Driver, auditService audit.Service) *OrganizationDAO {
	dao := &OrganizationDAO{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Organization", zap.Error(err))
	}
	return dao
}

func (dao *OrganizationDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on Organization ID")
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_org_id IF NOT EXISTS
        FOR (o:` + schedly_neo4j.LabelOrganization + `) REQUIRE o.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on Organization ID", zap.Error(err))
		return err
	}

	return nil
}

func (dao *OrganizationDAO) CreateOrganization(ctx context.Context, org model.Organization) (int64, error) {
	start := time.Now()
	logger.Info("Creating new organization", zap.String("orgName", org.Name))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := nextIDQuery + `
        CREATE (o:` + schedly_neo4j.LabelOrganization + ` {id: newId})
        SET o += $props
        RETURN o.id as id
        `

		params := map[string]interface{}{
			"seqName": schedly_neo4j.LabelOrganization,
			"props": map[string]interface{}{
				"name":              org.Name,
				"slug":              org.Slug,
				"isAdminAPIEnabled": org.IsAdminAPIEnabled,
				"createdAt":         time.Now().Format(time.RFC3339),
				"updatedAt":         time.Now().Format(time.RFC3339),
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
		logger.Error("Failed to create organization",
			zap.Error(err),
			zap.String("orgName", org.Name),
			zap.Duration("duration", duration))
		return 0, err
	}

	orgID := result.(int64)
	logger.Info("Organization created successfully",
		zap.Int64("orgID", orgID),
		zap.Duration("duration", duration))

	// Audit trail
	org.ID = orgID
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUserID(ctx),
		Action:        "CREATE_ORGANIZATION",
		OrgID:         orgID,
		AccessGranted: true,
		ChangeDetails: createOrgChangeDetails(nil, &org),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return orgID, nil
}

func (dao *OrganizationDAO) UpdateOrganization(ctx context.Context, org model.Organization) (*model.Organization, error) {
	start := time.Now()
	logger.Info("Updating organization", zap.Int64("orgID", org.ID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	oldOrg, err := dao.GetOrganization(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (o:` + schedly_neo4j.LabelOrganization + ` {id: $id})
        SET o += $props
        RETURN o
        `

		params := map[string]interface{}{
			"id": org.ID,
			"props": map[string]interface{}{
				"name":              org.Name,
				"slug":              org.Slug,
				"isAdminAPIEnabled": org.IsAdminAPIEnabled,
				"updatedAt":         time.Now().Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			return organizationFromProps(node.Props), nil
		}

		return nil, schedly_errors.ErrOrganizationNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to update organization",
			zap.Error(err),
			zap.Int64("orgID", org.ID),
			zap.Duration("duration", duration))
		return nil, err
	}

	updatedOrg := result.(*model.Organization)
	logger.Info("Organization updated successfully",
		zap.Int64("orgID", updatedOrg.ID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUserID(ctx),
		Action:        "UPDATE_ORGANIZATION",
		OrgID:         updatedOrg.ID,
		AccessGranted: true,
		ChangeDetails: createOrgChangeDetails(oldOrg, updatedOrg),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return updatedOrg, nil
}

func (dao *OrganizationDAO) GetOrganization(ctx context.Context, orgID int64) (*model.Organization, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (o:` + schedly_neo4j.LabelOrganization + ` {id: $id})
        RETURN o
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": orgID})
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			return organizationFromProps(node.Props), nil
		}

		return nil, schedly_errors.ErrOrganizationNotFound
	})

	if err != nil {
		return nil, err
	}

	return result.(*model.Organization), nil
}

// FetchOrgAdminAPIStatus reports whether the organization has opted into
// Admin API access. Consumed by the roles guard as a prerequisite gate.
func (dao *OrganizationDAO) FetchOrgAdminAPIStatus(ctx context.Context, orgID int64) (bool, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (o:` + schedly_neo4j.LabelOrganization + ` {id: $id})
        RETURN coalesce(o.isAdminAPIEnabled, false) as enabled
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": orgID})
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		return nil, schedly_errors.ErrOrganizationNotFound
	})

	if err != nil {
		return false, err
	}

	return result.(bool), nil
}

func (dao *OrganizationDAO) DeleteOrganization(ctx context.Context, orgID int64) error {
	start := time.Now()
	logger.Info("Deleting organization", zap.Int64("orgID", orgID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (o:` + schedly_neo4j.LabelOrganization + ` {id: $id})
        DETACH DELETE o
        RETURN count(o) as deleted
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": orgID})
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		if result.Next() {
			if result.Record().Values[0].(int64) == 0 {
				return nil, schedly_errors.ErrOrganizationNotFound
			}
			return nil, nil
		}

		return nil, schedly_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to delete organization",
			zap.Error(err),
			zap.Int64("orgID", orgID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Organization deleted successfully",
		zap.Int64("orgID", orgID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUserID(ctx),
		Action:        "DELETE_ORGANIZATION",
		OrgID:         orgID,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *OrganizationDAO) ListOrganizations(ctx context.Context, limit int, offset int) ([]*model.Organization, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (o:` + schedly_neo4j.LabelOrganization + `)
        RETURN o
        ORDER BY o.id
        SKIP $offset LIMIT $limit
        `
		result, err := transaction.Run(query, map[string]interface{}{
			"limit":  limit,
			"offset": offset,
		})
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		var orgs []*model.Organization
		for result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			orgs = append(orgs, organizationFromProps(node.Props))
		}
		return orgs, nil
	})

	if err != nil {
		return nil, err
	}

	return result.([]*model.Organization), nil
}

func (dao *OrganizationDAO) SearchOrganizations(ctx context.Context, criteria model.OrganizationSearchCriteria) ([]*model.Organization, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	var queryBuilder strings.Builder
	queryBuilder.WriteString("MATCH (o:" + schedly_neo4j.LabelOrganization + ") WHERE 1=1")

	params := make(map[string]interface{})

	if criteria.Name != "" {
		queryBuilder.WriteString(" AND toLower(o.name) CONTAINS toLower($name)")
		params["name"] = criteria.Name
	}

	if criteria.Slug != "" {
		queryBuilder.WriteString(" AND o.slug = $slug")
		params["slug"] = criteria.Slug
	}

	if criteria.FromDate != nil {
		queryBuilder.WriteString(" AND o.createdAt >= $fromDate")
		params["fromDate"] = criteria.FromDate.Format(time.RFC3339)
	}

	if criteria.ToDate != nil {
		queryBuilder.WriteString(" AND o.createdAt <= $toDate")
		params["toDate"] = criteria.ToDate.Format(time.RFC3339)
	}

	queryBuilder.WriteString(" RETURN o")

	switch criteria.SortBy {
	case "name", "slug", "createdAt":
		queryBuilder.WriteString(" ORDER BY o." + criteria.SortBy)
		if strings.EqualFold(criteria.SortOrder, "desc") {
			queryBuilder.WriteString(" DESC")
		} else {
			queryBuilder.WriteString(" ASC")
		}
	case "":
		queryBuilder.WriteString(" ORDER BY o.createdAt DESC")
	default:
		return nil, schedly_errors.ErrInvalidSearchCriteria
	}

	if criteria.Offset > 0 {
		queryBuilder.WriteString(" SKIP $offset")
		params["offset"] = criteria.Offset
	}

	if criteria.Limit > 0 {
		queryBuilder.WriteString(" LIMIT $limit")
		params["limit"] = criteria.Limit
	}

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		result, err := transaction.Run(queryBuilder.String(), params)
		if err != nil {
			return nil, schedly_errors.ErrDatabaseOperation
		}

		var orgs []*model.Organization
		for result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			orgs = append(orgs, organizationFromProps(node.Props))
		}
		return orgs, nil
	})

	if err != nil {
		logger.Error("Failed to search organizations", zap.Error(err), zap.Any("criteria", criteria))
		return nil, err
	}

	return result.([]*model.Organization), nil
}

func organizationFromProps(props map[string]interface{}) *model.Organization {
	org := &model.Organization{}
	if id, ok := props["id"].(int64); ok {
		org.ID = id
	}
	if name, ok := props["name"].(string); ok {
		org.Name = name
	}
	if slug, ok := props["slug"].(string); ok {
		org.Slug = slug
	}
	if enabled, ok := props["isAdminAPIEnabled"].(bool); ok {
		org.IsAdminAPIEnabled = enabled
	}
	if createdAt, ok := props["createdAt"].(string); ok {
		org.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	}
	if updatedAt, ok := props["updatedAt"].(string); ok {
		org.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	}
	return org
}

func createOrgChangeDetails(oldOrg, newOrg *model.Organization) json.RawMessage {
	details := map[string]interface{}{
		"old": oldOrg,
		"new": newOrg,
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		logger.Error("Failed to marshal organization change details", zap.Error(err))
		return nil
	}
	return detailsJSON
}
