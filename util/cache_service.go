// api/util/cache_service.go

package util

import (
	"context"

	"github.com/schedly/api/db"
	"github.com/schedly/api/model"
)

// CacheService fronts the Redis entity caches. Guard decision keys are a
// separate keyspace and are never touched here: decision staleness is
// bounded by the guard's own TTL, not by entity invalidation.
type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) SetOrganization(ctx context.Context, organization model.Organization) error {
	return db.CacheOrganization(ctx, &organization)
}

func (c *CacheService) DeleteOrganization(ctx context.Context, organizationID int64) error {
	return db.DeleteCachedOrganization(ctx, organizationID)
}

func (c *CacheService) GetOrganization(ctx context.Context, organizationID int64) (*model.Organization, error) {
	return db.GetCachedOrganization(ctx, organizationID)
}

func (c *CacheService) SetTeam(ctx context.Context, team model.Team) error {
	return db.CacheTeam(ctx, &team)
}

func (c *CacheService) DeleteTeam(ctx context.Context, teamID int64) error {
	return db.DeleteCachedTeam(ctx, teamID)
}

func (c *CacheService) GetTeam(ctx context.Context, teamID int64) (*model.Team, error) {
	return db.GetCachedTeam(ctx, teamID)
}

func (c *CacheService) SetUser(ctx context.Context, user model.User) error {
	return db.CacheUser(ctx, &user)
}

func (c *CacheService) DeleteUser(ctx context.Context, userID int64) error {
	return db.DeleteCachedUser(ctx, userID)
}

func (c *CacheService) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	return db.GetCachedUser(ctx, userID)
}
