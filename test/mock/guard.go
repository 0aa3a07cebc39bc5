// test/mock/guard.go
package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/schedly/api/model"
)

// MockMembershipRepository is a mock implementation of engine.MembershipRepository
type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) FindMembershipByOrg(ctx context.Context, orgID, userID int64) (*model.Membership, error) {
	args := m.Called(ctx, orgID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Membership), args.Error(1)
}

func (m *MockMembershipRepository) FindMembershipByTeam(ctx context.Context, teamID, userID int64) (*model.Membership, error) {
	args := m.Called(ctx, teamID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Membership), args.Error(1)
}

// MockOrganizationRepository is a mock implementation of engine.OrganizationRepository
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) FetchOrgAdminAPIStatus(ctx context.Context, orgID int64) (bool, error) {
	args := m.Called(ctx, orgID)
	return args.Bool(0), args.Error(1)
}

// MockDecisionCache is a mock implementation of engine.DecisionCache
type MockDecisionCache struct {
	mock.Mock
}

func (m *MockDecisionCache) Get(ctx context.Context, key string) (*bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bool), args.Error(1)
}

func (m *MockDecisionCache) Set(ctx context.Context, key string, allowed bool, ttl time.Duration) error {
	args := m.Called(ctx, key, allowed, ttl)
	return args.Error(0)
}
