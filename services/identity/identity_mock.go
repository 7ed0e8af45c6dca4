package identity

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"chatmirror/models"
)

// MockIdentityService implements services.IdentityService for testing
type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) EnsureOrganization(ctx context.Context, name string) (*models.Organization, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockIdentityService) ResolveServer(
	ctx context.Context,
	organizationID int64,
	externalID, name string,
) (*models.Server, error) {
	args := m.Called(ctx, organizationID, externalID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Server), args.Error(1)
}

func (m *MockIdentityService) ResolveChannel(
	ctx context.Context,
	serverID int64,
	externalID, name string,
) (*models.Channel, error) {
	args := m.Called(ctx, serverID, externalID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Channel), args.Error(1)
}

func (m *MockIdentityService) ResolveThread(
	ctx context.Context,
	channelID int64,
	externalID, title, description string,
	createdAt time.Time,
) (*models.Thread, error) {
	args := m.Called(ctx, channelID, externalID, title, description, createdAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Thread), args.Error(1)
}

func (m *MockIdentityService) ResolveUser(
	ctx context.Context,
	serverID int64,
	externalID, name, nickname string,
) (*models.User, error) {
	args := m.Called(ctx, serverID, externalID, name, nickname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockIdentityService) ResolveRole(ctx context.Context, name, description string) (*models.Role, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *MockIdentityService) RecordChannelMembership(
	ctx context.Context,
	channelID, userID int64,
	joinedAt time.Time,
) error {
	args := m.Called(ctx, channelID, userID, joinedAt)
	return args.Error(0)
}
