package identity

import (
	"context"
	"fmt"
	"log"
	"time"

	"chatmirror/db"
	"chatmirror/models"
)

// IdentityService resolves external entities to relational rows. The database
// is the single owner of surrogate id allocation; every resolve is a single
// atomic insert-or-update that returns the authoritative id.
type IdentityService struct {
	organizationsRepo *db.PostgresOrganizationsRepository
	serversRepo       *db.PostgresServersRepository
	channelsRepo      *db.PostgresChannelsRepository
	threadsRepo       *db.PostgresThreadsRepository
	usersRepo         *db.PostgresUsersRepository
	rolesRepo         *db.PostgresRolesRepository
	channelUsersRepo  *db.PostgresChannelUsersRepository
}

func NewIdentityService(
	organizationsRepo *db.PostgresOrganizationsRepository,
	serversRepo *db.PostgresServersRepository,
	channelsRepo *db.PostgresChannelsRepository,
	threadsRepo *db.PostgresThreadsRepository,
	usersRepo *db.PostgresUsersRepository,
	rolesRepo *db.PostgresRolesRepository,
	channelUsersRepo *db.PostgresChannelUsersRepository,
) *IdentityService {
	return &IdentityService{
		organizationsRepo: organizationsRepo,
		serversRepo:       serversRepo,
		channelsRepo:      channelsRepo,
		threadsRepo:       threadsRepo,
		usersRepo:         usersRepo,
		rolesRepo:         rolesRepo,
		channelUsersRepo:  channelUsersRepo,
	}
}

func (s *IdentityService) EnsureOrganization(ctx context.Context, name string) (*models.Organization, error) {
	log.Printf("📋 Starting to ensure organization: %s", name)

	if name == "" {
		return nil, fmt.Errorf("organization name cannot be empty")
	}

	org, err := s.organizationsRepo.GetOrCreateOrganization(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure organization: %w", err)
	}

	log.Printf("📋 Completed successfully - organization %s has ID %d", org.Name, org.ID)
	return org, nil
}

func (s *IdentityService) ResolveServer(
	ctx context.Context,
	organizationID int64,
	externalID, name string,
) (*models.Server, error) {
	log.Printf("📋 Starting to resolve server %s (%s)", name, externalID)

	server := &models.Server{
		ExternalID:     externalID,
		OrganizationID: organizationID,
		Name:           name,
	}
	if err := s.serversRepo.UpsertServer(ctx, server); err != nil {
		return nil, fmt.Errorf("failed to resolve server %s: %w", externalID, err)
	}

	log.Printf("📋 Completed successfully - server %s has ID %d", server.Name, server.ID)
	return server, nil
}

func (s *IdentityService) ResolveChannel(
	ctx context.Context,
	serverID int64,
	externalID, name string,
) (*models.Channel, error) {
	channel := &models.Channel{
		ExternalID: externalID,
		ServerID:   serverID,
		Name:       name,
	}
	if err := s.channelsRepo.UpsertChannel(ctx, channel); err != nil {
		return nil, fmt.Errorf("failed to resolve channel %s: %w", externalID, err)
	}

	return channel, nil
}

func (s *IdentityService) ResolveThread(
	ctx context.Context,
	channelID int64,
	externalID, title, description string,
	createdAt time.Time,
) (*models.Thread, error) {
	thread := &models.Thread{
		ExternalID:  externalID,
		ChannelID:   channelID,
		Title:       title,
		Description: description,
		CreatedAt:   createdAt,
	}
	if err := s.threadsRepo.UpsertThread(ctx, thread); err != nil {
		return nil, fmt.Errorf("failed to resolve thread %s: %w", externalID, err)
	}

	return thread, nil
}

func (s *IdentityService) ResolveUser(
	ctx context.Context,
	serverID int64,
	externalID, name, nickname string,
) (*models.User, error) {
	if nickname == "" {
		nickname = name
	}

	user := &models.User{
		ExternalID: externalID,
		ServerID:   serverID,
		Name:       name,
		Nickname:   nickname,
	}
	if err := s.usersRepo.UpsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to resolve user %s: %w", externalID, err)
	}

	return user, nil
}

func (s *IdentityService) ResolveRole(ctx context.Context, name, description string) (*models.Role, error) {
	role := &models.Role{
		Name:        name,
		Description: description,
	}
	if err := s.rolesRepo.UpsertRole(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to resolve role %s: %w", name, err)
	}

	return role, nil
}

func (s *IdentityService) RecordChannelMembership(
	ctx context.Context,
	channelID, userID int64,
	joinedAt time.Time,
) error {
	if err := s.channelUsersRepo.UpsertChannelUser(ctx, channelID, userID, joinedAt); err != nil {
		return fmt.Errorf("failed to record channel membership: %w", err)
	}
	return nil
}
