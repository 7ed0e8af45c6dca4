package testutils

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"chatmirror/config"
	"chatmirror/db"
	"chatmirror/models"
)

// LoadTestConfig loads configuration for tests from environment variables
func LoadTestConfig() (*config.AppConfig, error) {
	// Try to load environment variables from various possible locations
	_ = godotenv.Load("../.env.test") // From package directories
	_ = godotenv.Load(".env.test")    // From root directory
	_ = godotenv.Load()               // Default .env file

	databaseURL := os.Getenv("DB_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DB_URL is not set")
	}

	databaseSchema := os.Getenv("DB_SCHEMA")
	if databaseSchema == "" {
		return nil, fmt.Errorf("DB_SCHEMA is not set")
	}

	return &config.AppConfig{
		DatabaseURL:    databaseURL,
		DatabaseSchema: databaseSchema,
	}, nil
}

// CreateTestOrganization creates an organization with a unique name to avoid
// constraint violations between test runs
func CreateTestOrganization(
	t *testing.T,
	organizationsRepo *db.PostgresOrganizationsRepository,
) *models.Organization {
	name := "test-org-" + uuid.New().String()
	org, err := organizationsRepo.GetOrCreateOrganization(context.Background(), name)
	require.NoError(t, err, "Failed to create test organization")
	return org
}

// CreateTestServer creates a server with a unique external id under the given
// organization
func CreateTestServer(
	t *testing.T,
	serversRepo *db.PostgresServersRepository,
	organizationID int64,
) *models.Server {
	server := &models.Server{
		ExternalID:     "test-guild-" + uuid.New().String(),
		OrganizationID: organizationID,
		Name:           "Test Server",
	}
	err := serversRepo.UpsertServer(context.Background(), server)
	require.NoError(t, err, "Failed to create test server")
	return server
}

// CreateTestChannel creates a channel with a unique external id under the
// given server
func CreateTestChannel(
	t *testing.T,
	channelsRepo *db.PostgresChannelsRepository,
	serverID int64,
) *models.Channel {
	channel := &models.Channel{
		ExternalID: "test-channel-" + uuid.New().String(),
		ServerID:   serverID,
		Name:       "test-channel",
	}
	err := channelsRepo.UpsertChannel(context.Background(), channel)
	require.NoError(t, err, "Failed to create test channel")
	return channel
}

// CreateTestUser creates a user with a unique external id under the given
// server
func CreateTestUser(
	t *testing.T,
	usersRepo *db.PostgresUsersRepository,
	serverID int64,
) *models.User {
	user := &models.User{
		ExternalID: "test-user-" + uuid.New().String(),
		ServerID:   serverID,
		Name:       "testuser",
		Nickname:   "testuser",
	}
	err := usersRepo.UpsertUser(context.Background(), user)
	require.NoError(t, err, "Failed to create test user")
	return user
}
