package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatmirror/db"
	"chatmirror/testutils"
)

func setupTestService(t *testing.T) (*IdentityService, *sqlx.DB, string, func()) {
	cfg, err := testutils.LoadTestConfig()
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
	}

	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	require.NoError(t, err, "Failed to create database connection")

	identityService := NewIdentityService(
		db.NewPostgresOrganizationsRepository(dbConn, cfg.DatabaseSchema),
		db.NewPostgresServersRepository(dbConn, cfg.DatabaseSchema),
		db.NewPostgresChannelsRepository(dbConn, cfg.DatabaseSchema),
		db.NewPostgresThreadsRepository(dbConn, cfg.DatabaseSchema),
		db.NewPostgresUsersRepository(dbConn, cfg.DatabaseSchema),
		db.NewPostgresRolesRepository(dbConn, cfg.DatabaseSchema),
		db.NewPostgresChannelUsersRepository(dbConn, cfg.DatabaseSchema),
	)

	cleanup := func() {
		dbConn.Close()
	}

	return identityService, dbConn, cfg.DatabaseSchema, cleanup
}

func TestIdentityService(t *testing.T) {
	identityService, dbConn, databaseSchema, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()

	org, err := identityService.EnsureOrganization(ctx, "test-org-"+uuid.New().String())
	require.NoError(t, err, "Failed to create test organization")

	externalID := "test-guild-" + uuid.New().String()
	defer func() {
		_, err := dbConn.Exec("DELETE FROM "+databaseSchema+".servers WHERE external_id = $1", externalID)
		if err != nil {
			t.Logf("⚠️ Failed to cleanup server %s: %v", externalID, err)
		}
		_, err = dbConn.Exec("DELETE FROM "+databaseSchema+".organizations WHERE id = $1", org.ID)
		if err != nil {
			t.Logf("⚠️ Failed to cleanup organization %d: %v", org.ID, err)
		}
	}()

	t.Run("ResolveServer", func(t *testing.T) {
		t.Run("AllocatesStableID", func(t *testing.T) {
			server, err := identityService.ResolveServer(ctx, org.ID, externalID, "Original Name")
			require.NoError(t, err)
			assert.NotZero(t, server.ID)
			assert.Equal(t, externalID, server.ExternalID)

			// Resolving the same external id again must return the same row,
			// with the mutable fields refreshed
			again, err := identityService.ResolveServer(ctx, org.ID, externalID, "Renamed")
			require.NoError(t, err)
			assert.Equal(t, server.ID, again.ID)
			assert.Equal(t, "Renamed", again.Name)

			serversRepo := db.NewPostgresServersRepository(dbConn, databaseSchema)
			stored, err := serversRepo.GetServerByExternalID(ctx, externalID)
			require.NoError(t, err)
			assert.Equal(t, server.ID, stored.ID)
		})
	})

	t.Run("ResolveUser", func(t *testing.T) {
		server, err := identityService.ResolveServer(ctx, org.ID, externalID, "Test Server")
		require.NoError(t, err)

		userExternalID := "test-user-" + uuid.New().String()
		defer func() {
			_, err := dbConn.Exec("DELETE FROM "+databaseSchema+".users WHERE external_id = $1", userExternalID)
			if err != nil {
				t.Logf("⚠️ Failed to cleanup user %s: %v", userExternalID, err)
			}
		}()

		t.Run("FallsBackToUsernameWithoutNickname", func(t *testing.T) {
			user, err := identityService.ResolveUser(ctx, server.ID, userExternalID, "alice", "")
			require.NoError(t, err)
			assert.Equal(t, "alice", user.Name)
			assert.Equal(t, "alice", user.Nickname)
		})

		t.Run("KeepsNicknameWhenPresent", func(t *testing.T) {
			user, err := identityService.ResolveUser(ctx, server.ID, userExternalID, "alice", "ally")
			require.NoError(t, err)
			assert.Equal(t, "ally", user.Nickname)
		})
	})

	t.Run("RecordChannelMembership", func(t *testing.T) {
		server, err := identityService.ResolveServer(ctx, org.ID, externalID, "Test Server")
		require.NoError(t, err)

		channelExternalID := "test-channel-" + uuid.New().String()
		channel, err := identityService.ResolveChannel(ctx, server.ID, channelExternalID, "general")
		require.NoError(t, err)

		userExternalID := "test-user-" + uuid.New().String()
		user, err := identityService.ResolveUser(ctx, server.ID, userExternalID, "bob", "bob")
		require.NoError(t, err)

		defer func() {
			_, _ = dbConn.Exec("DELETE FROM "+databaseSchema+".channel_users WHERE channel_id = $1", channel.ID)
			_, _ = dbConn.Exec("DELETE FROM "+databaseSchema+".users WHERE id = $1", user.ID)
			_, _ = dbConn.Exec("DELETE FROM "+databaseSchema+".channels WHERE id = $1", channel.ID)
		}()

		earlier := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		later := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

		require.NoError(t, identityService.RecordChannelMembership(ctx, channel.ID, user.ID, earlier))
		require.NoError(t, identityService.RecordChannelMembership(ctx, channel.ID, user.ID, later))
		// An older observation must never move joined_at backwards
		require.NoError(t, identityService.RecordChannelMembership(ctx, channel.ID, user.ID, earlier))

		var joinedAt time.Time
		err = dbConn.QueryRow(
			"SELECT joined_at FROM "+databaseSchema+".channel_users WHERE channel_id = $1 AND user_id = $2",
			channel.ID, user.ID,
		).Scan(&joinedAt)
		require.NoError(t, err)
		assert.True(t, joinedAt.Equal(later), "joined_at should stay at the latest observation")
	})
}
