package messages

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatmirror/db"
	"chatmirror/models"
	"chatmirror/testutils"
)

type testFixture struct {
	messagesService *MessagesService
	threadsRepo     *db.PostgresThreadsRepository
	dbConn          *sqlx.DB
	schema          string

	server  *models.Server
	channel *models.Channel
	user    *models.User
}

func setupTestFixture(t *testing.T) (*testFixture, func()) {
	cfg, err := testutils.LoadTestConfig()
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
	}

	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	require.NoError(t, err, "Failed to create database connection")

	organizationsRepo := db.NewPostgresOrganizationsRepository(dbConn, cfg.DatabaseSchema)
	serversRepo := db.NewPostgresServersRepository(dbConn, cfg.DatabaseSchema)
	channelsRepo := db.NewPostgresChannelsRepository(dbConn, cfg.DatabaseSchema)
	usersRepo := db.NewPostgresUsersRepository(dbConn, cfg.DatabaseSchema)
	threadsRepo := db.NewPostgresThreadsRepository(dbConn, cfg.DatabaseSchema)

	messagesService := NewMessagesService(
		db.NewPostgresMessagesRepository(dbConn, cfg.DatabaseSchema),
		channelsRepo,
		db.NewPostgresAttachmentsRepository(dbConn, cfg.DatabaseSchema),
		db.NewPostgresReactionsRepository(dbConn, cfg.DatabaseSchema),
		db.NewPostgresMentionsRepository(dbConn, cfg.DatabaseSchema),
	)

	org := testutils.CreateTestOrganization(t, organizationsRepo)
	server := testutils.CreateTestServer(t, serversRepo, org.ID)
	channel := testutils.CreateTestChannel(t, channelsRepo, server.ID)
	user := testutils.CreateTestUser(t, usersRepo, server.ID)

	f := &testFixture{
		messagesService: messagesService,
		threadsRepo:     threadsRepo,
		dbConn:          dbConn,
		schema:          cfg.DatabaseSchema,
		server:          server,
		channel:         channel,
		user:            user,
	}

	cleanup := func() {
		for _, stmt := range []string{
			"DELETE FROM " + cfg.DatabaseSchema + ".messages WHERE channel_id = $1",
			"DELETE FROM " + cfg.DatabaseSchema + ".threads WHERE channel_id = $1",
		} {
			if _, err := dbConn.Exec(stmt, channel.ID); err != nil {
				t.Logf("⚠️ Cleanup failed: %v", err)
			}
		}
		_, _ = dbConn.Exec("DELETE FROM "+cfg.DatabaseSchema+".users WHERE id = $1", user.ID)
		_, _ = dbConn.Exec("DELETE FROM "+cfg.DatabaseSchema+".channels WHERE id = $1", channel.ID)
		_, _ = dbConn.Exec("DELETE FROM "+cfg.DatabaseSchema+".servers WHERE id = $1", server.ID)
		_, _ = dbConn.Exec("DELETE FROM "+cfg.DatabaseSchema+".organizations WHERE id = $1", org.ID)
		dbConn.Close()
	}

	return f, cleanup
}

func (f *testFixture) upsertMessage(t *testing.T, externalID, content string, createdAt time.Time) *models.Message {
	message := &models.Message{
		ExternalID: externalID,
		ChannelID:  f.channel.ID,
		UserID:     f.user.ID,
		Content:    content,
		CreatedAt:  createdAt,
	}
	require.NoError(t, f.messagesService.UpsertMessage(context.Background(), message))
	return message
}

func TestMessagesService(t *testing.T) {
	f, cleanup := setupTestFixture(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("UpsertMessage", func(t *testing.T) {
		externalID := "test-msg-" + uuid.New().String()
		createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

		first := f.upsertMessage(t, externalID, "original", createdAt)
		assert.NotZero(t, first.ID)

		// Re-upserting the same external id must keep the surrogate id and
		// update the content in place
		second := f.upsertMessage(t, externalID, "edited", createdAt)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "edited", second.Content)
	})

	t.Run("GetLatestMessageExternalID", func(t *testing.T) {
		t.Run("AbsentForEmptyChannel", func(t *testing.T) {
			emptyChannel := testutils.CreateTestChannel(
				t, db.NewPostgresChannelsRepository(f.dbConn, f.schema), f.server.ID)
			defer func() {
				_, _ = f.dbConn.Exec("DELETE FROM "+f.schema+".channels WHERE id = $1", emptyChannel.ID)
			}()

			maybeLatest, err := f.messagesService.GetLatestMessageExternalID(ctx, emptyChannel.ID)
			require.NoError(t, err)
			assert.True(t, maybeLatest.IsAbsent())
		})

		t.Run("ReturnsNewestByCreationTime", func(t *testing.T) {
			olderID := "test-msg-" + uuid.New().String()
			newerID := "test-msg-" + uuid.New().String()
			f.upsertMessage(t, olderID, "older", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
			f.upsertMessage(t, newerID, "newer", time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC))

			maybeLatest, err := f.messagesService.GetLatestMessageExternalID(ctx, f.channel.ID)
			require.NoError(t, err)
			require.True(t, maybeLatest.IsPresent())
			assert.Equal(t, newerID, maybeLatest.MustGet())
		})
	})

	t.Run("ListChannelMessagesForEmbedding", func(t *testing.T) {
		thread := &models.Thread{
			ExternalID: "test-thread-" + uuid.New().String(),
			ChannelID:  f.channel.ID,
			Title:      "Bug Triage",
			CreatedAt:  time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
		}
		require.NoError(t, f.threadsRepo.UpsertThread(ctx, thread))

		threadMsg := &models.Message{
			ExternalID: "test-msg-" + uuid.New().String(),
			ChannelID:  f.channel.ID,
			ThreadID:   &thread.ID,
			UserID:     f.user.ID,
			Content:    "inside the thread",
			CreatedAt:  time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
		}
		require.NoError(t, f.messagesService.UpsertMessage(ctx, threadMsg))

		rows, err := f.messagesService.ListChannelMessagesForEmbedding(ctx, f.channel.ID)
		require.NoError(t, err)
		require.NotEmpty(t, rows)

		// Creation order, oldest first
		for i := 1; i < len(rows); i++ {
			assert.False(t, rows[i].CreatedAt.Before(rows[i-1].CreatedAt),
				"rows must be ordered by created_at ascending")
		}

		last := rows[len(rows)-1]
		assert.Equal(t, threadMsg.ExternalID, last.MessageExternalID)
		require.NotNil(t, last.ThreadTitle)
		assert.Equal(t, "Bug Triage", *last.ThreadTitle)
		assert.Equal(t, f.user.Name, last.UserName)
	})
}
