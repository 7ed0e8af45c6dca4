package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"

	"chatmirror/core"
	"chatmirror/models"
)

type PostgresMessagesRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for messages table
var messagesColumns = []string{
	"id",
	"external_id",
	"channel_id",
	"thread_id",
	"user_id",
	"content",
	"created_at",
	"updated_at",
}

func NewPostgresMessagesRepository(db *sqlx.DB, schema string) *PostgresMessagesRepository {
	return &PostgresMessagesRepository{db: db, schema: schema}
}

// UpsertMessage inserts the message or updates its content in place (edits),
// scanning the authoritative row back into message.
func (r *PostgresMessagesRepository) UpsertMessage(ctx context.Context, message *models.Message) error {
	if message.ExternalID == "" {
		return fmt.Errorf("message external ID cannot be empty")
	}

	returningStr := strings.Join(messagesColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.messages (external_id, channel_id, thread_id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (external_id) DO UPDATE SET
			content = EXCLUDED.content,
			updated_at = NOW()
		RETURNING %s`, r.schema, returningStr)

	err := r.db.QueryRowxContext(
		ctx,
		query,
		message.ExternalID,
		message.ChannelID,
		message.ThreadID,
		message.UserID,
		message.Content,
		message.CreatedAt,
	).StructScan(message)
	if err != nil {
		return core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to upsert message: %w", err),
		)
	}

	return nil
}

// GetLatestMessageExternalID returns the external id of the most recently
// created stored message for a channel, or core.ErrNotFound if the channel
// has no stored messages.
func (r *PostgresMessagesRepository) GetLatestMessageExternalID(
	ctx context.Context,
	channelID int64,
) (string, error) {
	query := fmt.Sprintf(`
		SELECT external_id
		FROM %s.messages
		WHERE channel_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, r.schema)

	var externalID string
	err := r.db.QueryRowxContext(ctx, query, channelID).Scan(&externalID)
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return "", core.ErrNotFound
		}
		return "", core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to get latest message external ID: %w", err),
		)
	}

	return externalID, nil
}

// ListChannelMessagesForEmbedding loads a channel's messages in creation
// order, joined with author name and optional thread title.
func (r *PostgresMessagesRepository) ListChannelMessagesForEmbedding(
	ctx context.Context,
	channelID int64,
) ([]*models.ChannelMessageRow, error) {
	query := fmt.Sprintf(`
		SELECT m.external_id AS message_external_id,
		       m.content,
		       m.created_at,
		       u.id AS user_id,
		       u.name AS user_name,
		       m.thread_id,
		       t.title AS thread_title
		FROM %s.messages m
		JOIN %s.users u ON m.user_id = u.id
		LEFT JOIN %s.threads t ON m.thread_id = t.id
		WHERE m.channel_id = $1
		ORDER BY m.created_at ASC`, r.schema, r.schema, r.schema)

	var rows []*models.ChannelMessageRow
	if err := r.db.SelectContext(ctx, &rows, query, channelID); err != nil {
		return nil, core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to list channel messages for embedding: %w", err),
		)
	}

	return rows, nil
}
