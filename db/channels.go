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

type PostgresChannelsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for channels table
var channelsColumns = []string{
	"id",
	"external_id",
	"server_id",
	"name",
	"created_at",
	"updated_at",
}

func NewPostgresChannelsRepository(db *sqlx.DB, schema string) *PostgresChannelsRepository {
	return &PostgresChannelsRepository{db: db, schema: schema}
}

// UpsertChannel inserts the channel or updates its mutable attributes,
// scanning the authoritative row back into channel.
func (r *PostgresChannelsRepository) UpsertChannel(ctx context.Context, channel *models.Channel) error {
	if channel.ExternalID == "" {
		return fmt.Errorf("channel external ID cannot be empty")
	}

	returningStr := strings.Join(channelsColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.channels (external_id, server_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (external_id) DO UPDATE SET
			server_id = EXCLUDED.server_id,
			name = EXCLUDED.name,
			updated_at = NOW()
		RETURNING %s`, r.schema, returningStr)

	err := r.db.QueryRowxContext(ctx, query, channel.ExternalID, channel.ServerID, channel.Name).
		StructScan(channel)
	if err != nil {
		return core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to upsert channel: %w", err),
		)
	}

	return nil
}

// ListAllChannels returns every stored channel
func (r *PostgresChannelsRepository) ListAllChannels(ctx context.Context) ([]*models.Channel, error) {
	columnsStr := strings.Join(channelsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.channels
		ORDER BY id`, columnsStr, r.schema)

	var channels []*models.Channel
	if err := r.db.SelectContext(ctx, &channels, query); err != nil {
		return nil, core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to list channels: %w", err),
		)
	}

	return channels, nil
}

// ListChannelsWithMessages returns channels that have at least one stored
// message
func (r *PostgresChannelsRepository) ListChannelsWithMessages(ctx context.Context) ([]*models.Channel, error) {
	columnsStr := strings.Join(channelsColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.channels
		WHERE id IN (SELECT DISTINCT channel_id FROM %s.messages)
		ORDER BY id`, columnsStr, r.schema, r.schema)

	var channels []*models.Channel
	if err := r.db.SelectContext(ctx, &channels, query); err != nil {
		return nil, core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to list channels with messages: %w", err),
		)
	}

	return channels, nil
}
