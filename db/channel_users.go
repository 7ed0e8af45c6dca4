package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"

	"chatmirror/core"
)

type PostgresChannelUsersRepository struct {
	db     *sqlx.DB
	schema string
}

func NewPostgresChannelUsersRepository(db *sqlx.DB, schema string) *PostgresChannelUsersRepository {
	return &PostgresChannelUsersRepository{db: db, schema: schema}
}

// UpsertChannelUser records a user's participation in a channel. joined_at is
// monotonically advanced to the latest observed activity, never backwards.
func (r *PostgresChannelUsersRepository) UpsertChannelUser(
	ctx context.Context,
	channelID, userID int64,
	joinedAt time.Time,
) error {
	query := fmt.Sprintf(`
		INSERT INTO %s.channel_users (channel_id, user_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (channel_id, user_id) DO UPDATE SET
			joined_at = GREATEST(channel_users.joined_at, EXCLUDED.joined_at)`, r.schema)

	if _, err := r.db.ExecContext(ctx, query, channelID, userID, joinedAt); err != nil {
		return core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to upsert channel user: %w", err),
		)
	}

	return nil
}
