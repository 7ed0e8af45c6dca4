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

type PostgresReactionsRepository struct {
	db     *sqlx.DB
	schema string
}

func NewPostgresReactionsRepository(db *sqlx.DB, schema string) *PostgresReactionsRepository {
	return &PostgresReactionsRepository{db: db, schema: schema}
}

// UpsertReaction records one user's emoji reaction to a message. Keyed by
// (message, user, emoji), so repeated observations are no-ops.
func (r *PostgresReactionsRepository) UpsertReaction(
	ctx context.Context,
	messageID, userID int64,
	reactionType string,
	createdAt time.Time,
) error {
	if reactionType == "" {
		return fmt.Errorf("reaction type cannot be empty")
	}

	query := fmt.Sprintf(`
		INSERT INTO %s.message_reactions (message_id, user_id, reaction_type, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (message_id, user_id, reaction_type) DO NOTHING`, r.schema)

	if _, err := r.db.ExecContext(ctx, query, messageID, userID, reactionType, createdAt); err != nil {
		return core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to upsert reaction: %w", err),
		)
	}

	return nil
}
