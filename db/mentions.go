package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"

	"chatmirror/core"
	"chatmirror/models"
)

type PostgresMentionsRepository struct {
	db     *sqlx.DB
	schema string
}

func NewPostgresMentionsRepository(db *sqlx.DB, schema string) *PostgresMentionsRepository {
	return &PostgresMentionsRepository{db: db, schema: schema}
}

// UpsertMention records a mention inside a message. The unique constraint is
// NULLS NOT DISTINCT, so "all"/"here" mentions (nil target) are also
// idempotent across runs.
func (r *PostgresMentionsRepository) UpsertMention(
	ctx context.Context,
	messageID int64,
	mentionType models.MentionType,
	targetExternalID *string,
) error {
	query := fmt.Sprintf(`
		INSERT INTO %s.message_mentions (message_id, mention_type, target_external_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (message_id, mention_type, target_external_id) DO NOTHING`, r.schema)

	if _, err := r.db.ExecContext(ctx, query, messageID, mentionType, targetExternalID); err != nil {
		return core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to upsert mention: %w", err),
		)
	}

	return nil
}
