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

type PostgresAttachmentsRepository struct {
	db     *sqlx.DB
	schema string
}

func NewPostgresAttachmentsRepository(db *sqlx.DB, schema string) *PostgresAttachmentsRepository {
	return &PostgresAttachmentsRepository{db: db, schema: schema}
}

// UpsertAttachment records a message attachment. Attachments have no mutable
// attributes, so conflicts are ignored.
func (r *PostgresAttachmentsRepository) UpsertAttachment(
	ctx context.Context,
	messageID int64,
	url string,
	createdAt time.Time,
) error {
	if url == "" {
		return fmt.Errorf("attachment URL cannot be empty")
	}

	query := fmt.Sprintf(`
		INSERT INTO %s.message_attachments (message_id, url, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id, url) DO NOTHING`, r.schema)

	if _, err := r.db.ExecContext(ctx, query, messageID, url, createdAt); err != nil {
		return core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to upsert attachment: %w", err),
		)
	}

	return nil
}
