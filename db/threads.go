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

type PostgresThreadsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for threads table
var threadsColumns = []string{
	"id",
	"external_id",
	"channel_id",
	"title",
	"description",
	"created_at",
	"updated_at",
}

func NewPostgresThreadsRepository(db *sqlx.DB, schema string) *PostgresThreadsRepository {
	return &PostgresThreadsRepository{db: db, schema: schema}
}

// UpsertThread inserts the thread or updates its title/description, scanning
// the authoritative row back into thread. The parent channel row must exist.
func (r *PostgresThreadsRepository) UpsertThread(ctx context.Context, thread *models.Thread) error {
	if thread.ExternalID == "" {
		return fmt.Errorf("thread external ID cannot be empty")
	}

	returningStr := strings.Join(threadsColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.threads (external_id, channel_id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (external_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			updated_at = NOW()
		RETURNING %s`, r.schema, returningStr)

	err := r.db.QueryRowxContext(
		ctx,
		query,
		thread.ExternalID,
		thread.ChannelID,
		thread.Title,
		thread.Description,
		thread.CreatedAt,
	).StructScan(thread)
	if err != nil {
		return core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to upsert thread: %w", err),
		)
	}

	return nil
}
