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

type PostgresUsersRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for users table
var usersColumns = []string{
	"id",
	"external_id",
	"server_id",
	"name",
	"nickname",
	"created_at",
	"updated_at",
}

func NewPostgresUsersRepository(db *sqlx.DB, schema string) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db, schema: schema}
}

// UpsertUser inserts the user or updates name/nickname/server, scanning the
// authoritative row (including the stable surrogate id) back into user.
func (r *PostgresUsersRepository) UpsertUser(ctx context.Context, user *models.User) error {
	if user.ExternalID == "" {
		return fmt.Errorf("user external ID cannot be empty")
	}

	returningStr := strings.Join(usersColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.users (external_id, server_id, name, nickname, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (external_id) DO UPDATE SET
			server_id = EXCLUDED.server_id,
			name = EXCLUDED.name,
			nickname = EXCLUDED.nickname,
			updated_at = NOW()
		RETURNING %s`, r.schema, returningStr)

	err := r.db.QueryRowxContext(ctx, query, user.ExternalID, user.ServerID, user.Name, user.Nickname).
		StructScan(user)
	if err != nil {
		return core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to upsert user: %w", err),
		)
	}

	return nil
}
