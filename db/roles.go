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

type PostgresRolesRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for roles table
var rolesColumns = []string{
	"id",
	"name",
	"description",
	"created_at",
}

func NewPostgresRolesRepository(db *sqlx.DB, schema string) *PostgresRolesRepository {
	return &PostgresRolesRepository{db: db, schema: schema}
}

// UpsertRole inserts the role or updates its description, scanning the
// authoritative row back into role. Roles are keyed by name.
func (r *PostgresRolesRepository) UpsertRole(ctx context.Context, role *models.Role) error {
	if role.Name == "" {
		return fmt.Errorf("role name cannot be empty")
	}

	returningStr := strings.Join(rolesColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.roles (name, description, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description
		RETURNING %s`, r.schema, returningStr)

	err := r.db.QueryRowxContext(ctx, query, role.Name, role.Description).StructScan(role)
	if err != nil {
		return core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to upsert role: %w", err),
		)
	}

	return nil
}
