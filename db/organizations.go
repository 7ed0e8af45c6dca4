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

type PostgresOrganizationsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for organizations table
var organizationsColumns = []string{
	"id",
	"name",
	"created_at",
}

func NewPostgresOrganizationsRepository(db *sqlx.DB, schema string) *PostgresOrganizationsRepository {
	return &PostgresOrganizationsRepository{db: db, schema: schema}
}

// GetOrCreateOrganization resolves an organization by name, creating it on
// first sight. The surrogate id is stable across calls.
func (r *PostgresOrganizationsRepository) GetOrCreateOrganization(
	ctx context.Context,
	name string,
) (*models.Organization, error) {
	if name == "" {
		return nil, fmt.Errorf("organization name cannot be empty")
	}

	returningStr := strings.Join(organizationsColumns, ", ")

	// DO UPDATE instead of DO NOTHING so the existing row is returned on
	// conflict
	query := fmt.Sprintf(`
		INSERT INTO %s.organizations (name, created_at)
		VALUES ($1, NOW())
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING %s`, r.schema, returningStr)

	org := &models.Organization{}
	if err := r.db.QueryRowxContext(ctx, query, name).StructScan(org); err != nil {
		return nil, core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to get or create organization: %w", err),
		)
	}

	return org, nil
}
