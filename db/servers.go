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

type PostgresServersRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for servers table
var serversColumns = []string{
	"id",
	"external_id",
	"organization_id",
	"name",
	"created_at",
	"updated_at",
}

func NewPostgresServersRepository(db *sqlx.DB, schema string) *PostgresServersRepository {
	return &PostgresServersRepository{db: db, schema: schema}
}

// UpsertServer inserts the server or updates its mutable attributes, scanning
// the authoritative row (including the stable surrogate id) back into server.
func (r *PostgresServersRepository) UpsertServer(ctx context.Context, server *models.Server) error {
	if server.ExternalID == "" {
		return fmt.Errorf("server external ID cannot be empty")
	}

	returningStr := strings.Join(serversColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.servers (external_id, organization_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (external_id) DO UPDATE SET
			organization_id = EXCLUDED.organization_id,
			name = EXCLUDED.name,
			updated_at = NOW()
		RETURNING %s`, r.schema, returningStr)

	err := r.db.QueryRowxContext(ctx, query, server.ExternalID, server.OrganizationID, server.Name).
		StructScan(server)
	if err != nil {
		return core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to upsert server: %w", err),
		)
	}

	return nil
}

// GetServerByExternalID fetches a server by its source identifier
func (r *PostgresServersRepository) GetServerByExternalID(
	ctx context.Context,
	externalID string,
) (*models.Server, error) {
	columnsStr := strings.Join(serversColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.servers
		WHERE external_id = $1`, columnsStr, r.schema)

	server := &models.Server{}
	err := r.db.QueryRowxContext(ctx, query, externalID).StructScan(server)
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return nil, core.ErrNotFound
		}
		return nil, core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to get server by external ID: %w", err),
		)
	}

	return server, nil
}
