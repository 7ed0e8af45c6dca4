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

type PostgresIndexingCostsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for indexing_costs table
var indexingCostsColumns = []string{
	"id",
	"run_id",
	"channel_id",
	"message_count",
	"total_tokens",
	"estimated_cost_usd",
	"created_at",
}

func NewPostgresIndexingCostsRepository(db *sqlx.DB, schema string) *PostgresIndexingCostsRepository {
	return &PostgresIndexingCostsRepository{db: db, schema: schema}
}

// CreateIndexingCost records embedding usage for one channel within one run.
// Re-running the same (run, channel) pair replaces the previous record.
func (r *PostgresIndexingCostsRepository) CreateIndexingCost(
	ctx context.Context,
	cost *models.IndexingCost,
) error {
	if cost.RunID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}

	returningStr := strings.Join(indexingCostsColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.indexing_costs (run_id, channel_id, message_count, total_tokens, estimated_cost_usd, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (run_id, channel_id) DO UPDATE SET
			message_count = EXCLUDED.message_count,
			total_tokens = EXCLUDED.total_tokens,
			estimated_cost_usd = EXCLUDED.estimated_cost_usd
		RETURNING %s`, r.schema, returningStr)

	err := r.db.QueryRowxContext(
		ctx,
		query,
		cost.RunID,
		cost.ChannelID,
		cost.MessageCount,
		cost.TotalTokens,
		cost.EstimatedCostUSD,
	).StructScan(cost)
	if err != nil {
		return core.NewPipelineError(
			core.ErrorKindStorageFault,
			fmt.Errorf("failed to create indexing cost: %w", err),
		)
	}

	return nil
}
