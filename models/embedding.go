package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChannelMessageRow is one message joined with its author and optional thread,
// loaded in creation order for embedding.
type ChannelMessageRow struct {
	MessageExternalID string    `db:"message_external_id"`
	Content           string    `db:"content"`
	CreatedAt         time.Time `db:"created_at"`
	UserID            int64     `db:"user_id"`
	UserName          string    `db:"user_name"`
	ThreadID          *int64    `db:"thread_id"`
	ThreadTitle       *string   `db:"thread_title"`
}

// IndexingCost records embedding usage for one channel within one indexing run.
type IndexingCost struct {
	ID               int64           `db:"id"                 json:"id"`
	RunID            string          `db:"run_id"             json:"run_id"`
	ChannelID        int64           `db:"channel_id"         json:"channel_id"`
	MessageCount     int             `db:"message_count"      json:"message_count"`
	TotalTokens      int             `db:"total_tokens"       json:"total_tokens"`
	EstimatedCostUSD decimal.Decimal `db:"estimated_cost_usd" json:"estimated_cost_usd"`
	CreatedAt        time.Time       `db:"created_at"         json:"created_at"`
}
