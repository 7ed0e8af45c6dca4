package embedcost

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"chatmirror/db"
	"chatmirror/models"
)

// OpenAI embedding pricing per 1K tokens (text-embedding-3-small)
const embeddingCostPer1K = 0.00002

// EmbedCostService tracks embedding usage and estimated spend per channel per
// indexing run.
type EmbedCostService struct {
	indexingCostsRepo *db.PostgresIndexingCostsRepository
}

func NewEmbedCostService(repo *db.PostgresIndexingCostsRepository) *EmbedCostService {
	return &EmbedCostService{indexingCostsRepo: repo}
}

func (s *EmbedCostService) TrackChannelIndexing(
	ctx context.Context,
	runID string,
	channelID int64,
	messageCount, totalTokens int,
) error {
	if runID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}
	if messageCount < 0 || totalTokens < 0 {
		return fmt.Errorf("counts cannot be negative")
	}

	estimatedCost := s.EstimateCost(totalTokens)

	cost := &models.IndexingCost{
		RunID:            runID,
		ChannelID:        channelID,
		MessageCount:     messageCount,
		TotalTokens:      totalTokens,
		EstimatedCostUSD: estimatedCost,
	}
	if err := s.indexingCostsRepo.CreateIndexingCost(ctx, cost); err != nil {
		return fmt.Errorf("failed to track channel indexing: %w", err)
	}

	log.Printf("📋 Tracked indexing usage for channel %d: %d messages, %d tokens, cost $%s",
		channelID, messageCount, totalTokens, estimatedCost.String())
	return nil
}

// EstimateCost converts a token count to estimated USD
func (s *EmbedCostService) EstimateCost(totalTokens int) decimal.Decimal {
	return decimal.NewFromInt(int64(totalTokens)).
		Div(decimal.NewFromInt(1000)).
		Mul(decimal.NewFromFloat(embeddingCostPer1K))
}
