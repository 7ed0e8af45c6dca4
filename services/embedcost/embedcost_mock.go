package embedcost

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmbedCostService implements services.EmbedCostService for testing
type MockEmbedCostService struct {
	mock.Mock
}

func (m *MockEmbedCostService) TrackChannelIndexing(
	ctx context.Context,
	runID string,
	channelID int64,
	messageCount, totalTokens int,
) error {
	args := m.Called(ctx, runID, channelID, messageCount, totalTokens)
	return args.Error(0)
}
