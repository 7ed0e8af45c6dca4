package indexing

import (
	"context"
	"fmt"
	"log"

	"chatmirror/appctx"
	"chatmirror/clients"
	"chatmirror/core"
	"chatmirror/models"
	"chatmirror/services"
)

// IndexingUseCase builds per-channel vector indexes from the stored message
// history: every non-empty message is embedded and upserted into a vector
// index dedicated to its channel.
type IndexingUseCase struct {
	embedder         clients.EmbeddingClient
	store            clients.VectorStoreClient
	messagesService  services.MessagesService
	embedCostService services.EmbedCostService
}

func NewIndexingUseCase(
	embedder clients.EmbeddingClient,
	store clients.VectorStoreClient,
	messagesService services.MessagesService,
	embedCostService services.EmbedCostService,
) *IndexingUseCase {
	return &IndexingUseCase{
		embedder:         embedder,
		store:            store,
		messagesService:  messagesService,
		embedCostService: embedCostService,
	}
}

// RunIndexing embeds and publishes every channel that has stored messages.
// Channel failures are isolated; the run continues with the next channel.
func (u *IndexingUseCase) RunIndexing(ctx context.Context) error {
	runID := core.NewID("idx")
	ctx = appctx.SetRunID(ctx, runID)
	log.Printf("📋 Starting indexing run %s", runID)

	channels, err := u.messagesService.ListChannelsWithMessages(ctx)
	if err != nil {
		return fmt.Errorf("failed to list channels with messages: %w", err)
	}

	indexed := 0
	for _, channel := range channels {
		if err := u.indexChannel(ctx, runID, channel); err != nil {
			log.Printf("❌ Failed to index channel %s: %v", channel.Name, err)
			continue
		}
		indexed++
	}

	log.Printf("✅ Indexing run %s completed: %d/%d channels indexed", runID, indexed, len(channels))
	return nil
}

func (u *IndexingUseCase) indexChannel(ctx context.Context, runID string, channel *models.Channel) error {
	rows, err := u.messagesService.ListChannelMessagesForEmbedding(ctx, channel.ID)
	if err != nil {
		return fmt.Errorf("failed to load messages for channel %s: %w", channel.Name, err)
	}

	items, totalTokens := u.buildChannelVectors(ctx, channel, rows)
	if len(items) == 0 {
		log.Printf("📋 Channel %s produced no embeddable messages. Skipping.", channel.Name)
		return nil
	}

	if err := u.publishChannelVectors(ctx, channel, items); err != nil {
		return err
	}

	// Cost accounting must not fail the channel after its vectors shipped
	if err := u.embedCostService.TrackChannelIndexing(ctx, runID, channel.ID, len(items), totalTokens); err != nil {
		log.Printf("⚠️ Failed to track indexing cost for channel %s: %v", channel.Name, err)
	}
	return nil
}
