package indexing

import (
	"context"
	"fmt"
	"log"

	"chatmirror/clients"
	"chatmirror/core"
	"chatmirror/models"
)

// Vector store payload limit per upsert request
const upsertChunkSize = 100

// publishChannelVectors ensures the channel's index exists and upserts the
// vectors in chunks. The index dimension is fixed by the first embedding; a
// concurrent creation of the same index is tolerated. Upserts are idempotent
// on the message external id, so republishing a channel overwrites in place.
func (u *IndexingUseCase) publishChannelVectors(
	ctx context.Context,
	channel *models.Channel,
	items []clients.VectorItem,
) error {
	indexName := fmt.Sprintf("channel-%d", channel.ID)

	exists, err := u.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", indexName, err)
	}
	if !exists {
		dimension := len(items[0].Values)
		log.Printf("📋 Creating index %s with dimension %d", indexName, dimension)
		if err := u.store.CreateIndex(ctx, indexName, dimension, "cosine"); err != nil {
			if !core.IsProvisioningConflict(err) {
				return fmt.Errorf("failed to create index %s: %w", indexName, err)
			}
			log.Printf("⚠️ Index %s was created concurrently. Continuing.", indexName)
		}
	}

	upserted := 0
	for start := 0; start < len(items); start += upsertChunkSize {
		end := min(start+upsertChunkSize, len(items))
		count, err := u.store.Upsert(ctx, indexName, items[start:end])
		if err != nil {
			log.Printf("❌ Failed to upsert chunk [%d:%d] into %s: %v", start, end, indexName, err)
			continue
		}
		upserted += count
	}

	log.Printf("✅ Upserted %d/%d vectors into %s", upserted, len(items), indexName)
	return nil
}
