package indexing

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"chatmirror/clients"
	"chatmirror/core"
	"chatmirror/models"
)

// buildChannelVectors embeds every embeddable message of one channel. Messages
// with empty content or failed embeddings are skipped, never aborting the
// channel. Returns the vectors plus the estimated token total.
func (u *IndexingUseCase) buildChannelVectors(
	ctx context.Context,
	channel *models.Channel,
	rows []*models.ChannelMessageRow,
) ([]clients.VectorItem, int) {
	var items []clients.VectorItem
	totalTokens := 0

	for _, row := range rows {
		text := embeddingText(row)
		if text == "" {
			continue
		}

		values, err := u.embedder.Embed(ctx, text)
		if err != nil {
			log.Printf("⚠️ Skipping message %s: embedding failed: %v", row.MessageExternalID, err)
			continue
		}
		if len(values) == 0 {
			log.Printf("⚠️ Skipping message %s: empty embedding", row.MessageExternalID)
			continue
		}

		items = append(items, clients.VectorItem{
			ID:       row.MessageExternalID,
			Values:   values,
			Metadata: vectorMetadata(channel, row, text),
		})
		totalTokens += core.EstimateTokens(text)
	}

	return items, totalTokens
}

// embeddingText renders one message as the text unit to embed. Thread messages
// carry their thread title as a prefix so the context survives embedding.
func embeddingText(row *models.ChannelMessageRow) string {
	content := strings.TrimSpace(row.Content)
	if content == "" {
		return ""
	}
	if row.ThreadTitle != nil && *row.ThreadTitle != "" {
		return fmt.Sprintf("[Thread: %s] %s", *row.ThreadTitle, content)
	}
	return content
}

func vectorMetadata(channel *models.Channel, row *models.ChannelMessageRow, text string) map[string]any {
	metadata := map[string]any{
		"user_id":      row.UserID,
		"user_name":    row.UserName,
		"channel_id":   channel.ID,
		"channel_name": channel.Name,
		"message_text": text,
		"created_at":   row.CreatedAt.UTC().Format(time.RFC3339),
		"thread_id":    "",
		"thread_title": "",
	}
	if row.ThreadID != nil {
		metadata["thread_id"] = *row.ThreadID
	}
	if row.ThreadTitle != nil {
		metadata["thread_title"] = *row.ThreadTitle
	}
	return metadata
}
