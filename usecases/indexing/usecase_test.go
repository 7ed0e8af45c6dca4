package indexing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatmirror/clients"
	"chatmirror/models"
	"chatmirror/services/embedcost"
	"chatmirror/services/messages"
)

func messageRows(channelID int64, count int) []*models.ChannelMessageRow {
	rows := make([]*models.ChannelMessageRow, 0, count)
	for i := 0; i < count; i++ {
		rows = append(rows, &models.ChannelMessageRow{
			MessageExternalID: fmt.Sprintf("%d%03d", channelID, i),
			Content:           fmt.Sprintf("message number %d with enough words to embed", i),
			CreatedAt:         time.Date(2025, 3, 1, 12, 0, i, 0, time.UTC),
			UserID:            55,
			UserName:          "alice",
		})
	}
	return rows
}

func TestRunIndexing(t *testing.T) {
	t.Run("skips failed embeddings and publishes the rest", func(t *testing.T) {
		embedder := new(clients.MockEmbeddingClient)
		store := new(clients.MockVectorStoreClient)
		messagesService := new(messages.MockMessagesService)
		embedCostService := new(embedcost.MockEmbedCostService)
		u := NewIndexingUseCase(embedder, store, messagesService, embedCostService)

		rows := messageRows(101, 5)
		channel := &models.Channel{ID: 101, Name: "general"}

		messagesService.On("ListChannelsWithMessages", mock.Anything).
			Return([]*models.Channel{channel}, nil)
		messagesService.On("ListChannelMessagesForEmbedding", mock.Anything, int64(101)).
			Return(rows, nil)

		embedder.On("Embed", mock.Anything, rows[2].Content).
			Return(nil, errors.New("rate limited")).Once()
		embedder.On("Embed", mock.Anything, mock.Anything).
			Return([]float32{0.1, 0.2, 0.3}, nil)

		store.On("IndexExists", mock.Anything, "channel-101").Return(true, nil)
		store.On("Upsert", mock.Anything, "channel-101", mock.MatchedBy(func(items []clients.VectorItem) bool {
			return len(items) == 4
		})).Return(4, nil).Once()
		embedCostService.On("TrackChannelIndexing", mock.Anything, mock.Anything, int64(101), 4, mock.Anything).
			Return(nil).Once()

		err := u.RunIndexing(context.Background())

		require.NoError(t, err)
		store.AssertExpectations(t)
		embedCostService.AssertExpectations(t)
	})

	t.Run("prefixes thread messages with the thread title", func(t *testing.T) {
		embedder := new(clients.MockEmbeddingClient)
		store := new(clients.MockVectorStoreClient)
		messagesService := new(messages.MockMessagesService)
		embedCostService := new(embedcost.MockEmbedCostService)
		u := NewIndexingUseCase(embedder, store, messagesService, embedCostService)

		threadID := int64(300)
		threadTitle := "Bug Triage"
		channel := &models.Channel{ID: 101, Name: "general"}
		rows := []*models.ChannelMessageRow{{
			MessageExternalID: "600",
			Content:           "repro steps attached",
			CreatedAt:         time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			UserID:            55,
			UserName:          "alice",
			ThreadID:          &threadID,
			ThreadTitle:       &threadTitle,
		}}

		messagesService.On("ListChannelsWithMessages", mock.Anything).
			Return([]*models.Channel{channel}, nil)
		messagesService.On("ListChannelMessagesForEmbedding", mock.Anything, int64(101)).
			Return(rows, nil)

		embedder.On("Embed", mock.Anything, "[Thread: Bug Triage] repro steps attached").
			Return([]float32{0.5, 0.5}, nil).Once()

		store.On("IndexExists", mock.Anything, "channel-101").Return(true, nil)
		store.On("Upsert", mock.Anything, "channel-101", mock.MatchedBy(func(items []clients.VectorItem) bool {
			if len(items) != 1 {
				return false
			}
			metadata := items[0].Metadata
			return items[0].ID == "600" &&
				metadata["thread_title"] == "Bug Triage" &&
				metadata["message_text"] == "[Thread: Bug Triage] repro steps attached"
		})).Return(1, nil).Once()
		embedCostService.On("TrackChannelIndexing", mock.Anything, mock.Anything, int64(101), 1, mock.Anything).
			Return(nil)

		err := u.RunIndexing(context.Background())

		require.NoError(t, err)
		embedder.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("creates the index sized to the first embedding", func(t *testing.T) {
		embedder := new(clients.MockEmbeddingClient)
		store := new(clients.MockVectorStoreClient)
		messagesService := new(messages.MockMessagesService)
		embedCostService := new(embedcost.MockEmbedCostService)
		u := NewIndexingUseCase(embedder, store, messagesService, embedCostService)

		channel := &models.Channel{ID: 101, Name: "general"}
		messagesService.On("ListChannelsWithMessages", mock.Anything).
			Return([]*models.Channel{channel}, nil)
		messagesService.On("ListChannelMessagesForEmbedding", mock.Anything, int64(101)).
			Return(messageRows(101, 1), nil)

		embedder.On("Embed", mock.Anything, mock.Anything).
			Return([]float32{0.1, 0.2, 0.3}, nil)

		store.On("IndexExists", mock.Anything, "channel-101").Return(false, nil)
		store.On("CreateIndex", mock.Anything, "channel-101", 3, "cosine").Return(nil).Once()
		store.On("Upsert", mock.Anything, "channel-101", mock.Anything).Return(1, nil)
		embedCostService.On("TrackChannelIndexing", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil)

		err := u.RunIndexing(context.Background())

		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("chunks large channels into bounded upserts", func(t *testing.T) {
		embedder := new(clients.MockEmbeddingClient)
		store := new(clients.MockVectorStoreClient)
		messagesService := new(messages.MockMessagesService)
		embedCostService := new(embedcost.MockEmbedCostService)
		u := NewIndexingUseCase(embedder, store, messagesService, embedCostService)

		channel := &models.Channel{ID: 101, Name: "general"}
		messagesService.On("ListChannelsWithMessages", mock.Anything).
			Return([]*models.Channel{channel}, nil)
		messagesService.On("ListChannelMessagesForEmbedding", mock.Anything, int64(101)).
			Return(messageRows(101, 250), nil)

		embedder.On("Embed", mock.Anything, mock.Anything).
			Return([]float32{0.1, 0.2}, nil)

		store.On("IndexExists", mock.Anything, "channel-101").Return(true, nil)
		store.On("Upsert", mock.Anything, "channel-101", mock.MatchedBy(func(items []clients.VectorItem) bool {
			return len(items) == 100
		})).Return(100, nil).Twice()
		store.On("Upsert", mock.Anything, "channel-101", mock.MatchedBy(func(items []clients.VectorItem) bool {
			return len(items) == 50
		})).Return(50, nil).Once()
		embedCostService.On("TrackChannelIndexing", mock.Anything, mock.Anything, int64(101), 250, mock.Anything).
			Return(nil)

		err := u.RunIndexing(context.Background())

		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("skips channels with no embeddable content", func(t *testing.T) {
		embedder := new(clients.MockEmbeddingClient)
		store := new(clients.MockVectorStoreClient)
		messagesService := new(messages.MockMessagesService)
		embedCostService := new(embedcost.MockEmbedCostService)
		u := NewIndexingUseCase(embedder, store, messagesService, embedCostService)

		channel := &models.Channel{ID: 101, Name: "general"}
		messagesService.On("ListChannelsWithMessages", mock.Anything).
			Return([]*models.Channel{channel}, nil)
		messagesService.On("ListChannelMessagesForEmbedding", mock.Anything, int64(101)).
			Return([]*models.ChannelMessageRow{
				{MessageExternalID: "700", Content: "   "},
				{MessageExternalID: "701", Content: ""},
			}, nil)

		err := u.RunIndexing(context.Background())

		require.NoError(t, err)
		embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "IndexExists", mock.Anything, mock.Anything)
		embedCostService.AssertNotCalled(t, "TrackChannelIndexing",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestEmbeddingText(t *testing.T) {
	threadTitle := "Release Planning"
	tests := []struct {
		name string
		row  *models.ChannelMessageRow
		want string
	}{
		{"plain channel message", &models.ChannelMessageRow{Content: "hello world"}, "hello world"},
		{"whitespace only", &models.ChannelMessageRow{Content: "  \n "}, ""},
		{"thread message", &models.ChannelMessageRow{Content: "agenda", ThreadTitle: &threadTitle}, "[Thread: Release Planning] agenda"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, embeddingText(tt.row))
		})
	}
}
