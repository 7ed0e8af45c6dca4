package clients

import (
	"context"
)

// ContentSourceClient is the read-only capability over the remote chat
// community. Implementations must tag errors with core error kinds so that
// access-denied failures are distinguishable from generic ones.
type ContentSourceClient interface {
	ListGuilds(ctx context.Context) ([]SourceGuild, error)
	// ListChannels returns only text-capable, non-thread channels.
	ListChannels(ctx context.Context, guildID string) ([]SourceChannel, error)
	// ListMessages fetches one bounded batch for a channel or thread container.
	// The Before/After boundaries are strictly exclusive.
	ListMessages(ctx context.Context, containerID string, query MessageQuery) ([]SourceMessage, error)
	ListActiveThreads(ctx context.Context, channelID string) ([]SourceThread, error)
	ListArchivedThreads(ctx context.Context, channelID string) ([]SourceThread, error)
	ListMembers(ctx context.Context, guildID string) ([]SourceMember, error)
	ListRoles(ctx context.Context, guildID string) ([]SourceRole, error)
	// ListReactionUsers returns the users who reacted to a message with the
	// given emoji.
	ListReactionUsers(ctx context.Context, channelID, messageID, emoji string) ([]SourceUser, error)
}

// EmbeddingClient requests a vector representation for one text unit.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStoreClient is the write capability over the external vector store.
type VectorStoreClient interface {
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, name string, dimension int, metric string) error
	// Upsert writes one batch of vectors. Callers are responsible for chunking
	// to the store's payload limits.
	Upsert(ctx context.Context, indexName string, items []VectorItem) (int, error)
}
