package services

import (
	"context"
	"time"

	"github.com/samber/mo"

	"chatmirror/models"
)

// IdentityService maps external identifiers to local surrogate ids, creating
// entities on first sight and updating mutable attributes on change. Surrogate
// ids are never renumbered.
type IdentityService interface {
	EnsureOrganization(ctx context.Context, name string) (*models.Organization, error)
	ResolveServer(ctx context.Context, organizationID int64, externalID, name string) (*models.Server, error)
	ResolveChannel(ctx context.Context, serverID int64, externalID, name string) (*models.Channel, error)
	ResolveThread(
		ctx context.Context,
		channelID int64,
		externalID, title, description string,
		createdAt time.Time,
	) (*models.Thread, error)
	ResolveUser(ctx context.Context, serverID int64, externalID, name, nickname string) (*models.User, error)
	ResolveRole(ctx context.Context, name, description string) (*models.Role, error)
	RecordChannelMembership(ctx context.Context, channelID, userID int64, joinedAt time.Time) error
}

// MessagesService persists messages and their annotations, and serves the
// queries the incremental updater and the embedding pipeline read from.
type MessagesService interface {
	UpsertMessage(ctx context.Context, message *models.Message) error
	AddAttachment(ctx context.Context, messageID int64, url string, createdAt time.Time) error
	AddReaction(ctx context.Context, messageID, userID int64, reactionType string, createdAt time.Time) error
	AddMention(
		ctx context.Context,
		messageID int64,
		mentionType models.MentionType,
		targetExternalID *string,
	) error
	GetLatestMessageExternalID(ctx context.Context, channelID int64) (mo.Option[string], error)
	ListStoredChannels(ctx context.Context) ([]*models.Channel, error)
	ListChannelsWithMessages(ctx context.Context) ([]*models.Channel, error)
	ListChannelMessagesForEmbedding(ctx context.Context, channelID int64) ([]*models.ChannelMessageRow, error)
}

// EmbedCostService tracks embedding usage per channel per indexing run
type EmbedCostService interface {
	TrackChannelIndexing(ctx context.Context, runID string, channelID int64, messageCount, totalTokens int) error
}
