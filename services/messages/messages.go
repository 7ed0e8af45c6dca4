package messages

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/mo"

	"chatmirror/core"
	"chatmirror/db"
	"chatmirror/models"
)

// MessagesService persists messages and their annotations and serves the
// queries the incremental updater and the embedding pipeline read from.
type MessagesService struct {
	messagesRepo    *db.PostgresMessagesRepository
	channelsRepo    *db.PostgresChannelsRepository
	attachmentsRepo *db.PostgresAttachmentsRepository
	reactionsRepo   *db.PostgresReactionsRepository
	mentionsRepo    *db.PostgresMentionsRepository
}

func NewMessagesService(
	messagesRepo *db.PostgresMessagesRepository,
	channelsRepo *db.PostgresChannelsRepository,
	attachmentsRepo *db.PostgresAttachmentsRepository,
	reactionsRepo *db.PostgresReactionsRepository,
	mentionsRepo *db.PostgresMentionsRepository,
) *MessagesService {
	return &MessagesService{
		messagesRepo:    messagesRepo,
		channelsRepo:    channelsRepo,
		attachmentsRepo: attachmentsRepo,
		reactionsRepo:   reactionsRepo,
		mentionsRepo:    mentionsRepo,
	}
}

func (s *MessagesService) UpsertMessage(ctx context.Context, message *models.Message) error {
	if err := s.messagesRepo.UpsertMessage(ctx, message); err != nil {
		return fmt.Errorf("failed to upsert message: %w", err)
	}
	return nil
}

func (s *MessagesService) AddAttachment(
	ctx context.Context,
	messageID int64,
	url string,
	createdAt time.Time,
) error {
	if err := s.attachmentsRepo.UpsertAttachment(ctx, messageID, url, createdAt); err != nil {
		return fmt.Errorf("failed to add attachment: %w", err)
	}
	return nil
}

func (s *MessagesService) AddReaction(
	ctx context.Context,
	messageID, userID int64,
	reactionType string,
	createdAt time.Time,
) error {
	if err := s.reactionsRepo.UpsertReaction(ctx, messageID, userID, reactionType, createdAt); err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	return nil
}

func (s *MessagesService) AddMention(
	ctx context.Context,
	messageID int64,
	mentionType models.MentionType,
	targetExternalID *string,
) error {
	if err := s.mentionsRepo.UpsertMention(ctx, messageID, mentionType, targetExternalID); err != nil {
		return fmt.Errorf("failed to add mention: %w", err)
	}
	return nil
}

// GetLatestMessageExternalID returns the most recently created stored message
// id for a channel, or None when the channel has no stored messages yet.
func (s *MessagesService) GetLatestMessageExternalID(
	ctx context.Context,
	channelID int64,
) (mo.Option[string], error) {
	externalID, err := s.messagesRepo.GetLatestMessageExternalID(ctx, channelID)
	if err != nil {
		if core.IsNotFoundError(err) {
			return mo.None[string](), nil
		}
		return mo.None[string](), fmt.Errorf("failed to get latest message external ID: %w", err)
	}
	return mo.Some(externalID), nil
}

func (s *MessagesService) ListStoredChannels(ctx context.Context) ([]*models.Channel, error) {
	channels, err := s.channelsRepo.ListAllChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored channels: %w", err)
	}
	return channels, nil
}

func (s *MessagesService) ListChannelsWithMessages(ctx context.Context) ([]*models.Channel, error) {
	channels, err := s.channelsRepo.ListChannelsWithMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels with messages: %w", err)
	}
	return channels, nil
}

func (s *MessagesService) ListChannelMessagesForEmbedding(
	ctx context.Context,
	channelID int64,
) ([]*models.ChannelMessageRow, error) {
	rows, err := s.messagesRepo.ListChannelMessagesForEmbedding(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channel messages for embedding: %w", err)
	}
	return rows, nil
}
