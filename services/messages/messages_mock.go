package messages

import (
	"context"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"chatmirror/models"
)

// MockMessagesService implements services.MessagesService for testing
type MockMessagesService struct {
	mock.Mock
}

func (m *MockMessagesService) UpsertMessage(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockMessagesService) AddAttachment(
	ctx context.Context,
	messageID int64,
	url string,
	createdAt time.Time,
) error {
	args := m.Called(ctx, messageID, url, createdAt)
	return args.Error(0)
}

func (m *MockMessagesService) AddReaction(
	ctx context.Context,
	messageID, userID int64,
	reactionType string,
	createdAt time.Time,
) error {
	args := m.Called(ctx, messageID, userID, reactionType, createdAt)
	return args.Error(0)
}

func (m *MockMessagesService) AddMention(
	ctx context.Context,
	messageID int64,
	mentionType models.MentionType,
	targetExternalID *string,
) error {
	args := m.Called(ctx, messageID, mentionType, targetExternalID)
	return args.Error(0)
}

func (m *MockMessagesService) GetLatestMessageExternalID(
	ctx context.Context,
	channelID int64,
) (mo.Option[string], error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return mo.None[string](), args.Error(1)
	}
	return args.Get(0).(mo.Option[string]), args.Error(1)
}

func (m *MockMessagesService) ListStoredChannels(ctx context.Context) ([]*models.Channel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Channel), args.Error(1)
}

func (m *MockMessagesService) ListChannelsWithMessages(ctx context.Context) ([]*models.Channel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Channel), args.Error(1)
}

func (m *MockMessagesService) ListChannelMessagesForEmbedding(
	ctx context.Context,
	channelID int64,
) ([]*models.ChannelMessageRow, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ChannelMessageRow), args.Error(1)
}
