package clients

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockContentSourceClient implements ContentSourceClient for testing
type MockContentSourceClient struct {
	mock.Mock
}

func (m *MockContentSourceClient) ListGuilds(ctx context.Context) ([]SourceGuild, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SourceGuild), args.Error(1)
}

func (m *MockContentSourceClient) ListChannels(ctx context.Context, guildID string) ([]SourceChannel, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SourceChannel), args.Error(1)
}

func (m *MockContentSourceClient) ListMessages(
	ctx context.Context,
	containerID string,
	query MessageQuery,
) ([]SourceMessage, error) {
	args := m.Called(ctx, containerID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SourceMessage), args.Error(1)
}

func (m *MockContentSourceClient) ListActiveThreads(ctx context.Context, channelID string) ([]SourceThread, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SourceThread), args.Error(1)
}

func (m *MockContentSourceClient) ListArchivedThreads(ctx context.Context, channelID string) ([]SourceThread, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SourceThread), args.Error(1)
}

func (m *MockContentSourceClient) ListMembers(ctx context.Context, guildID string) ([]SourceMember, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SourceMember), args.Error(1)
}

func (m *MockContentSourceClient) ListRoles(ctx context.Context, guildID string) ([]SourceRole, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SourceRole), args.Error(1)
}

func (m *MockContentSourceClient) ListReactionUsers(
	ctx context.Context,
	channelID, messageID, emoji string,
) ([]SourceUser, error) {
	args := m.Called(ctx, channelID, messageID, emoji)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SourceUser), args.Error(1)
}

// MockEmbeddingClient implements EmbeddingClient for testing
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockVectorStoreClient implements VectorStoreClient for testing
type MockVectorStoreClient struct {
	mock.Mock
}

func (m *MockVectorStoreClient) IndexExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockVectorStoreClient) CreateIndex(ctx context.Context, name string, dimension int, metric string) error {
	args := m.Called(ctx, name, dimension, metric)
	return args.Error(0)
}

func (m *MockVectorStoreClient) Upsert(ctx context.Context, indexName string, items []VectorItem) (int, error) {
	args := m.Called(ctx, indexName, items)
	return args.Int(0), args.Error(1)
}
