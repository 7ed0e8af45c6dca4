package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatmirror/clients"
	"chatmirror/core"
	"chatmirror/services/identity"
	"chatmirror/services/messages"
)

func newTestSyncUseCase(
	t *testing.T,
	source *clients.MockContentSourceClient,
	identityService *identity.MockIdentityService,
	messagesService *messages.MockMessagesService,
) *SyncUseCase {
	t.Helper()
	u, err := NewSyncUseCase(source, identityService, messagesService, Config{
		OrganizationName:  "straico",
		MessageBatchLimit: 10,
		PersistWorkers:    2,
	})
	require.NoError(t, err)
	t.Cleanup(u.Close)
	return u
}

func srcMessages(ids ...string) []clients.SourceMessage {
	out := make([]clients.SourceMessage, 0, len(ids))
	for _, id := range ids {
		out = append(out, clients.SourceMessage{
			ID:             id,
			AuthorID:       "user-1",
			AuthorUsername: "alice",
			AuthorNickname: "alice",
			Content:        "message " + id,
			CreatedAt:      time.Now(),
		})
	}
	return out
}

func descendingIDs(from, count int) []string {
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		ids = append(ids, fmt.Sprintf("%d", from-i))
	}
	return ids
}

func TestFetchAllMessages(t *testing.T) {
	t.Run("paginates backwards until the source is exhausted", func(t *testing.T) {
		source := new(clients.MockContentSourceClient)
		u := newTestSyncUseCase(t, source, new(identity.MockIdentityService), new(messages.MockMessagesService))

		matchBefore := func(want mo.Option[string]) any {
			return mock.MatchedBy(func(q clients.MessageQuery) bool {
				return q.Before == want && q.After.IsAbsent()
			})
		}

		source.On("ListMessages", mock.Anything, "chan-1", matchBefore(mo.None[string]())).
			Return(srcMessages(descendingIDs(30, 10)...), nil).Once()
		source.On("ListMessages", mock.Anything, "chan-1", matchBefore(mo.Some("21"))).
			Return(srcMessages(descendingIDs(20, 10)...), nil).Once()
		source.On("ListMessages", mock.Anything, "chan-1", matchBefore(mo.Some("11"))).
			Return(srcMessages(descendingIDs(10, 5)...), nil).Once()
		source.On("ListMessages", mock.Anything, "chan-1", matchBefore(mo.Some("6"))).
			Return([]clients.SourceMessage{}, nil).Once()

		msgs, err := u.fetchAllMessages(context.Background(), "chan-1")

		require.NoError(t, err)
		assert.Len(t, msgs, 25)
		seen := make(map[string]bool)
		for _, msg := range msgs {
			assert.False(t, seen[msg.ID], "message %s fetched twice", msg.ID)
			seen[msg.ID] = true
		}
		source.AssertExpectations(t)
	})

	t.Run("surfaces access denial without partial results", func(t *testing.T) {
		source := new(clients.MockContentSourceClient)
		u := newTestSyncUseCase(t, source, new(identity.MockIdentityService), new(messages.MockMessagesService))

		source.On("ListMessages", mock.Anything, "chan-1", mock.Anything).
			Return(nil, core.NewPipelineError(core.ErrorKindAccessDenied, errors.New("missing access"))).Once()

		msgs, err := u.fetchAllMessages(context.Background(), "chan-1")

		require.Error(t, err)
		assert.True(t, core.IsAccessDenied(err))
		assert.Nil(t, msgs)
	})

	t.Run("keeps fetched pages when pagination fails transiently", func(t *testing.T) {
		source := new(clients.MockContentSourceClient)
		u := newTestSyncUseCase(t, source, new(identity.MockIdentityService), new(messages.MockMessagesService))

		source.On("ListMessages", mock.Anything, "chan-1", mock.Anything).
			Return(srcMessages(descendingIDs(10, 10)...), nil).Once()
		source.On("ListMessages", mock.Anything, "chan-1", mock.Anything).
			Return(nil, core.NewPipelineError(core.ErrorKindTransient, errors.New("rate limited"))).Once()

		msgs, err := u.fetchAllMessages(context.Background(), "chan-1")

		require.NoError(t, err)
		assert.Len(t, msgs, 10)
	})
}

func TestFetchNewMessages(t *testing.T) {
	t.Run("advances the cursor past the newest message of each batch", func(t *testing.T) {
		source := new(clients.MockContentSourceClient)
		u := newTestSyncUseCase(t, source, new(identity.MockIdentityService), new(messages.MockMessagesService))

		matchAfter := func(want string) any {
			return mock.MatchedBy(func(q clients.MessageQuery) bool {
				return q.After == mo.Some(want) && q.Before.IsAbsent()
			})
		}

		source.On("ListMessages", mock.Anything, "chan-1", matchAfter("100")).
			Return(srcMessages("101", "102", "103"), nil).Once()
		source.On("ListMessages", mock.Anything, "chan-1", matchAfter("103")).
			Return(srcMessages("104"), nil).Once()
		source.On("ListMessages", mock.Anything, "chan-1", matchAfter("104")).
			Return([]clients.SourceMessage{}, nil).Once()

		msgs, err := u.fetchNewMessages(context.Background(), "chan-1", "100")

		require.NoError(t, err)
		assert.Len(t, msgs, 4)
		source.AssertExpectations(t)
	})
}

func TestCompareSnowflakes(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"100", "100", 0},
		{"100", "101", -1},
		{"101", "100", 1},
		{"99", "100", -1},
		{"1000", "999", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			got := compareSnowflakes(tt.a, tt.b)
			switch {
			case tt.want < 0:
				assert.Negative(t, got)
			case tt.want > 0:
				assert.Positive(t, got)
			default:
				assert.Zero(t, got)
			}
		})
	}
}
