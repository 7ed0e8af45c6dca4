package sync

import (
	"context"
	"log"
	"strings"

	"github.com/samber/mo"

	"chatmirror/clients"
	"chatmirror/core"
)

// fetchAllMessages pages backwards through a container's full history, newest
// first, until the source returns an empty batch. On access denial the error
// is surfaced so the caller can skip the container without partial writes; a
// transient failure mid-pagination returns the pages fetched so far.
func (u *SyncUseCase) fetchAllMessages(ctx context.Context, containerID string) ([]clients.SourceMessage, error) {
	var all []clients.SourceMessage
	before := mo.None[string]()

	for {
		batch, err := u.source.ListMessages(ctx, containerID, clients.MessageQuery{
			Limit:  u.batchLimit,
			Before: before,
		})
		if err != nil {
			if core.IsAccessDenied(err) {
				return nil, err
			}
			log.Printf("⚠️ Message pagination for container %s stopped early: %v", containerID, err)
			return all, nil
		}
		if len(batch) == 0 {
			return all, nil
		}
		all = append(all, batch...)
		before = mo.Some(oldestMessageID(batch))
	}
}

// fetchNewMessages pages forward from a known message id, oldest first,
// collecting everything newer. Same failure semantics as fetchAllMessages.
func (u *SyncUseCase) fetchNewMessages(ctx context.Context, containerID, afterID string) ([]clients.SourceMessage, error) {
	var all []clients.SourceMessage
	after := afterID

	for {
		batch, err := u.source.ListMessages(ctx, containerID, clients.MessageQuery{
			Limit: u.batchLimit,
			After: mo.Some(after),
		})
		if err != nil {
			if core.IsAccessDenied(err) {
				return nil, err
			}
			log.Printf("⚠️ Message pagination for container %s stopped early: %v", containerID, err)
			return all, nil
		}
		if len(batch) == 0 {
			return all, nil
		}
		all = append(all, batch...)
		after = newestMessageID(batch)
	}
}

// oldestMessageID returns the smallest snowflake in the batch, which is the
// next backward cursor regardless of the batch's ordering.
func oldestMessageID(batch []clients.SourceMessage) string {
	oldest := batch[0].ID
	for _, msg := range batch[1:] {
		if compareSnowflakes(msg.ID, oldest) < 0 {
			oldest = msg.ID
		}
	}
	return oldest
}

// newestMessageID returns the largest snowflake in the batch
func newestMessageID(batch []clients.SourceMessage) string {
	newest := batch[0].ID
	for _, msg := range batch[1:] {
		if compareSnowflakes(msg.ID, newest) > 0 {
			newest = msg.ID
		}
	}
	return newest
}

// compareSnowflakes orders two decimal snowflake ids numerically without
// parsing. Snowflakes never carry leading zeros, so a longer id is larger.
func compareSnowflakes(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
