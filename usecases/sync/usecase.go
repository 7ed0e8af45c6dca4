package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/panjf2000/ants/v2"

	"chatmirror/appctx"
	"chatmirror/clients"
	"chatmirror/core"
	"chatmirror/models"
	"chatmirror/services"
)

const (
	defaultMessageBatchLimit = 100
	defaultPersistWorkers    = 8
	defaultFetchTimeout      = time.Hour
)

// Config tunes a SyncUseCase
type Config struct {
	// OrganizationName is the organization the mirrored servers are grouped
	// under
	OrganizationName string
	// MessageBatchLimit is the page size for message pagination
	MessageBatchLimit int
	// FetchTimeout bounds member and thread listing calls
	FetchTimeout time.Duration
	// PersistWorkers is the pool size for concurrent persistence of one
	// fetched message batch
	PersistWorkers int
}

// SyncUseCase drives the ingestion pipeline: it walks the content source's
// entity tree per server, resolves every entity to a relational row and
// persists messages with their annotations. Per-server failures are isolated;
// one server's failure never halts its siblings.
type SyncUseCase struct {
	source           clients.ContentSourceClient
	identityService  services.IdentityService
	messagesService  services.MessagesService
	organizationName string
	batchLimit       int
	fetchTimeout     time.Duration
	pool             *ants.Pool
}

func NewSyncUseCase(
	source clients.ContentSourceClient,
	identityService services.IdentityService,
	messagesService services.MessagesService,
	cfg Config,
) (*SyncUseCase, error) {
	if cfg.OrganizationName == "" {
		return nil, fmt.Errorf("organization name cannot be empty")
	}
	if cfg.MessageBatchLimit <= 0 {
		cfg.MessageBatchLimit = defaultMessageBatchLimit
	}
	if cfg.PersistWorkers <= 0 {
		cfg.PersistWorkers = defaultPersistWorkers
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}

	pool, err := ants.NewPool(cfg.PersistWorkers)
	if err != nil {
		return nil, fmt.Errorf("failed to create persist worker pool: %w", err)
	}

	return &SyncUseCase{
		source:           source,
		identityService:  identityService,
		messagesService:  messagesService,
		organizationName: cfg.OrganizationName,
		batchLimit:       cfg.MessageBatchLimit,
		fetchTimeout:     cfg.FetchTimeout,
		pool:             pool,
	}, nil
}

// Close releases the persist worker pool
func (u *SyncUseCase) Close() {
	u.pool.Release()
}

// RunSync performs one full backfill pass over every visible server
func (u *SyncUseCase) RunSync(ctx context.Context) error {
	runID := core.NewID("run")
	ctx = appctx.SetRunID(ctx, runID)
	log.Printf("📋 Starting full sync run %s", runID)

	org, err := u.identityService.EnsureOrganization(ctx, u.organizationName)
	if err != nil {
		return fmt.Errorf("failed to ensure organization: %w", err)
	}

	guilds, err := u.source.ListGuilds(ctx)
	if err != nil {
		return fmt.Errorf("failed to list guilds: %w", err)
	}

	results := make([]*models.ServerSyncResult, 0, len(guilds))
	for _, guild := range guilds {
		results = append(results, u.syncServer(ctx, org.ID, guild))
	}

	logRunSummary(runID, results)
	return nil
}

// RunUpdate performs one incremental pass: for every stored channel, fetch
// only messages newer than the most recently stored one. Channels with no
// stored history are skipped to avoid an expensive full-history refetch.
func (u *SyncUseCase) RunUpdate(ctx context.Context) error {
	runID := core.NewID("upd")
	ctx = appctx.SetRunID(ctx, runID)
	log.Printf("📋 Starting incremental update run %s", runID)

	channels, err := u.messagesService.ListStoredChannels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stored channels: %w", err)
	}

	totalNew := 0
	for _, channel := range channels {
		maybeLatest, err := u.messagesService.GetLatestMessageExternalID(ctx, channel.ID)
		if err != nil {
			log.Printf("❌ Failed to get latest message for channel %s: %v", channel.ExternalID, err)
			continue
		}
		if maybeLatest.IsAbsent() {
			log.Printf("📋 No previous messages for channel %s. Skipping update.", channel.ExternalID)
			continue
		}

		msgs, err := u.fetchNewMessages(ctx, channel.ExternalID, maybeLatest.MustGet())
		if err != nil {
			log.Printf("⚠️ Skipping update for channel %s: %v", channel.ExternalID, err)
			continue
		}

		res := &models.ServerSyncResult{}
		if err := u.persistBatch(ctx, channel.ServerID, channel.ID, nil, channel.ExternalID, msgs, res); err != nil {
			log.Printf("❌ Failed to persist new messages for channel %s: %v", channel.ExternalID, err)
			continue
		}

		log.Printf("✅ Channel %s updated with %d new message(s)", channel.ExternalID, res.MessagesSynced)
		totalNew += res.MessagesSynced
	}

	log.Printf("✅ Incremental update run %s completed with %d new message(s)", runID, totalNew)
	return nil
}

func logRunSummary(runID string, results []*models.ServerSyncResult) {
	succeeded := 0
	for _, res := range results {
		if res.Failed() {
			log.Printf("❌ Server %s (%s) failed at stage %s: %v",
				res.ServerName, res.ServerExternalID, res.FailedStage, res.Err)
			continue
		}
		succeeded++
		log.Printf("✅ Server %s (%s): %d channels, %d threads, %d messages (%d channels, %d threads skipped)",
			res.ServerName, res.ServerExternalID,
			res.ChannelsSynced, res.ThreadsSynced, res.MessagesSynced,
			res.ChannelsSkipped, res.ThreadsSkipped)
	}
	log.Printf("📋 Sync run %s completed: %d/%d servers succeeded", runID, succeeded, len(results))
}
