package sync

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"chatmirror/appctx"
	"chatmirror/clients"
	"chatmirror/core"
	"chatmirror/models"
)

// syncServer walks one server's entity tree in dependency order: roles,
// server, members, channels with their message history, then threads with
// theirs. Inaccessible channels and threads are skipped; storage faults abort
// the server and record the stage that was running.
func (u *SyncUseCase) syncServer(
	ctx context.Context,
	organizationID int64,
	guild clients.SourceGuild,
) *models.ServerSyncResult {
	res := &models.ServerSyncResult{
		ServerExternalID: guild.ID,
		ServerName:       guild.Name,
		Stage:            models.SyncStageStart,
	}
	log.Printf("📋 Syncing server: %s (%s)", guild.Name, guild.ID)

	u.syncRoles(ctx, guild)
	res.Stage = models.SyncStageRolesProcessed

	server, err := u.identityService.ResolveServer(ctx, organizationID, guild.ID, guild.Name)
	if err != nil {
		return failResult(res, err)
	}

	u.syncMembers(ctx, server.ID, guild)
	res.Stage = models.SyncStageMembersProcessed

	channels, err := u.source.ListChannels(ctx, guild.ID)
	if err != nil {
		return failResult(res, err)
	}

	// external channel id -> internal id, used to attach threads to parents
	channelIDs := make(map[string]int64, len(channels))
	for _, ch := range channels {
		resolved, err := u.identityService.ResolveChannel(ctx, server.ID, ch.ID, ch.Name)
		if err != nil {
			if core.IsStorageFault(err) {
				return failResult(res, err)
			}
			log.Printf("❌ Failed to resolve channel %s: %v", ch.Name, err)
			res.ChannelsSkipped++
			continue
		}
		channelIDs[ch.ID] = resolved.ID

		msgs, err := u.fetchAllMessages(ctx, ch.ID)
		if err != nil {
			log.Printf("⚠️ Missing access to channel %s. Skipping it and its threads.", ch.Name)
			// An inaccessible channel must not have its threads walked either
			delete(channelIDs, ch.ID)
			res.ChannelsSkipped++
			continue
		}
		if err := u.persistBatch(ctx, server.ID, resolved.ID, nil, ch.ID, msgs, res); err != nil {
			return failResult(res, err)
		}
		res.ChannelsSynced++
	}
	res.Stage = models.SyncStageChannelsProcessed

	for _, ch := range channels {
		if _, ok := channelIDs[ch.ID]; !ok {
			continue
		}
		if err := u.syncThreads(ctx, server.ID, ch, channelIDs, res); err != nil {
			return failResult(res, err)
		}
	}
	res.Stage = models.SyncStageThreadsProcessed

	res.Stage = models.SyncStageDone
	log.Printf("✅ Finished processing messages for server: %s", guild.Name)
	return res
}

// syncRoles mirrors the server's roles, excluding the implicit everyone role
// which shares its id with the guild. Role failures never block the rest of
// the server.
func (u *SyncUseCase) syncRoles(ctx context.Context, guild clients.SourceGuild) {
	roles, err := u.source.ListRoles(ctx, guild.ID)
	if err != nil {
		log.Printf("⚠️ Failed to list roles for server %s: %v", guild.Name, err)
		return
	}
	for _, role := range roles {
		if role.ID == guild.ID {
			continue
		}
		description := ""
		if role.Hoisted {
			description = "Hoisted role"
		}
		if _, err := u.identityService.ResolveRole(ctx, role.Name, description); err != nil {
			log.Printf("❌ Failed to resolve role %s: %v", role.Name, err)
		}
	}
}

// syncMembers mirrors the server's member roster. Listing is bounded by the
// fetch timeout since large servers paginate for a long time.
func (u *SyncUseCase) syncMembers(ctx context.Context, serverID int64, guild clients.SourceGuild) {
	memberCtx, cancel := context.WithTimeout(ctx, u.fetchTimeout)
	defer cancel()

	members, err := u.source.ListMembers(memberCtx, guild.ID)
	if err != nil {
		log.Printf("⚠️ Failed to list members for server %s: %v", guild.Name, err)
		return
	}
	for _, member := range members {
		if _, err := u.identityService.ResolveUser(ctx, serverID, member.ID, member.Username, member.Nickname); err != nil {
			log.Printf("❌ Failed to resolve member %s: %v", member.Username, err)
		}
	}
	log.Printf("📋 Processed %d members for server %s", len(members), guild.Name)
}

// syncThreads mirrors every active and archived thread under one channel,
// together with each thread's full message history. Returns an error only on
// a storage fault.
func (u *SyncUseCase) syncThreads(
	ctx context.Context,
	serverID int64,
	channel clients.SourceChannel,
	channelIDs map[string]int64,
	res *models.ServerSyncResult,
) error {
	threads := u.collectThreads(ctx, channel)
	for _, th := range threads {
		if !clients.IsValidThreadType(th.ThreadType) {
			log.Printf("⚠️ Skipping thread %s with unsupported type %d", th.Title, th.ThreadType)
			res.ThreadsSkipped++
			continue
		}
		parentID, ok := channelIDs[th.ParentID]
		if !ok {
			log.Printf("⚠️ Skipping thread %s: parent channel %s was not resolved", th.Title, th.ParentID)
			res.ThreadsSkipped++
			continue
		}

		thread, err := u.identityService.ResolveThread(ctx, parentID, th.ID, th.Title, th.Topic, th.CreatedAt)
		if err != nil {
			if core.IsStorageFault(err) {
				return err
			}
			log.Printf("❌ Failed to resolve thread %s: %v", th.Title, err)
			res.ThreadsSkipped++
			continue
		}

		msgs, err := u.fetchAllMessages(ctx, th.ID)
		if err != nil {
			log.Printf("⚠️ Missing access to thread %s. Skipping its messages.", th.Title)
			res.ThreadsSkipped++
			continue
		}
		threadID := thread.ID
		if err := u.persistBatch(ctx, serverID, parentID, &threadID, th.ID, msgs, res); err != nil {
			return err
		}
		res.ThreadsSynced++
	}
	return nil
}

// collectThreads lists active and archived threads for a channel, deduplicated
// by external id. A thread can appear in both listings when it archives
// between the two calls.
func (u *SyncUseCase) collectThreads(ctx context.Context, channel clients.SourceChannel) []clients.SourceThread {
	listCtx, cancel := context.WithTimeout(ctx, u.fetchTimeout)
	defer cancel()

	var threads []clients.SourceThread
	seen := make(map[string]bool)

	active, err := u.source.ListActiveThreads(listCtx, channel.ID)
	if err != nil {
		log.Printf("⚠️ Failed to list active threads for channel %s: %v", channel.Name, err)
	}
	archived, err := u.source.ListArchivedThreads(listCtx, channel.ID)
	if err != nil {
		log.Printf("⚠️ Failed to list archived threads for channel %s: %v", channel.Name, err)
	}

	for _, th := range append(active, archived...) {
		if seen[th.ID] {
			continue
		}
		seen[th.ID] = true
		threads = append(threads, th)
	}
	return threads
}

// persistBatch fans one fetched message batch out over the worker pool.
// Individual message failures are logged and counted against the batch, but a
// storage fault is surfaced so the caller can abort the server.
func (u *SyncUseCase) persistBatch(
	ctx context.Context,
	serverID, channelID int64,
	threadID *int64,
	containerExternalID string,
	msgs []clients.SourceMessage,
	res *models.ServerSyncResult,
) error {
	if len(msgs) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var storageErr error
	synced := 0
	runID, _ := appctx.GetRunID(ctx)

	for i := range msgs {
		msg := msgs[i]
		wg.Add(1)
		err := u.pool.Submit(func() {
			defer wg.Done()
			if err := u.persistMessage(ctx, serverID, channelID, threadID, containerExternalID, msg); err != nil {
				log.Printf("❌ [%s] Failed to persist message %s: %v", runID, msg.ID, err)
				mu.Lock()
				if storageErr == nil && core.IsStorageFault(err) {
					storageErr = err
				}
				mu.Unlock()
				return
			}
			mu.Lock()
			synced++
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			if storageErr == nil {
				storageErr = err
			}
			mu.Unlock()
			break
		}
	}
	wg.Wait()

	res.MessagesSynced += synced
	return storageErr
}

// persistMessage stores one message with its author, membership, attachments,
// reactions and mentions.
func (u *SyncUseCase) persistMessage(
	ctx context.Context,
	serverID, channelID int64,
	threadID *int64,
	containerExternalID string,
	msg clients.SourceMessage,
) error {
	author, err := u.identityService.ResolveUser(ctx, serverID, msg.AuthorID, msg.AuthorUsername, msg.AuthorNickname)
	if err != nil {
		return err
	}

	message := &models.Message{
		ExternalID: msg.ID,
		ChannelID:  channelID,
		ThreadID:   threadID,
		UserID:     author.ID,
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt,
	}
	if err := u.messagesService.UpsertMessage(ctx, message); err != nil {
		return err
	}

	// First observed message timestamp doubles as the membership join time
	if err := u.identityService.RecordChannelMembership(ctx, channelID, author.ID, msg.CreatedAt); err != nil {
		return err
	}

	for _, attachment := range msg.Attachments {
		if err := u.messagesService.AddAttachment(ctx, message.ID, attachment.URL, time.Now()); err != nil {
			return err
		}
	}

	for _, reaction := range msg.Reactions {
		users, err := u.source.ListReactionUsers(ctx, containerExternalID, msg.ID, reaction.Emoji)
		if err != nil {
			log.Printf("⚠️ Failed to list users for reaction %s on message %s: %v", reaction.Emoji, msg.ID, err)
			continue
		}
		for _, reactingUser := range users {
			reactor, err := u.identityService.ResolveUser(ctx, serverID, reactingUser.ID, reactingUser.Username, reactingUser.Username)
			if err != nil {
				return err
			}
			if err := u.messagesService.AddReaction(ctx, message.ID, reactor.ID, reaction.Emoji, time.Now()); err != nil {
				return err
			}
		}
	}

	return u.persistMentions(ctx, message.ID, msg)
}

func (u *SyncUseCase) persistMentions(ctx context.Context, messageID int64, msg clients.SourceMessage) error {
	for _, userID := range msg.MentionUserIDs {
		target := userID
		if err := u.messagesService.AddMention(ctx, messageID, models.MentionTypeUser, &target); err != nil {
			return err
		}
	}
	for _, roleID := range msg.MentionRoleIDs {
		target := roleID
		if err := u.messagesService.AddMention(ctx, messageID, models.MentionTypeRole, &target); err != nil {
			return err
		}
	}
	if msg.MentionsEveryone {
		if strings.Contains(msg.Content, "@everyone") {
			if err := u.messagesService.AddMention(ctx, messageID, models.MentionTypeAll, nil); err != nil {
				return err
			}
		}
		if strings.Contains(msg.Content, "@here") {
			if err := u.messagesService.AddMention(ctx, messageID, models.MentionTypeHere, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func failResult(res *models.ServerSyncResult, err error) *models.ServerSyncResult {
	res.FailedStage = res.Stage
	res.Stage = models.SyncStageFailed
	res.Err = err
	log.Printf("❌ Server %s failed at stage %s: %v", res.ServerName, res.FailedStage, err)
	return res
}
