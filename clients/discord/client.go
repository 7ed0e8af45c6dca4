package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"chatmirror/clients"
	"chatmirror/core"
)

const (
	guildPageLimit  = 200
	memberPageLimit = 1000
)

// DiscordClient implements clients.ContentSourceClient over the Discord REST
// API. The session is used REST-only; no gateway connection is opened.
type DiscordClient struct {
	session *discordgo.Session
}

// NewDiscordClient creates a REST-only Discord client from a bot token
func NewDiscordClient(botToken string) (*DiscordClient, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return &DiscordClient{session: session}, nil
}

func (c *DiscordClient) ListGuilds(ctx context.Context) ([]clients.SourceGuild, error) {
	var guilds []clients.SourceGuild
	afterID := ""
	for {
		batch, err := c.session.UserGuilds(guildPageLimit, "", afterID, false, discordgo.WithContext(ctx))
		if err != nil {
			return nil, tagDiscordError(fmt.Errorf("failed to list guilds: %w", err))
		}
		if len(batch) == 0 {
			break
		}
		for _, g := range batch {
			guilds = append(guilds, clients.SourceGuild{ID: g.ID, Name: g.Name})
		}
		afterID = batch[len(batch)-1].ID
		if len(batch) < guildPageLimit {
			break
		}
	}
	return guilds, nil
}

func (c *DiscordClient) ListChannels(ctx context.Context, guildID string) ([]clients.SourceChannel, error) {
	channels, err := c.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, tagDiscordError(fmt.Errorf("failed to list channels for guild %s: %w", guildID, err))
	}

	var result []clients.SourceChannel
	for _, ch := range channels {
		if !isTextChannel(ch.Type) {
			continue
		}
		result = append(result, clients.SourceChannel{
			ID:    ch.ID,
			Name:  ch.Name,
			Topic: ch.Topic,
		})
	}
	return result, nil
}

func (c *DiscordClient) ListMessages(
	ctx context.Context,
	containerID string,
	query clients.MessageQuery,
) ([]clients.SourceMessage, error) {
	beforeID := query.Before.OrElse("")
	afterID := query.After.OrElse("")

	messages, err := c.session.ChannelMessages(
		containerID,
		query.Limit,
		beforeID,
		afterID,
		"",
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return nil, tagDiscordError(fmt.Errorf("failed to list messages for container %s: %w", containerID, err))
	}

	result := make([]clients.SourceMessage, 0, len(messages))
	for _, msg := range messages {
		result = append(result, convertMessage(msg))
	}
	return result, nil
}

func (c *DiscordClient) ListActiveThreads(ctx context.Context, channelID string) ([]clients.SourceThread, error) {
	list, err := c.session.ThreadsActive(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, tagDiscordError(fmt.Errorf("failed to list active threads for channel %s: %w", channelID, err))
	}
	return convertThreads(list.Threads), nil
}

func (c *DiscordClient) ListArchivedThreads(ctx context.Context, channelID string) ([]clients.SourceThread, error) {
	list, err := c.session.ThreadsArchived(channelID, nil, 0, discordgo.WithContext(ctx))
	if err != nil {
		return nil, tagDiscordError(fmt.Errorf("failed to list archived threads for channel %s: %w", channelID, err))
	}
	return convertThreads(list.Threads), nil
}

func (c *DiscordClient) ListMembers(ctx context.Context, guildID string) ([]clients.SourceMember, error) {
	var members []clients.SourceMember
	afterID := ""
	for {
		batch, err := c.session.GuildMembers(guildID, afterID, memberPageLimit, discordgo.WithContext(ctx))
		if err != nil {
			return nil, tagDiscordError(fmt.Errorf("failed to list members for guild %s: %w", guildID, err))
		}
		if len(batch) == 0 {
			break
		}
		for _, m := range batch {
			nickname := m.Nick
			if nickname == "" {
				nickname = m.User.Username
			}
			members = append(members, clients.SourceMember{
				ID:       m.User.ID,
				Username: m.User.Username,
				Nickname: nickname,
			})
		}
		afterID = batch[len(batch)-1].User.ID
		if len(batch) < memberPageLimit {
			break
		}
	}
	return members, nil
}

func (c *DiscordClient) ListRoles(ctx context.Context, guildID string) ([]clients.SourceRole, error) {
	roles, err := c.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, tagDiscordError(fmt.Errorf("failed to list roles for guild %s: %w", guildID, err))
	}

	result := make([]clients.SourceRole, 0, len(roles))
	for _, r := range roles {
		result = append(result, clients.SourceRole{
			ID:      r.ID,
			Name:    r.Name,
			Hoisted: r.Hoist,
		})
	}
	return result, nil
}

func (c *DiscordClient) ListReactionUsers(
	ctx context.Context,
	channelID, messageID, emoji string,
) ([]clients.SourceUser, error) {
	users, err := c.session.MessageReactions(
		channelID,
		messageID,
		emoji,
		100,
		"",
		"",
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return nil, tagDiscordError(
			fmt.Errorf("failed to list reaction users for message %s emoji %s: %w", messageID, emoji, err),
		)
	}

	result := make([]clients.SourceUser, 0, len(users))
	for _, u := range users {
		result = append(result, clients.SourceUser{ID: u.ID, Username: u.Username})
	}
	return result, nil
}

// isTextChannel reports whether the channel is text-capable and not a thread
func isTextChannel(channelType discordgo.ChannelType) bool {
	switch channelType {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
		return true
	}
	return false
}

func convertThreads(threads []*discordgo.Channel) []clients.SourceThread {
	result := make([]clients.SourceThread, 0, len(threads))
	for _, th := range threads {
		createdAt, err := discordgo.SnowflakeTimestamp(th.ID)
		if err != nil {
			createdAt = time.Now()
		}
		result = append(result, clients.SourceThread{
			ID:         th.ID,
			ParentID:   th.ParentID,
			Title:      th.Name,
			Topic:      th.Topic,
			ThreadType: int(th.Type),
			CreatedAt:  createdAt,
		})
	}
	return result
}

func convertMessage(msg *discordgo.Message) clients.SourceMessage {
	// Server nickname falls back to the global username when the member
	// record is absent from the REST payload
	nickname := msg.Author.Username
	if msg.Member != nil && msg.Member.Nick != "" {
		nickname = msg.Member.Nick
	}

	attachments := make([]clients.SourceAttachment, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		attachments = append(attachments, clients.SourceAttachment{URL: a.URL})
	}

	reactions := make([]clients.SourceReaction, 0, len(msg.Reactions))
	for _, r := range msg.Reactions {
		if r.Emoji == nil {
			continue
		}
		reactions = append(reactions, clients.SourceReaction{
			Emoji: r.Emoji.APIName(),
			Count: r.Count,
		})
	}

	mentionUserIDs := make([]string, 0, len(msg.Mentions))
	for _, u := range msg.Mentions {
		mentionUserIDs = append(mentionUserIDs, u.ID)
	}

	return clients.SourceMessage{
		ID:               msg.ID,
		AuthorID:         msg.Author.ID,
		AuthorUsername:   msg.Author.Username,
		AuthorNickname:   nickname,
		Content:          msg.Content,
		CreatedAt:        msg.Timestamp,
		Attachments:      attachments,
		Reactions:        reactions,
		MentionUserIDs:   mentionUserIDs,
		MentionRoleIDs:   msg.MentionRoles,
		MentionsEveryone: msg.MentionEveryone,
	}
}

// tagDiscordError classifies a Discord REST failure. Missing Access (50001)
// drives the skip-not-abort policy; everything else is treated as transient.
func tagDiscordError(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil &&
		restErr.Message.Code == discordgo.ErrCodeMissingAccess {
		return core.NewPipelineError(core.ErrorKindAccessDenied, err)
	}
	return core.NewPipelineError(core.ErrorKindTransient, err)
}
