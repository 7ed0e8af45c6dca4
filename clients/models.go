package clients

import (
	"time"

	"github.com/samber/mo"
)

// SourceGuild is a server as reported by the content source.
type SourceGuild struct {
	ID   string
	Name string
}

// SourceChannel is a text-capable, non-thread channel.
type SourceChannel struct {
	ID    string
	Name  string
	Topic string
}

// SourceThread is an active or archived thread. ThreadType carries the
// source's raw channel type so the walker can validate it.
type SourceThread struct {
	ID         string
	ParentID   string
	Title      string
	Topic      string
	ThreadType int
	CreatedAt  time.Time
}

// Discord channel types for announcement, public and private threads.
const (
	threadTypeAnnouncement = 10
	threadTypePublic       = 11
	threadTypePrivate      = 12
)

// IsValidThreadType reports whether the raw channel type is a thread type.
func IsValidThreadType(threadType int) bool {
	switch threadType {
	case threadTypeAnnouncement, threadTypePublic, threadTypePrivate:
		return true
	}
	return false
}

// SourceMember is a current guild member.
type SourceMember struct {
	ID       string
	Username string
	Nickname string
}

// SourceUser is a bare user reference (e.g. a reacting user).
type SourceUser struct {
	ID       string
	Username string
}

// SourceRole is a guild role. The implicit @everyone role shares the guild's
// id, which is how the walker excludes it.
type SourceRole struct {
	ID      string
	Name    string
	Hoisted bool
}

// SourceAttachment is a file attached to a message.
type SourceAttachment struct {
	URL string
}

// SourceReaction is an aggregated emoji reaction on a message. The individual
// reacting users are fetched separately via ListReactionUsers.
type SourceReaction struct {
	Emoji string
	Count int
}

// SourceMessage is one message with its denormalized author and annotations.
type SourceMessage struct {
	ID             string
	AuthorID       string
	AuthorUsername string
	// AuthorNickname is the server nickname, falling back to the global
	// username when no member record is available.
	AuthorNickname string
	Content        string
	CreatedAt      time.Time

	Attachments      []SourceAttachment
	Reactions        []SourceReaction
	MentionUserIDs   []string
	MentionRoleIDs   []string
	MentionsEveryone bool
}

// VectorItem is one embedding keyed by the message external id. Metadata
// carries enough denormalized context to make the index self-describing
// without a join back to the relational store.
type VectorItem struct {
	ID       string
	Values   []float32
	Metadata map[string]any
}

// MessageQuery bounds one pagination fetch. At most one of Before/After should
// be set; both absent means "most recent batch".
type MessageQuery struct {
	Limit  int
	Before mo.Option[string]
	After  mo.Option[string]
}
