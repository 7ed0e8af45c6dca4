package models

import (
	"time"
)

// Organization groups the mirrored servers. Exactly one row per distinct name.
type Organization struct {
	ID        int64     `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Server mirrors a Discord guild. ExternalID is the guild's snowflake id.
type Server struct {
	ID             int64     `db:"id"              json:"id"`
	ExternalID     string    `db:"external_id"     json:"external_id"`
	OrganizationID int64     `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name"            json:"name"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"      json:"updated_at"`
}

// Channel mirrors a text-capable, non-thread guild channel.
type Channel struct {
	ID         int64     `db:"id"          json:"id"`
	ExternalID string    `db:"external_id" json:"external_id"`
	ServerID   int64     `db:"server_id"   json:"server_id"`
	Name       string    `db:"name"        json:"name"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"  json:"updated_at"`
}

// Thread mirrors a thread under a parent channel. The parent channel row must
// exist before the thread is resolved.
type Thread struct {
	ID          int64     `db:"id"          json:"id"`
	ExternalID  string    `db:"external_id" json:"external_id"`
	ChannelID   int64     `db:"channel_id"  json:"channel_id"`
	Title       string    `db:"title"       json:"title"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}

// User mirrors a guild member or message author. Name is the global username,
// Nickname the per-server nickname (falls back to the global username).
type User struct {
	ID         int64     `db:"id"          json:"id"`
	ExternalID string    `db:"external_id" json:"external_id"`
	ServerID   int64     `db:"server_id"   json:"server_id"`
	Name       string    `db:"name"        json:"name"`
	Nickname   string    `db:"nickname"    json:"nickname"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"  json:"updated_at"`
}

// ChannelUser records a user's participation in a channel. JoinedAt tracks the
// latest observed activity, never moving backwards.
type ChannelUser struct {
	ChannelID int64     `db:"channel_id" json:"channel_id"`
	UserID    int64     `db:"user_id"    json:"user_id"`
	JoinedAt  time.Time `db:"joined_at"  json:"joined_at"`
}

// Role mirrors a guild role. The implicit @everyone role is excluded.
type Role struct {
	ID          int64     `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
}

// Message mirrors a channel or thread message. ThreadID is nil for messages
// posted directly in the channel. Content is updated in place on edit.
type Message struct {
	ID         int64     `db:"id"          json:"id"`
	ExternalID string    `db:"external_id" json:"external_id"`
	ChannelID  int64     `db:"channel_id"  json:"channel_id"`
	ThreadID   *int64    `db:"thread_id"   json:"thread_id,omitempty"`
	UserID     int64     `db:"user_id"     json:"user_id"`
	Content    string    `db:"content"     json:"content"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"  json:"updated_at"`
}

// Attachment is a file attached to a message.
type Attachment struct {
	ID        int64     `db:"id"         json:"id"`
	MessageID int64     `db:"message_id" json:"message_id"`
	URL       string    `db:"url"        json:"url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Reaction records one user's emoji reaction to a message.
type Reaction struct {
	ID           int64     `db:"id"            json:"id"`
	MessageID    int64     `db:"message_id"    json:"message_id"`
	UserID       int64     `db:"user_id"       json:"user_id"`
	ReactionType string    `db:"reaction_type" json:"reaction_type"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
}

// MentionType classifies who a message mention targets.
type MentionType string

const (
	MentionTypeUser MentionType = "user"
	MentionTypeRole MentionType = "role"
	MentionTypeAll  MentionType = "all"
	MentionTypeHere MentionType = "here"
)

// Mention records a mention inside a message. TargetExternalID is nil for the
// "all" and "here" mention types.
type Mention struct {
	ID               int64       `db:"id"                 json:"id"`
	MessageID        int64       `db:"message_id"         json:"message_id"`
	MentionType      MentionType `db:"mention_type"       json:"mention_type"`
	TargetExternalID *string     `db:"target_external_id" json:"target_external_id,omitempty"`
	CreatedAt        time.Time   `db:"created_at"         json:"created_at"`
}
