package graph

import (
	"time"

	"ruby-bot/internal/relationship"
)

// User represents a user node in the graph
type User struct {
	ID        string    `json:"id"` // store-assigned surrogate key
	DiscordID string    `json:"discord_id"`
	Username  string    `json:"username"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// UserContext bundles everything Ruby knows about one user at turn start.
// Nickname is the effective display name: the stored nickname preference
// when set, otherwise the platform display name from the inbound event.
type UserContext struct {
	User         User                      `json:"user"`
	Nickname     string                    `json:"nickname"`
	DisplayName  string                    `json:"display_name"`
	Relationship relationship.Relationship `json:"relationship"`
	Personality  relationship.Personality  `json:"personality"`
	IsNew        bool                      `json:"is_new"`
}

// LogEntry is one append-only conversation log row
type LogEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ChannelID  string    `json:"channel_id"`
	Role       string    `json:"role"` // user, assistant
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Conversation log roles
const (
	LogRoleUser      = "user"
	LogRoleAssistant = "assistant"
)

// RankedUser is one row of a cross-user relationship query
type RankedUser struct {
	UserID    string `json:"user_id"`
	DiscordID string `json:"discord_id"`
	Name      string `json:"name"` // nickname preference when set, else username
	Score     int    `json:"score"`
}

// Relationship score/counter columns usable in ranked and zero-counter
// queries. Property names cannot be bound as Cypher parameters, so only
// these whitelisted values are interpolated.
const (
	PropAffinity    = "affinity_score"
	PropTrust       = "trust_score"
	PropJealousy    = "jealousy_meter"
	PropInsults     = "insults_count"
	PropCompliments = "compliments_count"
)

var rankableProps = map[string]bool{
	PropAffinity:    true,
	PropTrust:       true,
	PropJealousy:    true,
	PropInsults:     true,
	PropCompliments: true,
}
