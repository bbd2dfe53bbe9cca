package agent

import (
	"context"
	"time"

	"ruby-bot/internal/adapter"
	"ruby-bot/internal/graph"
	"ruby-bot/internal/relationship"
)

// Store is the slice of the graph repository the agent needs.
type Store interface {
	GetOrCreateUserContext(ctx context.Context, discordID, username, displayName string) (*graph.UserContext, error)
	GetChannelHistory(ctx context.Context, channelID string, limit int) ([]graph.LogEntry, error)
	LogMessage(ctx context.Context, userID, channelID, role, authorName, content string) error
	MessageCount(ctx context.Context, userID string) (int64, error)
	LastUserMessageAt(ctx context.Context, userID string) (time.Time, bool, error)
	UpdateRelationship(ctx context.Context, userID string, rel relationship.Relationship) (relationship.Relationship, error)
	SetNickname(ctx context.Context, userID, nickname string) error
	SetVibeSummary(ctx context.Context, userID, summary string) error
	RankRelationships(ctx context.Context, property, direction string) (*graph.RankedUser, error)
	UsersWithZeroCounter(ctx context.Context, property string) ([]graph.RankedUser, error)
	FindUserWithRole(ctx context.Context, role relationship.Role) (*graph.RankedUser, error)
}

// LLM is the generation and classification surface the agent needs.
type LLM interface {
	Generate(ctx context.Context, req adapter.GenerateRequest) (string, error)
	Classify(ctx context.Context, prompt string) (*adapter.EmotionReport, error)
}

// Sender delivers outbound text to a channel.
type Sender interface {
	Send(channelID, text string) error
}
