package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	apperrors "ruby-bot/pkg/errors"
)

// ============================================================================
// Conversation Operations
// ============================================================================

// LogMessage appends one conversation log row and links it to the user
// and the channel's conversation node. Rows are never mutated or deleted.
func (r *Repository) LogMessage(ctx context.Context, userID, channelID, role, authorName, content string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		MATCH (u:User {id: $userID})
		MERGE (c:Conversation {channel_id: $channelID})
		ON CREATE SET c.id = $convID, c.started_at = datetime($now)
		CREATE (m:Message {
			id: $msgID,
			content: $content,
			role: $role,
			author_name: $authorName,
			created_at: datetime($now)
		})
		MERGE (u)-[:SENT]->(m)
		MERGE (c)-[:CONTAINS]->(m)
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"userID":     userID,
		"channelID":  channelID,
		"convID":     uuid.New().String(),
		"msgID":      uuid.New().String(),
		"role":       role,
		"authorName": authorName,
		"content":    content,
		"now":        now,
	})
	if err != nil {
		return apperrors.NewGraphQueryFailed("log message", err)
	}
	return nil
}

// GetChannelHistory retrieves the most recent messages in a channel, in
// chronological order.
func (r *Repository) GetChannelHistory(ctx context.Context, channelID string, limit int) ([]LogEntry, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	if limit < 1 {
		limit = 20
	}

	query := `
		MATCH (c:Conversation {channel_id: $channelID})-[:CONTAINS]->(m:Message)
		OPTIONAL MATCH (u:User)-[:SENT]->(m)
		RETURN m.id as id, u.id as user_id, m.role as role,
		       m.author_name as author_name, m.content as content, m.created_at as created_at
		ORDER BY m.created_at DESC
		LIMIT $limit
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"channelID": channelID,
		"limit":     limit,
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("get channel history", err)
	}

	var entries []LogEntry
	for result.Next(ctx) {
		record := result.Record()
		entry := LogEntry{
			ID:         getStringFromRecord(record, "id"),
			UserID:     getStringFromRecord(record, "user_id"),
			ChannelID:  channelID,
			Role:       getStringFromRecord(record, "role"),
			AuthorName: getStringFromRecord(record, "author_name"),
			Content:    getStringFromRecord(record, "content"),
		}
		if t, ok := getTimeFromRecord(record, "created_at"); ok {
			entry.CreatedAt = t
		}
		entries = append(entries, entry)
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("get channel history", err)
	}

	// Reverse to get chronological order
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	return entries, nil
}

// MessageCount counts every log row tied to a user, both their messages
// and the replies logged against them. The periodic-update trigger keys
// off this number.
func (r *Repository) MessageCount(ctx context.Context, userID string) (int64, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {id: $userID})-[:SENT]->(m:Message)
		RETURN count(m) as total
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID,
	})
	if err != nil {
		return 0, apperrors.NewGraphQueryFailed("message count", err)
	}

	if result.Next(ctx) {
		return getInt64FromRecord(result.Record(), "total"), nil
	}
	if err := result.Err(); err != nil {
		return 0, apperrors.NewGraphQueryFailed("message count", err)
	}
	return 0, nil
}

// HasHistory reports whether a user has any logged message at all. The
// ambient gate uses this so Ruby never interjects at strangers.
func (r *Repository) HasHistory(ctx context.Context, userID string) (bool, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {id: $userID})-[:SENT]->(m:Message)
		RETURN m.id as id
		LIMIT 1
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID,
	})
	if err != nil {
		return false, apperrors.NewGraphQueryFailed("has history", err)
	}

	if result.Next(ctx) {
		return true, nil
	}
	if err := result.Err(); err != nil {
		return false, apperrors.NewGraphQueryFailed("has history", err)
	}
	return false, nil
}

// LastUserMessageAt returns the timestamp of the user's most recent
// inbound message, before the current one is logged. ok=false means they
// have never spoken.
func (r *Repository) LastUserMessageAt(ctx context.Context, userID string) (time.Time, bool, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {id: $userID})-[:SENT]->(m:Message {role: $role})
		RETURN m.created_at as created_at
		ORDER BY m.created_at DESC
		LIMIT 1
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID,
		"role":   LogRoleUser,
	})
	if err != nil {
		return time.Time{}, false, apperrors.NewGraphQueryFailed("last user message", err)
	}

	if result.Next(ctx) {
		if t, ok := getTimeFromRecord(result.Record(), "created_at"); ok {
			return t, true, nil
		}
	}
	if err := result.Err(); err != nil {
		return time.Time{}, false, apperrors.NewGraphQueryFailed("last user message", err)
	}
	return time.Time{}, false, nil
}
