package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"ruby-bot/internal/relationship"
	apperrors "ruby-bot/pkg/errors"
)

// ============================================================================
// User Operations
// ============================================================================

// GetOrCreateUserContext loads a user's full context by Discord id,
// creating the User, Relationship and Personality nodes together on first
// contact. Creation is a single Cypher statement, so a user can never
// exist without its relationship and personality rows.
func (r *Repository) GetOrCreateUserContext(ctx context.Context, discordID, username, displayName string) (*UserContext, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		MERGE (u:User {discord_id: $discordID})
		ON CREATE SET
			u.id = $newID,
			u.username = $username,
			u.first_seen = datetime($now),
			u.last_seen = datetime($now)
		ON MATCH SET
			u.last_seen = datetime($now),
			u.username = CASE WHEN $username <> '' THEN $username ELSE u.username END
		MERGE (u)-[:HAS_RELATIONSHIP]->(rel:Relationship)
		ON CREATE SET
			rel.role = 'neutral',
			rel.affinity_score = 0,
			rel.trust_score = 0,
			rel.jealousy_meter = 0,
			rel.insults_count = 0,
			rel.compliments_count = 0
		MERGE (u)-[:HAS_PERSONALITY]->(p:Personality)
		ON CREATE SET
			p.nickname_preference = '',
			p.vibe_summary = ''
		RETURN u.id as id, u.discord_id as discord_id, u.username as username,
		       u.first_seen = datetime($now) as is_new,
		       rel.role as role, rel.affinity_score as affinity_score,
		       rel.trust_score as trust_score, rel.jealousy_meter as jealousy_meter,
		       rel.insults_count as insults_count, rel.compliments_count as compliments_count,
		       p.nickname_preference as nickname_preference, p.vibe_summary as vibe_summary
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"discordID": discordID,
		"username":  username,
		"newID":     uuid.New().String(),
		"now":       now,
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("get/create user context", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, apperrors.NewGraphQueryFailed("get/create user context", err)
		}
		return nil, fmt.Errorf("no record returned for user %s", discordID)
	}

	record := result.Record()
	uc := &UserContext{
		User: User{
			ID:        getStringFromRecord(record, "id"),
			DiscordID: getStringFromRecord(record, "discord_id"),
			Username:  getStringFromRecord(record, "username"),
		},
		DisplayName: displayName,
		Relationship: relationship.Relationship{
			Role:        relationship.Role(getStringFromRecord(record, "role")),
			Affinity:    getIntFromRecord(record, "affinity_score"),
			Trust:       getIntFromRecord(record, "trust_score"),
			Jealousy:    getIntFromRecord(record, "jealousy_meter"),
			Insults:     getIntFromRecord(record, "insults_count"),
			Compliments: getIntFromRecord(record, "compliments_count"),
		},
		Personality: relationship.Personality{
			NicknamePreference: getStringFromRecord(record, "nickname_preference"),
			VibeSummary:        getStringFromRecord(record, "vibe_summary"),
		},
		IsNew: getBoolFromRecord(record, "is_new"),
	}

	uc.Nickname = uc.Personality.NicknamePreference
	if uc.Nickname == "" {
		uc.Nickname = displayName
	}

	if uc.IsNew {
		r.logger.Info("First contact with user",
			zap.String("discord_id", discordID),
			zap.String("username", username),
		)
	}

	return uc, nil
}

// FindUserIDByDiscordID resolves a Discord id to the internal surrogate
// key without creating anything. Operator commands use this so a typo'd
// mention cannot spawn a user.
func (r *Repository) FindUserIDByDiscordID(ctx context.Context, discordID string) (string, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {discord_id: $discordID})
		RETURN u.id as id
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"discordID": discordID,
	})
	if err != nil {
		return "", apperrors.NewGraphQueryFailed("find user by discord id", err)
	}

	if result.Next(ctx) {
		return getStringFromRecord(result.Record(), "id"), nil
	}
	return "", apperrors.NewUserNotFound(discordID)
}

// GetUserContextByDiscordID loads a known user's context without creating
// anything. Read-only surfaces (the HTTP API) use this.
func (r *Repository) GetUserContextByDiscordID(ctx context.Context, discordID string) (*UserContext, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {discord_id: $discordID})
		MATCH (u)-[:HAS_RELATIONSHIP]->(rel:Relationship)
		MATCH (u)-[:HAS_PERSONALITY]->(p:Personality)
		RETURN u.id as id, u.discord_id as discord_id, u.username as username,
		       rel.role as role, rel.affinity_score as affinity_score,
		       rel.trust_score as trust_score, rel.jealousy_meter as jealousy_meter,
		       rel.insults_count as insults_count, rel.compliments_count as compliments_count,
		       p.nickname_preference as nickname_preference, p.vibe_summary as vibe_summary
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"discordID": discordID,
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("get user context", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, apperrors.NewGraphQueryFailed("get user context", err)
		}
		return nil, apperrors.NewUserNotFound(discordID)
	}

	record := result.Record()
	uc := &UserContext{
		User: User{
			ID:        getStringFromRecord(record, "id"),
			DiscordID: getStringFromRecord(record, "discord_id"),
			Username:  getStringFromRecord(record, "username"),
		},
		Relationship: relationship.Relationship{
			Role:        relationship.Role(getStringFromRecord(record, "role")),
			Affinity:    getIntFromRecord(record, "affinity_score"),
			Trust:       getIntFromRecord(record, "trust_score"),
			Jealousy:    getIntFromRecord(record, "jealousy_meter"),
			Insults:     getIntFromRecord(record, "insults_count"),
			Compliments: getIntFromRecord(record, "compliments_count"),
		},
		Personality: relationship.Personality{
			NicknamePreference: getStringFromRecord(record, "nickname_preference"),
			VibeSummary:        getStringFromRecord(record, "vibe_summary"),
		},
	}
	uc.DisplayName = uc.User.Username
	uc.Nickname = uc.Personality.NicknamePreference
	if uc.Nickname == "" {
		uc.Nickname = uc.User.Username
	}
	return uc, nil
}

// SetNickname stores a nickname preference for a user
func (r *Repository) SetNickname(ctx context.Context, userID, nickname string) error {
	return r.setPersonalityField(ctx, userID, "nickname_preference", nickname)
}

// SetVibeSummary overwrites the short free-text mood label for a user
func (r *Repository) SetVibeSummary(ctx context.Context, userID, summary string) error {
	return r.setPersonalityField(ctx, userID, "vibe_summary", summary)
}

func (r *Repository) setPersonalityField(ctx context.Context, userID, field, value string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (u:User {id: $userID})-[:HAS_PERSONALITY]->(p:Personality)
		SET p.%s = $value
		RETURN u.id as id
	`, field)

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID,
		"value":  value,
	})
	if err != nil {
		return apperrors.NewGraphQueryFailed("set "+field, err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return apperrors.NewGraphQueryFailed("set "+field, err)
		}
		return apperrors.NewUserNotFound(userID)
	}
	return nil
}
