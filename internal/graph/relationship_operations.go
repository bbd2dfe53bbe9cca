package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"ruby-bot/internal/relationship"
	apperrors "ruby-bot/pkg/errors"
)

// ============================================================================
// Relationship Operations
// ============================================================================

// UpdateRelationship writes the full relationship row for a user and
// returns the stored state, so callers can keep using it in the same turn
// without a second read.
func (r *Repository) UpdateRelationship(ctx context.Context, userID string, rel relationship.Relationship) (relationship.Relationship, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {id: $userID})-[:HAS_RELATIONSHIP]->(rel:Relationship)
		SET rel.role = $role,
		    rel.affinity_score = $affinity,
		    rel.trust_score = $trust,
		    rel.jealousy_meter = $jealousy,
		    rel.insults_count = $insults,
		    rel.compliments_count = $compliments
		RETURN rel.role as role, rel.affinity_score as affinity_score,
		       rel.trust_score as trust_score, rel.jealousy_meter as jealousy_meter,
		       rel.insults_count as insults_count, rel.compliments_count as compliments_count
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID":      userID,
		"role":        string(rel.Role),
		"affinity":    rel.Affinity,
		"trust":       rel.Trust,
		"jealousy":    rel.Jealousy,
		"insults":     rel.Insults,
		"compliments": rel.Compliments,
	})
	if err != nil {
		return relationship.Relationship{}, apperrors.NewGraphQueryFailed("update relationship", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return relationship.Relationship{}, apperrors.NewGraphQueryFailed("update relationship", err)
		}
		return relationship.Relationship{}, apperrors.NewUserNotFound(userID)
	}

	stored := relationshipFromRecord(result.Record())
	r.logger.Debug("Relationship updated",
		zap.String("user_id", userID),
		zap.String("role", string(stored.Role)),
		zap.Int("affinity", stored.Affinity),
		zap.Int("trust", stored.Trust),
		zap.Int("jealousy", stored.Jealousy),
	)
	return stored, nil
}

// SetRole sets a relationship role directly (operator override)
func (r *Repository) SetRole(ctx context.Context, userID string, role relationship.Role) error {
	return r.setRelationshipField(ctx, userID, "role", string(role))
}

// SetAffinity sets the affinity score directly (operator override)
func (r *Repository) SetAffinity(ctx context.Context, userID string, score int) error {
	return r.setRelationshipField(ctx, userID, PropAffinity, score)
}

// SetTrust sets the trust score directly (operator override)
func (r *Repository) SetTrust(ctx context.Context, userID string, score int) error {
	return r.setRelationshipField(ctx, userID, PropTrust, score)
}

func (r *Repository) setRelationshipField(ctx context.Context, userID, field string, value interface{}) error {
	if field != "role" && !rankableProps[field] {
		return fmt.Errorf("unknown relationship field: %s", field)
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (u:User {id: $userID})-[:HAS_RELATIONSHIP]->(rel:Relationship)
		SET rel.%s = $value
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

// RankRelationships returns the single top user ordered by the given
// score property. direction is "DESC" for maxima, "ASC" for minima. Ties
// break arbitrarily. Returns nil when no users exist yet.
func (r *Repository) RankRelationships(ctx context.Context, property, direction string) (*RankedUser, error) {
	if !rankableProps[property] {
		return nil, fmt.Errorf("unrankable property: %s", property)
	}
	if direction != "ASC" && direction != "DESC" {
		return nil, fmt.Errorf("invalid direction: %s", direction)
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (u:User)-[:HAS_RELATIONSHIP]->(rel:Relationship)
		OPTIONAL MATCH (u)-[:HAS_PERSONALITY]->(p:Personality)
		RETURN u.id as id, u.discord_id as discord_id,
		       CASE WHEN p.nickname_preference <> '' THEN p.nickname_preference ELSE u.username END as name,
		       rel.%s as score
		ORDER BY score %s
		LIMIT 1
	`, property, direction)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("rank relationships", err)
	}

	if result.Next(ctx) {
		return rankedUserFromRecord(result.Record()), nil
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("rank relationships", err)
	}
	return nil, nil
}

// UsersWithZeroCounter returns every user whose counter property is
// exactly zero. Callers pick randomly among them so the same user is not
// named every time the set is large.
func (r *Repository) UsersWithZeroCounter(ctx context.Context, property string) ([]RankedUser, error) {
	if !rankableProps[property] {
		return nil, fmt.Errorf("unrankable property: %s", property)
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (u:User)-[:HAS_RELATIONSHIP]->(rel:Relationship)
		WHERE rel.%s = 0
		OPTIONAL MATCH (u)-[:HAS_PERSONALITY]->(p:Personality)
		RETURN u.id as id, u.discord_id as discord_id,
		       CASE WHEN p.nickname_preference <> '' THEN p.nickname_preference ELSE u.username END as name,
		       rel.%s as score
	`, property, property)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("zero-counter users", err)
	}

	var users []RankedUser
	for result.Next(ctx) {
		users = append(users, *rankedUserFromRecord(result.Record()))
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("zero-counter users", err)
	}
	return users, nil
}

// FindUserWithRole returns any user holding the given role, or nil.
func (r *Repository) FindUserWithRole(ctx context.Context, role relationship.Role) (*RankedUser, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User)-[:HAS_RELATIONSHIP]->(rel:Relationship {role: $role})
		OPTIONAL MATCH (u)-[:HAS_PERSONALITY]->(p:Personality)
		RETURN u.id as id, u.discord_id as discord_id,
		       CASE WHEN p.nickname_preference <> '' THEN p.nickname_preference ELSE u.username END as name,
		       rel.affinity_score as score
		LIMIT 1
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"role": string(role),
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("find user with role", err)
	}

	if result.Next(ctx) {
		return rankedUserFromRecord(result.Record()), nil
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("find user with role", err)
	}
	return nil, nil
}

func relationshipFromRecord(record *neo4j.Record) relationship.Relationship {
	return relationship.Relationship{
		Role:        relationship.Role(getStringFromRecord(record, "role")),
		Affinity:    getIntFromRecord(record, "affinity_score"),
		Trust:       getIntFromRecord(record, "trust_score"),
		Jealousy:    getIntFromRecord(record, "jealousy_meter"),
		Insults:     getIntFromRecord(record, "insults_count"),
		Compliments: getIntFromRecord(record, "compliments_count"),
	}
}

func rankedUserFromRecord(record *neo4j.Record) *RankedUser {
	return &RankedUser{
		UserID:    getStringFromRecord(record, "id"),
		DiscordID: getStringFromRecord(record, "discord_id"),
		Name:      getStringFromRecord(record, "name"),
		Score:     getIntFromRecord(record, "score"),
	}
}
