package graph

import (
	"context"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"ruby-bot/internal/relationship"
	apperrors "ruby-bot/pkg/errors"
)

// These tests require a running Neo4j instance at bolt://localhost:7687.
// Run with -short to skip them.

func TestRepository_GetOrCreateUserContext(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	discordID := "test-user-" + time.Now().Format("20060102150405")
	defer cleanupUser(ctx, driver, discordID)

	uc, err := repo.GetOrCreateUserContext(ctx, discordID, "testuser", "Test User")
	if err != nil {
		t.Fatalf("GetOrCreateUserContext failed: %v", err)
	}

	if !uc.IsNew {
		t.Error("Expected first contact to be flagged new")
	}
	if uc.Relationship.Role != relationship.RoleNeutral {
		t.Errorf("Expected neutral role, got %s", uc.Relationship.Role)
	}
	if uc.Relationship.Affinity != 0 || uc.Relationship.Trust != 0 {
		t.Errorf("Expected zeroed scores, got %+v", uc.Relationship)
	}
	if uc.Nickname != "Test User" {
		t.Errorf("Expected display-name fallback nickname, got %q", uc.Nickname)
	}

	// Second load is not new and keeps the same surrogate key
	again, err := repo.GetOrCreateUserContext(ctx, discordID, "testuser", "Test User")
	if err != nil {
		t.Fatalf("Second GetOrCreateUserContext failed: %v", err)
	}
	if again.IsNew {
		t.Error("Expected known user not flagged new")
	}
	if again.User.ID != uc.User.ID {
		t.Errorf("Expected stable user id, got %s then %s", uc.User.ID, again.User.ID)
	}
}

func TestRepository_UpdateRelationship(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	discordID := "test-user-" + time.Now().Format("20060102150405")
	defer cleanupUser(ctx, driver, discordID)

	uc, err := repo.GetOrCreateUserContext(ctx, discordID, "testuser", "Test User")
	if err != nil {
		t.Fatalf("GetOrCreateUserContext failed: %v", err)
	}

	want := relationship.Relationship{
		Role: relationship.RoleFriend, Affinity: 45, Trust: 20, Jealousy: 3, Insults: 1, Compliments: 4,
	}
	stored, err := repo.UpdateRelationship(ctx, uc.User.ID, want)
	if err != nil {
		t.Fatalf("UpdateRelationship failed: %v", err)
	}
	if stored != want {
		t.Errorf("Stored state %+v, want %+v", stored, want)
	}

	// The write is visible on the next context load
	reloaded, err := repo.GetOrCreateUserContext(ctx, discordID, "testuser", "Test User")
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if reloaded.Relationship != want {
		t.Errorf("Reloaded state %+v, want %+v", reloaded.Relationship, want)
	}
}

func TestRepository_UpdateRelationship_UnknownUser(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	_, err = repo.UpdateRelationship(ctx, "no-such-user", relationship.Relationship{Role: relationship.RoleNeutral})
	if !apperrors.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestRepository_ConversationLog(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	stamp := time.Now().Format("20060102150405")
	discordID := "test-user-" + stamp
	channelID := "test-chan-" + stamp
	defer cleanupUser(ctx, driver, discordID)
	defer cleanupChannel(ctx, driver, channelID)

	uc, err := repo.GetOrCreateUserContext(ctx, discordID, "testuser", "Test User")
	if err != nil {
		t.Fatalf("GetOrCreateUserContext failed: %v", err)
	}

	hasHistory, err := repo.HasHistory(ctx, uc.User.ID)
	if err != nil {
		t.Fatalf("HasHistory failed: %v", err)
	}
	if hasHistory {
		t.Error("Expected no history before first log write")
	}
	if _, seen, err := repo.LastUserMessageAt(ctx, uc.User.ID); err != nil || seen {
		t.Errorf("Expected never-seen user, got seen=%v err=%v", seen, err)
	}

	if err := repo.LogMessage(ctx, uc.User.ID, channelID, LogRoleUser, "Test User", "hello there"); err != nil {
		t.Fatalf("LogMessage failed: %v", err)
	}
	if err := repo.LogMessage(ctx, uc.User.ID, channelID, LogRoleAssistant, "Ruby", "heyyy"); err != nil {
		t.Fatalf("LogMessage failed: %v", err)
	}

	history, err := repo.GetChannelHistory(ctx, channelID, 20)
	if err != nil {
		t.Fatalf("GetChannelHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 history rows, got %d", len(history))
	}
	if history[0].Content != "hello there" || history[1].Content != "heyyy" {
		t.Errorf("Expected chronological order, got %+v", history)
	}

	count, err := repo.MessageCount(ctx, uc.User.ID)
	if err != nil {
		t.Fatalf("MessageCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected count 2 across both roles, got %d", count)
	}

	_, seen, err := repo.LastUserMessageAt(ctx, uc.User.ID)
	if err != nil {
		t.Fatalf("LastUserMessageAt failed: %v", err)
	}
	if !seen {
		t.Error("Expected user seen after logging")
	}
}

// Property and direction validation happens before any query runs, so
// these need no database.
func TestRepository_RankRelationships_Validation(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(nil)

	if _, err := repo.RankRelationships(ctx, "username", "DESC"); err == nil {
		t.Error("Expected unrankable property to be rejected")
	}
	if _, err := repo.RankRelationships(ctx, PropAffinity, "SIDEWAYS"); err == nil {
		t.Error("Expected invalid direction to be rejected")
	}
	if _, err := repo.UsersWithZeroCounter(ctx, "role"); err == nil {
		t.Error("Expected non-counter property to be rejected")
	}
}

func cleanupUser(ctx context.Context, driver neo4j.DriverWithContext, discordID string) {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)
	_, _ = session.Run(ctx, `
		MATCH (u:User {discord_id: $id})
		OPTIONAL MATCH (u)-[:HAS_RELATIONSHIP]->(rel:Relationship)
		OPTIONAL MATCH (u)-[:HAS_PERSONALITY]->(p:Personality)
		OPTIONAL MATCH (u)-[:SENT]->(m:Message)
		DETACH DELETE u, rel, p, m
	`, map[string]interface{}{"id": discordID})
}

func cleanupChannel(ctx context.Context, driver neo4j.DriverWithContext, channelID string) {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)
	_, _ = session.Run(ctx, `
		MATCH (c:Conversation {channel_id: $id})
		DETACH DELETE c
	`, map[string]interface{}{"id": channelID})
}

func createTestDriver() (neo4j.DriverWithContext, error) {
	uri := "bolt://localhost:7687"
	user := "neo4j"
	password := "password"

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}

	return driver, nil
}
