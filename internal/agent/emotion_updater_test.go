package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ruby-bot/internal/adapter"
	"ruby-bot/internal/relationship"
)

func TestShouldReassess(t *testing.T) {
	tests := []struct {
		storedCount int64
		every       int
		want        bool
	}{
		{0, 3, false},
		{1, 3, false},
		{2, 3, true},
		{3, 3, false},
		{5, 3, true},
		{8, 3, true},
		{4, 5, true},
		{5, 5, false},
	}

	for _, tt := range tests {
		if got := ShouldReassess(tt.storedCount, tt.every); got != tt.want {
			t.Errorf("ShouldReassess(%d, %d) = %v, want %v", tt.storedCount, tt.every, got, tt.want)
		}
	}
}

func TestRunPeriodicUpdate_AppliesReport(t *testing.T) {
	store := newMockStore()
	uc := store.addUser("disc-1", "Kat", relationship.Relationship{Role: relationship.RoleNeutral, Affinity: 38, Trust: 10})
	llm := &mockLLM{
		report: &adapter.EmotionReport{
			Deltas:      relationship.Deltas{Affinity: 4, Trust: 2, Compliments: 1},
			VibeSummary: "hyped about exams being over",
		},
	}

	updater := NewEmotionUpdater(store, llm)
	out := updater.RunPeriodicUpdate(context.Background(), uc, "Kat: we did it!!\n")

	if out.Affinity != 42 || out.Trust != 12 || out.Compliments != 1 {
		t.Errorf("Unexpected reassessed state: %+v", out)
	}
	if out.Role != relationship.RoleFriend {
		t.Errorf("Expected reclassification to friend, got %s", out.Role)
	}
	if store.vibeSummaries[uc.User.ID] != "hyped about exams being over" {
		t.Errorf("Expected vibe summary stored, got %q", store.vibeSummaries[uc.User.ID])
	}
	if uc.Personality.VibeSummary != "hyped about exams being over" {
		t.Error("Expected in-memory context refreshed")
	}
}

func TestRunPeriodicUpdate_ClassifierFailureIsNoOp(t *testing.T) {
	store := newMockStore()
	uc := store.addUser("disc-1", "Kat", relationship.Relationship{Role: relationship.RoleNeutral, Affinity: 10})
	llm := &mockLLM{classifyErr: errors.New("bad json")}

	updater := NewEmotionUpdater(store, llm)
	out := updater.RunPeriodicUpdate(context.Background(), uc, "Kat: hey\n")

	if out != uc.Relationship {
		t.Errorf("Expected old state back, got %+v", out)
	}
	if len(store.updated) != 0 {
		t.Error("Expected no store write on classifier failure")
	}
}

func TestRunPeriodicUpdate_StoreFailureKeepsOldState(t *testing.T) {
	store := newMockStore()
	uc := store.addUser("disc-1", "Kat", relationship.Relationship{Role: relationship.RoleNeutral, Affinity: 10})
	store.updateErr = errors.New("db down")
	llm := &mockLLM{report: &adapter.EmotionReport{Deltas: relationship.Deltas{Affinity: 5}}}

	updater := NewEmotionUpdater(store, llm)
	out := updater.RunPeriodicUpdate(context.Background(), uc, "Kat: hey\n")

	if out.Affinity != 10 {
		t.Errorf("Expected old affinity back, got %d", out.Affinity)
	}
}

func TestRunPeriodicUpdate_ClassifierPromptCarriesState(t *testing.T) {
	store := newMockStore()
	uc := store.addUser("disc-1", "Kat", relationship.Relationship{Role: relationship.RoleFavorite, Affinity: 85, Trust: 60, Jealousy: 12})
	llm := &mockLLM{report: &adapter.EmotionReport{}}

	updater := NewEmotionUpdater(store, llm)
	updater.RunPeriodicUpdate(context.Background(), uc, "Kat: hi\n")

	for _, want := range []string{"User Role: favorite", "Affinity: 85", "Trust: 60", "Jealousy: 12", "Kat: hi"} {
		if !strings.Contains(llm.lastClassifier, want) {
			t.Errorf("Classifier prompt missing %q", want)
		}
	}
}

func TestApplyDirectives_Scores(t *testing.T) {
	store := newMockStore()
	uc := store.addUser("disc-1", "Kat", relationship.Relationship{Role: relationship.RoleNeutral, Affinity: 10, Trust: 5})

	updater := NewEmotionUpdater(store, &mockLLM{})
	out := updater.ApplyDirectives(context.Background(), uc, []relationship.Directive{
		{Kind: relationship.DirectiveAffinity, Delta: 5},
		{Kind: relationship.DirectiveTrust, Delta: -2},
	})

	if out.Affinity != 15 || out.Trust != 3 {
		t.Errorf("Unexpected state after directives: %+v", out)
	}
	if _, ok := store.updated[uc.User.ID]; !ok {
		t.Error("Expected relationship write")
	}
}

func TestApplyDirectives_SetNameOnly(t *testing.T) {
	store := newMockStore()
	uc := store.addUser("disc-1", "Kat", relationship.Relationship{Role: relationship.RoleNeutral, Affinity: 10})

	updater := NewEmotionUpdater(store, &mockLLM{})
	out := updater.ApplyDirectives(context.Background(), uc, []relationship.Directive{
		{Kind: relationship.DirectiveSetName, Name: "Kitty"},
	})

	if out.Affinity != 10 {
		t.Errorf("Expected no score change, got %+v", out)
	}
	if len(store.updated) != 0 {
		t.Error("Expected no relationship write for a name-only directive")
	}
	if store.nicknames[uc.User.ID] != "Kitty" {
		t.Errorf("Expected nickname stored, got %q", store.nicknames[uc.User.ID])
	}
	if uc.Nickname != "Kitty" {
		t.Error("Expected in-memory nickname refreshed")
	}
}

func TestApplyDirectives_Empty(t *testing.T) {
	store := newMockStore()
	uc := store.addUser("disc-1", "Kat", relationship.Relationship{Role: relationship.RoleNeutral, Affinity: 10})

	updater := NewEmotionUpdater(store, &mockLLM{})
	out := updater.ApplyDirectives(context.Background(), uc, nil)

	if out != uc.Relationship {
		t.Errorf("Expected state untouched, got %+v", out)
	}
	if len(store.updated) != 0 || len(store.nicknames) != 0 {
		t.Error("Expected no store writes")
	}
}
