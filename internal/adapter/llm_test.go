package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	apperrors "ruby-bot/pkg/errors"
)

func TestIsRateLimit(t *testing.T) {
	if !isRateLimit(&openai.APIError{HTTPStatusCode: 429}) {
		t.Error("Expected 429 API error detected")
	}
	if isRateLimit(&openai.APIError{HTTPStatusCode: 500}) {
		t.Error("Did not expect 500 flagged as rate limit")
	}
	if !isRateLimit(&openai.RequestError{HTTPStatusCode: 429}) {
		t.Error("Expected 429 request error detected")
	}
	if isRateLimit(errors.New("plain")) {
		t.Error("Did not expect plain error flagged")
	}
}

// The remaining tests require a running OpenAI-compatible endpoint at
// localhost:4000. Run with -short to skip them.

func TestLLMAdapter_Generate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	a := NewLLMAdapter("http://localhost:4000", "", "llama-3.1-8b-instant", "llama-3.1-8b-instant", "llama-3.1-8b-instant", 30*time.Second)

	reply, err := a.Generate(context.Background(), GenerateRequest{
		SystemPrompt: "You are a helpful assistant.",
		UserMessage:  "Say hello in one sentence.",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if reply == "" {
		t.Error("Expected non-empty reply")
	}
}

func TestLLMAdapter_Classify(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	a := NewLLMAdapter("http://localhost:4000", "", "llama-3.1-8b-instant", "llama-3.1-8b-instant", "llama-3.1-8b-instant", 30*time.Second)

	prompt := `Analyze this short exchange and return ONLY a JSON object with keys
"affinity_change", "trust_change", "jealousy_change", "insults_count", "compliments_count", "vibe_summary".

History:
Kat: you're the best, thanks for the help!!
`
	report, err := a.Classify(context.Background(), prompt)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if report == nil {
		t.Fatal("Expected a parsed report")
	}
	t.Logf("Report: %+v", report)
}

func TestLLMAdapter_Generate_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	a := NewLLMAdapter("http://localhost:1", "", "m", "m", "m", 2*time.Second)

	_, err := a.Generate(context.Background(), GenerateRequest{
		SystemPrompt: "s",
		UserMessage:  "u",
	})
	if err == nil {
		t.Fatal("Expected error from unreachable endpoint")
	}
	if !apperrors.IsErrorType(err, apperrors.ErrorTypeLLM) {
		t.Errorf("Expected llm-typed error, got %v", err)
	}
}
