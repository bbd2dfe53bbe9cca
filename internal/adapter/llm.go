package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"ruby-bot/internal/relationship"
	apperrors "ruby-bot/pkg/errors"
	"ruby-bot/pkg/logger"
)

// LLMAdapter handles communication with the OpenAI-compatible endpoint
// that backs both reply generation and emotional classification.
type LLMAdapter struct {
	client          *openai.Client
	chatModel       string
	visionModel     string
	classifierModel string
	timeout         time.Duration
	logger          *zap.Logger
}

// NewLLMAdapter creates a new LLM adapter
func NewLLMAdapter(baseURL, apiKey, chatModel, visionModel, classifierModel string, timeout time.Duration) *LLMAdapter {
	// Some OpenAI-compatible gateways accept any key
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimSuffix(baseURL, "/") + "/v1"

	return &LLMAdapter{
		client:          openai.NewClientWithConfig(config),
		chatModel:       chatModel,
		visionModel:     visionModel,
		classifierModel: classifierModel,
		timeout:         timeout,
		logger:          logger.Get(),
	}
}

// GenerateRequest is one reply-generation call. ImageURL, when set,
// switches to the vision model and attaches the image to the user turn.
type GenerateRequest struct {
	SystemPrompt string
	UserMessage  string
	ImageURL     string
}

// Generate produces one reply. Quota exhaustion comes back as
// ErrLLMRateLimited so callers can apologize instead of erroring.
func (a *LLMAdapter) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	model := a.chatModel
	userMsg := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserMessage,
	}

	if req.ImageURL != "" {
		model = a.visionModel
		userMsg = openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: req.UserMessage},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: req.ImageURL},
				},
			},
		}
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			userMsg,
		},
	})
	if err != nil {
		if isRateLimit(err) {
			return "", apperrors.NewLLMRateLimited(model, err)
		}
		return "", apperrors.NewLLMRequestFailed(model, err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.ErrLLMNoResponse
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	a.logger.Debug("Reply generated",
		zap.String("model", model),
		zap.Bool("with_image", req.ImageURL != ""),
		zap.Int("length", len(reply)),
	)
	return reply, nil
}

// EmotionReport is the classifier's structured verdict over a transcript
// window. Counter fields are counts for the window, not totals.
type EmotionReport struct {
	relationship.Deltas
	VibeSummary string `json:"vibe_summary"`
}

// Classify runs the emotional-analysis prompt in JSON mode and parses the
// structured deltas. Any failure is wrapped as a classifier error; the
// caller treats it as a skipped update, never as a turn failure.
func (a *LLMAdapter) Classify(ctx context.Context, prompt string) (*EmotionReport, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.classifierModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, apperrors.NewClassificationFailed(a.classifierModel, err)
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.NewClassificationFailed(a.classifierModel, apperrors.ErrLLMNoResponse)
	}

	var report EmotionReport
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &report); err != nil {
		return nil, apperrors.NewClassificationFailed(a.classifierModel, err)
	}

	a.logger.Debug("Emotional analysis parsed",
		zap.Int("affinity_change", report.Affinity),
		zap.Int("trust_change", report.Trust),
		zap.Int("jealousy_change", report.Jealousy),
		zap.Int("insults", report.Insults),
		zap.Int("compliments", report.Compliments),
	)
	return &report, nil
}

func isRateLimit(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429
	}
	return false
}
