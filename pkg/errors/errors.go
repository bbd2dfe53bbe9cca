package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeDiscord represents Discord-related errors
	ErrorTypeDiscord ErrorType = "discord"
	// ErrorTypeLLM represents generation-service errors
	ErrorTypeLLM ErrorType = "llm"
	// ErrorTypeClassifier represents text-classification errors
	ErrorTypeClassifier ErrorType = "classifier"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Base exposes the common fields. Promoted through every typed error, so
// helpers can classify without knowing the concrete type.
func (e *BaseError) Base() *BaseError {
	return e
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// LLM Errors

// ErrLLMRateLimited is returned when the generation service is over quota.
// Callers surface an in-character apology and abort the turn.
type ErrLLMRateLimited struct {
	*BaseError
	Model string
}

func NewLLMRateLimited(model string, err error) *ErrLLMRateLimited {
	return &ErrLLMRateLimited{
		BaseError: NewBaseError(ErrorTypeLLM, fmt.Sprintf("rate limited: %s", model), err),
		Model:     model,
	}
}

// ErrLLMRequestFailed is returned for any non-quota generation failure
type ErrLLMRequestFailed struct {
	*BaseError
	Model string
}

func NewLLMRequestFailed(model string, err error) *ErrLLMRequestFailed {
	return &ErrLLMRequestFailed{
		BaseError: NewBaseError(ErrorTypeLLM, fmt.Sprintf("request failed: %s", model), err),
		Model:     model,
	}
}

// ErrLLMNoResponse is returned when the LLM returns no choices
var ErrLLMNoResponse = NewBaseError(ErrorTypeLLM, "no response from LLM", nil)

// Classifier Errors

// ErrClassificationFailed is returned when the periodic emotional-analysis
// call fails. The periodic update is best-effort, so callers log and move on.
type ErrClassificationFailed struct {
	*BaseError
	Model string
}

func NewClassificationFailed(model string, err error) *ErrClassificationFailed {
	return &ErrClassificationFailed{
		BaseError: NewBaseError(ErrorTypeClassifier, "emotional analysis failed", err),
		Model:     model,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Query string
}

func NewGraphQueryFailed(query string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", query), err),
		Query:     query,
	}
}

// ErrUserNotFound is returned when a user is not known to the store,
// e.g. an operator command referencing someone Ruby has never met.
type ErrUserNotFound struct {
	*BaseError
	UserID string
}

func NewUserNotFound(userID string) *ErrUserNotFound {
	return &ErrUserNotFound{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("user not found: %s", userID), nil),
		UserID:    userID,
	}
}

// Discord Errors

// ErrDiscordSessionUnavailable is returned when Discord session is not available
var ErrDiscordSessionUnavailable = NewBaseError(ErrorTypeDiscord, "Discord session not available", nil)

// ErrDiscordMessageSendFailed is returned when sending a Discord message fails
type ErrDiscordMessageSendFailed struct {
	*BaseError
	ChannelID string
}

func NewDiscordMessageSendFailed(channelID string, err error) *ErrDiscordMessageSendFailed {
	return &ErrDiscordMessageSendFailed{
		BaseError: NewBaseError(ErrorTypeDiscord, "failed to send message", err),
		ChannelID: channelID,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}
	if b, ok := err.(interface{ Base() *BaseError }); ok {
		return b.Base().Type == errType
	}
	// Check wrapped errors
	if wrapped, ok := err.(interface{ Unwrap() error }); ok {
		return IsErrorType(wrapped.Unwrap(), errType)
	}
	return false
}

// IsRateLimited checks if an error is a generation-quota error anywhere in the chain
func IsRateLimited(err error) bool {
	if _, ok := err.(*ErrLLMRateLimited); ok {
		return true
	}
	if wrapped, ok := err.(interface{ Unwrap() error }); ok {
		if inner := wrapped.Unwrap(); inner != nil {
			return IsRateLimited(inner)
		}
	}
	return false
}

// IsNotFound checks if an error is a user-not-found error anywhere in the chain
func IsNotFound(err error) bool {
	if _, ok := err.(*ErrUserNotFound); ok {
		return true
	}
	if wrapped, ok := err.(interface{ Unwrap() error }); ok {
		if inner := wrapped.Unwrap(); inner != nil {
			return IsNotFound(inner)
		}
	}
	return false
}
