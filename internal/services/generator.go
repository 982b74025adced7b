package services

import (
	"context"
	"errors"
	"strings"

	"study-gen/internal/models"
)

// Generator turns a prompt into a block of text using an LLM provider.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg models.ModelConfig) (string, error)
	Provider() string
}

// classifyProviderMessage maps the error type and message a provider returns
// onto an ErrorKind and a caller-facing message.
func classifyProviderMessage(errType, message string) (ErrorKind, string) {
	lower := strings.ToLower(message)
	switch errType {
	case "authentication_error", "permission_error", "invalid_api_key", "insufficient_quota":
		return ErrorKindInvalidAPIKey, "the generation service rejected our credentials"
	case "rate_limit_error", "rate_limit_exceeded", "requests", "tokens":
		return ErrorKindRateLimit, "the generation service is rate limiting requests, try again later"
	case "not_found_error", "model_not_found":
		return ErrorKindModelNotFound, "the configured model is not available"
	case "overloaded_error", "api_error", "server_error":
		return ErrorKindOverloaded, "the generation service is temporarily unavailable"
	}
	if strings.Contains(lower, "maximum context length") || strings.Contains(lower, "too many tokens") || strings.Contains(lower, "max_tokens") {
		return ErrorKindTokenLimit, "the request is too large for the configured model"
	}
	if message == "" {
		return ErrorKindGeneral, "the generation service returned an error"
	}
	return ErrorKindGeneral, message
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
