package services

import (
	"fmt"
	"strings"
)

// ValidationError reports request fields that are missing or blank (Fields)
// or longer than allowed (TooLong).
type ValidationError struct {
	Fields  []string
	TooLong []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Fields) > 0 {
		parts = append(parts, fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", ")))
	}
	if len(e.TooLong) > 0 {
		parts = append(parts, fmt.Sprintf("fields too long: %s", strings.Join(e.TooLong, ", ")))
	}
	return strings.Join(parts, "; ")
}

// ErrorKind classifies generation failures independently of the provider.
type ErrorKind int

const (
	ErrorKindGeneral ErrorKind = iota
	ErrorKindTokenLimit
	ErrorKindInvalidAPIKey
	ErrorKindRateLimit
	ErrorKindModelNotFound
	ErrorKindOverloaded
	ErrorKindTimeout
	ErrorKindEmptyContent
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindTokenLimit:
		return "token_limit"
	case ErrorKindInvalidAPIKey:
		return "invalid_api_key"
	case ErrorKindRateLimit:
		return "rate_limit"
	case ErrorKindModelNotFound:
		return "model_not_found"
	case ErrorKindOverloaded:
		return "overloaded"
	case ErrorKindTimeout:
		return "timeout"
	case ErrorKindEmptyContent:
		return "empty_content"
	default:
		return "general"
	}
}

// GenerationError is returned by Generator implementations. Message is safe to
// show to the caller; Err keeps the provider error for logs.
type GenerationError struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s generation failed (%s): %s: %v", e.Provider, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s generation failed (%s): %s", e.Provider, e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// DeliveryError is returned by Mailer implementations when a message could not be handed off.
type DeliveryError struct {
	Message string
	Err     error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("delivery failed: %s: %v", e.Message, e.Err)
	}
	return "delivery failed: " + e.Message
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func newGenerationError(provider string, kind ErrorKind, message string, err error) *GenerationError {
	return &GenerationError{Kind: kind, Provider: provider, Message: message, Err: err}
}
