package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"study-gen/internal/models"
)

const providerAnthropic = "anthropic"

// AnthropicGenerator calls the Anthropic Messages API.
type AnthropicGenerator struct {
	client *anthropic.Client
}

func NewAnthropicGenerator(apiKey, baseURL string, timeout time.Duration) *AnthropicGenerator {
	opts := []anthropic.ClientOption{
		anthropic.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &AnthropicGenerator{client: anthropic.NewClient(apiKey, opts...)}
}

func (g *AnthropicGenerator) Provider() string {
	return providerAnthropic
}

func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string, cfg models.ModelConfig) (string, error) {
	resp, err := g.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(cfg.Model),
		MaxTokens: cfg.MaxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
	})
	if err != nil {
		return "", g.wrapError(ctx, err)
	}

	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			if *block.Text == "" {
				break
			}
			return *block.Text, nil
		}
	}
	return "", newGenerationError(providerAnthropic, ErrorKindEmptyContent, "the generation service returned no content", nil)
}

func (g *AnthropicGenerator) wrapError(ctx context.Context, err error) error {
	if isTimeout(ctx, err) {
		return newGenerationError(providerAnthropic, ErrorKindTimeout, "the generation service timed out", err)
	}

	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		kind, msg := classifyProviderMessage(string(apiErr.Type), apiErr.Message)
		return newGenerationError(providerAnthropic, kind, msg, err)
	}

	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return newGenerationError(providerAnthropic, kindForStatus(reqErr.StatusCode),
			fmt.Sprintf("the generation service returned status %d", reqErr.StatusCode), err)
	}

	return newGenerationError(providerAnthropic, ErrorKindGeneral, "could not reach the generation service", err)
}

func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrorKindInvalidAPIKey
	case http.StatusTooManyRequests:
		return ErrorKindRateLimit
	case http.StatusNotFound:
		return ErrorKindModelNotFound
	case http.StatusServiceUnavailable, http.StatusBadGateway, 529:
		return ErrorKindOverloaded
	}
	return ErrorKindGeneral
}
