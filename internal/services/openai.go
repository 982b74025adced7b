package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"study-gen/internal/models"
)

const providerOpenAI = "openai"

// OpenAIGenerator calls any OpenAI-compatible chat completions endpoint.
type OpenAIGenerator struct {
	client *openai.Client
}

func NewOpenAIGenerator(apiKey, apiEndpoint string, timeout time.Duration) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if apiEndpoint != "" {
		cfg.BaseURL = apiEndpoint
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(cfg)}
}

func (g *OpenAIGenerator) Provider() string {
	return providerOpenAI
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, cfg models.ModelConfig) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", g.wrapError(ctx, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", newGenerationError(providerOpenAI, ErrorKindEmptyContent, "the generation service returned no content", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) wrapError(ctx context.Context, err error) error {
	if isTimeout(ctx, err) {
		return newGenerationError(providerOpenAI, ErrorKindTimeout, "the generation service timed out", err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		errType := apiErr.Type
		if code, ok := apiErr.Code.(string); ok && code != "" {
			errType = code
		}
		kind, msg := classifyProviderMessage(errType, apiErr.Message)
		if kind == ErrorKindGeneral {
			if byStatus := kindForStatus(apiErr.HTTPStatusCode); byStatus != ErrorKindGeneral {
				kind = byStatus
			}
		}
		return newGenerationError(providerOpenAI, kind, msg, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return newGenerationError(providerOpenAI, kindForStatus(reqErr.HTTPStatusCode),
			fmt.Sprintf("the generation service returned status %d", reqErr.HTTPStatusCode), err)
	}

	return newGenerationError(providerOpenAI, ErrorKindGeneral, "could not reach the generation service", err)
}
