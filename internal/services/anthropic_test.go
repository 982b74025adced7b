package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"study-gen/internal/models"
)

func newAnthropicServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnthropicGenerate(t *testing.T) {
	var seen map[string]any
	srv := newAnthropicServer(t, http.StatusOK, `{
		"id": "msg_01",
		"type": "message",
		"role": "assistant",
		"model": "claude-3-sonnet-20240229",
		"content": [{"type": "text", "text": "NOTES...QUESTIONS..."}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 12, "output_tokens": 34}
	}`, &seen)

	g := NewAnthropicGenerator("sk-ant-test", srv.URL+"/v1", 5*time.Second)
	got, err := g.Generate(context.Background(), "write notes", models.ModelConfig{Model: "claude-3-sonnet-20240229", MaxTokens: 2000})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "NOTES...QUESTIONS..." {
		t.Errorf("content = %q", got)
	}

	if seen["model"] != "claude-3-sonnet-20240229" {
		t.Errorf("request model = %v", seen["model"])
	}
	if seen["max_tokens"] != float64(2000) {
		t.Errorf("request max_tokens = %v", seen["max_tokens"])
	}
	msgs, _ := seen["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("request messages = %v, want a single user turn", seen["messages"])
	}
	if first, _ := msgs[0].(map[string]any); first["role"] != "user" {
		t.Errorf("message role = %v", first["role"])
	}
}

func TestAnthropicGenerateEmptyContent(t *testing.T) {
	srv := newAnthropicServer(t, http.StatusOK, `{"id":"msg_02","type":"message","role":"assistant","content":[],"usage":{"input_tokens":1,"output_tokens":0}}`, nil)

	g := NewAnthropicGenerator("sk-ant-test", srv.URL+"/v1", 5*time.Second)
	_, err := g.Generate(context.Background(), "prompt", models.ModelConfig{Model: "m", MaxTokens: 10})

	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Kind != ErrorKindEmptyContent {
		t.Fatalf("expected empty content error, got %v", err)
	}
}

func TestAnthropicGenerateAuthError(t *testing.T) {
	srv := newAnthropicServer(t, http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, nil)

	g := NewAnthropicGenerator("bad-key", srv.URL+"/v1", 5*time.Second)
	_, err := g.Generate(context.Background(), "prompt", models.ModelConfig{Model: "m", MaxTokens: 10})

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Kind != ErrorKindInvalidAPIKey {
		t.Errorf("kind = %s, want invalid_api_key", genErr.Kind)
	}
	if strings.Contains(genErr.Message, "x-api-key") {
		t.Errorf("caller-facing message leaks provider detail: %q", genErr.Message)
	}
}

func TestAnthropicGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	g := NewAnthropicGenerator("sk-ant-test", srv.URL+"/v1", 5*time.Second)
	_, err := g.Generate(ctx, "prompt", models.ModelConfig{Model: "m", MaxTokens: 10})

	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Kind != ErrorKindTimeout {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestClassifyProviderMessage(t *testing.T) {
	cases := []struct {
		errType string
		message string
		want    ErrorKind
	}{
		{"rate_limit_error", "", ErrorKindRateLimit},
		{"permission_error", "", ErrorKindInvalidAPIKey},
		{"not_found_error", "model: claude-x", ErrorKindModelNotFound},
		{"overloaded_error", "Overloaded", ErrorKindOverloaded},
		{"invalid_request_error", "prompt is too long: too many tokens", ErrorKindTokenLimit},
		{"invalid_request_error", "messages: field required", ErrorKindGeneral},
	}
	for _, tc := range cases {
		if got, _ := classifyProviderMessage(tc.errType, tc.message); got != tc.want {
			t.Errorf("classify(%q, %q) = %s, want %s", tc.errType, tc.message, got, tc.want)
		}
	}
}
