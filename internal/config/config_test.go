package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"study-gen/internal/models"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("EMAIL_USERNAME", "sender@example.com")
	t.Setenv("EMAIL_PASSWORD", "app-password")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("port = %q, want 3000", cfg.Port)
	}
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("provider = %q, want anthropic", cfg.Provider)
	}
	if cfg.Mail.Host != "smtp.gmail.com" || cfg.Mail.Port != 587 {
		t.Errorf("smtp = %s:%d, want smtp.gmail.com:587", cfg.Mail.Host, cfg.Mail.Port)
	}
	if cfg.Mail.From != "sender@example.com" {
		t.Errorf("from = %q, want the username", cfg.Mail.From)
	}
	if cfg.GenerationTimeout != 120*time.Second {
		t.Errorf("generation timeout = %s", cfg.GenerationTimeout)
	}
	if cfg.Profile.Name != ProfileClassic {
		t.Errorf("profile = %q, want classic", cfg.Profile.Name)
	}
	if cfg.Profile.Model != DefaultAnthropicModel {
		t.Errorf("model = %q, want %q", cfg.Profile.Model, DefaultAnthropicModel)
	}
	if cfg.Profile.MaxTokens != DefaultMaxTokens {
		t.Errorf("max tokens = %d", cfg.Profile.MaxTokens)
	}
	if !cfg.Profile.StrictValidation {
		t.Error("classic profile should validate strictly")
	}
	if len(cfg.Profile.MonitorRecipients) != 0 {
		t.Errorf("monitor recipients should default to empty, got %v", cfg.Profile.MonitorRecipients)
	}
	if !cfg.MetricsEnabled {
		t.Error("metrics should be enabled by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GENERATION_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GENERATION_MAX_TOKENS", "4096")
	t.Setenv("MAIL_MONITOR_RECIPIENTS", " ops@example.com, ,audit@example.com ")
	t.Setenv("STUDY_PROFILE", ProfileFrontend)
	t.Setenv("SMTP_PORT", "465")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Provider != ProviderOpenAI {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.Profile.Model != DefaultOpenAIModel {
		t.Errorf("model = %q, want %q", cfg.Profile.Model, DefaultOpenAIModel)
	}
	if cfg.Profile.MaxTokens != 4096 {
		t.Errorf("max tokens = %d, want 4096", cfg.Profile.MaxTokens)
	}
	want := []string{"ops@example.com", "audit@example.com"}
	if strings.Join(cfg.Profile.MonitorRecipients, ",") != strings.Join(want, ",") {
		t.Errorf("monitor recipients = %v, want %v", cfg.Profile.MonitorRecipients, want)
	}
	if cfg.Profile.ResponseStyle != models.ResponseStyleMessage {
		t.Errorf("response style = %q", cfg.Profile.ResponseStyle)
	}
	if cfg.Mail.Port != 465 {
		t.Errorf("smtp port = %d", cfg.Mail.Port)
	}
}

func TestLoadModelOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GENERATION_MODEL", "claude-3-5-haiku-latest")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Profile.Model != "claude-3-5-haiku-latest" {
		t.Errorf("model = %q", cfg.Profile.Model)
	}
}

func TestLoadMissingCredentials(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("EMAIL_USERNAME", "")
	t.Setenv("EMAIL_PASSWORD", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"ANTHROPIC_API_KEY", "EMAIL_USERNAME"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}

func TestLoadRejectsUnparsableValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SMTP_PORT", "five-eight-seven")
	t.Setenv("SMTP_TIMEOUT", "30")
	t.Setenv("GENERATION_TIMEOUT", "two minutes")
	t.Setenv("GENERATION_MAX_TOKENS", "lots")
	t.Setenv("METRICS_ENABLED", "maybe")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for unparsable values")
	}
	for _, want := range []string{"SMTP_PORT", "SMTP_TIMEOUT", "GENERATION_TIMEOUT", "GENERATION_MAX_TOKENS", "METRICS_ENABLED"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}

func TestLoadUnknownProvider(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GENERATION_PROVIDER", "cohere")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "GENERATION_PROVIDER") {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestLoadProfileFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	content := `
prompt_template: "Notes on {{.Topic}} for grade {{.Grade}}"
max_tokens: 1200
strict_validation: false
response_style: message
monitor_recipients:
  - counselor@example.com
return_content_on_delivery_failure: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}

	if p.MaxTokens != 1200 {
		t.Errorf("max tokens = %d", p.MaxTokens)
	}
	if p.StrictValidation {
		t.Error("strict_validation should be false")
	}
	if p.BodyFormat != models.BodyFormatText {
		t.Errorf("body format should fall back to classic default, got %q", p.BodyFormat)
	}
	if len(p.MonitorRecipients) != 1 || p.MonitorRecipients[0] != "counselor@example.com" {
		t.Errorf("monitor recipients = %v", p.MonitorRecipients)
	}
	if !p.ReturnContentOnDeliveryFailure {
		t.Error("return_content_on_delivery_failure should be true")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing profile file")
	}
}

func TestProfileValidate(t *testing.T) {
	p := Profile{Name: "broken", ResponseStyle: "json", BodyFormat: "markdown"}
	err := p.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"prompt_template", "max_tokens", "response_style", "body_format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}
