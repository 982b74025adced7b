package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	DefaultAnthropicModel = "claude-3-sonnet-20240229"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultMaxTokens      = 2000
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	Port string

	Provider          string
	AnthropicKey      string
	AnthropicBaseURL  string
	OpenAIKey         string
	OpenAIEndpoint    string
	GenerationTimeout time.Duration

	Mail MailConfig

	AllowedOrigin  string
	MetricsEnabled bool
	LogLevel       string
	LogFormat      string

	Profile Profile

	// envErrs holds environment values that could not be parsed.
	envErrs []error
}

// MailConfig holds the SMTP account the study material is sent from.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// Load reads configuration from the environment, providing sensible defaults.
// A .env file in the working directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	env := &envReader{}
	cfg := Config{
		Port:              getEnv("PORT", "3000"),
		Provider:          strings.ToLower(getEnv("GENERATION_PROVIDER", ProviderAnthropic)),
		AnthropicKey:      os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicBaseURL:  os.Getenv("ANTHROPIC_BASE_URL"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIEndpoint:    getEnv("OPENAI_API_ENDPOINT", "https://api.openai.com/v1"),
		GenerationTimeout: env.getDuration("GENERATION_TIMEOUT", 120*time.Second),
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     env.getInt("SMTP_PORT", 587),
			Username: os.Getenv("EMAIL_USERNAME"),
			Password: os.Getenv("EMAIL_PASSWORD"),
			From:     os.Getenv("EMAIL_FROM"),
			Timeout:  env.getDuration("SMTP_TIMEOUT", 30*time.Second),
		},
		AllowedOrigin:  os.Getenv("CORS_ALLOWED_ORIGIN"),
		MetricsEnabled: env.getBool("METRICS_ENABLED", true),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.Username
	}

	profile, err := LoadProfile(getEnv("STUDY_PROFILE", ProfileClassic))
	if err != nil {
		return Config{}, err
	}
	applyProfileOverrides(&profile, env)
	if profile.Model == "" {
		profile.Model = cfg.DefaultModel()
	}
	cfg.Profile = profile
	cfg.envErrs = env.errs

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// DefaultModel is the model used when neither the profile nor the environment names one.
func (c Config) DefaultModel() string {
	if c.Provider == ProviderOpenAI {
		return DefaultOpenAIModel
	}
	return DefaultAnthropicModel
}

// Logger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c Config) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func applyProfileOverrides(p *Profile, env *envReader) {
	if v := os.Getenv("GENERATION_MODEL"); v != "" {
		p.Model = v
	}
	p.MaxTokens = env.getInt("GENERATION_MAX_TOKENS", p.MaxTokens)
	if v := os.Getenv("MAIL_MONITOR_RECIPIENTS"); v != "" {
		p.MonitorRecipients = splitList(v)
	}
	if v := os.Getenv("MAIL_BODY_FORMAT"); v != "" {
		p.BodyFormat = strings.ToLower(v)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

// envReader parses typed environment values. A set but unparsable value keeps
// the fallback and is recorded so Validate can report it.
type envReader struct {
	errs []error
}

func (e *envReader) getInt(key string, fallback int) int {
	raw, ok := lookup(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s must be an integer, got %q", key, raw))
		return fallback
	}
	return n
}

func (e *envReader) getBool(key string, fallback bool) bool {
	raw, ok := lookup(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s must be a boolean, got %q", key, raw))
		return fallback
	}
	return b
}

func (e *envReader) getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := lookup(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s must be a duration such as 30s, got %q", key, raw))
		return fallback
	}
	return d
}

func lookup(key string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	return raw, raw != ""
}
