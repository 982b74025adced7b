package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"study-gen/internal/models"
)

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	errs := append([]error(nil), c.envErrs...)

	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 {
		errs = append(errs, fmt.Errorf("PORT must be a positive integer, got %q", c.Port))
	}

	switch c.Provider {
	case ProviderAnthropic:
		if c.AnthropicKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required when GENERATION_PROVIDER is \"anthropic\""))
		}
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when GENERATION_PROVIDER is \"openai\""))
		}
	default:
		errs = append(errs, fmt.Errorf("GENERATION_PROVIDER must be \"anthropic\" or \"openai\", got %q", c.Provider))
	}

	if c.GenerationTimeout <= 0 {
		errs = append(errs, fmt.Errorf("GENERATION_TIMEOUT must be > 0, got %s", c.GenerationTimeout))
	}

	if c.Mail.Username == "" || c.Mail.Password == "" {
		errs = append(errs, errors.New("EMAIL_USERNAME and EMAIL_PASSWORD are required"))
	}
	if c.Mail.Host == "" {
		errs = append(errs, errors.New("SMTP_HOST is required"))
	}
	if c.Mail.Port <= 0 {
		errs = append(errs, fmt.Errorf("SMTP_PORT must be > 0, got %d", c.Mail.Port))
	}

	if err := c.Profile.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Validate checks a handler profile for usable values.
func (p *Profile) Validate() error {
	var errs []error

	if strings.TrimSpace(p.PromptTemplate) == "" {
		errs = append(errs, fmt.Errorf("profile %s: prompt_template is required", p.Name))
	}
	if p.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("profile %s: max_tokens must be > 0, got %d", p.Name, p.MaxTokens))
	}

	switch p.ResponseStyle {
	case models.ResponseStyleFlag, models.ResponseStyleMessage:
	default:
		errs = append(errs, fmt.Errorf("profile %s: response_style must be \"flag\" or \"message\", got %q", p.Name, p.ResponseStyle))
	}

	switch p.BodyFormat {
	case models.BodyFormatText, models.BodyFormatHTML:
	default:
		errs = append(errs, fmt.Errorf("profile %s: body_format must be \"text\" or \"html\", got %q", p.Name, p.BodyFormat))
	}

	return errors.Join(errs...)
}
