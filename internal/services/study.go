package services

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"study-gen/internal/models"
	"study-gen/internal/observability"
)

// StudyOptions parameterizes a StudyService.
type StudyOptions struct {
	From              string
	Model             string
	MaxTokens         int
	StrictValidation  bool
	MonitorRecipients []string
	BodyFormat        string
}

// StudyService runs the request pipeline: validate, render the prompt,
// generate once, then mail the result once. It holds no per-request state and
// is safe for concurrent use.
type StudyService struct {
	generator Generator
	mailer    Mailer
	prompts   *PromptRenderer
	opts      StudyOptions
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewStudyService(generator Generator, mailer Mailer, prompts *PromptRenderer, opts StudyOptions, logger *slog.Logger) *StudyService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BodyFormat == "" {
		opts.BodyFormat = models.BodyFormatText
	}
	return &StudyService{
		generator: generator,
		mailer:    mailer,
		prompts:   prompts,
		opts:      opts,
		validate:  newRequestValidator(),
		logger:    logger,
	}
}

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate normalizes req in place and reports missing or overlong fields.
// In lenient mode only the email address is required; length limits apply
// in both modes.
func (s *StudyService) Validate(req *models.StudyRequest) error {
	req.Normalize()

	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	vErr := &ValidationError{}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "max":
			vErr.TooLong = append(vErr.TooLong, fe.Field())
		default:
			if !s.opts.StrictValidation && fe.Field() != "email" {
				continue
			}
			vErr.Fields = append(vErr.Fields, fe.Field())
		}
	}
	if len(vErr.Fields) == 0 && len(vErr.TooLong) == 0 {
		return nil
	}
	return vErr
}

// Run processes one study request. On a DeliveryError the returned result is
// still populated with the generated content so the caller can decide whether
// to surface it; for every other error the result is nil.
func (s *StudyService) Run(ctx context.Context, req models.StudyRequest) (*models.StudyResult, error) {
	if err := s.Validate(&req); err != nil {
		return nil, err
	}

	prompt, err := s.prompts.Render(req, s.opts.Model)
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	content, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result := &models.StudyResult{Recipient: req.Email, Content: content}

	msg, err := s.composeMail(req, content)
	if err != nil {
		return nil, fmt.Errorf("compose mail: %w", err)
	}
	if err := s.deliver(ctx, msg); err != nil {
		return result, err
	}
	return result, nil
}

func (s *StudyService) generate(ctx context.Context, prompt string) (string, error) {
	provider := s.generator.Provider()
	start := time.Now()

	content, err := s.generator.Generate(ctx, prompt, models.ModelConfig{
		Model:     s.opts.Model,
		MaxTokens: s.opts.MaxTokens,
	})
	observability.GenerationLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	if err == nil && strings.TrimSpace(content) == "" {
		err = newGenerationError(provider, ErrorKindEmptyContent, "the generation service returned no content", nil)
	}
	if err != nil {
		var genErr *GenerationError
		if !errors.As(err, &genErr) {
			genErr = newGenerationError(provider, ErrorKindGeneral, "the generation service returned an error", err)
		}
		observability.GenerationTotal.WithLabelValues(provider, genErr.Kind.String()).Inc()
		s.logger.ErrorContext(ctx, "generation failed",
			slog.String("provider", provider),
			slog.String("model", s.opts.Model),
			slog.String("kind", genErr.Kind.String()),
			slog.String("error", genErr.Error()),
		)
		return "", genErr
	}

	observability.GenerationTotal.WithLabelValues(provider, "ok").Inc()
	s.logger.DebugContext(ctx, "generation completed",
		slog.String("provider", provider),
		slog.Int("length", len(content)),
		slog.Duration("duration", time.Since(start)),
	)
	return content, nil
}

func (s *StudyService) deliver(ctx context.Context, msg models.MailMessage) error {
	err := s.mailer.Send(ctx, msg)
	if err == nil {
		observability.DeliveriesTotal.WithLabelValues("ok").Inc()
		s.logger.InfoContext(ctx, "study material sent", slog.String("mail", describeMail(msg)))
		return nil
	}

	var delErr *DeliveryError
	if !errors.As(err, &delErr) {
		delErr = &DeliveryError{Message: "the mail server rejected the message", Err: err}
	}
	observability.DeliveriesTotal.WithLabelValues("error").Inc()
	s.logger.ErrorContext(ctx, "delivery failed",
		slog.String("mail", describeMail(msg)),
		slog.String("error", delErr.Error()),
	)
	return delErr
}

var htmlBody = template.Must(template.New("mail").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.5;">
<h2>{{.Subject}}: {{.Topic}}</h2>
<p>Grade {{.Grade}}, {{.School}}</p>
<pre style="white-space: pre-wrap; font-family: inherit;">{{.Content}}</pre>
</body>
</html>
`))

func (s *StudyService) composeMail(req models.StudyRequest, content string) (models.MailMessage, error) {
	msg := models.MailMessage{
		From: s.opts.From,
		To:   []string{req.Email},
		Bcc:  append([]string(nil), s.opts.MonitorRecipients...),
		Subject: fmt.Sprintf("Generated Notes & Questions: %s - %s (Grade %s)",
			promptValue(req.Subject), promptValue(req.Topic), promptValue(req.Grade.String())),
		TextBody: content,
	}

	if s.opts.BodyFormat == models.BodyFormatHTML {
		var b strings.Builder
		err := htmlBody.Execute(&b, map[string]string{
			"Subject": promptValue(req.Subject),
			"Topic":   promptValue(req.Topic),
			"Grade":   promptValue(req.Grade.String()),
			"School":  promptValue(req.School),
			"Content": content,
		})
		if err != nil {
			return models.MailMessage{}, err
		}
		msg.HTMLBody = b.String()
	}
	return msg, nil
}
