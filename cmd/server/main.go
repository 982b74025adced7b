package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"study-gen/internal/api"
	"study-gen/internal/config"
	"study-gen/internal/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := cfg.Logger()
	slog.SetDefault(logger)

	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	mailer := services.NewSMTPMailer(services.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		Timeout:  cfg.Mail.Timeout,
	})

	prompts, err := services.NewPromptRenderer(cfg.Profile.PromptTemplate)
	if err != nil {
		return fmt.Errorf("profile %s: %w", cfg.Profile.Name, err)
	}

	study := services.NewStudyService(generator, mailer, prompts, services.StudyOptions{
		From:              cfg.Mail.From,
		Model:             cfg.Profile.Model,
		MaxTokens:         cfg.Profile.MaxTokens,
		StrictValidation:  cfg.Profile.StrictValidation,
		MonitorRecipients: cfg.Profile.MonitorRecipients,
		BodyFormat:        cfg.Profile.BodyFormat,
	}, logger)

	opts := api.Options{
		AllowedOrigin:                  cfg.AllowedOrigin,
		ResponseStyle:                  cfg.Profile.ResponseStyle,
		ReturnContentOnDeliveryFailure: cfg.Profile.ReturnContentOnDeliveryFailure,
	}
	if cfg.MetricsEnabled {
		opts.MetricsHandler = promhttp.Handler()
	}
	server := api.NewServer(study, opts, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		// Generation plus delivery can take as long as both adapter timeouts.
		WriteTimeout: cfg.GenerationTimeout + cfg.Mail.Timeout + 15*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			slog.String("addr", srv.Addr),
			slog.String("provider", generator.Provider()),
			slog.String("model", cfg.Profile.Model),
			slog.String("profile", cfg.Profile.Name),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	// In-flight requests are allowed to finish their generation and delivery.
	ctx, cancel := context.WithTimeout(context.Background(), srv.WriteTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func newGenerator(cfg config.Config) (services.Generator, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return services.NewAnthropicGenerator(cfg.AnthropicKey, cfg.AnthropicBaseURL, cfg.GenerationTimeout), nil
	case config.ProviderOpenAI:
		return services.NewOpenAIGenerator(cfg.OpenAIKey, cfg.OpenAIEndpoint, cfg.GenerationTimeout), nil
	}
	return nil, fmt.Errorf("unsupported generation provider %q", cfg.Provider)
}
