package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"study-gen/internal/models"
	"study-gen/internal/services"
)

const maxRequestBody = 1 << 20 // 1 MB

// StudyRunner is the pipeline behind POST /api/generate.
type StudyRunner interface {
	Run(ctx context.Context, req models.StudyRequest) (*models.StudyResult, error)
}

// Options controls the transport-level behavior of the Server.
type Options struct {
	// AllowedOrigin restricts CORS to one frontend origin. Empty allows any origin.
	AllowedOrigin string
	// ResponseStyle selects the success body: {"success":true} or {"message":"..."}.
	ResponseStyle string
	// ReturnContentOnDeliveryFailure includes the generated text in the 500
	// response when the email could not be sent.
	ReturnContentOnDeliveryFailure bool
	// MetricsHandler is mounted at /metrics when non-nil.
	MetricsHandler http.Handler
}

type Server struct {
	mux    *http.ServeMux
	study  StudyRunner
	opts   Options
	logger *slog.Logger
}

func NewServer(study StudyRunner, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ResponseStyle == "" {
		opts.ResponseStyle = models.ResponseStyleFlag
	}
	s := &Server{
		mux:    http.NewServeMux(),
		study:  study,
		opts:   opts,
		logger: logger,
	}
	s.routes()
	return s
}

// Handler returns the mux wrapped in the request middleware chain.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		requestID,
		logging(s.logger),
		metrics,
		recovery(s.logger),
		cors(s.opts.AllowedOrigin),
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/generate", s.handleGenerate)
	if s.opts.MetricsHandler != nil {
		s.mux.Handle("/metrics", s.opts.MetricsHandler)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Study material generator is running\n"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost, http.MethodOptions)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	var req models.StudyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+decodeErrorMessage(err))
		return
	}

	// Client disconnects do not abort a request that has started.
	ctx := context.WithoutCancel(r.Context())

	result, err := s.study.Run(ctx, req)
	if err != nil {
		s.writeStudyError(w, r, result, err)
		return
	}

	if s.opts.ResponseStyle == models.ResponseStyleMessage {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": fmt.Sprintf("Study material sent to %s", result.Recipient),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) writeStudyError(w http.ResponseWriter, r *http.Request, result *models.StudyResult, err error) {
	var (
		vErr   *services.ValidationError
		genErr *services.GenerationError
		delErr *services.DeliveryError
	)
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.As(err, &genErr):
		writeError(w, http.StatusInternalServerError, "generation failed: "+genErr.Message)
	case errors.As(err, &delErr):
		body := map[string]string{"error": "the study material could not be emailed: " + delErr.Message}
		if s.opts.ReturnContentOnDeliveryFailure && result != nil {
			body["content"] = result.Content
		}
		writeJSON(w, http.StatusInternalServerError, body)
	default:
		s.logger.ErrorContext(r.Context(), "study request failed",
			slog.String("request_id", RequestIDFromContext(r.Context())),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "Something went wrong.")
	}
}

func decodeErrorMessage(err error) string {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return "request body too large"
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("field %s has the wrong type", typeErr.Field)
	}
	if strings.Contains(err.Error(), "expected string or number") {
		return err.Error()
	}
	return "malformed JSON"
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
