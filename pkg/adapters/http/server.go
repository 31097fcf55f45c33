package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/aidbuddy"
	"github.com/aretw0/aidbuddy/pkg/adapters/scorecard"
	"github.com/aretw0/aidbuddy/pkg/domain"
	"github.com/aretw0/aidbuddy/pkg/estimate"
	"github.com/aretw0/aidbuddy/pkg/runner"
)

// maxBodyBytes bounds JSON request bodies; message length itself is
// enforced by the engine's sanitizer.
const maxBodyBytes = 64 << 10

// Engine is the conversational core consumed by the HTTP host.
type Engine interface {
	HandleTurn(ctx context.Context, sessionID, text string) (*aidbuddy.Payload, error)
	Snapshot(ctx context.Context, sessionID string) (*aidbuddy.Payload, error)
	Reset(ctx context.Context, sessionID string) (*domain.State, error)
	Estimate(ctx context.Context, in estimate.Input) (*estimate.Result, error)
}

// SchoolSearcher looks up tuition figures by school name.
type SchoolSearcher interface {
	Search(ctx context.Context, name string, limit int) ([]domain.School, error)
}

// Server serves the chat API.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	Schools SchoolSearcher

	spec         *openapi3.T
	metrics      http.Handler
	logger       *slog.Logger
	cookieSecure bool
	origins      []string
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager whose Hooks were registered on the engine.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// WithSchools enables GET /api/schools.
func WithSchools(searcher SchoolSearcher) Option {
	return func(s *Server) { s.Schools = searcher }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCookieSecure marks the session cookie Secure.
func WithCookieSecure(secure bool) Option {
	return func(s *Server) { s.cookieSecure = secure }
}

// WithAllowedOrigins enables CORS for the listed origins. Credentials are
// only allowed for explicit origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// NewHandler creates the HTTP handler for the engine. It fails when the
// embedded OpenAPI document does not validate.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	spec, err := Spec()
	if err != nil {
		return nil, err
	}
	s := &Server{
		Engine: engine,
		spec:   spec,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	return s.routes(), nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if len(s.origins) > 0 {
		r.Use(cors(s.origins))
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(rawSpec)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/estimate", s.PostEstimate)
		r.Get("/schools", s.GetSchools)

		r.Group(func(r chi.Router) {
			r.Use(identity(s.cookieSecure))
			r.Post("/chat", s.PostChat)
			r.Post("/reset", s.PostReset)
			r.Get("/state", s.GetState)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return r
}

type chatRequest struct {
	Message string `json:"message"`
}

type sessionView struct {
	Mode     domain.Mode     `json:"mode"`
	Progress float64         `json:"progress"`
	Chapter  int             `json:"chapter"`
	State    domain.Snapshot `json:"state"`
}

type schoolList struct {
	Results []domain.School `json:"results"`
}

// PostChat handles POST /api/chat.
func (s *Server) PostChat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if !s.decode(w, r, &body) {
		return
	}
	payload, err := s.Engine.HandleTurn(r.Context(), SessionIDFromContext(r.Context()), body.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// PostReset handles POST /api/reset.
func (s *Server) PostReset(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Engine.Reset(r.Context(), SessionIDFromContext(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GetState handles GET /api/state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	payload, err := s.Engine.Snapshot(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView{
		Mode:     payload.Mode,
		Progress: payload.Progress,
		Chapter:  payload.Chapter,
		State:    payload.State,
	})
}

// PostEstimate handles POST /api/estimate.
func (s *Server) PostEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimate.Request
	if !s.decode(w, r, &req) {
		return
	}
	in, err := req.Input()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.Engine.Estimate(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetSchools handles GET /api/schools.
func (s *Server) GetSchools(w http.ResponseWriter, r *http.Request) {
	if s.Schools == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "school lookup is not configured"})
		return
	}
	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("name"))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "name is required"})
		return
	}
	limit := scorecard.DefaultLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > scorecard.MaxLimit {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("limit must be between 1 and %d", scorecard.MaxLimit)})
			return
		}
		limit = n
	}

	schools, err := s.Schools.Search(r.Context(), name, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schoolList{Results: schools})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec != nil && s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "aidbuddy-http",
		"version":     strings.TrimSpace(aidbuddy.Version),
		"api_version": apiVersion,
	})
}

// SubscribeEvents handles GET /api/events (SSE). Each state-changing turn
// of the caller's session is pushed as a "diff" event.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "streaming not supported"})
		return
	}
	sessionID := SessionIDFromContext(r.Context())

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("sse client disconnected", "session_id", sessionID)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			flusher.Flush()
		}
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return false
	}
	return true
}

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case runner.IsInputError(err),
		errors.Is(err, domain.ErrInvalidInput),
		domain.IsPrecondition(err):
		return http.StatusBadRequest
	case domain.IsConfiguration(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, scorecard.ErrNoAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, scorecard.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// serverErrorMessages are the only bodies sent for 5xx responses.
var serverErrorMessages = map[int]string{
	http.StatusBadGateway:         "school lookup failed upstream",
	http.StatusServiceUnavailable: "school lookup is not configured",
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "status", status, "err", err)
		msg = serverErrorMessages[status]
		if msg == "" {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func cors(origins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			for _, o := range origins {
				if o != "*" && o != origin {
					continue
				}
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				if o != "*" {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				break
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
