// Package api exposes sentiment analysis over a session-scoped JSON API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"golang.org/x/time/rate"

	"github.com/kamilpajak/sentimeter/internal/logging"
	"github.com/kamilpajak/sentimeter/internal/sentiment"
)

// maxBodyBytes bounds request bodies; analysis text is capped far lower.
const maxBodyBytes = 1 << 20

// Server is the API server.
type Server struct {
	validator    *sentiment.Validator
	analyzer     *sentiment.Analyzer
	sessions     *sessionStore
	defaultModel string
	limiter      *rate.Limiter
	logger       *slog.Logger
	router       chi.Router
}

// Config holds API server configuration.
type Config struct {
	Validator    *sentiment.Validator
	Analyzer     *sentiment.Analyzer
	DefaultModel string
	// RateLimit is the global request rate in requests per second.
	RateLimit  float64
	RateBurst  int
	SessionTTL time.Duration
	// SessionsPerMinute bounds session creation per client IP; 0 disables it.
	SessionsPerMinute int
	Logger            *slog.Logger
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}

	s := &Server{
		validator:    cfg.Validator,
		analyzer:     cfg.Analyzer,
		sessions:     newSessionStore(cfg.SessionTTL),
		defaultModel: cfg.DefaultModel,
		logger:       logger,
		router:       chi.NewRouter(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	s.registerRoutes(cfg.SessionsPerMinute)
	return s
}

func (s *Server) registerRoutes(sessionsPerMinute int) {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", sessionHeader},
		MaxAge:         300,
	}))

	// Public endpoints
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Use(middleware.RequestSize(maxBodyBytes))

		r.Get("/models", s.handleListModels)
		r.Get("/examples", s.handleListExamples)

		r.Group(func(r chi.Router) {
			if sessionsPerMinute > 0 {
				r.Use(httprate.Limit(sessionsPerMinute, time.Minute,
					httprate.WithKeyFuncs(httprate.KeyByIP),
					httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
						writeKindError(w, rateLimitedError())
					}),
				))
			}
			r.Post("/session", s.handleCreateSession)
		})
		r.Delete("/session", s.handleDeleteSession)
		r.Get("/session", s.handleGetSession)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/analyze/stream", s.handleAnalyzeStream)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sweep drops sessions idle for longer than the TTL and reports how many
// were removed.
func (s *Server) Sweep() int {
	return s.sessions.sweep(time.Now())
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	return s.sessions.len()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
