package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/kamilpajak/sentimeter/internal/llm"
	"github.com/kamilpajak/sentimeter/internal/sentiment"
)

const sessionHeader = "X-Session-ID"

// statusForKind maps an error kind to the HTTP status returned to clients.
func statusForKind(k llm.Kind) int {
	switch k {
	case llm.KindInvalidCredentialFormat, llm.KindInvalidInput, llm.KindModelUnavailable:
		return http.StatusBadRequest
	case llm.KindInvalidCredential:
		return http.StatusUnauthorized
	case llm.KindInputTooLarge:
		return http.StatusRequestEntityTooLarge
	case llm.KindRateLimited:
		return http.StatusTooManyRequests
	case llm.KindNetworkFailure, llm.KindMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeKindError writes a classified error. Only the fixed message for the
// kind reaches the client.
func writeKindError(w http.ResponseWriter, err error) {
	kind := llm.KindOf(err)
	writeError(w, statusForKind(kind), string(kind), kind.Message())
}

// defaultModelFor picks the configured default, or the first model of the
// credential's provider when the default belongs to another provider.
func (s *Server) defaultModelFor(cred *sentiment.Credential) string {
	if cred == nil {
		return s.defaultModel
	}
	if d, err := llm.Describe(s.defaultModel); err == nil && d.Provider == cred.Provider() {
		return d.ID
	}
	if models := llm.ModelsFor(cred.Provider()); len(models) > 0 {
		return models[0].ID
	}
	return s.defaultModel
}

func rateLimitedError() error {
	return llm.Errorf(llm.KindRateLimited, "server rate limit")
}

// requireSession resolves the session named by the X-Session-ID header.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (*sentiment.Session, bool) {
	id := r.Header.Get(sessionHeader)
	if id == "" {
		writeError(w, http.StatusUnauthorized, "session_required", "Missing "+sessionHeader+" header.")
		return nil, false
	}
	sess, ok := s.sessions.get(id, time.Now())
	if !ok {
		writeError(w, http.StatusUnauthorized, "session_not_found", "Session expired or unknown. Validate your API key again.")
		return nil, false
	}
	return sess, true
}

// rateLimit applies the global token bucket.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			writeKindError(w, rateLimitedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func logKindError(logger *slog.Logger, msg string, err error) {
	var e *llm.Error
	if errors.As(err, &e) {
		logger.Warn(msg, "kind", e.Kind, "detail", e.Diagnostic())
		return
	}
	logger.Error(msg, "error", err)
}
