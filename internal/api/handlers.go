package api

import (
	"net/http"

	"github.com/kamilpajak/sentimeter/internal/llm"
	"github.com/kamilpajak/sentimeter/internal/sentiment"
)

type createSessionRequest struct {
	APIKey string `json:"api_key"`
}

type sessionResponse struct {
	SessionID   string       `json:"session_id"`
	Provider    llm.Provider `json:"provider"`
	Fingerprint string       `json:"fingerprint"`
	RateLimited bool         `json:"rate_limited,omitempty"`
	Models      []string     `json:"models"`
}

type analyzeRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

// handleListModels returns the capability table.
func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"models":  llm.Models(),
		"default": s.defaultModel,
	})
}

// handleListExamples returns the curated sample texts.
func (s *Server) handleListExamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"examples": sentiment.Examples()})
}

// handleCreateSession validates an API key and opens a session holding it.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	sess := sentiment.NewSession(s.validator, s.analyzer)
	cred, err := sess.Authenticate(r.Context(), req.APIKey)
	if err != nil {
		logKindError(s.logger, "session authentication failed", err)
		writeKindError(w, err)
		return
	}
	s.sessions.add(sess)

	models := []string{}
	for _, d := range llm.ModelsFor(cred.Provider()) {
		models = append(models, d.ID)
	}

	s.logger.Info("session created", "session", sess.ID, "credential", cred)
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID:   sess.ID,
		Provider:    cred.Provider(),
		Fingerprint: cred.Fingerprint(),
		RateLimited: cred.RateLimited(),
		Models:      models,
	})
}

// handleGetSession reports the credential held by a session.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	cred := sess.Credential()
	if cred == nil {
		writeKindError(w, llm.Errorf(llm.KindInvalidCredential, "session has no credential"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":  sess.ID,
		"provider":    cred.Provider(),
		"fingerprint": cred.Fingerprint(),
		"last":        sess.Last(),
	})
}

// handleDeleteSession discards the session and its credential.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(sessionHeader)
	if id == "" || !s.sessions.remove(id) {
		writeError(w, http.StatusNotFound, "session_not_found", "Session expired or unknown.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeAnalyze reads the analyze body and resolves the model. It writes the
// error response itself and reports whether the caller may continue.
func (s *Server) decodeAnalyze(w http.ResponseWriter, r *http.Request, sess *sentiment.Session) (analyzeRequest, bool) {
	var req analyzeRequest
	if err := readJSON(r, &req); err != nil {
		if isBodyTooLarge(err) {
			writeKindError(w, llm.Errorf(llm.KindInputTooLarge, "request body too large"))
			return req, false
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return req, false
	}
	if req.Model == "" {
		req.Model = s.defaultModelFor(sess.Credential())
	}
	return req, true
}

// handleAnalyze classifies text with the session's credential.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	req, ok := s.decodeAnalyze(w, r, sess)
	if !ok {
		return
	}

	result, err := sess.Analyze(r.Context(), req.Text, req.Model)
	if err != nil {
		writeKindError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAnalyzeStream runs the same analysis as handleAnalyze but reports
// each stage as a Server-Sent Event. The last event is always "done" or
// "error".
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	req, ok := s.decodeAnalyze(w, r, sess)
	if !ok {
		return
	}

	emitter := newSSEEmitter(w)
	if emitter == nil {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := sentiment.ContextWithProgress(r.Context(), emitter)
	if _, err := sess.Analyze(ctx, req.Text, req.Model); err != nil && !emitter.done() {
		kind := llm.KindOf(err)
		emitter.Emit(sentiment.ProgressEvent{
			Type:    sentiment.EventError,
			Model:   req.Model,
			Message: kind.Message(),
			Kind:    kind,
		})
	}
}
