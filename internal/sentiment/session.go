package sentiment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kamilpajak/sentimeter/internal/llm"
	"github.com/kamilpajak/sentimeter/pkg/models"
)

// Session holds one user's validated credential and latest result in memory.
// Nothing is persisted; Clear drops both.
type Session struct {
	ID string

	validator *Validator
	analyzer  *Analyzer

	mu       sync.Mutex
	cred     *Credential
	last     *models.AnalysisResult
	lastUsed time.Time
}

// NewSession creates an empty session.
func NewSession(v *Validator, a *Analyzer) *Session {
	return &Session{
		ID:        uuid.NewString(),
		validator: v,
		analyzer:  a,
		lastUsed:  time.Now(),
	}
}

// Authenticate validates rawKey and stores the credential on success. On
// failure any previous credential is kept.
func (s *Session) Authenticate(ctx context.Context, rawKey string) (*Credential, error) {
	cred, err := s.validator.Validate(ctx, rawKey)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	if err != nil {
		return nil, err
	}
	s.cred = cred
	s.last = nil
	return cred, nil
}

// Analyze runs an analysis with the stored credential. An authentication
// failure drops the credential so the caller must validate again.
func (s *Session) Analyze(ctx context.Context, text, modelID string) (*models.AnalysisResult, error) {
	cred := s.Credential()

	result, err := s.analyzer.Analyze(ctx, cred, text, modelID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	if err != nil {
		if llm.KindOf(err) == llm.KindInvalidCredential && s.cred == cred {
			s.cred = nil
		}
		return nil, err
	}
	s.last = result
	return result, nil
}

// Credential returns the stored credential, or nil.
func (s *Session) Credential() *Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred
}

// Last returns the most recent successful result, or nil.
func (s *Session) Last() *models.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// LastUsed returns when the session was last touched.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Clear discards the credential and the last result.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil
	s.last = nil
}
