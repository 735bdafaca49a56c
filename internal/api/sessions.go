package api

import (
	"sync"
	"time"

	"github.com/kamilpajak/sentimeter/internal/sentiment"
)

// sessionStore keeps sessions in memory only. Nothing survives a restart.
type sessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*sentiment.Session
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:      ttl,
		sessions: make(map[string]*sentiment.Session),
	}
}

func (st *sessionStore) add(s *sentiment.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
}

// get returns the session if it exists and has not expired.
func (st *sessionStore) get(id string, now time.Time) (*sentiment.Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	if now.Sub(s.LastUsed()) > st.ttl {
		s.Clear()
		delete(st.sessions, id)
		return nil, false
	}
	return s, true
}

func (st *sessionStore) remove(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if ok {
		s.Clear()
		delete(st.sessions, id)
	}
	return ok
}

func (st *sessionStore) sweep(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if now.Sub(s.LastUsed()) > st.ttl {
			s.Clear()
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
