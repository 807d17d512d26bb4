package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Views names used by the visibility trigger and websocket events.
const (
	ViewFinancial = "financial"
	ViewHealth    = "health"
)

// Session is one browser's dashboard state.
type Session struct {
	ID        string
	Financial *FinancialView
	Health    *HealthView

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionStore keeps sessions in memory and drops those idle for longer
// than the configured timeout.
type SessionStore struct {
	api       API
	patientID int64
	timeout   time.Duration
	idle      time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates a store whose sessions show patientID. timeout
// bounds every backend call; idle is how long an unused session survives.
func NewSessionStore(api API, patientID int64, timeout, idle time.Duration) *SessionStore {
	return &SessionStore{
		api:       api,
		patientID: patientID,
		timeout:   timeout,
		idle:      idle,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// Get returns a live session and marks it as used.
func (st *SessionStore) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, false
	}
	now := st.now()
	if st.expired(s, now) {
		st.remove(id)
		return nil, false
	}
	s.touch(now)
	return s, true
}

// GetOrCreate returns the session for id, creating a new one (with a fresh
// id) when it does not exist. created reports whether a new one was made.
func (st *SessionStore) GetOrCreate(id string) (s *Session, created bool) {
	if s, ok := st.Get(id); ok {
		return s, false
	}
	s = &Session{
		ID:        uuid.New().String(),
		Financial: NewFinancialView(st.api, st.patientID, st.timeout),
		Health:    NewHealthView(st.api, st.patientID, st.timeout),
		lastSeen:  st.now(),
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s, true
}

// Touch marks a session as used without returning it.
func (st *SessionStore) Touch(id string) {
	st.Get(id)
}

// Sweep drops idle sessions and returns how many were removed.
func (st *SessionStore) Sweep() int {
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if st.expired(s, now) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// All returns the live sessions.
func (st *SessionStore) All() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, s)
	}
	return out
}

// Len returns the number of stored sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *SessionStore) expired(s *Session, now time.Time) bool {
	return st.idle > 0 && now.Sub(s.LastSeen()) > st.idle
}

func (st *SessionStore) remove(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}
