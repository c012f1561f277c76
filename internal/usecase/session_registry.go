package usecase

import (
	"sync"

	"telegram-news-editor/internal/domain/model"
)

// SessionRegistry owns one editorial session per operator for the lifetime of the process.
// Sessions are copied out and stored back whole, so a failed transition never leaves a
// half-updated session behind.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[int64]model.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: map[int64]model.Session{}}
}

// Load returns a copy of the operator's session, creating a fresh idle one on first use.
func (r *SessionRegistry) Load(operatorID int64) model.Session {
	r.mu.RLock()
	s, ok := r.sessions[operatorID]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.sessions[operatorID]; ok {
		return s
	}
	s = model.NewSession(operatorID)
	r.sessions[operatorID] = s
	return s
}

// Peek returns the session without creating one.
func (r *SessionRegistry) Peek(operatorID int64) (model.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[operatorID]
	return s, ok
}

func (r *SessionRegistry) Store(s model.Session) {
	r.mu.Lock()
	r.sessions[s.OperatorID] = s
	r.mu.Unlock()
}
