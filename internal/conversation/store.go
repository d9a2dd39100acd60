// Package conversation owns per-session conversational state and the chat
// turn lifecycle around the completion gateway.
package conversation

import (
	"sync"

	"github.com/agentic-platform/orchestrator/internal/model"
	"github.com/agentic-platform/orchestrator/pkg/metrics"
)

// session pairs one SessionState with the mutex that serializes its
// read-modify-write turns. The lock is held across the provider call so
// concurrent turns on the same key cannot interleave their appends.
type session struct {
	mu    sync.Mutex
	state model.SessionState
}

// SessionStore holds sessions keyed by the composite (agent, user, session)
// tuple. Different keys are fully independent; lookups only guard the map,
// per-session serialization is the session's own mutex.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[model.SessionKey]*session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[model.SessionKey]*session)}
}

// acquire returns the session for key, creating an empty one if absent.
// The caller seeds the system message under the session lock.
func (s *SessionStore) acquire(key model.SessionKey) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		sess = &session{state: model.SessionState{
			SessionID: key.SessionID,
			AgentID:   key.AgentID,
			UserID:    key.UserID,
		}}
		s.sessions[key] = sess
		metrics.SessionsActive.Inc()
	}
	return sess
}

// lookup returns the session for key without creating one.
func (s *SessionStore) lookup(key model.SessionKey) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	return sess, ok
}
