// Package memory provides an in-memory SessionStore with the same key
// semantics as the Redis store: one namespace per role, one session per
// browser, whole-session writes and clears. It backs tests and single-node
// development runs.
package memory

import (
	"context"
	"sync"

	"github.com/marketfront/portal-gateway/internal/core/domain"
)

type SessionStore struct {
	namespace string

	mu       sync.RWMutex
	sessions map[string]domain.Session // keyed by browserID
}

// NewSessionStore creates a store for one role namespace. Distinct
// namespaces never share state even when they share a process.
func NewSessionStore(namespace string) *SessionStore {
	return &SessionStore{
		namespace: namespace,
		sessions:  make(map[string]domain.Session),
	}
}

func (s *SessionStore) Save(_ context.Context, browserID string, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[browserID] = sess
	return nil
}

func (s *SessionStore) Load(_ context.Context, browserID string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[browserID]
	if !ok {
		return domain.Session{}, domain.ErrNoSession
	}
	return sess, nil
}

func (s *SessionStore) Clear(_ context.Context, browserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, browserID)
	return nil
}
