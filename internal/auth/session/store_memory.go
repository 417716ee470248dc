package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. It backs local
// development without Redis and the handler tests. Expired sessions are
// deleted on read, mirroring the absent-on-expiry behaviour of the Redis TTL.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Create stores a fresh pending session with the given TTL.
func (s *MemoryStore) Create(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.sessions[id] = &Session{
		ID:        id,
		Status:    StatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	return nil
}

// Get retrieves a session, deleting and reporting ErrNotFound for expired rows.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}

	copied := *sess
	return &copied, nil
}

// Complete marks a pending session completed. The mutex serializes concurrent
// completion attempts so exactly one succeeds.
func (s *MemoryStore) Complete(_ context.Context, id, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return ErrNotFound
	}
	if sess.Status == StatusCompleted {
		return ErrAlreadyCompleted
	}

	sess.Status = StatusCompleted
	sess.UserID = userID
	sess.Token = token
	return nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
