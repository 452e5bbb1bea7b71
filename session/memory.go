package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a thread-safe in-memory Store. Sessions are lost on
// restart. Suitable for tests and single-process demos.
type MemoryStore struct {
	mu          sync.RWMutex
	data        map[string]*Session
	idleTimeout time.Duration
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(idleTimeout time.Duration) *MemoryStore {
	return &MemoryStore{
		data:        make(map[string]*Session),
		idleTimeout: idleTimeout,
	}
}

func cloneSession(s *Session) *Session {
	cp := *s
	cp.Fingerprint = append([]byte(nil), s.Fingerprint...)
	return &cp
}

func (s *MemoryStore) Create(ctx context.Context, userID int64, fingerprint []byte) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		Fingerprint:  append([]byte(nil), fingerprint...),
		CreatedAt:    now,
		LastActivity: now,
	}
	s.mu.Lock()
	s.data[sess.ID] = cloneSession(sess)
	s.mu.Unlock()
	return sess, nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(sess), nil
}

func (s *MemoryStore) Touch(ctx context.Context, id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.data[id]
	if !ok {
		return ErrNotFound
	}
	if now.After(sess.LastActivity) {
		sess.LastActivity = now.UTC()
	}
	return nil
}

func (s *MemoryStore) Destroy(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.data, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, sess := range s.data {
		if now.Sub(sess.LastActivity) > s.idleTimeout {
			delete(s.data, id)
			deleted++
		}
	}
	return deleted, nil
}
