// Package memory provides a thread-safe in-memory implementation of store.Users.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tfields/gatehouse/store"
)

// Store is a thread-safe in-memory implementation of store.Users.
// Suitable for testing, demos, and single-process use cases.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	byName map[string]*store.User
	byID   map[int64]*store.User
}

var _ store.Users = (*Store)(nil)

// New creates a new empty in-memory Store.
func New() *Store {
	return &Store{
		byName: make(map[string]*store.User),
		byID:   make(map[int64]*store.User),
	}
}

func cloneUser(u *store.User) *store.User {
	cp := *u
	return &cp
}

func (s *Store) Create(ctx context.Context, username, passwordHash string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[username]; ok {
		return nil, fmt.Errorf("%s: %w", username, store.ErrExists)
	}
	s.nextID++
	u := &store.User{ID: s.nextID, Username: username, PasswordHash: passwordHash}
	s.byName[username] = u
	s.byID[u.ID] = u
	return cloneUser(u), nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byName[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) UpdatePassword(ctx context.Context, username, expectedOldHash, newHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byName[username]
	if !ok {
		return fmt.Errorf("%s: %w", username, store.ErrNotFound)
	}
	if u.PasswordHash != expectedOldHash {
		return store.ErrConflict
	}
	u.PasswordHash = newHash
	return nil
}
