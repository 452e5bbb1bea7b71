package api

import (
	"sort"
	"sync"
)

// AppState is the process-wide mutable state shared by all request
// handlers: a request counter and the set of usernames that have signed in
// since startup. Not persisted; resets on restart.
//
// Every access goes through the mutex, reads included, so diagnostics
// never observe a torn set. Nothing holds the lock across I/O.
type AppState struct {
	mu           sync.Mutex
	requestCount uint64
	activeUsers  map[string]struct{}
}

// NewAppState creates empty shared state.
func NewAppState() *AppState {
	return &AppState{activeUsers: make(map[string]struct{})}
}

// IncrementRequests bumps the monotonic request counter.
func (s *AppState) IncrementRequests() {
	s.mu.Lock()
	s.requestCount++
	s.mu.Unlock()
}

// MarkActive records a username as having signed in.
func (s *AppState) MarkActive(username string) {
	s.mu.Lock()
	s.activeUsers[username] = struct{}{}
	s.mu.Unlock()
}

// Snapshot returns the current counter and a sorted copy of the active
// username set.
func (s *AppState) Snapshot() (uint64, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]string, 0, len(s.activeUsers))
	for u := range s.activeUsers {
		users = append(users, u)
	}
	sort.Strings(users)
	return s.requestCount, users
}
