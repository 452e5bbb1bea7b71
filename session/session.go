// Package session implements server-side login sessions: persistence with
// inactivity expiry, HMAC-signed tokens, and the background expiry reaper.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no session matches the requested id.
var ErrNotFound = errors.New("session not found")

// Session is the authoritative server-side record behind a signed cookie.
type Session struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"user_id"`
	Fingerprint  []byte    `json:"fingerprint"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Store abstracts session persistence so sessions can live in bbolt
// (default) or in memory. Implementations provide per-key atomicity; a
// sweep never deletes a session that was touched after the sweep began.
type Store interface {
	// Create persists a new session for the user with a fresh
	// unguessable id.
	Create(ctx context.Context, userID int64, fingerprint []byte) (*Session, error)
	// Load returns the session with the given id, or ErrNotFound.
	// Validity (inactivity timeout, fingerprint) is the caller's
	// concern.
	Load(ctx context.Context, id string) (*Session, error)
	// Touch refreshes LastActivity to now. It never regresses the
	// timestamp: an older now than the stored value is a no-op.
	// Returns ErrNotFound if the session is gone.
	Touch(ctx context.Context, id string, now time.Time) error
	// Destroy removes the session. Destroying an absent session is not
	// an error.
	Destroy(ctx context.Context, id string) error
	// SweepExpired deletes every session whose LastActivity is strictly
	// older than the inactivity timeout as of now, returning the count.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}
