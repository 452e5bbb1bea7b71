// Package store provides the persistence abstraction for user records.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no user matches the requested key.
var ErrNotFound = errors.New("user not found")

// ErrConflict is returned when a conditional update matched zero rows:
// either the expected old password hash no longer matches (concurrent
// change) or the row disappeared between read and write.
var ErrConflict = errors.New("password hash mismatch on conditional update")

// ErrExists is returned when provisioning a username that is already taken.
var ErrExists = errors.New("username already exists")

// User is a persisted account record. The password hash is opaque to the
// store; it must never appear in logs or debug output (see auth.User).
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// Users defines the credential store contract. Implementations rely on the
// underlying engine's row-level atomicity; no in-process locking is assumed
// by callers.
type Users interface {
	// Create provisions a new user and returns the stored record.
	// Returns ErrExists if the username is taken.
	Create(ctx context.Context, username, passwordHash string) (*User, error)
	// FindByUsername returns the user with the given username, or
	// ErrNotFound. Lookup is case-sensitive.
	FindByUsername(ctx context.Context, username string) (*User, error)
	// FindByID returns the user with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id int64) (*User, error)
	// UpdatePassword atomically replaces the password hash, conditioned
	// on the current hash still equalling expectedOldHash. Returns
	// ErrNotFound if the username does not exist at all and ErrConflict
	// if it exists but the hash check failed.
	UpdatePassword(ctx context.Context, username, expectedOldHash, newHash string) error
}
