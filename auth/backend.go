// Package auth implements credential verification and the authentication
// backend that binds users to sessions.
package auth

import (
	"context"
	"crypto/hmac"
	"errors"
	"fmt"

	"github.com/tfields/gatehouse/store"
)

// Credentials are the transient, request-scoped sign-in inputs. Next is an
// optional post-login redirect hint, opaque to the backend.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Next     string `json:"next,omitempty"`
}

// Backend answers "is this credential valid" and "who is this session"
// against the user store.
type Backend struct {
	users  store.Users
	hasher *Hasher
}

// NewBackend creates a Backend over the given user store and hasher.
func NewBackend(users store.Users, hasher *Hasher) *Backend {
	return &Backend{users: users, hasher: hasher}
}

// Hasher returns the backend's password hasher.
func (b *Backend) Hasher() *Hasher { return b.hasher }

// Authenticate verifies the credentials and returns the matching user, or
// nil when username or password is wrong. The two failure cases are
// indistinguishable: when the username is unknown the hasher still burns a
// verification against a dummy hash. A non-nil error means the store
// itself failed, never "wrong password".
func (b *Backend) Authenticate(ctx context.Context, creds Credentials) (*User, error) {
	u, err := b.users.FindByUsername(ctx, creds.Username)
	if errors.Is(err, store.ErrNotFound) {
		b.hasher.VerifyDummy(creds.Password)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if !b.hasher.Verify(creds.Password, u.PasswordHash) {
		return nil, nil
	}
	return newUser(u), nil
}

// ResolveSession maps a validated session back to its current user. It
// returns nil when the user no longer exists or when the session
// fingerprint does not match the user's current password hash (the
// password changed since issuance). In both cases the caller must destroy
// the session.
func (b *Backend) ResolveSession(ctx context.Context, userID int64, fingerprint []byte) (*User, error) {
	u, err := b.users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up session user: %w", err)
	}
	user := newUser(u)
	if !hmac.Equal(fingerprint, user.Fingerprint()) {
		return nil, nil
	}
	return user, nil
}

// ChangePassword replaces the user's password. The update is conditioned
// on the hash the user authenticated with, so a concurrent change makes
// this fail with ErrStaleCredential rather than silently clobbering.
// Existing sessions become invalid via the fingerprint; no enumeration of
// the session store is needed.
func (b *Backend) ChangePassword(ctx context.Context, user *User, oldPlain, newPlain, newPlainConfirm string) error {
	if newPlain != newPlainConfirm {
		return ErrPasswordMismatch
	}
	if !b.hasher.Verify(oldPlain, user.passwordHash) {
		return ErrInvalidCredentials
	}
	newHash, err := b.hasher.Hash(newPlain)
	if err != nil {
		return fmt.Errorf("hashing new password: %w", err)
	}
	err = b.users.UpdatePassword(ctx, user.Username, user.passwordHash, newHash)
	if errors.Is(err, store.ErrConflict) {
		return ErrStaleCredential
	}
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}
