package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tfields/gatehouse/auth"
)

// Manager drives the per-request session lifecycle: anonymous →
// authenticated on login, touched on activity, and torn down on logout,
// expiry, or fingerprint invalidation. The backend is passed in explicitly;
// sessions hold no reference back to it.
type Manager struct {
	store             Store
	signer            *Signer
	backend           *auth.Backend
	inactivityTimeout time.Duration
}

// NewManager wires a Manager over its collaborators.
func NewManager(store Store, signer *Signer, backend *auth.Backend, inactivityTimeout time.Duration) *Manager {
	return &Manager{
		store:             store,
		signer:            signer,
		backend:           backend,
		inactivityTimeout: inactivityTimeout,
	}
}

// InactivityTimeout returns the configured idle deadline, used to bound
// cookie lifetimes.
func (m *Manager) InactivityTimeout() time.Duration { return m.inactivityTimeout }

// Login authenticates the credentials and, on success, mints a new session
// with a signed token. A wrong username or password yields
// auth.ErrInvalidCredentials; any other error is infrastructure failure.
func (m *Manager) Login(ctx context.Context, creds auth.Credentials) (string, *auth.User, error) {
	user, err := m.backend.Authenticate(ctx, creds)
	if err != nil {
		return "", nil, fmt.Errorf("authenticating: %w", err)
	}
	if user == nil {
		return "", nil, auth.ErrInvalidCredentials
	}
	sess, err := m.store.Create(ctx, user.ID, user.Fingerprint())
	if err != nil {
		return "", nil, fmt.Errorf("creating session: %w", err)
	}
	token, err := m.signer.Sign(sess.ID)
	if err != nil {
		return "", nil, fmt.Errorf("signing session token: %w", err)
	}
	return token, user, nil
}

// Resolve maps a cookie token to its user, refreshing the inactivity
// deadline. It returns (nil, nil) for an absent session (the request is
// simply anonymous) and a typed error when the token is tampered
// (auth.ErrBadSignature), the session idled out (auth.ErrSessionExpired),
// or the password changed since issuance (auth.ErrSessionInvalidated).
// Expired and invalidated sessions are destroyed on the spot.
func (m *Manager) Resolve(ctx context.Context, token string) (*auth.User, error) {
	id, err := m.signer.Verify(token)
	if err != nil {
		return nil, err
	}
	sess, err := m.store.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	now := time.Now()
	if now.Sub(sess.LastActivity) > m.inactivityTimeout {
		if derr := m.store.Destroy(ctx, id); derr != nil {
			return nil, fmt.Errorf("destroying expired session: %w", derr)
		}
		return nil, auth.ErrSessionExpired
	}

	user, err := m.backend.ResolveSession(ctx, sess.UserID, sess.Fingerprint)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if derr := m.store.Destroy(ctx, id); derr != nil {
			return nil, fmt.Errorf("destroying invalidated session: %w", derr)
		}
		return nil, auth.ErrSessionInvalidated
	}

	// Refresh the inactivity deadline. Losing the race against the
	// reaper here just means the session expired.
	if err := m.store.Touch(ctx, id, now); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, auth.ErrSessionExpired
		}
		return nil, fmt.Errorf("touching session: %w", err)
	}
	return user, nil
}

// Logout destroys the session behind the token. Tampered tokens error;
// an already-gone session does not.
func (m *Manager) Logout(ctx context.Context, token string) error {
	id, err := m.signer.Verify(token)
	if err != nil {
		return err
	}
	if err := m.store.Destroy(ctx, id); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	return nil
}
