package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown username and wrong
	// password. The two cases are deliberately indistinguishable to the
	// caller, in content and in timing.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrPasswordMismatch is returned when the new password and its
	// confirmation differ on a password change.
	ErrPasswordMismatch = errors.New("new passwords do not match")

	// ErrStaleCredential is returned when a password change lost the
	// optimistic-concurrency race: the stored hash no longer matches the
	// one the caller authenticated with.
	ErrStaleCredential = errors.New("credential changed concurrently, re-authenticate and retry")

	// ErrSessionExpired marks a session whose inactivity deadline passed.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionInvalidated marks a session whose auth fingerprint no
	// longer matches the user's current password hash.
	ErrSessionInvalidated = errors.New("session invalidated")

	// ErrBadSignature is returned for a cookie whose authentication tag
	// does not verify.
	ErrBadSignature = errors.New("invalid session token signature")
)
