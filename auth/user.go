package auth

import (
	"crypto/sha256"
	"fmt"
	"log/slog"

	"github.com/tfields/gatehouse/store"
)

// User is an authenticated account. The password hash is kept unexported
// and redacted from every textual representation.
type User struct {
	ID       int64
	Username string

	passwordHash string
}

func newUser(u *store.User) *User {
	return &User{ID: u.ID, Username: u.Username, passwordHash: u.PasswordHash}
}

// Fingerprint derives the session auth fingerprint from the current
// password hash. Sessions store this value at issuance; a later mismatch
// means the password changed and the session is dead.
func (u *User) Fingerprint() []byte {
	sum := sha256.Sum256([]byte(u.passwordHash))
	return sum[:]
}

// String redacts the password hash.
func (u *User) String() string {
	return fmt.Sprintf("User{id: %d, username: %q, password: [redacted]}", u.ID, u.Username)
}

// LogValue keeps the password hash out of structured logs.
func (u *User) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("id", u.ID),
		slog.String("username", u.Username),
	)
}
