package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfields/gatehouse/auth"
	"github.com/tfields/gatehouse/store/memory"
)

func testBackend(t *testing.T) *auth.Backend {
	t.Helper()
	hasher, err := auth.NewHasher(auth.Argon2idParams{
		Time:        1,
		MemoryKiB:   1024,
		Parallelism: 1,
		KeyLen:      32,
	})
	require.NoError(t, err)

	users := memory.New()
	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)
	_, err = users.Create(t.Context(), "alice", hash)
	require.NoError(t, err)

	return auth.NewBackend(users, hasher)
}

func testManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore(time.Hour)
	m := NewManager(store, NewSigner(), testBackend(t), time.Hour)
	return m, store
}

func TestLoginAndResolve(t *testing.T) {
	m, _ := testManager(t)

	token, user, err := m.Login(t.Context(), auth.Credentials{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, token)

	resolved, err := m.Resolve(t.Context(), token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestLoginInvalidCredentials(t *testing.T) {
	m, store := testManager(t)

	for _, creds := range []auth.Credentials{
		{Username: "alice", Password: "wrong"},
		{Username: "nobody", Password: "secret123"},
	} {
		token, user, err := m.Login(t.Context(), creds)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		assert.Nil(t, user)
		assert.Empty(t, token)
	}
	assert.Empty(t, store.data, "failed logins must not create sessions")
}

func TestResolveAnonymous(t *testing.T) {
	m, _ := testManager(t)

	// A well-signed token for a session that no longer exists is simply
	// anonymous, not an error.
	token, err := m.signer.Sign("vanished-session")
	require.NoError(t, err)

	user, err := m.Resolve(t.Context(), token)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestResolveTamperedToken(t *testing.T) {
	m, _ := testManager(t)

	_, err := m.Resolve(t.Context(), "some-id.bm90LWEtdGFn")
	assert.ErrorIs(t, err, auth.ErrBadSignature)
}

func TestResolveExpired(t *testing.T) {
	m, store := testManager(t)

	token, _, err := m.Login(t.Context(), auth.Credentials{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	// Age the session past the inactivity deadline.
	id, err := m.signer.Verify(token)
	require.NoError(t, err)
	store.mu.Lock()
	store.data[id].LastActivity = time.Now().Add(-2 * time.Hour)
	store.mu.Unlock()

	user, err := m.Resolve(t.Context(), token)
	assert.ErrorIs(t, err, auth.ErrSessionExpired)
	assert.Nil(t, user)

	// The expired session was destroyed; the next resolution is anonymous.
	user, err = m.Resolve(t.Context(), token)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestResolveRefreshesDeadline(t *testing.T) {
	m, store := testManager(t)

	token, _, err := m.Login(t.Context(), auth.Credentials{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	id, err := m.signer.Verify(token)
	require.NoError(t, err)

	// Half-aged session: still valid, and resolving it must push the
	// deadline forward again.
	halfAged := time.Now().Add(-30 * time.Minute)
	store.mu.Lock()
	store.data[id].LastActivity = halfAged
	store.mu.Unlock()

	_, err = m.Resolve(t.Context(), token)
	require.NoError(t, err)

	sess, err := store.Load(t.Context(), id)
	require.NoError(t, err)
	assert.True(t, sess.LastActivity.After(halfAged), "Resolve must refresh LastActivity")
}

func TestPasswordChangeInvalidatesSessions(t *testing.T) {
	m, store := testManager(t)

	token, user, err := m.Login(t.Context(), auth.Credentials{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, m.backend.ChangePassword(t.Context(), user, "secret123", "newsecret", "newsecret"))

	resolved, err := m.Resolve(t.Context(), token)
	assert.ErrorIs(t, err, auth.ErrSessionInvalidated)
	assert.Nil(t, resolved)
	assert.Empty(t, store.data, "invalidated session must be destroyed")

	// Signing in with the new password works and yields a usable session.
	token2, _, err := m.Login(t.Context(), auth.Credentials{Username: "alice", Password: "newsecret"})
	require.NoError(t, err)
	resolved, err = m.Resolve(t.Context(), token2)
	require.NoError(t, err)
	assert.NotNil(t, resolved)
}

func TestLogout(t *testing.T) {
	m, store := testManager(t)

	token, _, err := m.Login(t.Context(), auth.Credentials{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, m.Logout(t.Context(), token))
	assert.Empty(t, store.data)

	user, err := m.Resolve(t.Context(), token)
	require.NoError(t, err)
	assert.Nil(t, user)

	// Logging out again is harmless; a tampered token is not.
	require.NoError(t, m.Logout(t.Context(), token))
	assert.ErrorIs(t, m.Logout(t.Context(), "bad-token"), auth.ErrBadSignature)
}
