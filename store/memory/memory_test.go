package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfields/gatehouse/store"
)

func TestCreateFindAndUpdate(t *testing.T) {
	s := New()

	created, err := s.Create(t.Context(), "alice", "hash-old")
	require.NoError(t, err)

	_, err = s.Create(t.Context(), "alice", "hash-dup")
	assert.ErrorIs(t, err, store.ErrExists)

	u, err := s.FindByUsername(t.Context(), "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	require.NoError(t, s.UpdatePassword(t.Context(), "alice", "hash-old", "hash-new"))
	err = s.UpdatePassword(t.Context(), "alice", "hash-old", "hash-other")
	assert.ErrorIs(t, err, store.ErrConflict)

	err = s.UpdatePassword(t.Context(), "nobody", "hash-old", "hash-new")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReturnedUsersAreCopies(t *testing.T) {
	s := New()
	_, err := s.Create(t.Context(), "alice", "hash-1")
	require.NoError(t, err)

	u, err := s.FindByUsername(t.Context(), "alice")
	require.NoError(t, err)
	u.PasswordHash = "tampered"

	again, err := s.FindByUsername(t.Context(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", again.PasswordHash)
}
