package session

import (
	"path/filepath"
	"testing"
	"time"
)

const testIdleTimeout = 50 * time.Millisecond

// storeTests runs the common suite against any Store implementation.
// newStore must return a fresh, empty store configured with
// testIdleTimeout.
func storeTests(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()

	fingerprint := []byte("fp-1")

	t.Run("CreateAndLoad", func(t *testing.T) {
		store := newStore(t)
		sess, err := store.Create(t.Context(), 7, fingerprint)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if sess.ID == "" {
			t.Fatal("expected a session id")
		}
		got, err := store.Load(t.Context(), sess.ID)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.UserID != 7 {
			t.Fatalf("got UserID %d, want 7", got.UserID)
		}
		if string(got.Fingerprint) != "fp-1" {
			t.Fatalf("got fingerprint %q, want %q", got.Fingerprint, "fp-1")
		}
	})

	t.Run("IDsAreUnique", func(t *testing.T) {
		store := newStore(t)
		a, err := store.Create(t.Context(), 1, fingerprint)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		b, err := store.Create(t.Context(), 1, fingerprint)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if a.ID == b.ID {
			t.Fatal("two sessions share an id")
		}
	})

	t.Run("LoadMissing", func(t *testing.T) {
		store := newStore(t)
		if _, err := store.Load(t.Context(), "no-such-session"); err != ErrNotFound {
			t.Fatalf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("Destroy", func(t *testing.T) {
		store := newStore(t)
		sess, err := store.Create(t.Context(), 2, fingerprint)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := store.Destroy(t.Context(), sess.ID); err != nil {
			t.Fatalf("Destroy: %v", err)
		}
		if _, err := store.Load(t.Context(), sess.ID); err != ErrNotFound {
			t.Fatalf("got %v, want ErrNotFound after destroy", err)
		}
		// Destroying an absent session is not an error.
		if err := store.Destroy(t.Context(), sess.ID); err != nil {
			t.Fatalf("Destroy (absent): %v", err)
		}
	})

	t.Run("TouchRefreshes", func(t *testing.T) {
		store := newStore(t)
		sess, err := store.Create(t.Context(), 3, fingerprint)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		later := sess.LastActivity.Add(time.Minute)
		if err := store.Touch(t.Context(), sess.ID, later); err != nil {
			t.Fatalf("Touch: %v", err)
		}
		got, err := store.Load(t.Context(), sess.ID)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if !got.LastActivity.Equal(later.UTC()) {
			t.Fatalf("got LastActivity %v, want %v", got.LastActivity, later.UTC())
		}
	})

	t.Run("TouchIsMonotonic", func(t *testing.T) {
		store := newStore(t)
		sess, err := store.Create(t.Context(), 4, fingerprint)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		earlier := sess.LastActivity.Add(-time.Minute)
		if err := store.Touch(t.Context(), sess.ID, earlier); err != nil {
			t.Fatalf("Touch: %v", err)
		}
		got, err := store.Load(t.Context(), sess.ID)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.LastActivity.Before(sess.LastActivity) {
			t.Fatal("Touch regressed LastActivity")
		}
	})

	t.Run("TouchMissing", func(t *testing.T) {
		store := newStore(t)
		if err := store.Touch(t.Context(), "no-such-session", time.Now()); err != ErrNotFound {
			t.Fatalf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("SweepExpired", func(t *testing.T) {
		store := newStore(t)
		stale, err := store.Create(t.Context(), 5, fingerprint)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		fresh, err := store.Create(t.Context(), 6, fingerprint)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		time.Sleep(2 * testIdleTimeout)
		// A touch after the deadline keeps the session alive.
		if err := store.Touch(t.Context(), fresh.ID, time.Now()); err != nil {
			t.Fatalf("Touch: %v", err)
		}

		deleted, err := store.SweepExpired(t.Context(), time.Now())
		if err != nil {
			t.Fatalf("SweepExpired: %v", err)
		}
		if deleted != 1 {
			t.Fatalf("got %d deleted, want 1", deleted)
		}
		if _, err := store.Load(t.Context(), stale.ID); err != ErrNotFound {
			t.Fatalf("stale session survived the sweep: %v", err)
		}
		if _, err := store.Load(t.Context(), fresh.ID); err != nil {
			t.Fatalf("touched session was swept: %v", err)
		}

		// Idempotence: with no new activity the second sweep is a no-op.
		deleted, err = store.SweepExpired(t.Context(), time.Now())
		if err != nil {
			t.Fatalf("SweepExpired (second): %v", err)
		}
		if deleted != 0 {
			t.Fatalf("second sweep deleted %d sessions, want 0", deleted)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	storeTests(t, func(t *testing.T) Store {
		return NewMemoryStore(testIdleTimeout)
	})
}

func TestBoltStore(t *testing.T) {
	storeTests(t, func(t *testing.T) Store {
		store, err := OpenBoltStore(filepath.Join(t.TempDir(), "sessions.db"), testIdleTimeout)
		if err != nil {
			t.Fatalf("OpenBoltStore: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		return store
	})

	t.Run("SurvivesReopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sessions.db")
		s1, err := OpenBoltStore(path, time.Hour)
		if err != nil {
			t.Fatalf("OpenBoltStore: %v", err)
		}
		sess, err := s1.Create(t.Context(), 9, []byte("fp"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s1.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}

		s2, err := OpenBoltStore(path, time.Hour)
		if err != nil {
			t.Fatalf("OpenBoltStore (reopen): %v", err)
		}
		defer s2.Close()

		got, err := s2.Load(t.Context(), sess.ID)
		if err != nil {
			t.Fatalf("Load after reopen: %v", err)
		}
		if got.UserID != 9 {
			t.Fatalf("got UserID %d, want 9", got.UserID)
		}
	})
}
