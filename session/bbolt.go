package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var sessionsBucket = []byte("sessions")

// BoltStore implements Store backed by a bbolt database. Sessions survive
// server restarts (though their cookies do not, since the signing key is
// regenerated). bbolt's single-writer transactions give the per-key
// atomicity the Store contract requires: Touch and SweepExpired serialize,
// so a just-touched session is never swept.
type BoltStore struct {
	db          *bbolt.DB
	idleTimeout time.Duration
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore returns a Store backed by the given bbolt database.
func NewBoltStore(db *bbolt.DB, idleTimeout time.Duration) (*BoltStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating sessions bucket: %w", err)
	}
	return &BoltStore{db: db, idleTimeout: idleTimeout}, nil
}

// OpenBoltStore opens a bbolt database at the given path and returns a
// Store over it.
func OpenBoltStore(path string, idleTimeout time.Duration) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}
	return NewBoltStore(db, idleTimeout)
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Create(ctx context.Context, userID int64, fingerprint []byte) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		Fingerprint:  append([]byte(nil), fingerprint...),
		CreatedAt:    now,
		LastActivity: now,
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(sess.ID), data)
	})
	if err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}
	return sess, nil
}

func (s *BoltStore) Load(ctx context.Context, id string) (*Session, error) {
	var sess Session
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(sessionsBucket).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &sess)
	})
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *BoltStore) Touch(ctx context.Context, id string, now time.Time) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		data := b.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			return fmt.Errorf("decoding session: %w", err)
		}
		if !now.After(sess.LastActivity) {
			return nil
		}
		sess.LastActivity = now.UTC()
		updated, err := json.Marshal(&sess)
		if err != nil {
			return fmt.Errorf("encoding session: %w", err)
		}
		return b.Put([]byte(id), updated)
	})
}

func (s *BoltStore) Destroy(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete([]byte(id))
	})
}

// SweepExpired runs in a single update transaction, so it cannot observe a
// session mid-touch and cannot delete one touched after the sweep began.
func (s *BoltStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	deleted := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		var stale [][]byte
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var sess Session
			if err := json.Unmarshal(v, &sess); err != nil {
				// Corrupt entry, remove it.
				stale = append(stale, append([]byte(nil), k...))
				continue
			}
			if now.Sub(sess.LastActivity) > s.idleTimeout {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return deleted, fmt.Errorf("sweeping expired sessions: %w", err)
	}
	return deleted, nil
}
