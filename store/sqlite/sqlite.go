// Package sqlite provides a SQLite-backed user store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/tfields/gatehouse/store"
)

// Store implements store.Users backed by a SQLite database.
type Store struct {
	db        *sql.DB
	writeLock sync.Mutex // modernc sqlite does not support concurrent writers
}

var _ store.Users = (*Store)(nil)

// Open opens (creating if necessary) a SQLite database at the given path
// and ensures the users schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT    UNIQUE NOT NULL,
			password_hash TEXT    NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating users schema: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, username, passwordHash string) (*store.User, error) {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash) VALUES (?, ?)",
		username, passwordHash,
	)
	if err != nil {
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return nil, fmt.Errorf("%s: %w", username, store.ErrExists)
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading inserted user id: %w", err)
	}
	return &store.User{ID: id, Username: username, PasswordHash: passwordHash}, nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*store.User, error) {
	var u store.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash FROM users WHERE username = ?",
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by username: %w", err)
	}
	return &u, nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*store.User, error) {
	var u store.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash FROM users WHERE id = ?",
		id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}
	return &u, nil
}

// UpdatePassword performs the optimistic-concurrency update: the row is
// only written when both username and the expected old hash still match.
func (s *Store) UpdatePassword(ctx context.Context, username, expectedOldHash, newHash string) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE username = ? AND password_hash = ?",
		newHash, username, expectedOldHash,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 1 {
		return nil
	}

	// Zero rows: distinguish a vanished user from a stale hash.
	var exists int
	err = s.db.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE username = ?", username,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", username, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking user existence: %w", err)
	}
	return store.ErrConflict
}
