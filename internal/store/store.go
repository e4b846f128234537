package store

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/ademuri/listen-brainz-tools/internal/migration"
	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the local SQLite database holding per-user listen history,
// likes, the crawl staging buffer, lookup caches, and saved reports.
//
// Read-modify-write sequences take the store lock in addition to SQLite
// transactions, so one process never interleaves two merges for the same
// user.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(migration.Create); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser ensures a user exists in the database.
func (s *Store) CreateUser(user string) error {
	row := s.db.QueryRow("SELECT name FROM User WHERE name = ?", user)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		if _, err := s.db.Exec("INSERT INTO User (name) VALUES (?)", user); err != nil {
			return fmt.Errorf("inserting user %q: %w", user, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking user %q: %w", user, err)
	}
	return nil
}

// SetToken stores the remote API token for a user.
func (s *Store) SetToken(user, token string) error {
	if _, err := s.db.Exec("UPDATE User SET token = ? WHERE name = ?", token, user); err != nil {
		return fmt.Errorf("updating token for %q: %w", user, err)
	}
	return nil
}

func (s *Store) Token(user string) (string, error) {
	row := s.db.QueryRow("SELECT token FROM User WHERE name = ? AND token <> ''", user)
	var token string
	err := row.Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting token: %w", err)
	}
	return token, nil
}
