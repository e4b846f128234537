package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/ademuri/listen-brainz-tools/internal/listen"
)

const insertListen = `
INSERT OR IGNORE INTO Listen
  (user, artist, artist_mbid, album, track_name, duration_ms, date, recording_mbid, release_mbid, origin)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const insertStaging = `
INSERT INTO Staging
  (user, artist, artist_mbid, album, track_name, duration_ms, date, recording_mbid, release_mbid, origin)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// MergeListens inserts canonical rows into the committed history,
// transactionally. Rows matching an existing natural key
// (user, listened_at, track_name, artist) are dropped, so merging the same
// batch twice is a no-op.
func (s *Store) MergeListens(user string, rows []listen.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertListen)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if err := execInsertRow(stmt, user, row); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing merge: %w", err)
	}
	return nil
}

// AppendStaging adds rows to the crawl staging buffer. The buffer is
// append-only; it is never rewritten in place, so an interrupted crawl
// keeps everything staged so far.
func (s *Store) AppendStaging(user string, rows []listen.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertStaging)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if err := execInsertRow(stmt, user, row); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing staging append: %w", err)
	}
	return nil
}

// MergeStaging moves everything staged for a user into the committed
// history and clears the staging buffer, in one transaction. Natural-key
// duplicates are dropped on the way in.
func (s *Store) MergeStaging(user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR IGNORE INTO Listen
		  (user, artist, artist_mbid, album, track_name, duration_ms, date, recording_mbid, release_mbid, origin)
		SELECT user, artist, artist_mbid, album, track_name, duration_ms, date, recording_mbid, release_mbid, origin
		FROM Staging WHERE user = ?`, user)
	if err != nil {
		return fmt.Errorf("merging staging: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM Staging WHERE user = ?", user); err != nil {
		return fmt.Errorf("clearing staging: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing staging merge: %w", err)
	}
	return nil
}

// ClearStaging discards a user's staging buffer without merging it.
func (s *Store) ClearStaging(user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM Staging WHERE user = ?", user); err != nil {
		return fmt.Errorf("clearing staging: %w", err)
	}
	return nil
}

func execInsertRow(stmt *sql.Stmt, user string, row listen.Row) error {
	_, err := stmt.Exec(
		user,
		row.Artist,
		row.ArtistMBID,
		row.Album,
		row.TrackName,
		row.DurationMS,
		encodeDate(row.ListenedAt),
		row.RecordingMBID,
		row.ReleaseMBID,
		row.Origin,
	)
	if err != nil {
		return fmt.Errorf("inserting listen %q/%q: %w", row.Artist, row.TrackName, err)
	}
	return nil
}

// ReplaceLikes swaps the user's liked set for a fresh snapshot.
func (s *Store) ReplaceLikes(user string, liked map[string]bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM Liked WHERE user = ?", user); err != nil {
		return fmt.Errorf("clearing likes: %w", err)
	}
	if err := insertLikes(tx, user, liked); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing likes replace: %w", err)
	}
	return nil
}

// UnionLikes adds identifiers to the user's liked set, keeping what is
// already there. Used for bulk imports, where the archive is one source
// among several rather than an authoritative snapshot.
func (s *Store) UnionLikes(user string, liked map[string]bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertLikes(tx, user, liked); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing likes union: %w", err)
	}
	return nil
}

func insertLikes(tx *sql.Tx, user string, liked map[string]bool) error {
	stmt, err := tx.Prepare("INSERT OR IGNORE INTO Liked (user, recording_mbid) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing likes insert: %w", err)
	}
	defer stmt.Close()

	for mbid := range liked {
		if mbid == "" {
			continue
		}
		if _, err := stmt.Exec(user, mbid); err != nil {
			return fmt.Errorf("inserting like %q: %w", mbid, err)
		}
	}
	return nil
}

// SetLastSynced records when a user's incremental sync last completed.
func (s *Store) SetLastSynced(user string, synced time.Time) error {
	if _, err := s.db.Exec("UPDATE User SET last_synced = ? WHERE name = ?", synced, user); err != nil {
		return fmt.Errorf("updating last_synced for %q: %w", user, err)
	}
	return nil
}

// encodeDate stores timestamps as unix seconds in text. The zero time is
// stored as "0" so rows without a timestamp survive the round trip.
func encodeDate(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	return strconv.FormatInt(t.Unix(), 10)
}
