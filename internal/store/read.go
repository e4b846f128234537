package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/ademuri/listen-brainz-tools/internal/listen"
)

const selectListens = `
SELECT artist, artist_mbid, album, track_name, duration_ms, date, recording_mbid, release_mbid, origin
FROM Listen WHERE user = ?
`

const selectStaging = `
SELECT artist, artist_mbid, album, track_name, duration_ms, date, recording_mbid, release_mbid, origin
FROM Staging WHERE user = ?
`

// LoadHistory returns every committed listen for a user. Rows whose date
// column cannot be parsed are skipped rather than failing the whole load;
// the skip count comes back alongside the rows.
func (s *Store) LoadHistory(user string) ([]listen.Row, int, error) {
	return s.loadRows(selectListens, user)
}

// LoadStaging returns the user's staged rows in insertion order.
func (s *Store) LoadStaging(user string) ([]listen.Row, int, error) {
	return s.loadRows(selectStaging+" ORDER BY id", user)
}

func (s *Store) loadRows(query, user string) ([]listen.Row, int, error) {
	rows, err := s.db.Query(query, user)
	if err != nil {
		return nil, 0, fmt.Errorf("querying listens: %w", err)
	}
	defer rows.Close()

	var out []listen.Row
	skipped := 0
	for rows.Next() {
		var r listen.Row
		var date string
		err := rows.Scan(&r.Artist, &r.ArtistMBID, &r.Album, &r.TrackName,
			&r.DurationMS, &date, &r.RecordingMBID, &r.ReleaseMBID, &r.Origin)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning listen: %w", err)
		}
		when, ok := parseDate(date)
		if !ok {
			skipped++
			continue
		}
		r.ListenedAt = when
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("reading listens: %w", err)
	}
	return out, skipped, nil
}

// parseDate decodes a stored date column. Unix seconds is the native
// format; RFC 3339 is accepted for rows written by other tooling. Anything
// else marks the row corrupt.
func parseDate(date string) (time.Time, bool) {
	if unix, err := strconv.ParseInt(date, 10, 64); err == nil {
		if unix == 0 {
			return time.Time{}, true
		}
		return time.Unix(unix, 0), true
	}
	if when, err := time.Parse(time.RFC3339, date); err == nil {
		return when, true
	}
	return time.Time{}, false
}

// LatestListen returns the newest committed listen time for a user, or the
// zero time when the history is empty.
func (s *Store) LatestListen(user string) (time.Time, error) {
	row := s.db.QueryRow(`
		SELECT date FROM Listen
		WHERE user = ? AND date <> '0'
		ORDER BY CAST(date AS INTEGER) DESC LIMIT 1`, user)
	var date string
	err := row.Scan(&date)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("getting latest listen: %w", err)
	}
	when, ok := parseDate(date)
	if !ok {
		return time.Time{}, nil
	}
	return when, nil
}

// OldestStaged returns the oldest staged listen time for a user, or the
// zero time when nothing is staged. The crawler resumes from here.
func (s *Store) OldestStaged(user string) (time.Time, error) {
	row := s.db.QueryRow(`
		SELECT date FROM Staging
		WHERE user = ? AND date <> '0'
		ORDER BY CAST(date AS INTEGER) ASC LIMIT 1`, user)
	var date string
	err := row.Scan(&date)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("getting oldest staged listen: %w", err)
	}
	when, ok := parseDate(date)
	if !ok {
		return time.Time{}, nil
	}
	return when, nil
}

// StagingCount returns how many rows are staged for a user.
func (s *Store) StagingCount(user string) (int, error) {
	row := s.db.QueryRow("SELECT COUNT(*) FROM Staging WHERE user = ?", user)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting staging: %w", err)
	}
	return count, nil
}

// ListenCount returns how many committed listens a user has.
func (s *Store) ListenCount(user string) (int, error) {
	row := s.db.QueryRow("SELECT COUNT(*) FROM Listen WHERE user = ?", user)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting listens: %w", err)
	}
	return count, nil
}

// LikedIDs returns the user's liked recording identifiers.
func (s *Store) LikedIDs(user string) (map[string]bool, error) {
	rows, err := s.db.Query("SELECT recording_mbid FROM Liked WHERE user = ?", user)
	if err != nil {
		return nil, fmt.Errorf("querying likes: %w", err)
	}
	defer rows.Close()

	liked := make(map[string]bool)
	for rows.Next() {
		var mbid string
		if err := rows.Scan(&mbid); err != nil {
			return nil, fmt.Errorf("scanning like: %w", err)
		}
		liked[mbid] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading likes: %w", err)
	}
	return liked, nil
}

// LastSynced returns when the user's incremental sync last completed, or
// the zero time if it never has.
func (s *Store) LastSynced(user string) (time.Time, error) {
	row := s.db.QueryRow("SELECT last_synced FROM User WHERE name = ?", user)
	var synced sql.NullTime
	err := row.Scan(&synced)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("getting last_synced: %w", err)
	}
	if !synced.Valid {
		return time.Time{}, nil
	}
	return synced.Time, nil
}
