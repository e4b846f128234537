package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ademuri/listen-brainz-tools/internal/listen"
)

// Genre cache entity kinds. Only artists are enriched today but the table
// keys on (entity, name) so album tags can share it later.
const (
	EntityArtist = "artist"
)

// CachedGenres looks up the pipe-delimited genre string for a name. The
// second return is false on a cache miss; an empty genre string with a true
// return is a cached negative result.
func (s *Store) CachedGenres(entity, name string) (string, bool, error) {
	row := s.db.QueryRow(
		"SELECT genres FROM GenreCache WHERE entity = ? AND name = ?", entity, name)
	var genres string
	err := row.Scan(&genres)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting cached genres for %q: %w", name, err)
	}
	return genres, true, nil
}

// SaveGenres records the genre lookup result for a name, overwriting any
// previous entry.
func (s *Store) SaveGenres(entity, name, genres string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO GenreCache (entity, name, genres, updated) VALUES (?, ?, ?, ?)
		ON CONFLICT (entity, name) DO UPDATE SET genres = excluded.genres, updated = excluded.updated`,
		entity, name, genres, time.Now())
	if err != nil {
		return fmt.Errorf("saving genres for %q: %w", name, err)
	}
	return nil
}

// CachedRecording is one resolved (or unresolvable) recording lookup.
type CachedRecording struct {
	RecordingMBID string
	Album         string
	Score         float64
}

// CachedRecordingFor looks up a previous recording resolution by artist and
// track name. The second return is false on a cache miss; an entry with an
// empty RecordingMBID is a cached failed lookup.
func (s *Store) CachedRecordingFor(artist, trackName string) (CachedRecording, bool, error) {
	row := s.db.QueryRow(`
		SELECT recording_mbid, album, score FROM RecordingCache
		WHERE artist = ? AND track_name = ?`, artist, trackName)
	var rec CachedRecording
	err := row.Scan(&rec.RecordingMBID, &rec.Album, &rec.Score)
	if err == sql.ErrNoRows {
		return CachedRecording{}, false, nil
	}
	if err != nil {
		return CachedRecording{}, false, fmt.Errorf("getting cached recording for %q/%q: %w", artist, trackName, err)
	}
	return rec, true, nil
}

// SaveRecording records a recording resolution, overwriting any previous
// entry for the same artist and track.
func (s *Store) SaveRecording(artist, trackName string, rec CachedRecording) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO RecordingCache (artist, track_name, recording_mbid, album, score, updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (artist, track_name) DO UPDATE SET
		  recording_mbid = excluded.recording_mbid,
		  album = excluded.album,
		  score = excluded.score,
		  updated = excluded.updated`,
		artist, trackName, rec.RecordingMBID, rec.Album, rec.Score, time.Now())
	if err != nil {
		return fmt.Errorf("saving recording for %q/%q: %w", artist, trackName, err)
	}
	return nil
}

// ResolveListens backfills recording identifiers on committed listens that
// match a resolved (artist, track) pair, and fills in the resolved album
// only where the stored album is the Unknown placeholder. User-supplied
// albums are never overwritten.
func (s *Store) ResolveListens(user, artist, trackName string, rec CachedRecording) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE Listen SET recording_mbid = ?
		WHERE user = ? AND artist = ? AND track_name = ? AND recording_mbid = ''`,
		rec.RecordingMBID, user, artist, trackName)
	if err != nil {
		return fmt.Errorf("backfilling recording mbid: %w", err)
	}

	if rec.Album != "" {
		_, err = tx.Exec(`
			UPDATE Listen SET album = ?
			WHERE user = ? AND artist = ? AND track_name = ? AND album = ?`,
			rec.Album, user, artist, trackName, listen.Unknown)
		if err != nil {
			return fmt.Errorf("backfilling album: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing resolution: %w", err)
	}
	return nil
}
