package enrich

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ademuri/listen-brainz-tools/internal/listen"
	"github.com/ademuri/listen-brainz-tools/internal/musicbrainz"
	"github.com/ademuri/listen-brainz-tools/internal/store"
)

// RecordingSource searches a music catalog for a recording match.
// *musicbrainz.Client satisfies it.
type RecordingSource interface {
	SearchRecording(ctx context.Context, artist, trackName, album string) (musicbrainz.Recording, bool, error)
}

// ResolveStats summarizes one resolver pass.
type ResolveStats struct {
	Pairs     int
	CacheHits int
	Resolved  int
	Unmatched int
}

// Resolver backfills recording identifiers on listens that lack one,
// searching the catalog by artist and track name. Searches with no
// confident match are cached so a pass over the same history does not
// repeat them.
type Resolver struct {
	store    *store.Store
	source   RecordingSource
	Delay    time.Duration
	Progress func(format string, args ...any)
}

func NewResolver(st *store.Store, source RecordingSource) *Resolver {
	return &Resolver{
		store:    st,
		source:   source,
		Delay:    1 * time.Second,
		Progress: func(string, ...any) {},
	}
}

type pair struct {
	artist string
	track  string
	// album is a search hint taken from the user's own listens. It never
	// overrides what the user recorded.
	album string
}

// Resolve processes every unresolved (artist, track) pair in a user's
// history. A confident catalog match backfills the recording identifier,
// and fills in the album only on listens that had none.
func (r *Resolver) Resolve(ctx context.Context, user string) (ResolveStats, error) {
	var stats ResolveStats

	rows, _, err := r.store.LoadHistory(user)
	if err != nil {
		return stats, fmt.Errorf("loading history: %w", err)
	}
	pairs := unresolvedPairs(rows)
	stats.Pairs = len(pairs)

	searched := 0
	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		cached, ok, err := r.store.CachedRecordingFor(p.artist, p.track)
		if err != nil {
			return stats, err
		}
		if ok {
			stats.CacheHits++
			if cached.RecordingMBID != "" {
				if err := r.store.ResolveListens(user, p.artist, p.track, cached); err != nil {
					return stats, err
				}
				stats.Resolved++
			} else {
				stats.Unmatched++
			}
			continue
		}

		if searched > 0 {
			sleep(ctx, r.Delay)
		}
		searched++

		rec, found, err := r.source.SearchRecording(ctx, p.artist, p.track, p.album)
		if err != nil {
			// A failed search counts against this pair only, and is
			// not cached, so the next pass retries it.
			stats.Unmatched++
			r.Progress("Lookup failed for %s / %s: %v\n", p.artist, p.track, err)
			continue
		}

		entry := store.CachedRecording{}
		if found {
			entry = store.CachedRecording{
				RecordingMBID: rec.ID,
				Album:         rec.Album,
				Score:         float64(rec.Score),
			}
		}
		if err := r.store.SaveRecording(p.artist, p.track, entry); err != nil {
			return stats, err
		}

		if found {
			if err := r.store.ResolveListens(user, p.artist, p.track, entry); err != nil {
				return stats, err
			}
			stats.Resolved++
			r.Progress("Resolved %s / %s (score %d)\n", p.artist, p.track, rec.Score)
		} else {
			stats.Unmatched++
			r.Progress("No confident match for %s / %s\n", p.artist, p.track)
		}
	}

	return stats, nil
}

// unresolvedPairs collects the distinct (artist, track) pairs needing
// resolution, each with the best album hint the history offers, in a
// deterministic order.
func unresolvedPairs(rows []listen.Row) []pair {
	type key struct{ artist, track string }
	index := make(map[key]*pair)
	var ordered []*pair
	for _, row := range rows {
		if !row.NeedsResolution() {
			continue
		}
		k := key{row.Artist, row.TrackName}
		p := index[k]
		if p == nil {
			p = &pair{artist: row.Artist, track: row.TrackName}
			index[k] = p
			ordered = append(ordered, p)
		}
		if p.album == "" && row.HasAlbum() {
			p.album = row.Album
		}
	}

	out := make([]pair, 0, len(ordered))
	for _, p := range ordered {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].artist != out[j].artist {
			return out[i].artist < out[j].artist
		}
		return out[i].track < out[j].track
	})
	return out
}
