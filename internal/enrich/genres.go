// Package enrich fills in data the listen history does not carry: artist
// genres and missing recording identifiers. Every lookup result, including
// a miss, is cached so repeat runs only call out for names seen for the
// first time.
package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/ademuri/listen-brainz-tools/internal/listen"
	"github.com/ademuri/listen-brainz-tools/internal/store"
)

// GenreSource looks up genre tags for an artist name. *musicbrainz.Client
// satisfies it, as does the last.fm adapter.
type GenreSource interface {
	ArtistGenres(ctx context.Context, name string) ([]string, error)
}

// GenreStats summarizes one enrichment pass.
type GenreStats struct {
	Processed    int
	CacheHits    int
	NewlyFetched int
	Empty        int
	Fallbacks    int
}

// Enricher resolves artist genres through a primary source with an
// optional fallback, backed by the store's genre cache.
type Enricher struct {
	store    *store.Store
	primary  GenreSource
	fallback GenreSource
	// Delay between external lookups. Cache hits pay nothing.
	Delay time.Duration
	// ForceUpdate refetches names even when cached.
	ForceUpdate bool
	Progress    func(format string, args ...any)
}

func NewEnricher(st *store.Store, primary, fallback GenreSource) *Enricher {
	return &Enricher{
		store:    st,
		primary:  primary,
		fallback: fallback,
		Delay:    1 * time.Second,
		Progress: func(string, ...any) {},
	}
}

// ArtistGenres returns pipe-delimited genres for each artist, consulting
// the cache first. Artists with no discoverable genres map to the Unknown
// placeholder; placeholders are cached for readers but retried on the next
// enrichment pass.
func (e *Enricher) ArtistGenres(ctx context.Context, artists []string) (map[string]string, GenreStats, error) {
	genres := make(map[string]string, len(artists))
	var stats GenreStats

	fetched := 0
	for _, artist := range artists {
		if err := ctx.Err(); err != nil {
			return genres, stats, err
		}
		stats.Processed++

		if !e.ForceUpdate {
			cached, ok, err := e.store.CachedGenres(store.EntityArtist, artist)
			if err != nil {
				return genres, stats, err
			}
			// A cached Unknown placeholder is not a hit; the artist
			// gets another lookup in case the sources learned about
			// them since.
			if ok && cached != listen.Unknown {
				stats.CacheHits++
				genres[artist] = cached
				continue
			}
		}

		if fetched > 0 {
			sleep(ctx, e.Delay)
		}
		fetched++

		value, usedFallback := e.lookup(ctx, artist)
		if usedFallback {
			stats.Fallbacks++
		}
		if value == listen.Unknown {
			stats.Empty++
		} else {
			stats.NewlyFetched++
		}

		if err := e.store.SaveGenres(store.EntityArtist, artist, value); err != nil {
			return genres, stats, err
		}
		genres[artist] = value
		e.Progress("[%d/%d] %s: %s\n", stats.Processed, len(artists), artist, value)
	}

	return genres, stats, nil
}

// lookup tries the primary source, then the fallback. Errors and empty
// results both fall through; an artist nobody knows becomes the Unknown
// placeholder.
func (e *Enricher) lookup(ctx context.Context, artist string) (value string, usedFallback bool) {
	tags, err := e.primary.ArtistGenres(ctx, artist)
	if err == nil && len(tags) > 0 {
		return strings.Join(tags, "|"), false
	}

	if e.fallback != nil {
		tags, err = e.fallback.ArtistGenres(ctx, artist)
		if err == nil && len(tags) > 0 {
			return strings.Join(tags, "|"), true
		}
	}
	return listen.Unknown, false
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
