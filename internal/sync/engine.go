// Package sync incrementally downloads a user's remote listen history and
// liked recordings into the local store.
//
// Listens are crawled backward from the present: each page fetches records
// strictly older than a cursor, and pages accumulate in a staging buffer
// until the crawl reaches listens the store already holds (or the beginning
// of the remote history). Only then is the buffer merged, so an interrupted
// crawl never leaves a hole in the committed history. A later run resumes
// from the oldest staged listen instead of starting over.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/ademuri/listen-brainz-tools/internal/listen"
	"github.com/ademuri/listen-brainz-tools/internal/store"
)

// Source fetches remote listen data. *listenbrainz.Client satisfies it.
type Source interface {
	FetchListens(ctx context.Context, user string, maxTime time.Time) ([]listen.Raw, error)
	FetchLikes(ctx context.Context, user string, offset int) ([]listen.Feedback, bool, error)
}

// Origin recorded on rows downloaded from the API.
const originAPI = "api"

// checkpointEvery controls how often a long first crawl reports its staged
// total, so a multi-year backfill shows it is making progress.
const checkpointEvery = 10000

// Stats summarizes one sync run.
type Stats struct {
	Pages     int
	Staged    int
	Merged    bool
	Likes     int
	Anomalies listen.Anomalies
}

type Engine struct {
	store    *store.Store
	source   Source
	user     string
	progress func(format string, args ...any)
	now      func() time.Time
}

func New(st *store.Store, source Source, user string) *Engine {
	return &Engine{
		store:    st,
		source:   source,
		user:     user,
		progress: func(string, ...any) {},
		now:      time.Now,
	}
}

// SetProgress installs a printf-style callback for crawl progress.
func (e *Engine) SetProgress(f func(format string, args ...any)) {
	e.progress = f
}

// Sync downloads listens and likes concurrently. A context cancellation
// stops both cleanly; staged listens survive for the next run.
func (e *Engine) Sync(ctx context.Context) (Stats, error) {
	var stats Stats
	var likesErr error

	var wg gosync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		stats.Likes, likesErr = e.syncLikes(ctx)
	}()

	listensErr := e.syncListens(ctx, &stats)
	wg.Wait()

	if listensErr != nil {
		return stats, listensErr
	}
	return stats, likesErr
}

// syncListens crawls backward until the gap between remote and local
// history closes, then merges the staging buffer.
func (e *Engine) syncListens(ctx context.Context, stats *Stats) error {
	localHead, err := e.store.LatestListen(e.user)
	if err != nil {
		return fmt.Errorf("getting latest listen: %w", err)
	}

	cursor := e.now()
	resumed, err := e.store.OldestStaged(e.user)
	if err != nil {
		return fmt.Errorf("getting oldest staged listen: %w", err)
	}
	if !resumed.IsZero() {
		cursor = resumed
		e.progress("Resuming crawl from %s\n", cursor.Format("2006-01-02"))
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raws, err := e.source.FetchListens(ctx, e.user, cursor)
		if err != nil {
			return fmt.Errorf("fetching listens: %w", err)
		}
		stats.Pages++

		if len(raws) == 0 {
			// Reached the beginning of the remote history.
			break
		}

		rows := listen.NormalizeAll(raws, originAPI, &stats.Anomalies)
		batchMin := oldestListen(rows)

		if batchMin.IsZero() {
			// Nothing in the page carries a timestamp; there is no
			// cursor to continue from.
			break
		}

		if !localHead.IsZero() && !batchMin.After(localHead) {
			// The page overlaps committed history. Stage only what is
			// strictly newer and stop crawling.
			var fresh []listen.Row
			for _, row := range rows {
				if row.ListenedAt.After(localHead) {
					fresh = append(fresh, row)
				}
			}
			if err := e.store.AppendStaging(e.user, fresh); err != nil {
				return fmt.Errorf("staging listens: %w", err)
			}
			stats.Staged += len(fresh)
			break
		}

		if err := e.store.AppendStaging(e.user, rows); err != nil {
			return fmt.Errorf("staging listens: %w", err)
		}
		stats.Staged += len(rows)
		cursor = batchMin
		e.progress("Downloaded %d listens (oldest: %s)\n", len(rows), cursor.Format("2006-01-02"))
		if stats.Staged/checkpointEvery > (stats.Staged-len(rows))/checkpointEvery {
			e.progress("Checkpoint: %d listens staged so far\n", stats.Staged)
		}
	}

	if err := e.store.MergeStaging(e.user); err != nil {
		return fmt.Errorf("merging staged listens: %w", err)
	}
	stats.Merged = true

	if err := e.store.SetLastSynced(e.user, e.now()); err != nil {
		return fmt.Errorf("recording sync time: %w", err)
	}
	return nil
}

// syncLikes downloads the full remote liked set and replaces the local one.
// The replacement only happens after a complete download, so a failed or
// cancelled run keeps the previous snapshot.
func (e *Engine) syncLikes(ctx context.Context) (int, error) {
	liked := make(map[string]bool)
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		page, more, err := e.source.FetchLikes(ctx, e.user, offset)
		if err != nil {
			return 0, fmt.Errorf("fetching likes: %w", err)
		}
		for mbid := range listen.LikedIDs(page) {
			liked[mbid] = true
		}
		offset += len(page)
		if !more || len(page) == 0 {
			break
		}
	}

	if err := e.store.ReplaceLikes(e.user, liked); err != nil {
		return 0, fmt.Errorf("replacing likes: %w", err)
	}
	return len(liked), nil
}

func oldestListen(rows []listen.Row) time.Time {
	var oldest time.Time
	for _, row := range rows {
		if row.ListenedAt.IsZero() {
			continue
		}
		if oldest.IsZero() || row.ListenedAt.Before(oldest) {
			oldest = row.ListenedAt
		}
	}
	return oldest
}
