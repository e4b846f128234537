package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ademuri/listen-brainz-tools/internal/listen"
	"github.com/ademuri/listen-brainz-tools/internal/musicbrainz"
	"github.com/ademuri/listen-brainz-tools/internal/store"
)

type fakeRecordingSource struct {
	matches map[string]musicbrainz.Recording
	errs    map[string]error
	calls   int
	albums  []string
}

func (f *fakeRecordingSource) SearchRecording(ctx context.Context, artist, trackName, album string) (musicbrainz.Recording, bool, error) {
	f.calls++
	f.albums = append(f.albums, album)
	if err := f.errs[artist+"/"+trackName]; err != nil {
		return musicbrainz.Recording{}, false, err
	}
	rec, ok := f.matches[artist+"/"+trackName]
	return rec, ok, nil
}

func newTestResolver(st *store.Store, source RecordingSource) *Resolver {
	r := NewResolver(st, source)
	r.Delay = 0
	return r
}

func seedHistory(t *testing.T, st *store.Store, rows []listen.Row) {
	t.Helper()
	if err := st.CreateUser("testuser"); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if err := st.MergeListens("testuser", rows); err != nil {
		t.Fatalf("MergeListens error: %v", err)
	}
}

func TestResolveBackfillsRecordings(t *testing.T) {
	st := createTestStore(t)
	seedHistory(t, st, []listen.Row{
		{
			Artist:     "Artist A",
			Album:      listen.Unknown,
			TrackName:  "Track One",
			ListenedAt: time.Unix(1600000000, 0),
		},
		{
			Artist:        "Artist A",
			Album:         "Known Album",
			TrackName:     "Already Resolved",
			RecordingMBID: "existing",
			ListenedAt:    time.Unix(1600003600, 0),
		},
	})

	source := &fakeRecordingSource{matches: map[string]musicbrainz.Recording{
		"Artist A/Track One": {ID: "rec-1", Album: "Catalog Album", Score: 97},
	}}

	stats, err := newTestResolver(st, source).Resolve(context.Background(), "testuser")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if stats.Pairs != 1 || stats.Resolved != 1 {
		t.Errorf("stats = %+v, want one resolved pair", stats)
	}

	rows, _, err := st.LoadHistory("testuser")
	if err != nil {
		t.Fatalf("LoadHistory error: %v", err)
	}
	for _, row := range rows {
		if row.TrackName == "Track One" {
			if row.RecordingMBID != "rec-1" {
				t.Errorf("RecordingMBID = %q, want rec-1", row.RecordingMBID)
			}
			// The placeholder album is replaced by the catalog's.
			if row.Album != "Catalog Album" {
				t.Errorf("Album = %q, want Catalog Album", row.Album)
			}
		}
	}
}

func TestResolveKeepsUserAlbum(t *testing.T) {
	st := createTestStore(t)
	seedHistory(t, st, []listen.Row{
		{
			Artist:     "Artist A",
			Album:      "User Album",
			TrackName:  "Track One",
			ListenedAt: time.Unix(1600000000, 0),
		},
	})

	source := &fakeRecordingSource{matches: map[string]musicbrainz.Recording{
		"Artist A/Track One": {ID: "rec-1", Album: "Catalog Album", Score: 97},
	}}

	if _, err := newTestResolver(st, source).Resolve(context.Background(), "testuser"); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	rows, _, err := st.LoadHistory("testuser")
	if err != nil {
		t.Fatalf("LoadHistory error: %v", err)
	}
	if rows[0].Album != "User Album" {
		t.Errorf("Album = %q, want User Album (user data wins)", rows[0].Album)
	}
	if rows[0].RecordingMBID != "rec-1" {
		t.Errorf("RecordingMBID = %q, want rec-1", rows[0].RecordingMBID)
	}

	// The real album was passed as a search hint.
	if len(source.albums) != 1 || source.albums[0] != "User Album" {
		t.Errorf("search hints = %v, want [User Album]", source.albums)
	}
}

func TestResolveCachesFailedSearches(t *testing.T) {
	st := createTestStore(t)
	seedHistory(t, st, []listen.Row{
		{
			Artist:     "Obscure Artist",
			Album:      listen.Unknown,
			TrackName:  "Bootleg",
			ListenedAt: time.Unix(1600000000, 0),
		},
	})

	source := &fakeRecordingSource{}
	resolver := newTestResolver(st, source)

	stats, err := resolver.Resolve(context.Background(), "testuser")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if stats.Unmatched != 1 {
		t.Errorf("stats.Unmatched = %d, want 1", stats.Unmatched)
	}

	// A second pass does not search again.
	stats, err = resolver.Resolve(context.Background(), "testuser")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if source.calls != 1 {
		t.Errorf("calls = %d, want 1 (failed search cached)", source.calls)
	}
	if stats.CacheHits != 1 {
		t.Errorf("stats.CacheHits = %d, want 1", stats.CacheHits)
	}
}

func TestResolveContinuesAfterSearchError(t *testing.T) {
	st := createTestStore(t)
	seedHistory(t, st, []listen.Row{
		{
			Artist:     "Artist A",
			Album:      listen.Unknown,
			TrackName:  "Track One",
			ListenedAt: time.Unix(1600000000, 0),
		},
		{
			Artist:     "Artist B",
			Album:      listen.Unknown,
			TrackName:  "Track Two",
			ListenedAt: time.Unix(1600003600, 0),
		},
	})

	source := &fakeRecordingSource{
		errs: map[string]error{
			"Artist A/Track One": errors.New("remote failure"),
		},
		matches: map[string]musicbrainz.Recording{
			"Artist B/Track Two": {ID: "rec-2", Score: 96},
		},
	}
	resolver := newTestResolver(st, source)

	stats, err := resolver.Resolve(context.Background(), "testuser")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if source.calls != 2 {
		t.Errorf("calls = %d, want both pairs attempted", source.calls)
	}
	if stats.Resolved != 1 || stats.Unmatched != 1 {
		t.Errorf("stats = %+v, want one resolved and one unmatched", stats)
	}

	// The failure was not cached, so the next pass searches it again.
	if _, ok, err := st.CachedRecordingFor("Artist A", "Track One"); err != nil || ok {
		t.Errorf("CachedRecordingFor = %v, %v, want no cached entry", ok, err)
	}
	if _, err := resolver.Resolve(context.Background(), "testuser"); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if source.calls != 3 {
		t.Errorf("calls = %d, want the failed pair retried", source.calls)
	}
}

func TestResolveSkipsPlaceholderRows(t *testing.T) {
	st := createTestStore(t)
	seedHistory(t, st, []listen.Row{
		{
			Artist:     listen.Unknown,
			Album:      listen.Unknown,
			TrackName:  "Mystery Track",
			ListenedAt: time.Unix(1600000000, 0),
		},
	})

	source := &fakeRecordingSource{}
	stats, err := newTestResolver(st, source).Resolve(context.Background(), "testuser")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if stats.Pairs != 0 || source.calls != 0 {
		t.Errorf("stats = %+v, calls = %d, want nothing searched", stats, source.calls)
	}
}
