package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ademuri/listen-brainz-tools/internal/listen"
)

func createTestDb(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "listenbrainz.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%s) error: %v", dbPath, err)
	}

	return store
}

func createTestUser(t *testing.T, s *Store, user string) {
	t.Helper()
	if err := s.CreateUser(user); err != nil {
		t.Fatalf("CreateUser(%q) error: %v", user, err)
	}
}

func testRow(artist, track string, when time.Time) listen.Row {
	return listen.Row{
		Artist:     artist,
		Album:      "Test Album",
		TrackName:  track,
		DurationMS: 200000,
		ListenedAt: when,
		Origin:     "api",
	}
}

func TestCreateUser(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	user := "testuser"
	if err := s.CreateUser(user); err != nil {
		t.Fatalf("CreateUser(%q) error: %v", user, err)
	}

	// Idempotency
	if err := s.CreateUser(user); err != nil {
		t.Fatalf("CreateUser(%q) error: %v", user, err)
	}
}

func TestToken(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	createTestUser(t, s, "testuser")

	token, err := s.Token("testuser")
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if token != "" {
		t.Errorf("Token on fresh user = %q, want empty", token)
	}

	if err := s.SetToken("testuser", "secret"); err != nil {
		t.Fatalf("SetToken error: %v", err)
	}
	token, err = s.Token("testuser")
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if token != "secret" {
		t.Errorf("Token = %q, want %q", token, "secret")
	}
}

func TestMergeListensIdempotent(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	createTestUser(t, s, "testuser")

	when := time.Unix(1600000000, 0)
	rows := []listen.Row{
		testRow("Artist A", "Track One", when),
		testRow("Artist A", "Track Two", when.Add(time.Minute)),
	}

	if err := s.MergeListens("testuser", rows); err != nil {
		t.Fatalf("MergeListens error: %v", err)
	}
	count, err := s.ListenCount("testuser")
	if err != nil {
		t.Fatalf("ListenCount error: %v", err)
	}
	if count != 2 {
		t.Errorf("ListenCount = %d, want 2", count)
	}

	// Merging the same batch again changes nothing.
	if err := s.MergeListens("testuser", rows); err != nil {
		t.Fatalf("MergeListens (repeat) error: %v", err)
	}
	count, err = s.ListenCount("testuser")
	if err != nil {
		t.Fatalf("ListenCount error: %v", err)
	}
	if count != 2 {
		t.Errorf("ListenCount after repeat merge = %d, want 2", count)
	}
}

func TestMergeListensFanOutRows(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	createTestUser(t, s, "testuser")

	// Two rows from the same playback differing only in artist credit must
	// both survive: artist is part of the natural key.
	when := time.Unix(1600000000, 0)
	rows := []listen.Row{
		testRow("Artist A", "Duet", when),
		testRow("Artist B", "Duet", when),
	}
	if err := s.MergeListens("testuser", rows); err != nil {
		t.Fatalf("MergeListens error: %v", err)
	}
	count, err := s.ListenCount("testuser")
	if err != nil {
		t.Fatalf("ListenCount error: %v", err)
	}
	if count != 2 {
		t.Errorf("ListenCount = %d, want 2", count)
	}
}

func TestLoadHistoryRoundTrip(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	createTestUser(t, s, "testuser")

	when := time.Unix(1600000000, 0)
	row := listen.Row{
		Artist:        "Artist A",
		ArtistMBID:    "artist-mbid",
		Album:         "Test Album",
		TrackName:     "Track One",
		DurationMS:    215000,
		ListenedAt:    when,
		RecordingMBID: "recording-mbid",
		ReleaseMBID:   "release-mbid",
		Origin:        "archive",
	}
	if err := s.MergeListens("testuser", []listen.Row{row}); err != nil {
		t.Fatalf("MergeListens error: %v", err)
	}

	got, skipped, err := s.LoadHistory("testuser")
	if err != nil {
		t.Fatalf("LoadHistory error: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if !got[0].ListenedAt.Equal(when) {
		t.Errorf("ListenedAt = %v, want %v", got[0].ListenedAt, when)
	}
	got[0].ListenedAt = row.ListenedAt
	if got[0] != row {
		t.Errorf("round trip = %+v, want %+v", got[0], row)
	}
}

func TestLoadHistorySkipsCorruptDates(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	createTestUser(t, s, "testuser")

	if err := s.MergeListens("testuser", []listen.Row{
		testRow("Artist A", "Good Track", time.Unix(1600000000, 0)),
	}); err != nil {
		t.Fatalf("MergeListens error: %v", err)
	}

	// A row written by hand with an unparseable date must not poison the
	// whole load.
	_, err := s.db.Exec(insertListen,
		"testuser", "Artist B", "", "Test Album", "Bad Track",
		0, "not-a-date", "", "", "api")
	if err != nil {
		t.Fatalf("inserting corrupt row: %v", err)
	}

	got, skipped, err := s.LoadHistory("testuser")
	if err != nil {
		t.Fatalf("LoadHistory error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len(got) = %d, want 1", len(got))
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
}

func TestStagingMerge(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	createTestUser(t, s, "testuser")

	older := time.Unix(1500000000, 0)
	newer := time.Unix(1600000000, 0)

	if err := s.MergeListens("testuser", []listen.Row{
		testRow("Artist A", "Committed", newer),
	}); err != nil {
		t.Fatalf("MergeListens error: %v", err)
	}

	if err := s.AppendStaging("testuser", []listen.Row{
		testRow("Artist A", "Staged One", older),
		testRow("Artist A", "Staged Two", older.Add(time.Hour)),
		// Already committed; the merge must drop it.
		testRow("Artist A", "Committed", newer),
	}); err != nil {
		t.Fatalf("AppendStaging error: %v", err)
	}

	oldest, err := s.OldestStaged("testuser")
	if err != nil {
		t.Fatalf("OldestStaged error: %v", err)
	}
	if !oldest.Equal(older) {
		t.Errorf("OldestStaged = %v, want %v", oldest, older)
	}

	if err := s.MergeStaging("testuser"); err != nil {
		t.Fatalf("MergeStaging error: %v", err)
	}

	count, err := s.ListenCount("testuser")
	if err != nil {
		t.Fatalf("ListenCount error: %v", err)
	}
	if count != 3 {
		t.Errorf("ListenCount = %d, want 3", count)
	}

	staged, err := s.StagingCount("testuser")
	if err != nil {
		t.Fatalf("StagingCount error: %v", err)
	}
	if staged != 0 {
		t.Errorf("StagingCount after merge = %d, want 0", staged)
	}
}

func TestReplaceLikes(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	createTestUser(t, s, "testuser")

	if err := s.ReplaceLikes("testuser", map[string]bool{"aaa": true, "bbb": true}); err != nil {
		t.Fatalf("ReplaceLikes error: %v", err)
	}

	// A second snapshot replaces the first wholesale.
	if err := s.ReplaceLikes("testuser", map[string]bool{"bbb": true, "ccc": true}); err != nil {
		t.Fatalf("ReplaceLikes error: %v", err)
	}

	liked, err := s.LikedIDs("testuser")
	if err != nil {
		t.Fatalf("LikedIDs error: %v", err)
	}
	if len(liked) != 2 || !liked["bbb"] || !liked["ccc"] {
		t.Errorf("LikedIDs = %v, want bbb and ccc", liked)
	}

	if err := s.UnionLikes("testuser", map[string]bool{"aaa": true, "bbb": true}); err != nil {
		t.Fatalf("UnionLikes error: %v", err)
	}
	liked, err = s.LikedIDs("testuser")
	if err != nil {
		t.Fatalf("LikedIDs error: %v", err)
	}
	if len(liked) != 3 {
		t.Errorf("LikedIDs after union = %v, want 3 entries", liked)
	}
}

func TestGenreCache(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	_, ok, err := s.CachedGenres(EntityArtist, "Artist A")
	if err != nil {
		t.Fatalf("CachedGenres error: %v", err)
	}
	if ok {
		t.Error("CachedGenres on empty cache reported a hit")
	}

	if err := s.SaveGenres(EntityArtist, "Artist A", "rock|indie"); err != nil {
		t.Fatalf("SaveGenres error: %v", err)
	}
	genres, ok, err := s.CachedGenres(EntityArtist, "Artist A")
	if err != nil {
		t.Fatalf("CachedGenres error: %v", err)
	}
	if !ok || genres != "rock|indie" {
		t.Errorf("CachedGenres = %q, %v, want rock|indie, true", genres, ok)
	}

	// Overwrites replace the cached value.
	if err := s.SaveGenres(EntityArtist, "Artist A", "rock"); err != nil {
		t.Fatalf("SaveGenres error: %v", err)
	}
	genres, _, err = s.CachedGenres(EntityArtist, "Artist A")
	if err != nil {
		t.Fatalf("CachedGenres error: %v", err)
	}
	if genres != "rock" {
		t.Errorf("CachedGenres after overwrite = %q, want rock", genres)
	}
}

func TestResolveListens(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	createTestUser(t, s, "testuser")

	when := time.Unix(1600000000, 0)
	rows := []listen.Row{
		{
			Artist:     "Artist A",
			Album:      listen.Unknown,
			TrackName:  "Track One",
			ListenedAt: when,
		},
		{
			Artist:     "Artist A",
			Album:      "Handpicked Album",
			TrackName:  "Track One",
			ListenedAt: when.Add(time.Hour),
		},
	}
	if err := s.MergeListens("testuser", rows); err != nil {
		t.Fatalf("MergeListens error: %v", err)
	}

	rec := CachedRecording{RecordingMBID: "rec-mbid", Album: "Catalog Album", Score: 98}
	if err := s.ResolveListens("testuser", "Artist A", "Track One", rec); err != nil {
		t.Fatalf("ResolveListens error: %v", err)
	}

	got, _, err := s.LoadHistory("testuser")
	if err != nil {
		t.Fatalf("LoadHistory error: %v", err)
	}
	for _, r := range got {
		if r.RecordingMBID != "rec-mbid" {
			t.Errorf("RecordingMBID = %q, want rec-mbid", r.RecordingMBID)
		}
	}

	// The placeholder album is filled in; the user-supplied one is kept.
	albums := map[string]bool{}
	for _, r := range got {
		albums[r.Album] = true
	}
	if !albums["Catalog Album"] || !albums["Handpicked Album"] {
		t.Errorf("albums after resolve = %v, want Catalog Album and Handpicked Album", albums)
	}
}

func TestSavedReports(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	createTestUser(t, s, "testuser")

	r := SavedReport{
		User:   "testuser",
		Name:   "monthly",
		Email:  "test@example.com",
		Kinds:  "top-artists,top-albums",
		Params: `{"top_n":20}`,
	}
	if err := s.SaveReport(r); err != nil {
		t.Fatalf("SaveReport error: %v", err)
	}

	got, ok, err := s.GetReport("testuser", "monthly")
	if err != nil {
		t.Fatalf("GetReport error: %v", err)
	}
	if !ok {
		t.Fatal("GetReport did not find saved report")
	}
	if got.Kinds != r.Kinds || got.Email != r.Email {
		t.Errorf("GetReport = %+v, want %+v", got, r)
	}

	all, err := s.ListReports("testuser")
	if err != nil {
		t.Fatalf("ListReports error: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len(ListReports) = %d, want 1", len(all))
	}

	if err := s.DeleteReport("testuser", "monthly"); err != nil {
		t.Fatalf("DeleteReport error: %v", err)
	}
	_, ok, err = s.GetReport("testuser", "monthly")
	if err != nil {
		t.Fatalf("GetReport error: %v", err)
	}
	if ok {
		t.Error("GetReport found report after delete")
	}
}

func TestLatestListen(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	createTestUser(t, s, "testuser")

	latest, err := s.LatestListen("testuser")
	if err != nil {
		t.Fatalf("LatestListen error: %v", err)
	}
	if !latest.IsZero() {
		t.Errorf("LatestListen on empty history = %v, want zero time", latest)
	}

	newest := time.Unix(1600000000, 0)
	if err := s.MergeListens("testuser", []listen.Row{
		testRow("Artist A", "Old Track", newest.Add(-24*time.Hour)),
		testRow("Artist A", "New Track", newest),
	}); err != nil {
		t.Fatalf("MergeListens error: %v", err)
	}

	latest, err = s.LatestListen("testuser")
	if err != nil {
		t.Fatalf("LatestListen error: %v", err)
	}
	if !latest.Equal(newest) {
		t.Errorf("LatestListen = %v, want %v", latest, newest)
	}
}
