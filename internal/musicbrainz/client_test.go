package musicbrainz

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/time/rate"
)

func testClient(server *httptest.Server) *Client {
	c := NewWithBaseURL(server.URL)
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func TestArtistGenresSortedByCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); !strings.Contains(got, "listen-brainz-tools") {
			t.Errorf("User-Agent = %q, want identifying agent", got)
		}
		fmt.Fprint(w, `{"artists": [{"id": "artist-1", "name": "Artist A", "score": 100,
			"tags": [{"count": 2, "name": "indie"}, {"count": 7, "name": "rock"}, {"count": 0, "name": ""}]}]}`)
	}))
	defer server.Close()

	genres, err := testClient(server).ArtistGenres(context.Background(), "Artist A")
	if err != nil {
		t.Fatalf("ArtistGenres error: %v", err)
	}
	want := []string{"rock", "indie"}
	if len(genres) != len(want) {
		t.Fatalf("genres = %v, want %v", genres, want)
	}
	for i := range want {
		if genres[i] != want[i] {
			t.Errorf("genres[%d] = %q, want %q", i, genres[i], want[i])
		}
	}
}

func TestArtistGenresNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"artists": []}`)
	}))
	defer server.Close()

	genres, err := testClient(server).ArtistGenres(context.Background(), "Nobody")
	if err != nil {
		t.Fatalf("ArtistGenres error: %v", err)
	}
	if genres != nil {
		t.Errorf("genres = %v, want nil", genres)
	}
}

func TestSearchRecordingScoreThreshold(t *testing.T) {
	score := 95
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"recordings": [{"id": "rec-1", "title": "Track One", "score": %d,
			"releases": [{"title": "Catalog Album"}]}]}`, score)
	}))
	defer server.Close()

	client := testClient(server)

	rec, ok, err := client.SearchRecording(context.Background(), "Artist A", "Track One", "")
	if err != nil {
		t.Fatalf("SearchRecording error: %v", err)
	}
	if !ok {
		t.Fatal("high-score match rejected")
	}
	if rec.ID != "rec-1" || rec.Album != "Catalog Album" {
		t.Errorf("rec = %+v, want rec-1 / Catalog Album", rec)
	}

	// A weak match is reported as not found.
	score = MinRecordingScore - 1
	_, ok, err = client.SearchRecording(context.Background(), "Artist A", "Track One", "")
	if err != nil {
		t.Fatalf("SearchRecording error: %v", err)
	}
	if ok {
		t.Error("low-score match accepted")
	}
}

func TestSearchRecordingQueryIncludesAlbum(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("query")
		fmt.Fprint(w, `{"recordings": []}`)
	}))
	defer server.Close()

	_, _, err := testClient(server).SearchRecording(context.Background(), "Artist A", "Track One", "Some Album")
	if err != nil {
		t.Fatalf("SearchRecording error: %v", err)
	}
	if !strings.Contains(query, `release:"Some Album"`) {
		t.Errorf("query = %q, want release term", query)
	}
}
