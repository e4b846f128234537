package listen

import (
	"testing"
	"time"
)

func TestNormalizeFansOutArtistCredits(t *testing.T) {
	raw := Raw{
		ListenedAt: 1600000000,
		TrackMetadata: TrackMetadata{
			ArtistName:  "Artist A feat. Artist B",
			TrackName:   "Duet",
			ReleaseName: "Album",
			MBIDMapping: &MBIDMapping{
				RecordingMBID: "rec-mbid",
				Artists: []ArtistCredit{
					{ArtistCreditName: "Artist A", ArtistMBID: "mbid-a"},
					{ArtistCreditName: "Artist B", ArtistMBID: "mbid-b"},
					{ArtistCreditName: "Artist A", ArtistMBID: "mbid-a"},
				},
			},
		},
	}

	rows := Normalize(raw, "api", nil)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2 (duplicate credit dropped)", len(rows))
	}
	if rows[0].Artist != "Artist A" || rows[1].Artist != "Artist B" {
		t.Errorf("artists = %q, %q, want Artist A, Artist B", rows[0].Artist, rows[1].Artist)
	}
	for _, row := range rows {
		if row.TrackName != "Duet" || row.RecordingMBID != "rec-mbid" {
			t.Errorf("shared fields differ between credits: %+v", row)
		}
		if !row.ListenedAt.Equal(time.Unix(1600000000, 0)) {
			t.Errorf("ListenedAt = %v, want 1600000000", row.ListenedAt)
		}
	}
}

func TestNormalizePlaceholders(t *testing.T) {
	var anomalies Anomalies
	rows := Normalize(Raw{ListenedAt: 1600000000}, "archive", &anomalies)

	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.Artist != Unknown || row.Album != Unknown || row.TrackName != Unknown {
		t.Errorf("placeholders not applied: %+v", row)
	}
	if anomalies.MissingArtist != 1 || anomalies.MissingAlbum != 1 {
		t.Errorf("anomalies = %+v, want one missing artist and album", anomalies)
	}
	if row.Origin != "archive" {
		t.Errorf("Origin = %q, want archive", row.Origin)
	}
}

func TestNormalizeZeroTimestamp(t *testing.T) {
	rows := Normalize(Raw{
		TrackMetadata: TrackMetadata{ArtistName: "Artist A", TrackName: "Track"},
	}, "api", nil)
	if !rows[0].ListenedAt.IsZero() {
		t.Errorf("ListenedAt = %v, want zero time", rows[0].ListenedAt)
	}
}

func TestNormalizeDuration(t *testing.T) {
	cases := []struct {
		name string
		info *AdditionalInfo
		want int64
	}{
		{"nil info", nil, 0},
		{"milliseconds preferred", &AdditionalInfo{DurationMS: 215000, Duration: 99}, 215000},
		{"seconds converted", &AdditionalInfo{Duration: 215}, 215000},
		{"missing", &AdditionalInfo{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows := Normalize(Raw{
				TrackMetadata: TrackMetadata{
					ArtistName:     "Artist A",
					TrackName:      "Track",
					AdditionalInfo: tc.info,
				},
			}, "api", nil)
			if rows[0].DurationMS != tc.want {
				t.Errorf("DurationMS = %d, want %d", rows[0].DurationMS, tc.want)
			}
		})
	}
}

func TestNormalizeMBIDFallbacks(t *testing.T) {
	// The mapping wins over additional_info when both are present.
	rows := Normalize(Raw{
		TrackMetadata: TrackMetadata{
			ArtistName: "Artist A",
			TrackName:  "Track",
			AdditionalInfo: &AdditionalInfo{
				RecordingMBID: "info-rec",
				ReleaseMBID:   "info-rel",
				ArtistMBIDs:   []string{"info-artist"},
			},
			MBIDMapping: &MBIDMapping{
				RecordingMBID: "map-rec",
				ReleaseMBID:   "map-rel",
			},
		},
	}, "api", nil)
	row := rows[0]
	if row.RecordingMBID != "map-rec" || row.ReleaseMBID != "map-rel" {
		t.Errorf("mbids = %q/%q, want map-rec/map-rel", row.RecordingMBID, row.ReleaseMBID)
	}
	if row.ArtistMBID != "info-artist" {
		t.Errorf("ArtistMBID = %q, want info-artist", row.ArtistMBID)
	}
}

func TestLikedIDs(t *testing.T) {
	liked := LikedIDs([]Feedback{
		{Score: 1, RecordingMBID: "direct"},
		{Score: 1, TrackMetadata: &TrackMetadata{
			MBIDMapping: &MBIDMapping{RecordingMBID: "nested"},
		}},
		{Score: -1, RecordingMBID: "hated"},
		{Score: 1},
	})

	if len(liked) != 2 || !liked["direct"] || !liked["nested"] {
		t.Errorf("liked = %v, want direct and nested", liked)
	}
}
