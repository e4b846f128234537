// Package listen defines the canonical listen row and converts raw
// ListenBrainz records into it.
package listen

import "time"

// Unknown is the placeholder substituted for a missing artist, album, or
// track name. Downstream grouping treats it as a real value.
const Unknown = "Unknown"

// Row is one playback event attributed to exactly one artist credit. A raw
// record crediting several artists produces one Row per credit, identical
// except for Artist/ArtistMBID.
type Row struct {
	Artist        string
	ArtistMBID    string
	Album         string
	TrackName     string
	DurationMS    int64
	ListenedAt    time.Time
	RecordingMBID string
	ReleaseMBID   string
	Origin        string
}

// HasAlbum reports whether the album is a real value rather than the
// Unknown placeholder. Centralized so nothing else compares the sentinel
// string directly.
func (r Row) HasAlbum() bool {
	return r.Album != "" && r.Album != Unknown
}

// NeedsResolution reports whether the row is missing a recording identifier
// that the metadata resolver could backfill.
func (r Row) NeedsResolution() bool {
	return r.RecordingMBID == "" && r.Artist != Unknown && r.TrackName != Unknown
}

// Raw is one record as returned by the ListenBrainz API or found in an
// export archive.
type Raw struct {
	ListenedAt    int64         `json:"listened_at"`
	TrackMetadata TrackMetadata `json:"track_metadata"`
}

type TrackMetadata struct {
	ArtistName     string          `json:"artist_name"`
	TrackName      string          `json:"track_name"`
	ReleaseName    string          `json:"release_name"`
	AdditionalInfo *AdditionalInfo `json:"additional_info"`
	MBIDMapping    *MBIDMapping    `json:"mbid_mapping"`
}

type AdditionalInfo struct {
	DurationMS    int64    `json:"duration_ms"`
	Duration      int64    `json:"duration"`
	RecordingMBID string   `json:"recording_mbid"`
	ReleaseMBID   string   `json:"release_mbid"`
	ArtistMBIDs   []string `json:"artist_mbids"`
}

type MBIDMapping struct {
	RecordingMBID string         `json:"recording_mbid"`
	ReleaseMBID   string         `json:"release_mbid"`
	ArtistMBIDs   []string       `json:"artist_mbids"`
	Artists       []ArtistCredit `json:"artists"`
}

type ArtistCredit struct {
	ArtistCreditName string `json:"artist_credit_name"`
	ArtistMBID       string `json:"artist_mbid"`
}

// Feedback is one entry from the remote feedback (likes) endpoint or the
// export archive's feedback stream.
type Feedback struct {
	Score         int            `json:"score"`
	RecordingMBID string         `json:"recording_mbid"`
	TrackMetadata *TrackMetadata `json:"track_metadata"`
}
