package listen

import "time"

// Anomalies counts data-quality problems seen while normalizing. Callers
// surface the totals; the normalizer itself never logs or errors.
type Anomalies struct {
	MissingArtist int
	MissingAlbum  int
}

// Normalize converts one raw record into canonical rows, one per credited
// artist. Artist resolution order: the mbid mapping's credited artists, then
// the flat artist_name field, then the Unknown placeholder. Missing fields
// become placeholders or zero, never an error.
func Normalize(raw Raw, origin string, anomalies *Anomalies) []Row {
	meta := raw.TrackMetadata

	credits := artistCredits(meta)
	if len(credits) == 0 {
		if anomalies != nil {
			anomalies.MissingArtist++
		}
		credits = []ArtistCredit{{ArtistCreditName: Unknown}}
	}

	album := meta.ReleaseName
	if album == "" {
		album = Unknown
	}
	if album == Unknown && anomalies != nil {
		anomalies.MissingAlbum++
	}

	track := meta.TrackName
	if track == "" {
		track = Unknown
	}

	var listenedAt time.Time
	if raw.ListenedAt > 0 {
		listenedAt = time.Unix(raw.ListenedAt, 0).UTC()
	}

	base := Row{
		Album:         album,
		TrackName:     track,
		DurationMS:    duration(meta.AdditionalInfo),
		ListenedAt:    listenedAt,
		RecordingMBID: recordingMBID(meta),
		ReleaseMBID:   releaseMBID(meta),
		Origin:        origin,
	}

	rows := make([]Row, 0, len(credits))
	for _, credit := range credits {
		row := base
		row.Artist = credit.ArtistCreditName
		row.ArtistMBID = credit.ArtistMBID
		rows = append(rows, row)
	}
	return rows
}

// NormalizeAll flattens a batch of raw records into canonical rows.
func NormalizeAll(raws []Raw, origin string, anomalies *Anomalies) []Row {
	var rows []Row
	for _, raw := range raws {
		rows = append(rows, Normalize(raw, origin, anomalies)...)
	}
	return rows
}

// artistCredits returns the distinct credited artists for a record, or nil
// when the record names no artist at all.
func artistCredits(meta TrackMetadata) []ArtistCredit {
	if mapping := meta.MBIDMapping; mapping != nil && len(mapping.Artists) > 0 {
		seen := make(map[string]bool, len(mapping.Artists))
		var credits []ArtistCredit
		for _, a := range mapping.Artists {
			if a.ArtistCreditName == "" || seen[a.ArtistCreditName] {
				continue
			}
			seen[a.ArtistCreditName] = true
			credits = append(credits, a)
		}
		if len(credits) > 0 {
			return credits
		}
	}

	if meta.ArtistName != "" {
		return []ArtistCredit{{
			ArtistCreditName: meta.ArtistName,
			ArtistMBID:       singleArtistMBID(meta),
		}}
	}

	return nil
}

// singleArtistMBID finds an identifier for a single-credit record, checking
// the mbid mapping before the additional-info fallback list.
func singleArtistMBID(meta TrackMetadata) string {
	if mapping := meta.MBIDMapping; mapping != nil && len(mapping.ArtistMBIDs) > 0 {
		return mapping.ArtistMBIDs[0]
	}
	if info := meta.AdditionalInfo; info != nil && len(info.ArtistMBIDs) > 0 {
		return info.ArtistMBIDs[0]
	}
	return ""
}

// duration prefers an explicit millisecond field, then converts a seconds
// field, then falls back to 0.
func duration(info *AdditionalInfo) int64 {
	if info == nil {
		return 0
	}
	if info.DurationMS > 0 {
		return info.DurationMS
	}
	if info.Duration > 0 {
		return info.Duration * 1000
	}
	return 0
}

func recordingMBID(meta TrackMetadata) string {
	if mapping := meta.MBIDMapping; mapping != nil && mapping.RecordingMBID != "" {
		return mapping.RecordingMBID
	}
	if info := meta.AdditionalInfo; info != nil {
		return info.RecordingMBID
	}
	return ""
}

func releaseMBID(meta TrackMetadata) string {
	if mapping := meta.MBIDMapping; mapping != nil && mapping.ReleaseMBID != "" {
		return mapping.ReleaseMBID
	}
	if info := meta.AdditionalInfo; info != nil {
		return info.ReleaseMBID
	}
	return ""
}

// LikedIDs extracts the set of liked recording identifiers from feedback
// entries. Only score=1 entries with a recording mbid count.
func LikedIDs(feedback []Feedback) map[string]bool {
	liked := make(map[string]bool)
	for _, f := range feedback {
		if f.Score != 1 {
			continue
		}
		mbid := f.RecordingMBID
		if mbid == "" && f.TrackMetadata != nil {
			mbid = recordingMBID(*f.TrackMetadata)
		}
		if mbid != "" {
			liked[mbid] = true
		}
	}
	return liked
}
