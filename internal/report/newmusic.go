package report

import (
	"sort"
	"strconv"

	"github.com/ademuri/listen-brainz-tools/internal/listen"
)

// Identity keys for the new-music report prefer stable identifiers over
// display names, so a renamed artist is not counted twice.
func artistIdentity(row listen.Row) string {
	if row.ArtistMBID != "" {
		return row.ArtistMBID
	}
	return row.Artist
}

func albumIdentity(row listen.Row) string {
	if row.ReleaseMBID != "" {
		return row.ReleaseMBID
	}
	return row.Artist + "\x00" + row.Album
}

func trackIdentity(row listen.Row) string {
	if row.RecordingMBID != "" {
		return row.RecordingMBID
	}
	return row.Artist + "\x00" + row.TrackName
}

// newMusicByYear reports, per calendar year, how much of the listening went
// to artists, albums, and tracks heard for the first time that year. First
// listens are judged over the whole history, so the windowed report does
// not relabel old favorites as new.
func (e *Engine) newMusicByYear(spec Spec, in Input) (*Result, error) {
	columns := []string{
		"year",
		"active_artists", "new_artists", "new_artist_percent",
		"active_albums", "new_albums", "new_album_percent",
		"active_tracks", "new_tracks", "new_track_percent",
	}

	windowed := filterWindow(in.Rows, spec.Window, e.Now())
	if len(windowed) == 0 {
		return &Result{
			Table:  Table{Columns: columns},
			Status: "no listens in the selected window",
		}, nil
	}

	identities := []func(listen.Row) string{artistIdentity, albumIdentity, trackIdentity}

	// First-listen year per entity, over the full history.
	firstYear := make([]map[string]int, len(identities))
	for i := range firstYear {
		firstYear[i] = make(map[string]int)
	}
	for _, row := range in.Rows {
		if row.ListenedAt.IsZero() {
			continue
		}
		year := row.ListenedAt.Year()
		for i, identity := range identities {
			id := identity(row)
			if seen, ok := firstYear[i][id]; !ok || year < seen {
				firstYear[i][id] = year
			}
		}
	}

	// Entities active per year, inside the window.
	active := make([]map[int]map[string]bool, len(identities))
	for i := range active {
		active[i] = make(map[int]map[string]bool)
	}
	years := make(map[int]bool)
	for _, row := range windowed {
		if row.ListenedAt.IsZero() {
			continue
		}
		year := row.ListenedAt.Year()
		years[year] = true
		for i, identity := range identities {
			if active[i][year] == nil {
				active[i][year] = make(map[string]bool)
			}
			active[i][year][identity(row)] = true
		}
	}

	if len(years) == 0 {
		return &Result{
			Table:  Table{Columns: columns},
			Status: "no dated listens in the selected window",
		}, nil
	}

	var ordered []int
	for year := range years {
		ordered = append(ordered, year)
	}
	sort.Ints(ordered)

	table := Table{Columns: columns}
	for _, year := range ordered {
		cells := []string{strconv.Itoa(year)}
		for i := range identities {
			activeCount := len(active[i][year])
			newCount := 0
			for id := range active[i][year] {
				if firstYear[i][id] == year {
					newCount++
				}
			}
			cells = append(cells,
				strconv.Itoa(activeCount),
				strconv.Itoa(newCount),
				formatPercent(newCount, activeCount))
		}
		table.Rows = append(table.Rows, cells)
	}

	meta := metaFor(spec, len(windowed), len(ordered))
	return &Result{Table: table, Meta: meta}, nil
}

// formatPercent renders fresh/active as a whole percentage, or NaN when
// nothing was active.
func formatPercent(fresh, active int) string {
	if active == 0 {
		return "NaN"
	}
	percent := int(float64(fresh)/float64(active)*100 + 0.5)
	return strconv.Itoa(percent) + "%"
}
