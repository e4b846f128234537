package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/ademuri/listen-brainz-tools/internal/listen"
)

// Engine computes reports over an in-memory listen history. Now is
// replaceable so tests can pin the clock the age windows measure from.
type Engine struct {
	Now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{Now: time.Now}
}

func (e *Engine) Execute(spec Spec, in Input) (*Result, error) {
	switch spec.Kind {
	case TopArtists, TopAlbums, TopTracks:
		return e.top(spec, in)
	case GenreFlavor:
		return e.genreFlavor(spec, in)
	case NewMusicByYear:
		return e.newMusicByYear(spec, in)
	case RawListens:
		return e.rawListens(spec, in)
	default:
		return nil, fmt.Errorf("unknown report kind %q", spec.Kind)
	}
}

// groupKey identifies one aggregated entity. Unused parts stay empty, so
// the same key type serves artists, albums, and tracks.
type groupKey struct {
	artist string
	album  string
	track  string
}

func keyFor(kind Kind, row listen.Row) groupKey {
	switch kind {
	case TopAlbums:
		return groupKey{artist: row.Artist, album: row.Album}
	case TopTracks:
		return groupKey{artist: row.Artist, track: row.TrackName}
	default:
		return groupKey{artist: row.Artist}
	}
}

type group struct {
	key     groupKey
	listens int
	ms      int64
	liked   map[string]bool
	first   time.Time
	last    time.Time
	mbid    string
}

func (g *group) add(kind Kind, row listen.Row) {
	g.listens++
	g.ms += row.DurationMS
	if !row.ListenedAt.IsZero() {
		if g.first.IsZero() || row.ListenedAt.Before(g.first) {
			g.first = row.ListenedAt
		}
		if row.ListenedAt.After(g.last) {
			g.last = row.ListenedAt
		}
	}
	if row.RecordingMBID != "" {
		if g.liked == nil {
			g.liked = make(map[string]bool)
		}
		g.liked[row.RecordingMBID] = true
	}
	if g.mbid == "" {
		switch kind {
		case TopAlbums:
			g.mbid = row.ReleaseMBID
		case TopTracks:
			g.mbid = row.RecordingMBID
		default:
			g.mbid = row.ArtistMBID
		}
	}
}

func (g *group) hours() float64 {
	return roundHours(g.ms)
}

func (g *group) likedCount(liked map[string]bool) int {
	count := 0
	for mbid := range g.liked {
		if liked[mbid] {
			count++
		}
	}
	return count
}

// top builds the artist, album, and track ranking reports.
func (e *Engine) top(spec Spec, in Input) (*Result, error) {
	now := e.Now()
	columns := topColumns(spec, in)

	windowed := filterWindow(in.Rows, spec.Window, now)
	if len(windowed) == 0 {
		return &Result{
			Table:  Table{Columns: columns},
			Status: "no listens in the selected window",
		}, nil
	}

	groups := groupRows(spec.Kind, windowed)

	// Recency and first-seen are judged over the whole history, not just
	// the window, so a briefly-revisited old favorite is not mistaken for
	// new.
	var extremes map[groupKey]*group
	if !spec.Recency.IsZero() || !spec.FirstSeen.IsZero() {
		extremes = indexGroups(spec.Kind, in.Rows)
	}

	var kept []*group
	for _, g := range groups {
		if !spec.Recency.IsZero() {
			all := extremes[g.key]
			if all == nil || !spec.Recency.Contains(now, all.last) {
				continue
			}
		}
		if !spec.FirstSeen.IsZero() {
			all := extremes[g.key]
			if all == nil || !spec.FirstSeen.Contains(now, all.first) {
				continue
			}
		}
		if spec.MinListens > 0 || spec.MinMinutes > 0 {
			clearsListens := spec.MinListens > 0 && g.listens >= spec.MinListens
			clearsTime := spec.MinMinutes > 0 && g.hours() >= float64(spec.MinMinutes)/60
			if !clearsListens && !clearsTime {
				continue
			}
		}
		if spec.MinLikes > 0 && g.likedCount(in.Liked) < spec.MinLikes {
			continue
		}
		kept = append(kept, g)
	}

	if len(kept) == 0 {
		return &Result{
			Table:  Table{Columns: columns},
			Status: "no entries matched the filters",
		}, nil
	}

	sortGroups(kept, spec.Metric)
	meta := metaFor(spec, len(windowed), len(kept))
	if spec.TopN > 0 && len(kept) > spec.TopN {
		kept = kept[:spec.TopN]
	}

	table := Table{Columns: columns}
	for _, g := range kept {
		table.Rows = append(table.Rows, topRow(columns, spec, in, g))
	}
	return &Result{Table: table, Meta: meta}, nil
}

func topColumns(spec Spec, in Input) []string {
	var names []string
	switch spec.Kind {
	case TopAlbums:
		names = append(names, "artist", "album", "release_mbid")
	case TopTracks:
		names = append(names, "artist", "track_name", "recording_mbid")
	default:
		names = append(names, "artist", "artist_mbid")
		if in.Genres != nil {
			names = append(names, "genres")
		}
	}
	names = append(names, "total_listens", "total_hours_listened", "last_listened", "first_listened")
	if spec.MinLikes > 0 {
		names = append(names, "unique_liked_tracks")
	}
	return orderColumns(names)
}

func topRow(columns []string, spec Spec, in Input, g *group) []string {
	cells := make([]string, 0, len(columns))
	for _, name := range columns {
		switch name {
		case "artist":
			cells = append(cells, g.key.artist)
		case "album":
			cells = append(cells, g.key.album)
		case "track_name":
			cells = append(cells, g.key.track)
		case "total_listens":
			cells = append(cells, strconv.Itoa(g.listens))
		case "total_hours_listened":
			cells = append(cells, formatHours(g.hours()))
		case "unique_liked_tracks":
			cells = append(cells, strconv.Itoa(g.likedCount(in.Liked)))
		case "last_listened":
			cells = append(cells, formatDate(g.last))
		case "first_listened":
			cells = append(cells, formatDate(g.first))
		case "genres":
			cells = append(cells, in.Genres[g.key.artist])
		default:
			cells = append(cells, g.mbid)
		}
	}
	return cells
}

// groupRows aggregates rows in first-appearance order. Ties in the later
// sort keep this order.
func groupRows(kind Kind, rows []listen.Row) []*group {
	index := make(map[groupKey]*group)
	var ordered []*group
	for _, row := range rows {
		key := keyFor(kind, row)
		g := index[key]
		if g == nil {
			g = &group{key: key}
			index[key] = g
			ordered = append(ordered, g)
		}
		g.add(kind, row)
	}
	return ordered
}

func indexGroups(kind Kind, rows []listen.Row) map[groupKey]*group {
	index := make(map[groupKey]*group)
	for _, row := range rows {
		key := keyFor(kind, row)
		g := index[key]
		if g == nil {
			g = &group{key: key}
			index[key] = g
		}
		g.add(kind, row)
	}
	return index
}

// entityLabel names what one row of a report stands for.
func entityLabel(kind Kind) string {
	switch kind {
	case TopAlbums:
		return "album"
	case TopTracks:
		return "track"
	case GenreFlavor:
		return "genre"
	case NewMusicByYear:
		return "year"
	case RawListens:
		return "listen"
	default:
		return "artist"
	}
}

func metaFor(spec Spec, totalListens, entities int) *Meta {
	return &Meta{
		Entity:       entityLabel(spec.Kind),
		TopN:         spec.TopN,
		Window:       spec.Window,
		Metric:       spec.Metric,
		TotalListens: totalListens,
		Entities:     entities,
	}
}

func sortGroups(groups []*group, metric Metric) {
	sort.SliceStable(groups, func(i, j int) bool {
		if metric == MetricHours {
			return groups[i].ms > groups[j].ms
		}
		return groups[i].listens > groups[j].listens
	})
}

func filterWindow(rows []listen.Row, window Days, now time.Time) []listen.Row {
	if window.IsZero() {
		return rows
	}
	var kept []listen.Row
	for _, row := range rows {
		if window.Contains(now, row.ListenedAt) {
			kept = append(kept, row)
		}
	}
	return kept
}

func roundHours(ms int64) float64 {
	return math.Round(float64(ms)/3.6e6*10) / 10
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', 1, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
