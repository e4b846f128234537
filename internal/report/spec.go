// Package report aggregates listen history into ranked tables.
package report

import (
	"fmt"
	"time"

	"github.com/ademuri/listen-brainz-tools/internal/listen"
)

// Kind selects which report to build. The set is closed; Execute rejects
// anything else.
type Kind string

const (
	TopArtists     Kind = "top-artists"
	TopAlbums      Kind = "top-albums"
	TopTracks      Kind = "top-tracks"
	GenreFlavor    Kind = "genre-flavor"
	NewMusicByYear Kind = "new-music"
	RawListens     Kind = "listens"
)

// Kinds lists every report kind, in presentation order.
var Kinds = []Kind{TopArtists, TopAlbums, TopTracks, GenreFlavor, NewMusicByYear, RawListens}

// ParseKind converts a kind name from the command line or a saved report.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown report kind %q", s)
}

// Metric selects the ranking column.
type Metric string

const (
	MetricListens Metric = "listens"
	MetricHours   Metric = "hours"
)

// Days is an age window measured backward from now: a row whose age in
// days lies in [Start, End], both ends inclusive, passes. The zero value
// means no filter.
type Days struct {
	Start int
	End   int
}

// IsZero reports whether the window filters nothing.
func (d Days) IsZero() bool {
	return d.Start == 0 && d.End == 0
}

// Contains reports whether a timestamp's age falls inside the window.
// Rows without a timestamp never match a non-zero window.
func (d Days) Contains(now, at time.Time) bool {
	if d.IsZero() {
		return true
	}
	if at.IsZero() {
		return false
	}
	newest := now.AddDate(0, 0, -d.Start)
	oldest := now.AddDate(0, 0, -d.End)
	return !at.After(newest) && !at.Before(oldest)
}

// Spec is one report request. The zero value of each filter disables it.
type Spec struct {
	Kind   Kind
	Metric Metric
	// TopN truncates the report to its highest-ranked rows. 0 keeps all.
	TopN int
	// Window restricts which listens are aggregated at all.
	Window Days
	// Recency keeps only entities whose most recent listen, judged over
	// the full unwindowed history, falls in the window.
	Recency Days
	// FirstSeen keeps only entities first listened to inside the window,
	// again judged over the full history.
	FirstSeen Days
	// Thresholds: an entity stays when it clears either the listen count
	// or the listening-time bar. Both zero means no threshold.
	MinListens int
	MinMinutes int
	// MinLikes keeps only entities with at least this many distinct liked
	// recordings, and adds the likes column to the output.
	MinLikes int
}

// Input is the data a report is computed over.
type Input struct {
	Rows []listen.Row
	// Liked is the set of liked recording identifiers.
	Liked map[string]bool
	// Genres maps artist name to a pipe-delimited genre list. Nil skips
	// genre columns; GenreFlavor requires it.
	Genres map[string]string
}

// Meta carries summary numbers and output labels alongside a report
// table. The label fields echo what the report was computed with, so
// renderers and exporters can name output without holding the Spec.
type Meta struct {
	// Entity names what one row represents: artist, album, track, genre,
	// year, or listen.
	Entity string
	// TopN, Window, and Metric are the applied request parameters.
	TopN   int
	Window Days
	Metric Metric
	// TotalListens is how many listens fell inside the window.
	TotalListens int
	// Entities is how many groups survived filtering, before TopN.
	Entities int
}

// Result is a finished report. An empty report carries a human-readable
// Status instead of a Meta.
type Result struct {
	Table  Table
	Meta   *Meta
	Status string
}
