package report

import (
	"sort"
	"strconv"
	"time"

	"github.com/ademuri/listen-brainz-tools/internal/listen"
)

// rawListens lists individual listens, newest first, for inspection and
// export.
func (e *Engine) rawListens(spec Spec, in Input) (*Result, error) {
	columns := []string{"listened_at", "artist", "album", "track_name", "duration_minutes", "origin"}

	windowed := filterWindow(in.Rows, spec.Window, e.Now())
	if len(windowed) == 0 {
		return &Result{
			Table:  Table{Columns: columns},
			Status: "no listens in the selected window",
		}, nil
	}

	rows := make([]listen.Row, len(windowed))
	copy(rows, windowed)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ListenedAt.After(rows[j].ListenedAt)
	})

	meta := metaFor(spec, len(windowed), len(rows))
	if spec.TopN > 0 && len(rows) > spec.TopN {
		rows = rows[:spec.TopN]
	}

	table := Table{Columns: columns}
	for _, row := range rows {
		minutes := float64(row.DurationMS) / 60000
		table.Rows = append(table.Rows, []string{
			formatTimestamp(row.ListenedAt),
			row.Artist,
			row.Album,
			row.TrackName,
			strconv.FormatFloat(minutes, 'f', 1, 64),
			row.Origin,
		})
	}
	return &Result{Table: table, Meta: meta}, nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
