package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ademuri/listen-brainz-tools/internal/listen"
)

// genreFlavor tallies listens by genre. Each listen counts fully toward
// every genre its artist carries; an artist with no known genres
// contributes nothing.
func (e *Engine) genreFlavor(spec Spec, in Input) (*Result, error) {
	if in.Genres == nil {
		return nil, fmt.Errorf("genre flavor requires genre data; run an enrichment pass first")
	}

	columns := []string{"genre", "total_listens", "total_hours_listened"}
	windowed := filterWindow(in.Rows, spec.Window, e.Now())
	if len(windowed) == 0 {
		return &Result{
			Table:  Table{Columns: columns},
			Status: "no listens in the selected window",
		}, nil
	}

	type tally struct {
		genre   string
		listens int
		ms      int64
	}
	index := make(map[string]*tally)
	var ordered []*tally
	for _, row := range windowed {
		for _, genre := range splitGenres(in.Genres[row.Artist]) {
			t := index[genre]
			if t == nil {
				t = &tally{genre: genre}
				index[genre] = t
				ordered = append(ordered, t)
			}
			t.listens++
			t.ms += row.DurationMS
		}
	}

	if len(ordered) == 0 {
		return &Result{
			Table:  Table{Columns: columns},
			Status: "no genre data for the listened artists",
		}, nil
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if spec.Metric == MetricHours {
			return ordered[i].ms > ordered[j].ms
		}
		return ordered[i].listens > ordered[j].listens
	})

	meta := metaFor(spec, len(windowed), len(ordered))
	if spec.TopN > 0 && len(ordered) > spec.TopN {
		ordered = ordered[:spec.TopN]
	}

	table := Table{Columns: columns}
	for _, t := range ordered {
		table.Rows = append(table.Rows, []string{
			t.genre,
			strconv.Itoa(t.listens),
			formatHours(roundHours(t.ms)),
		})
	}
	return &Result{Table: table, Meta: meta}, nil
}

// splitGenres splits a pipe-delimited genre list, dropping empty entries
// and the not-found placeholder.
func splitGenres(genres string) []string {
	if genres == "" || genres == listen.Unknown {
		return nil
	}
	var out []string
	for _, g := range strings.Split(genres, "|") {
		g = strings.TrimSpace(g)
		if g != "" && g != listen.Unknown {
			out = append(out, g)
		}
	}
	return out
}
