/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ademuri/listen-brainz-tools/internal/report"
	"github.com/ademuri/listen-brainz-tools/internal/store"
)

// reportFlags holds the filter flags shared by the report commands. Each
// command registers its own copy so flag state does not leak between
// commands.
type reportFlags struct {
	number     int
	metric     string
	days       string
	recency    string
	firstSeen  string
	minListens int
	minMinutes int
	minLikes   int
	csvPath    string
	withGenres bool
}

func addReportFlags(cmd *cobra.Command, f *reportFlags) {
	cmd.Flags().IntVarP(&f.number, "number", "n", 10, "number of results to return, 0 for all")
	cmd.Flags().StringVar(&f.metric, "metric", "listens", "ranking metric: listens or hours")
	cmd.Flags().StringVar(&f.days, "days", "", "age window, e.g. '90' or '30:90'")
	cmd.Flags().StringVar(&f.recency, "recency", "", "only entries listened to this recently, e.g. '30'")
	cmd.Flags().StringVar(&f.firstSeen, "first_seen", "", "only entries first heard in this window, e.g. '90'")
	cmd.Flags().IntVar(&f.minListens, "min_listens", 0, "minimum listen count")
	cmd.Flags().IntVar(&f.minMinutes, "min_minutes", 0, "minimum minutes listened")
	cmd.Flags().IntVar(&f.minLikes, "min_likes", 0, "minimum distinct liked tracks")
	cmd.Flags().StringVar(&f.csvPath, "csv", "", "write the report to this CSV file instead of printing")
}

func (f *reportFlags) spec(kind report.Kind) (report.Spec, error) {
	spec := report.Spec{
		Kind:       kind,
		TopN:       f.number,
		MinListens: f.minListens,
		MinMinutes: f.minMinutes,
		MinLikes:   f.minLikes,
	}

	switch f.metric {
	case "", "listens":
		spec.Metric = report.MetricListens
	case "hours":
		spec.Metric = report.MetricHours
	default:
		return report.Spec{}, fmt.Errorf("unknown metric %q", f.metric)
	}

	var err error
	if spec.Window, err = parseDaysRange(f.days); err != nil {
		return report.Spec{}, err
	}
	if spec.Recency, err = parseDaysRange(f.recency); err != nil {
		return report.Spec{}, err
	}
	if spec.FirstSeen, err = parseDaysRange(f.firstSeen); err != nil {
		return report.Spec{}, err
	}
	return spec, nil
}

// loadInput reads everything a report needs from the database. Genre data
// comes from the local cache only; run enrich first to populate it.
func loadInput(st *store.Store, user string, withGenres bool) (report.Input, error) {
	rows, skipped, err := st.LoadHistory(user)
	if err != nil {
		return report.Input{}, err
	}
	if skipped > 0 {
		fmt.Printf("Skipped %d listens with unreadable dates\n", skipped)
	}

	liked, err := st.LikedIDs(user)
	if err != nil {
		return report.Input{}, err
	}

	in := report.Input{Rows: rows, Liked: liked}
	if withGenres {
		genres := make(map[string]string)
		seen := make(map[string]bool)
		for _, row := range rows {
			if seen[row.Artist] {
				continue
			}
			seen[row.Artist] = true
			cached, ok, err := st.CachedGenres(store.EntityArtist, row.Artist)
			if err != nil {
				return report.Input{}, err
			}
			if ok {
				genres[row.Artist] = cached
			}
		}
		in.Genres = genres
	}
	return in, nil
}

// runReport executes one report against the local database and emits it.
func runReport(kind report.Kind, f *reportFlags, user string) error {
	spec, err := f.spec(kind)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	needGenres := f.withGenres || kind == report.GenreFlavor
	in, err := loadInput(st, user, needGenres)
	if err != nil {
		return err
	}

	res, err := report.NewEngine().Execute(spec, in)
	if err != nil {
		return err
	}
	return emitResult(res, f.csvPath)
}
