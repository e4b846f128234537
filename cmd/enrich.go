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
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listen-brainz-tools/internal/enrich"
	"github.com/ademuri/listen-brainz-tools/internal/listen"
	"github.com/ademuri/listen-brainz-tools/internal/musicbrainz"
)

var enrichForce bool
var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fetches genre tags for the artists in the listen history",
	Long: `Looks up genre tags on MusicBrainz for every artist in the local history,
falling back to last.fm when configured with lastfm_api_key. Results are
cached; only artists never seen before cost a lookup.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runEnrich(viper.GetString("user"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().BoolVar(&enrichForce, "force_update", false, "refetch genres even when cached")
}

func runEnrich(user string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rows, _, err := st.LoadHistory(user)
	if err != nil {
		return err
	}

	var artists []string
	seen := make(map[string]bool)
	for _, row := range rows {
		if row.Artist == listen.Unknown || seen[row.Artist] {
			continue
		}
		seen[row.Artist] = true
		artists = append(artists, row.Artist)
	}
	if len(artists) == 0 {
		fmt.Println("No artists to enrich - run sync or import first.")
		return nil
	}
	fmt.Printf("Enriching %d artists\n", len(artists))

	var fallback enrich.GenreSource
	if key := viper.GetString("lastfm_api_key"); key != "" {
		fallback = enrich.NewLastFM(key, viper.GetString("lastfm_secret"))
	}

	enricher := enrich.NewEnricher(st, musicbrainz.New(), fallback)
	enricher.ForceUpdate = enrichForce
	enricher.Progress = func(format string, args ...any) {
		fmt.Printf(format, args...)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, stats, err := enricher.ArtistGenres(ctx, artists)
	if err != nil && ctx.Err() == nil {
		return err
	}

	fmt.Printf("Processed %d artists: %d cached, %d fetched, %d unknown, %d via last.fm\n",
		stats.Processed, stats.CacheHits, stats.NewlyFetched, stats.Empty, stats.Fallbacks)
	return nil
}
