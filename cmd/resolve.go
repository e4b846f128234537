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
	"github.com/ademuri/listen-brainz-tools/internal/musicbrainz"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Fills in missing recording identifiers via MusicBrainz",
	Long: `Searches MusicBrainz for listens that have no recording identifier and
backfills confident matches. Albums you recorded yourself are never
overwritten; only missing ones are filled from the catalog.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runResolve(viper.GetString("user"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(user string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	resolver := enrich.NewResolver(st, musicbrainz.New())
	resolver.Progress = func(format string, args ...any) {
		fmt.Printf(format, args...)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := resolver.Resolve(ctx, user)
	if err != nil && ctx.Err() == nil {
		return err
	}

	fmt.Printf("Checked %d track pairs: %d cached, %d resolved, %d unmatched\n",
		stats.Pairs, stats.CacheHits, stats.Resolved, stats.Unmatched)
	return nil
}
