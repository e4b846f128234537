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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listen-brainz-tools/internal/report"
)

var topArtistsFlags reportFlags
var topArtistsCmd = &cobra.Command{
	Use:   "top-artists",
	Short: "Ranks the user's most-listened artists",
	Long: `Ranks artists by listen count or hours listened. Use --days to limit the
window, --recency or --first_seen to focus on current or newly found
artists, and the min_* flags to cut the long tail.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runReport(report.TopArtists, &topArtistsFlags, viper.GetString("user"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topArtistsCmd)

	addReportFlags(topArtistsCmd, &topArtistsFlags)
	topArtistsCmd.Flags().BoolVar(&topArtistsFlags.withGenres, "genres", false, "include cached genre tags")
}
