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

var genreFlavorFlags reportFlags
var genreFlavorCmd = &cobra.Command{
	Use:   "genre-flavor",
	Short: "Breaks listening down by genre",
	Long: `Tallies listens by the genre tags of their artists. Genre data comes from
the local cache; run 'enrich' first to fill it.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runReport(report.GenreFlavor, &genreFlavorFlags, viper.GetString("user"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(genreFlavorCmd)

	addReportFlags(genreFlavorCmd, &genreFlavorFlags)
}
