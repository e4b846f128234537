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

var newMusicFlags reportFlags
var newMusicCmd = &cobra.Command{
	Use:   "new-music",
	Short: "Shows how much listening went to newly discovered music, per year",
	Long: `For each year, counts the artists, albums, and tracks heard for the first
time that year against everything listened to in it.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runReport(report.NewMusicByYear, &newMusicFlags, viper.GetString("user"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(newMusicCmd)

	addReportFlags(newMusicCmd, &newMusicFlags)
}
