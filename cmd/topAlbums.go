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

var topAlbumsFlags reportFlags
var topAlbumsCmd = &cobra.Command{
	Use:   "top-albums",
	Short: "Ranks the user's most-listened albums",
	Long:  `Ranks albums by listen count or hours listened. Albums are grouped per artist, so a shared title stays separate.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runReport(report.TopAlbums, &topAlbumsFlags, viper.GetString("user"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topAlbumsCmd)

	addReportFlags(topAlbumsCmd, &topAlbumsFlags)
}
