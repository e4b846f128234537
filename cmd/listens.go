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

var listensFlags reportFlags
var listensCmd = &cobra.Command{
	Use:   "listens",
	Short: "Lists individual listens, newest first",
	Long:  `Prints raw listens from the local database. Use --csv to export them.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runReport(report.RawListens, &listensFlags, viper.GetString("user"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listensCmd)

	addReportFlags(listensCmd, &listensFlags)
	// Raw listens default to a larger page than the ranked reports.
	listensCmd.Flags().Lookup("number").DefValue = "50"
	listensFlags.number = 50
}
