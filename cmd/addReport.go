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
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listen-brainz-tools/internal/report"
	"github.com/ademuri/listen-brainz-tools/internal/store"
)

// reportParams is the JSON shape report filters are saved in.
type reportParams struct {
	Number     int    `json:"number,omitempty"`
	Metric     string `json:"metric,omitempty"`
	Days       string `json:"days,omitempty"`
	Recency    string `json:"recency,omitempty"`
	FirstSeen  string `json:"first_seen,omitempty"`
	MinListens int    `json:"min_listens,omitempty"`
	MinMinutes int    `json:"min_minutes,omitempty"`
	MinLikes   int    `json:"min_likes,omitempty"`
}

func (p reportParams) flags() reportFlags {
	return reportFlags{
		number:     p.Number,
		metric:     p.Metric,
		days:       p.Days,
		recency:    p.Recency,
		firstSeen:  p.FirstSeen,
		minListens: p.MinListens,
		minMinutes: p.MinMinutes,
		minLikes:   p.MinLikes,
	}
}

var addReportFilterFlags reportFlags
var addReportDest string
var addReportName string

// addReportCmd represents the add-report command
var addReportCmd = &cobra.Command{
	Use:   "add-report <kinds...>",
	Short: "Saves a named report definition for emailing with `email`",
	Long: `Saves one or more report kinds under a name, together with the filter
flags given here. Kinds: top-artists, top-albums, top-tracks,
genre-flavor, new-music, listens.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := addReport(viper.GetString("user"), addReportName, addReportDest, args, addReportFilterFlags)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(addReportCmd)

	addReportCmd.Flags().StringVar(&addReportDest, "dest", "", "Destination email address")
	addReportCmd.MarkFlagRequired("dest")

	addReportCmd.Flags().StringVar(&addReportName, "name", "", "Report name - included in the email subject")
	addReportCmd.MarkFlagRequired("name")

	addReportFlags(addReportCmd, &addReportFilterFlags)
}

func addReport(user, name, dest string, kinds []string, f reportFlags) error {
	for _, kind := range kinds {
		if _, err := report.ParseKind(kind); err != nil {
			return err
		}
	}

	params, err := json.Marshal(reportParams{
		Number:     f.number,
		Metric:     f.metric,
		Days:       f.days,
		Recency:    f.recency,
		FirstSeen:  f.firstSeen,
		MinListens: f.minListens,
		MinMinutes: f.minMinutes,
		MinLikes:   f.minLikes,
	})
	if err != nil {
		return fmt.Errorf("marshalling params: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.CreateUser(user); err != nil {
		return err
	}

	err = st.SaveReport(store.SavedReport{
		User:   user,
		Name:   name,
		Email:  dest,
		Kinds:  strings.Join(kinds, ","),
		Params: string(params),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Saved report %q (%s) for %s\n", name, strings.Join(kinds, ", "), dest)
	return nil
}
