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

	"github.com/ademuri/listen-brainz-tools/internal/listen"
)

var importCmd = &cobra.Command{
	Use:   "import <export.zip>",
	Short: "Imports a ListenBrainz export archive",
	Long: `Loads listens and loved tracks from a ListenBrainz data export. Importing
is idempotent; listens already in the database are skipped, and likes are
added to the existing set rather than replacing it.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := runImport(viper.GetString("user"), args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(user, path string) error {
	export, err := listen.ReadArchive(path)
	if err != nil {
		return err
	}
	if export.UserName != "" && export.UserName != user {
		return fmt.Errorf("archive belongs to %q, not %q", export.UserName, user)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.CreateUser(user); err != nil {
		return err
	}

	var anomalies listen.Anomalies
	rows := listen.NormalizeAll(export.Listens, "archive", &anomalies)
	if err := st.MergeListens(user, rows); err != nil {
		return err
	}

	liked := listen.LikedIDs(export.Feedback)
	if err := st.UnionLikes(user, liked); err != nil {
		return err
	}

	fmt.Printf("Imported %d listens and %d likes from %s\n", len(rows), len(liked), path)
	if export.SkippedLines > 0 {
		fmt.Printf("Skipped %d unreadable archive lines\n", export.SkippedLines)
	}
	if anomalies.MissingArtist > 0 || anomalies.MissingAlbum > 0 {
		fmt.Printf("Data gaps: %d listens without an artist, %d without an album\n",
			anomalies.MissingArtist, anomalies.MissingAlbum)
	}
	return nil
}
