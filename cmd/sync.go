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

	"github.com/ademuri/listen-brainz-tools/internal/listenbrainz"
	"github.com/ademuri/listen-brainz-tools/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Downloads new listens and likes from ListenBrainz",
	Long: `Crawls the remote history backward from the newest listen until it meets
what the local database already has, then commits everything at once.
Interrupting is safe: partial progress is kept and the next run resumes
where this one stopped.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runSync(viper.GetString("user"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(user string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.CreateUser(user); err != nil {
		return err
	}

	token := viper.GetString("token")
	if token == "" {
		// Fall back to a token stored by a previous run.
		token, err = st.Token(user)
		if err != nil {
			return err
		}
	} else if err := st.SetToken(user, token); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine := sync.New(st, listenbrainz.New(token), user)
	engine.SetProgress(func(format string, args ...any) {
		fmt.Printf(format, args...)
	})

	fmt.Printf("Syncing listens for %q\n", user)
	stats, err := engine.Sync(ctx)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Printf("Interrupted; %d listens staged for the next run\n", stats.Staged)
			return nil
		}
		return err
	}

	fmt.Printf("Fetched %d pages, %d new listens, %d likes\n", stats.Pages, stats.Staged, stats.Likes)
	if stats.Anomalies.MissingArtist > 0 || stats.Anomalies.MissingAlbum > 0 {
		fmt.Printf("Data gaps: %d listens without an artist, %d without an album\n",
			stats.Anomalies.MissingArtist, stats.Anomalies.MissingAlbum)
	}
	return nil
}
