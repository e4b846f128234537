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
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/listen-brainz-tools/internal/store"
)

var cfgFile string
var listenBrainzUser string
var listenBrainzToken string
var databasePath string
var lastFmApiKey string
var lastFmSecret string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "listen-brainz-tools",
	Short: "Syncs and analyzes ListenBrainz listening data",
	Long: `Downloads listening history from ListenBrainz into a local SQLite
database and builds reports over it: top artists, albums, and tracks,
genre breakdowns, and year-over-year discovery of new music.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.listen-brainz-tools.yaml)")

	rootCmd.PersistentFlags().StringVarP(
		&listenBrainzUser, "user", "u", "", "ListenBrainz username to act on")
	rootCmd.MarkPersistentFlagRequired("user")
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))

	rootCmd.PersistentFlags().StringVar(
		&listenBrainzToken, "token", "", "ListenBrainz API token")
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))

	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./listenbrainz.db", "Path to the SQLite database")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	rootCmd.PersistentFlags().StringVar(&lastFmApiKey, "lastfm_api_key", "", "last.fm API key, used as a genre fallback")
	viper.BindPFlag("lastfm_api_key", rootCmd.PersistentFlags().Lookup("lastfm_api_key"))

	rootCmd.PersistentFlags().StringVar(&lastFmSecret, "lastfm_secret", "", "last.fm secret")
	viper.BindPFlag("lastfm_secret", rootCmd.PersistentFlags().Lookup("lastfm_secret"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".listen-brainz-tools" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".listen-brainz-tools")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

func openStore() (*store.Store, error) {
	st, err := store.New(viper.GetString("database"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return st, nil
}
