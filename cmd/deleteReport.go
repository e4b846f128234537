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
)

// deleteReportCmd represents the delete-report command
var deleteReportCmd = &cobra.Command{
	Use:   "delete-report <name>",
	Short: "Deletes a saved report definition",
	Long:  ``,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := deleteReport(viper.GetString("user"), args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(deleteReportCmd)
}

func deleteReport(user, name string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	_, found, err := st.GetReport(user, name)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no report named %q", name)
	}

	if err := st.DeleteReport(user, name); err != nil {
		return err
	}
	fmt.Printf("Deleted report %q\n", name)
	return nil
}
