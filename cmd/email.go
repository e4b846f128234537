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
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listen-brainz-tools/internal/report"
	"github.com/ademuri/listen-brainz-tools/internal/store"
)

var emailDryRun bool
var emailCmd = &cobra.Command{
	Use:   "email <report_name>",
	Short: "Emails a saved report",
	Long: `Builds the named report (see add-report) and emails it to its saved
destination via SendGrid. Requires sendgrid_api_key and from.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if !emailDryRun {
			if viper.GetString("sendgrid_api_key") == "" {
				return fmt.Errorf("required flag(s) \"sendgrid_api_key\" not set")
			}
			if viper.GetString("from") == "" {
				return fmt.Errorf("required flag(s) \"from\" not set")
			}
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		err := sendReportEmail(viper.GetString("user"), args[0], emailDryRun)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	emailCmd.Flags().BoolVarP(&emailDryRun, "dry_run", "n", false, "When true, just print instead of emailing")

	var sendgridApiKey string
	emailCmd.Flags().StringVar(&sendgridApiKey, "sendgrid_api_key", "", "SendGrid API key")
	viper.BindPFlag("sendgrid_api_key", emailCmd.Flags().Lookup("sendgrid_api_key"))

	var from string
	emailCmd.Flags().StringVar(&from, "from", "", "From email address")
	viper.BindPFlag("from", emailCmd.Flags().Lookup("from"))
}

func sendReportEmail(user, name string, dryRun bool) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	saved, found, err := st.GetReport(user, name)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no report named %q - create it with add-report", name)
	}

	var params reportParams
	if saved.Params != "" {
		if err := json.Unmarshal([]byte(saved.Params), &params); err != nil {
			return fmt.Errorf("reading saved params: %w", err)
		}
	}
	flags := params.flags()

	subject, body, err := buildEmailBody(st, user, name, saved.Kinds, &flags)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Printf("Would have sent to %s:\nsubject: %s\n%s\n", saved.Email, subject, body)
		return nil
	}

	from := mail.NewEmail("listen-brainz-tools", viper.GetString("from"))
	to := mail.NewEmail(saved.Email, saved.Email)
	html := "<pre>" + body + "</pre>"
	message := mail.NewSingleEmail(from, subject, to, body, html)
	client := sendgrid.NewSendClient(viper.GetString("sendgrid_api_key"))
	if _, err := client.Send(message); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	if err := st.MarkReportSent(user, name, time.Now()); err != nil {
		return err
	}
	fmt.Printf("Sent report %q to %s\n", name, saved.Email)
	return nil
}

func buildEmailBody(st *store.Store, user, name, kinds string, flags *reportFlags) (subject, body string, err error) {
	engine := report.NewEngine()

	var sections []string
	for _, kindName := range strings.Split(kinds, ",") {
		kind, err := report.ParseKind(strings.TrimSpace(kindName))
		if err != nil {
			return "", "", err
		}

		spec, err := flags.spec(kind)
		if err != nil {
			return "", "", err
		}

		needGenres := kind == report.GenreFlavor
		in, err := loadInput(st, user, needGenres)
		if err != nil {
			return "", "", err
		}

		res, err := engine.Execute(spec, in)
		if err != nil {
			return "", "", err
		}
		sections = append(sections, fmt.Sprintf("%s\n%s", kind, renderResult(res)))
	}

	subject = fmt.Sprintf("%s: listening report for %s", name, time.Now().Format("January 2006"))
	body = strings.Join(sections, "\n")
	return subject, body, nil
}
