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
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/ademuri/listen-brainz-tools/internal/report"
)

// renderResult formats a report for the terminal. Empty reports come out as
// their status line instead of a bare header.
func renderResult(res *report.Result) string {
	if res.Table.Empty() {
		return res.Status + "\n"
	}

	out := new(bytes.Buffer)
	table := tablewriter.NewWriter(out)
	table.Header(res.Table.Columns)
	for _, row := range res.Table.Rows {
		if err := table.Append(row); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("Error rendering table: %v", err)
	}
	if res.Meta != nil {
		label := "entries"
		if res.Meta.Entity != "" {
			label = res.Meta.Entity + " entries"
		}
		fmt.Fprintf(out, "%d listens across %d %s\n", res.Meta.TotalListens, res.Meta.Entities, label)
	}
	return out.String()
}

// writeCSV writes a report table as CSV, header first.
func writeCSV(w io.Writer, table report.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// emitResult prints a report, or writes it to a CSV file when the command's
// csv flag names one.
func emitResult(res *report.Result, csvPath string) error {
	if csvPath == "" {
		fmt.Println(renderResult(res))
		return nil
	}

	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", csvPath, err)
	}
	defer f.Close()

	if err := writeCSV(f, res.Table); err != nil {
		return err
	}
	fmt.Printf("Wrote %d rows to %s\n", len(res.Table.Rows), csvPath)
	return nil
}
