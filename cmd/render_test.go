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
	"strings"
	"testing"

	"github.com/ademuri/listen-brainz-tools/internal/report"
)

func TestRenderResultEmpty(t *testing.T) {
	res := &report.Result{
		Table:  report.Table{Columns: []string{"artist"}},
		Status: "no listens in the selected window",
	}
	out := renderResult(res)
	if !strings.Contains(out, "no listens") {
		t.Errorf("renderResult = %q, want the status line", out)
	}
	if strings.Contains(out, "artist") {
		t.Errorf("renderResult = %q, want no bare header", out)
	}
}

func TestRenderResultTable(t *testing.T) {
	res := &report.Result{
		Table: report.Table{
			Columns: []string{"artist", "total_listens"},
			Rows:    [][]string{{"Artist A", "5"}},
		},
		Meta: &report.Meta{Entity: "artist", TotalListens: 5, Entities: 1},
	}
	out := renderResult(res)
	if !strings.Contains(out, "Artist A") {
		t.Errorf("renderResult = %q, want the data row", out)
	}
	if !strings.Contains(out, "5 listens across 1 artist entries") {
		t.Errorf("renderResult = %q, want the summary line", out)
	}
}

func TestWriteCSV(t *testing.T) {
	table := report.Table{
		Columns: []string{"artist", "total_listens"},
		Rows:    [][]string{{"Artist, The", "5"}},
	}
	var buf bytes.Buffer
	if err := writeCSV(&buf, table); err != nil {
		t.Fatalf("writeCSV error: %v", err)
	}

	got := buf.String()
	want := "artist,total_listens\n\"Artist, The\",5\n"
	if got != want {
		t.Errorf("writeCSV = %q, want %q", got, want)
	}
}
