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
	"strconv"
	"strings"

	"github.com/ademuri/listen-brainz-tools/internal/report"
)

// parseDaysRange reads an age window from a flag value. "90" means the last
// 90 days; "30:90" means between 30 and 90 days ago; empty means no window.
func parseDaysRange(s string) (report.Days, error) {
	if s == "" {
		return report.Days{}, nil
	}

	if start, end, ok := strings.Cut(s, ":"); ok {
		startDays, err := parseDays(start)
		if err != nil {
			return report.Days{}, err
		}
		endDays, err := parseDays(end)
		if err != nil {
			return report.Days{}, err
		}
		if endDays <= startDays {
			return report.Days{}, fmt.Errorf("invalid day range %q: end must be after start", s)
		}
		return report.Days{Start: startDays, End: endDays}, nil
	}

	days, err := parseDays(s)
	if err != nil {
		return report.Days{}, err
	}
	if days == 0 {
		return report.Days{}, fmt.Errorf("invalid day range %q: must be positive", s)
	}
	return report.Days{End: days}, nil
}

func parseDays(s string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || days < 0 {
		return 0, fmt.Errorf("invalid day count %q", s)
	}
	return days, nil
}
