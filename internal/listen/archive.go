package listen

import (
	"archive/zip"
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Export holds the contents of a ListenBrainz export archive.
type Export struct {
	UserName string
	Listens  []Raw
	Feedback []Feedback

	// SkippedLines counts archive lines that failed to parse and were
	// dropped.
	SkippedLines int
}

// ReadArchive parses a ListenBrainz export ZIP: user.json, an optional
// feedback.jsonl, and any listens/*.jsonl streams. Malformed lines are
// skipped and counted, never fatal; a missing user.json just leaves the
// name empty.
func ReadArchive(path string) (*Export, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer zr.Close()

	export := &Export{}
	for _, f := range zr.File {
		switch {
		case f.Name == "user.json":
			if err := readUserInfo(f, export); err != nil {
				return nil, err
			}

		case f.Name == "feedback.jsonl":
			if err := readLines(f, func(line []byte) bool {
				var fb Feedback
				if json.Unmarshal(line, &fb) != nil {
					return false
				}
				export.Feedback = append(export.Feedback, fb)
				return true
			}, &export.SkippedLines); err != nil {
				return nil, err
			}

		case strings.HasPrefix(f.Name, "listens/") && strings.HasSuffix(f.Name, ".jsonl"):
			if err := readLines(f, func(line []byte) bool {
				var raw Raw
				if json.Unmarshal(line, &raw) != nil {
					return false
				}
				export.Listens = append(export.Listens, raw)
				return true
			}, &export.SkippedLines); err != nil {
				return nil, err
			}
		}
	}

	return export, nil
}

func readUserInfo(f *zip.File, export *Export) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	var info map[string]any
	if err := json.NewDecoder(rc).Decode(&info); err != nil {
		// A mangled user.json just means no username.
		return nil
	}
	for _, key := range []string{"musicbrainz_id", "user_name", "username", "name"} {
		if v, ok := info[key].(string); ok && v != "" {
			export.UserName = v
			return nil
		}
	}
	return nil
}

func readLines(f *zip.File, parse func(line []byte) bool, skipped *int) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !parse([]byte(line)) {
			*skipped++
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return nil
}
