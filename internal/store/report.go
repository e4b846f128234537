package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SavedReport is a named report definition a user has stored for reuse and
// scheduled email delivery.
type SavedReport struct {
	User  string
	Name  string
	Email string
	// Kinds is a comma-separated list of report kind names.
	Kinds string
	// Params is the JSON-encoded report parameters shared by all kinds.
	Params string
	Sent   time.Time
}

// SaveReport creates or replaces a named report for a user.
func (s *Store) SaveReport(r SavedReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO Report (user, name, email, kinds, params) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user, name) DO UPDATE SET
		  email = excluded.email,
		  kinds = excluded.kinds,
		  params = excluded.params`,
		r.User, r.Name, r.Email, r.Kinds, r.Params)
	if err != nil {
		return fmt.Errorf("saving report %q: %w", r.Name, err)
	}
	return nil
}

// GetReport fetches a named report. The second return is false when no
// report by that name exists.
func (s *Store) GetReport(user, name string) (SavedReport, bool, error) {
	row := s.db.QueryRow(
		"SELECT user, name, email, kinds, params, sent FROM Report WHERE user = ? AND name = ?",
		user, name)
	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return SavedReport{}, false, nil
	}
	if err != nil {
		return SavedReport{}, false, fmt.Errorf("getting report %q: %w", name, err)
	}
	return r, true, nil
}

// ListReports returns every saved report for a user, ordered by name.
func (s *Store) ListReports(user string) ([]SavedReport, error) {
	rows, err := s.db.Query(
		"SELECT user, name, email, kinds, params, sent FROM Report WHERE user = ? ORDER BY name",
		user)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var out []SavedReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading reports: %w", err)
	}
	return out, nil
}

// DeleteReport removes a named report. Deleting a report that does not
// exist is not an error.
func (s *Store) DeleteReport(user, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM Report WHERE user = ? AND name = ?", user, name); err != nil {
		return fmt.Errorf("deleting report %q: %w", name, err)
	}
	return nil
}

// MarkReportSent records when a report was last emailed.
func (s *Store) MarkReportSent(user, name string, sent time.Time) error {
	_, err := s.db.Exec("UPDATE Report SET sent = ? WHERE user = ? AND name = ?", sent, user, name)
	if err != nil {
		return fmt.Errorf("marking report %q sent: %w", name, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (SavedReport, error) {
	var r SavedReport
	var sent sql.NullTime
	err := row.Scan(&r.User, &r.Name, &r.Email, &r.Kinds, &r.Params, &sent)
	if err != nil {
		return SavedReport{}, err
	}
	if sent.Valid {
		r.Sent = sent.Time
	}
	return r, nil
}
