// Package storage persists briefing artifacts: daily YAML summary files,
// plain-text transcripts, and the bookkeeping around them.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teemow/mailbrief/internal/logging"
	"github.com/teemow/mailbrief/internal/summary"
)

// Statuses recorded in daily summary files.
const (
	StatusProcessed = "processed"
	StatusNoEmails  = "no_emails"
)

// DateFormat names artifact files, one per day.
const DateFormat = "2006-01-02"

// DailySummary is the on-disk document for one day of processed emails.
type DailySummary struct {
	Date        string                  `yaml:"date"`
	ProcessedAt time.Time               `yaml:"processed_at"`
	EmailCount  int                     `yaml:"email_count"`
	Status      string                  `yaml:"status"`
	Emails      []*summary.EmailSummary `yaml:"emails,omitempty"`
}

// SummaryStore reads and writes daily YAML summary files in a directory.
type SummaryStore struct {
	dir    string
	logger *slog.Logger
}

// NewSummaryStore creates a store rooted at dir, creating it if needed.
func NewSummaryStore(dir string) (*SummaryStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("summary directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create summary directory %s: %w", dir, err)
	}
	return &SummaryStore{
		dir:    dir,
		logger: logging.WithService(slog.Default(), "storage"),
	}, nil
}

// Path returns the summary file path for a date.
func (s *SummaryStore) Path(date time.Time) string {
	return filepath.Join(s.dir, date.Format(DateFormat)+".yaml")
}

// Write appends the given summaries to the day's file, creating it when
// absent. Running the briefing twice on one day accumulates emails rather
// than overwriting the earlier batch.
func (s *SummaryStore) Write(date time.Time, summaries []*summary.EmailSummary) (string, error) {
	path := s.Path(date)

	doc := &DailySummary{
		Date:   date.Format(DateFormat),
		Status: StatusProcessed,
	}
	if existing, err := s.Read(date); err == nil {
		doc.Emails = existing.Emails
	}

	doc.Emails = append(doc.Emails, summaries...)
	doc.EmailCount = len(doc.Emails)
	doc.ProcessedAt = time.Now().UTC()
	if doc.EmailCount == 0 {
		doc.Status = StatusNoEmails
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode daily summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write summary file %s: %w", path, err)
	}

	s.logger.Info("daily summary written",
		logging.Path(path), logging.EmailCount(doc.EmailCount))
	return path, nil
}

// WriteEmpty records a day with no matching emails so the run leaves a
// trace either way.
func (s *SummaryStore) WriteEmpty(date time.Time) (string, error) {
	return s.Write(date, nil)
}

// Read loads the summary file for a date.
func (s *SummaryStore) Read(date time.Time) (*DailySummary, error) {
	data, err := os.ReadFile(s.Path(date))
	if err != nil {
		return nil, fmt.Errorf("failed to read summary for %s: %w", date.Format(DateFormat), err)
	}
	doc := &DailySummary{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse summary for %s: %w", date.Format(DateFormat), err)
	}
	return doc, nil
}

// Exists reports whether a summary file exists for the date.
func (s *SummaryStore) Exists(date time.Time) bool {
	_, err := os.Stat(s.Path(date))
	return err == nil
}

// Delete removes the summary file for a date.
func (s *SummaryStore) Delete(date time.Time) error {
	if err := os.Remove(s.Path(date)); err != nil {
		return fmt.Errorf("failed to delete summary for %s: %w", date.Format(DateFormat), err)
	}
	return nil
}

// List returns the dates with summary files, oldest first.
func (s *SummaryStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list summary directory: %w", err)
	}
	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		date := strings.TrimSuffix(name, ".yaml")
		if _, err := time.Parse(DateFormat, date); err != nil {
			continue
		}
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}
