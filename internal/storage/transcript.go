package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/teemow/mailbrief/internal/logging"
)

// TranscriptStore reads and writes daily transcript text files.
type TranscriptStore struct {
	dir    string
	logger *slog.Logger
}

// NewTranscriptStore creates a store rooted at dir, creating it if needed.
func NewTranscriptStore(dir string) (*TranscriptStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("transcript directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory %s: %w", dir, err)
	}
	return &TranscriptStore{
		dir:    dir,
		logger: logging.WithService(slog.Default(), "storage"),
	}, nil
}

// Path returns the transcript file path for a date.
func (s *TranscriptStore) Path(date time.Time) string {
	return filepath.Join(s.dir, date.Format(DateFormat)+".txt")
}

// Write saves the transcript for a date, overwriting any earlier version.
func (s *TranscriptStore) Write(date time.Time, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", fmt.Errorf("transcript must not be empty")
	}
	path := s.Path(date)
	if err := os.WriteFile(path, []byte(transcript), 0o600); err != nil {
		return "", fmt.Errorf("failed to write transcript %s: %w", path, err)
	}
	s.logger.Info("transcript written", logging.Path(path),
		slog.Int("bytes", len(transcript)))
	return path, nil
}

// Read loads the transcript for a date.
func (s *TranscriptStore) Read(date time.Time) (string, error) {
	data, err := os.ReadFile(s.Path(date))
	if err != nil {
		return "", fmt.Errorf("failed to read transcript for %s: %w", date.Format(DateFormat), err)
	}
	return string(data), nil
}

// Exists reports whether a transcript exists for the date.
func (s *TranscriptStore) Exists(date time.Time) bool {
	_, err := os.Stat(s.Path(date))
	return err == nil
}

// Size returns the transcript size in bytes, or 0 when absent.
func (s *TranscriptStore) Size(date time.Time) int64 {
	info, err := os.Stat(s.Path(date))
	if err != nil {
		return 0
	}
	return info.Size()
}

// Delete removes the transcript for a date.
func (s *TranscriptStore) Delete(date time.Time) error {
	if err := os.Remove(s.Path(date)); err != nil {
		return fmt.Errorf("failed to delete transcript for %s: %w", date.Format(DateFormat), err)
	}
	return nil
}

// List returns the dates with transcripts, oldest first.
func (s *TranscriptStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcript directory: %w", err)
	}
	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		date := strings.TrimSuffix(name, ".txt")
		if _, err := time.Parse(DateFormat, date); err != nil {
			continue
		}
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}
