// Package searchcfg manages named Gmail search configurations stored in a
// versioned JSON file, including usage statistics and recovery from a
// corrupted store.
package searchcfg

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/teemow/mailbrief/internal/gmail"
	"github.com/teemow/mailbrief/internal/logging"
)

// FileVersion is the current on-disk schema version.
const FileVersion = "1.0"

// SearchConfig is a named, reusable Gmail search.
type SearchConfig struct {
	Name        string     `json:"name"`
	Query       string     `json:"query"`
	Description string     `json:"description,omitempty"`
	MaxResults  int        `json:"max_results,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	UsageCount  int        `json:"usage_count"`
	LastUsed    *time.Time `json:"last_used,omitempty"`
}

// configFile is the on-disk document.
type configFile struct {
	Version string          `json:"version"`
	Configs []*SearchConfig `json:"configs"`
}

// Stats summarizes the stored configurations.
type Stats struct {
	Total        int
	MostUsed     string
	RecentlyUsed string
}

// Manager provides CRUD over the search-config file. All operations are
// safe for concurrent use.
type Manager struct {
	path          string
	validateQuery bool
	mu            sync.Mutex
	logger        *slog.Logger
}

// NewManager creates a manager for the given file path. When validate is
// true, queries are checked before being saved.
func NewManager(path string, validate bool) (*Manager, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("search configs file must not be empty")
	}
	return &Manager{
		path:          path,
		validateQuery: validate,
		logger:        logging.WithService(slog.Default(), "searchcfg"),
	}, nil
}

// load reads the config file, recovering from corruption by backing up the
// damaged file and starting fresh. A missing file yields an empty store.
func (m *Manager) load() (*configFile, error) {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return &configFile{Version: FileVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read search configs: %w", err)
	}

	doc := &configFile{}
	if err := json.Unmarshal(data, doc); err != nil {
		backup := fmt.Sprintf("%s.corrupt.%s", m.path, time.Now().UTC().Format("20060102T150405"))
		if werr := os.WriteFile(backup, data, 0o600); werr != nil {
			return nil, fmt.Errorf("search configs corrupted and backup failed: %w", werr)
		}
		m.logger.Warn("search configs corrupted, starting fresh",
			logging.Path(m.path), slog.String("backup", backup), logging.Err(err))
		return &configFile{Version: FileVersion}, nil
	}

	if doc.Version == "" {
		// Pre-versioned files are adopted as-is.
		doc.Version = FileVersion
	}
	return doc, nil
}

func (m *Manager) save(doc *configFile) error {
	doc.Version = FileVersion
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode search configs: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write search configs: %w", err)
	}
	return nil
}

// Save stores a new configuration. Names must be unique.
func (m *Manager) Save(cfg *SearchConfig) error {
	if err := validateConfig(cfg, m.validateQuery); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.load()
	if err != nil {
		return err
	}
	if findConfig(doc, cfg.Name) != nil {
		return fmt.Errorf("search config %q already exists", cfg.Name)
	}

	now := time.Now().UTC()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	doc.Configs = append(doc.Configs, cfg)

	if err := m.save(doc); err != nil {
		return err
	}
	m.logger.Info("search config saved", slog.String("name", cfg.Name), logging.Query(cfg.Query))
	return nil
}

// Update replaces an existing configuration, preserving its creation time
// and usage counters.
func (m *Manager) Update(cfg *SearchConfig) error {
	if err := validateConfig(cfg, m.validateQuery); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.load()
	if err != nil {
		return err
	}
	existing := findConfig(doc, cfg.Name)
	if existing == nil {
		return fmt.Errorf("search config %q not found", cfg.Name)
	}

	existing.Query = cfg.Query
	existing.Description = cfg.Description
	existing.MaxResults = cfg.MaxResults
	existing.UpdatedAt = time.Now().UTC()

	return m.save(doc)
}

// Get returns the named configuration.
func (m *Manager) Get(name string) (*SearchConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.load()
	if err != nil {
		return nil, err
	}
	cfg := findConfig(doc, name)
	if cfg == nil {
		return nil, fmt.Errorf("search config %q not found", name)
	}
	return cfg, nil
}

// List returns all configurations sorted by name.
func (m *Manager) List() ([]*SearchConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.load()
	if err != nil {
		return nil, err
	}
	sort.Slice(doc.Configs, func(i, j int) bool {
		return doc.Configs[i].Name < doc.Configs[j].Name
	})
	return doc.Configs, nil
}

// Delete removes the named configuration.
func (m *Manager) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.load()
	if err != nil {
		return err
	}
	for i, c := range doc.Configs {
		if c.Name == name {
			doc.Configs = append(doc.Configs[:i], doc.Configs[i+1:]...)
			if err := m.save(doc); err != nil {
				return err
			}
			m.logger.Info("search config deleted", slog.String("name", name))
			return nil
		}
	}
	return fmt.Errorf("search config %q not found", name)
}

// RecordUsage bumps the usage counter for a configuration. Unknown names
// are ignored so ad-hoc queries don't fail the run.
func (m *Manager) RecordUsage(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.load()
	if err != nil {
		return err
	}
	cfg := findConfig(doc, name)
	if cfg == nil {
		return nil
	}
	now := time.Now().UTC()
	cfg.UsageCount++
	cfg.LastUsed = &now
	return m.save(doc)
}

// Stats summarizes stored configurations: total count, the most used name
// and the most recently used name.
func (m *Manager) Stats() (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.load()
	if err != nil {
		return nil, err
	}

	stats := &Stats{Total: len(doc.Configs)}
	var mostUsed *SearchConfig
	var recent *SearchConfig
	for _, c := range doc.Configs {
		if c.UsageCount > 0 && (mostUsed == nil || c.UsageCount > mostUsed.UsageCount) {
			mostUsed = c
		}
		if c.LastUsed != nil && (recent == nil || c.LastUsed.After(*recent.LastUsed)) {
			recent = c
		}
	}
	if mostUsed != nil {
		stats.MostUsed = mostUsed.Name
	}
	if recent != nil {
		stats.RecentlyUsed = recent.Name
	}
	return stats, nil
}

func findConfig(doc *configFile, name string) *SearchConfig {
	for _, c := range doc.Configs {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func validateConfig(cfg *SearchConfig, validateQuery bool) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("config name must not be empty")
	}
	if strings.TrimSpace(cfg.Query) == "" {
		return fmt.Errorf("config query must not be empty")
	}
	if cfg.MaxResults < 0 {
		return fmt.Errorf("max_results must not be negative")
	}
	if validateQuery {
		if err := gmail.ValidateQuery(cfg.Query); err != nil {
			return fmt.Errorf("invalid query: %w", err)
		}
	}
	return nil
}
