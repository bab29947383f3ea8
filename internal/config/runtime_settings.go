package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/jmorelli/video-sub-pipeline/internal/language"
	"github.com/jmorelli/video-sub-pipeline/internal/provider"
)

const DefaultRuntimeSettingsFile = "./data/settings.json"

// RuntimeSettings are the knobs adjustable through the API without a restart.
type RuntimeSettings struct {
	DefaultProvider string `json:"default_provider"`
	TargetLanguage  string `json:"target_language"`
	CronExpr        string `json:"cron_expr"`
}

func RuntimeSettingsFilePath() string {
	return getEnvString("SETTINGS_FILE", DefaultRuntimeSettingsFile)
}

func (s RuntimeSettings) Validate(languages language.Set) error {
	if _, err := provider.Parse(s.DefaultProvider); err != nil {
		return err
	}
	if strings.TrimSpace(s.CronExpr) == "" {
		return fmt.Errorf("cron_expr is required")
	}
	if _, err := cron.ParseStandard(s.CronExpr); err != nil {
		return fmt.Errorf("invalid cron_expr: %w", err)
	}
	if err := languages.ValidateTarget(s.TargetLanguage); err != nil {
		return err
	}
	return nil
}

// RuntimeSettings derives the initial runtime settings from the static config.
func (c *Config) RuntimeSettings() RuntimeSettings {
	return RuntimeSettings{
		DefaultProvider: string(c.Providers.DefaultProvider),
		TargetLanguage:  c.Scan.TargetLanguage,
		CronExpr:        c.Scan.CronExpr,
	}
}

func LoadRuntimeSettingsFile(path string) (RuntimeSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeSettings{}, err
	}
	var settings RuntimeSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return RuntimeSettings{}, fmt.Errorf("invalid settings file: %w", err)
	}
	return settings, nil
}

// WriteRuntimeSettingsFile persists settings atomically via a temp file.
func WriteRuntimeSettingsFile(path string, settings RuntimeSettings) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	content, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	content = append(content, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// RuntimeSettingsStore serializes reads and writes of the settings file.
type RuntimeSettingsStore struct {
	path      string
	languages language.Set

	mu      sync.RWMutex
	current RuntimeSettings
}

func NewRuntimeSettingsStore(path string, languages language.Set, initial RuntimeSettings) (*RuntimeSettingsStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("settings file path is required")
	}
	if err := initial.Validate(languages); err != nil {
		return nil, err
	}
	return &RuntimeSettingsStore{
		path:      path,
		languages: languages,
		current:   initial,
	}, nil
}

func (s *RuntimeSettingsStore) GetRuntimeSettings() (RuntimeSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

func (s *RuntimeSettingsStore) UpdateRuntimeSettings(next RuntimeSettings) (RuntimeSettings, error) {
	if err := next.Validate(s.languages); err != nil {
		return RuntimeSettings{}, err
	}
	if err := WriteRuntimeSettingsFile(s.path, next); err != nil {
		return RuntimeSettings{}, err
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return next, nil
}
