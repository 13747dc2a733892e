package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Source describes one configured feed. Immutable during a run.
type Source struct {
	Key     string `yaml:"key"`
	Title   string `yaml:"title"`
	Type    string `yaml:"type"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type Config struct {
	// Storage
	DatabaseURL string

	// Sources
	SourcesConfigPath string

	// Ingestion settings
	LimitPerSource      int
	DedupRecentLimit    int
	DedupThreshold      int
	SummaryMaxSentences int
	RequestTimeout      time.Duration
	RetryAttempts       int
	RetryDelay          time.Duration

	// App settings
	RefreshMinutes int
	Debug          bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		LimitPerSource:      20,
		DedupRecentLimit:    300,
		DedupThreshold:      88,
		SummaryMaxSentences: 3,
		RequestTimeout:      15 * time.Second,
		RetryAttempts:       3,
		RetryDelay:          500 * time.Millisecond,
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", "")

	cfg.LimitPerSource = getEnvIntOrDefault("LIMIT_PER_SOURCE", cfg.LimitPerSource)
	cfg.DedupRecentLimit = getEnvIntOrDefault("DEDUP_RECENT_LIMIT", cfg.DedupRecentLimit)
	cfg.DedupThreshold = getEnvIntOrDefault("DEDUP_THRESHOLD", cfg.DedupThreshold)
	cfg.SummaryMaxSentences = getEnvIntOrDefault("SUMMARY_MAX_SENTENCES", cfg.SummaryMaxSentences)
	cfg.RefreshMinutes = getEnvIntOrDefault("REFRESH_MINUTES", 0)

	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("RETRY_ATTEMPTS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RetryAttempts = val
		}
	}
	if v := os.Getenv("RETRY_DELAY_MS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RetryDelay = time.Duration(val) * time.Millisecond
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DedupThreshold < 0 || c.DedupThreshold > 100 {
		return fmt.Errorf("DEDUP_THRESHOLD must be between 0 and 100")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// sourcesFile is the YAML config structure
// sources:
//   - key: habr_dev
//     title: Habr — Разработка
//     type: rss
//     url: https://habr.com/ru/rss/hub/develop/
//     enabled: true
type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads the source registry from a YAML file. An empty path
// yields the built-in defaults.
func LoadSources(path string) ([]Source, error) {
	if path == "" {
		return DefaultSources(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sources config: %w", err)
	}
	defer f.Close()

	var file sourcesFile
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse sources config: %w", err)
	}
	if len(file.Sources) == 0 {
		return DefaultSources(), nil
	}
	return file.Sources, nil
}

// DefaultSources is the built-in registry of Russian tech news feeds.
func DefaultSources() []Source {
	return []Source{
		{Key: "vc_all", Title: "VC.ru — Все", Type: "rss", URL: "https://vc.ru/rss/all", Enabled: true},
		{Key: "habr_dev", Title: "Habr — Разработка", Type: "rss", URL: "https://habr.com/ru/rss/hub/develop/", Enabled: true},
		{Key: "habr_ai", Title: "Habr — Искусственный интеллект", Type: "rss", URL: "https://habr.com/ru/rss/hub/artificial_intelligence/", Enabled: true},
		{Key: "habr_infosec", Title: "Habr — Информационная безопасность", Type: "rss", URL: "https://habr.com/ru/rss/hub/infosecurity/", Enabled: true},
		{Key: "habr_management", Title: "Habr — Управление IT", Type: "rss", URL: "https://habr.com/ru/rss/hub/management/", Enabled: true},
		{Key: "tproger", Title: "Tproger", Type: "rss", URL: "https://tproger.ru/feed", Enabled: true},
		{Key: "3dnews", Title: "3DNews — Новости", Type: "rss", URL: "https://3dnews.ru/news/rss", Enabled: true},
	}
}
