package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "GOVNEWS_CONFIG"
	feedURLEnv      = "GOVNEWS_FEED_URL"
	databasePathEnv = "GOVNEWS_DATABASE_PATH"
	httpTimeoutEnv  = "GOVNEWS_HTTP_TIMEOUT"
	logLevelEnv     = "GOVNEWS_LOG_LEVEL"
	reportEnv       = "GOVNEWS_REPORT"
)

// Config holds high-level settings required across the application.
type Config struct {
	Feed     FeedConfig     `yaml:"feed"`
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	Logging  LoggingConfig  `yaml:"logging"`
	Report   ReportConfig   `yaml:"report"`
}

// FeedConfig points at the single Atom feed to ingest.
type FeedConfig struct {
	URL string `yaml:"url"`
}

// DatabaseConfig locates the SQLite file; the parent directory is created
// on first run.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// HTTPConfig bounds outbound requests to the feed and article pages.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig selects the slog level by name.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ReportConfig controls the post-run text report.
type ReportConfig struct {
	Enabled  bool `yaml:"enabled"`
	TopWords int  `yaml:"topWords"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(feedURLEnv); v != "" {
		c.Feed.URL = v
	}

	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(httpTimeoutEnv); v != "" {
		if d, err := time.ParseDuration(v); err != nil {
			log.Printf("config: invalid %s %q: %v (keeping %s)", httpTimeoutEnv, v, err, c.HTTP.Timeout)
		} else {
			c.HTTP.Timeout = d
		}
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(reportEnv); v != "" {
		c.Report.Enabled = v == "1" || v == "true"
	}
}

func mergeConfig(base, override Config) Config {
	if override.Feed.URL != "" {
		base.Feed = override.Feed
	}

	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.HTTP.Timeout > 0 {
		base.HTTP = override.HTTP
	}

	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Report.Enabled {
		base.Report.Enabled = true
	}
	if override.Report.TopWords > 0 {
		base.Report.TopWords = override.Report.TopWords
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Feed:     FeedConfig{URL: "https://www.gov.uk/search/news-and-communications.atom"},
		Database: DatabaseConfig{Path: "data/gov_uk_news.db"},
		HTTP:     HTTPConfig{Timeout: 20 * time.Second},
		Logging:  LoggingConfig{Level: "info"},
		Report:   ReportConfig{Enabled: false, TopWords: 30},
	}
}
