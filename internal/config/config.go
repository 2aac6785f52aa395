package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the client needs to reach the controller backend.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	// CatalogPath replaces the built-in rule catalog when set.
	CatalogPath string    `yaml:"catalog"`
	Log         LogConfig `yaml:"log"`
}

type BackendConfig struct {
	URL        string        `yaml:"url"`
	EventsID   string        `yaml:"events_id"`
	Timeout    time.Duration `yaml:"timeout"`
	RetryCount int           `yaml:"retry_count"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:      "http://localhost:3001",
			EventsID: "1",
			Timeout:  10 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads the optional YAML file at path over the defaults, then applies
// PILC_* environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config yaml: %w", err)
		}
	}
	if err := cfg.LoadFromEnv("PILC"); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv overrides fields from prefix_* variables.
func (c *Config) LoadFromEnv(prefix string) error {
	if url := os.Getenv(prefix + "_BACKEND_URL"); url != "" {
		c.Backend.URL = url
	}
	if id := os.Getenv(prefix + "_EVENTS_ID"); id != "" {
		c.Backend.EventsID = id
	}
	if timeout := os.Getenv(prefix + "_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("%s_TIMEOUT: %w", prefix, err)
		}
		c.Backend.Timeout = d
	}
	if retry := os.Getenv(prefix + "_RETRY_COUNT"); retry != "" {
		n, err := strconv.Atoi(retry)
		if err != nil {
			return fmt.Errorf("%s_RETRY_COUNT: %w", prefix, err)
		}
		c.Backend.RetryCount = n
	}
	if catalog := os.Getenv(prefix + "_CATALOG"); catalog != "" {
		c.CatalogPath = catalog
	}
	if level := os.Getenv(prefix + "_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv(prefix + "_LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url cannot be empty")
	}
	if c.Backend.EventsID == "" {
		return fmt.Errorf("backend.events_id cannot be empty")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive, got %s", c.Backend.Timeout)
	}
	if c.Backend.RetryCount < 0 {
		return fmt.Errorf("backend.retry_count cannot be negative")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}
