package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Service   ServiceConfig   `toml:"service" validate:"required"`
	Watch     WatchConfig     `toml:"watch"`
	Logging   LoggingConfig   `toml:"logging"`
	Storage   StorageConfig   `toml:"storage"`
	Scheduler SchedulerConfig `toml:"scheduler"`
}

// ServiceConfig points the client at the harvesting service
type ServiceConfig struct {
	BaseURL   string `toml:"base_url" validate:"required,url"`
	APIKey    string `toml:"api_key"`
	Timeout   string `toml:"timeout"`    // e.g. "30s" - HTTP client timeout
	RateLimit int    `toml:"rate_limit"` // Requests per second against the service
}

// WatchConfig selects which records the monitor observes
type WatchConfig struct {
	DossierID string `toml:"dossier_id"` // Dossier whose gap analysis is watched
	PaperID   string `toml:"paper_id"`   // Paper whose citations are watched
	Thinker   string `toml:"thinker"`    // Thinker whose bibliography is loaded as reference
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents the snapshot-cache database configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete cached snapshots on startup
}

// SchedulerConfig controls the periodic analysis refresh
type SchedulerConfig struct {
	Enabled      bool   `toml:"enabled"`
	Schedule     string `toml:"schedule"`      // Cron schedule format
	ForceRefresh bool   `toml:"force_refresh"` // Pass force_refresh on scheduled runs
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL:   "http://localhost:8085",
			Timeout:   "30s",
			RateLimit: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/messis",
			},
		},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Schedule: "0 */6 * * *", // Every 6 hours
		},
	}
}

// LoadFromFiles loads configuration from defaults, then each file in order,
// then environment variables. Later sources override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies MESSIS_* environment variables on top of file config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("MESSIS_SERVICE_URL"); v != "" {
		config.Service.BaseURL = v
	}
	if v := os.Getenv("MESSIS_API_KEY"); v != "" {
		config.Service.APIKey = v
	}
	if v := os.Getenv("MESSIS_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("MESSIS_BADGER_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("MESSIS_DOSSIER_ID"); v != "" {
		config.Watch.DossierID = v
	}
	if v := os.Getenv("MESSIS_PAPER_ID"); v != "" {
		config.Watch.PaperID = v
	}
	if v := os.Getenv("MESSIS_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Service.RateLimit = n
		}
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority)
func ApplyFlagOverrides(config *Config, serviceURL, dossierID, paperID string) {
	if serviceURL != "" {
		config.Service.BaseURL = serviceURL
	}
	if dossierID != "" {
		config.Watch.DossierID = dossierID
	}
	if paperID != "" {
		config.Watch.PaperID = paperID
	}
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := c.ServiceTimeout(); err != nil {
		return fmt.Errorf("invalid service timeout %q: %w", c.Service.Timeout, err)
	}

	level := strings.ToLower(c.Logging.Level)
	switch level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}

	if c.Scheduler.Enabled {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(c.Scheduler.Schedule); err != nil {
			return fmt.Errorf("invalid scheduler schedule %q: %w", c.Scheduler.Schedule, err)
		}
		if c.Watch.DossierID == "" {
			return fmt.Errorf("scheduler requires watch.dossier_id to be set")
		}
	}

	return nil
}

// ServiceTimeout returns the parsed HTTP client timeout
func (c *Config) ServiceTimeout() (time.Duration, error) {
	if c.Service.Timeout == "" {
		return 30 * time.Second, nil
	}
	return time.ParseDuration(c.Service.Timeout)
}
