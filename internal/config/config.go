// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tai-edu/tai/internal/store"
)

// Config holds all application configuration.
type Config struct {
	APIURL      string           `yaml:"api_url"`
	HTTPTimeout time.Duration    `yaml:"http_timeout"` // 0 = no timeout
	Theme       string           `yaml:"theme"`
	DevPort     string           `yaml:"dev_port"`
	State       StateConfig      `yaml:"state"`
	Log         LogConfig        `yaml:"log"`
	Transcript  TranscriptConfig `yaml:"transcript"`
}

// StateConfig selects the local identity store.
type StateConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// LogConfig controls the slog file sink.
type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// TranscriptConfig controls NDJSON chat transcript logging.
type TranscriptConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Dir       string `yaml:"dir"`
	QueueSize int    `yaml:"queue_size"`
}

// Themes accepted by TAI_THEME.
const (
	ThemePaper   = "paper"
	ThemeClassic = "classic"
)

// Default returns the configuration used when nothing is set.
func Default() *Config {
	dir := stateDir()
	return &Config{
		APIURL:  "http://localhost:8000",
		Theme:   ThemePaper,
		DevPort: "8000",
		State: StateConfig{
			Backend: store.BackendFile,
			Path:    filepath.Join(dir, "state.json"),
		},
		Log: LogConfig{
			Path:  filepath.Join(dir, "tai.log"),
			Level: "info",
		},
		Transcript: TranscriptConfig{
			Enabled:   false,
			Dir:       filepath.Join(dir, "transcripts"),
			QueueSize: 1000,
		},
	}
}

// Load reads configuration: defaults, then the YAML file named by
// TAI_CONFIG (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("TAI_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.APIURL = getEnv("TAI_API_URL", cfg.APIURL)
	cfg.HTTPTimeout = getEnvDuration("TAI_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.Theme = getEnv("TAI_THEME", cfg.Theme)
	cfg.DevPort = getEnv("TAI_DEV_PORT", cfg.DevPort)
	cfg.State.Backend = getEnv("TAI_STATE_BACKEND", cfg.State.Backend)
	cfg.State.Path = getEnv("TAI_STATE_PATH", cfg.State.Path)
	cfg.Log.Path = getEnv("TAI_LOG_PATH", cfg.Log.Path)
	cfg.Log.Level = getEnv("TAI_LOG_LEVEL", cfg.Log.Level)
	cfg.Transcript.Enabled = getEnvBool("TAI_TRANSCRIPT_ENABLED", cfg.Transcript.Enabled)
	cfg.Transcript.Dir = getEnv("TAI_TRANSCRIPT_DIR", cfg.Transcript.Dir)
	cfg.Transcript.QueueSize = getEnvInt("TAI_TRANSCRIPT_QUEUE_SIZE", cfg.Transcript.QueueSize)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("TAI_API_URL cannot be empty")
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("TAI_HTTP_TIMEOUT must be >= 0")
	}
	switch c.State.Backend {
	case store.BackendFile, store.BackendSQLite:
		if c.State.Path == "" {
			return fmt.Errorf("TAI_STATE_PATH cannot be empty")
		}
	case store.BackendMemory:
	default:
		return fmt.Errorf("TAI_STATE_BACKEND %q is not one of file, sqlite, memory", c.State.Backend)
	}
	if c.Theme != ThemePaper && c.Theme != ThemeClassic {
		return fmt.Errorf("TAI_THEME %q is not one of paper, classic", c.Theme)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Transcript.Enabled && c.Transcript.Dir == "" {
		return fmt.Errorf("TAI_TRANSCRIPT_DIR cannot be empty")
	}
	if c.Transcript.QueueSize <= 0 {
		return fmt.Errorf("TAI_TRANSCRIPT_QUEUE_SIZE must be > 0")
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("TAI_LOG_LEVEL: %w", err)
	}
	return level, nil
}

// DevAddr is the listen address for the development server.
func (c *Config) DevAddr() string {
	return ":" + strings.TrimPrefix(c.DevPort, ":")
}

// stateDir resolves $XDG_STATE_HOME/tai, falling back to ~/.local/state/tai.
func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "tai")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "tai")
	}
	return filepath.Join(os.TempDir(), "tai")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("30s") or bare seconds ("30").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
