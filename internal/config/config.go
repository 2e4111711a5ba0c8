package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// StateBackend selects where the timer mirrors its session and stack.
type StateBackend string

const (
	BackendSQLite StateBackend = "sqlite"
	BackendFile   StateBackend = "file"
)

// Config holds everything the binary needs to wire itself.
type Config struct {
	DBPath        string       `yaml:"db"`
	StateBackend  StateBackend `yaml:"state_backend"`
	StateDir      string       `yaml:"state_dir"`
	APIURL        string       `yaml:"api_url"`
	APIToken      string       `yaml:"api_token"`
	HTTPTimeoutMs int          `yaml:"http_timeout_ms"`
	MaxRetries    int          `yaml:"max_retries"`
	LogCalls      bool         `yaml:"log_calls"`
	Listen        string       `yaml:"listen"`
	RefreshMs     int          `yaml:"refresh_ms"`
	RateLimit     int          `yaml:"rate_limit_per_minute"`
}

// DefaultConfig returns a Config rooted at ~/.efficiency (or the working
// directory when no home directory is known).
func DefaultConfig() Config {
	home := homeDir()
	return Config{
		DBPath:        filepath.Join(home, "efficiency.db"),
		StateBackend:  BackendSQLite,
		StateDir:      filepath.Join(home, "state"),
		APIURL:        "http://localhost:8000/api",
		HTTPTimeoutMs: 10000,
		MaxRetries:    1,
		Listen:        "127.0.0.1:7411",
		RefreshMs:     1000,
		RateLimit:     120,
	}
}

// Load applies, in order: defaults, the YAML file named by
// EFFICIENCY_CONFIG (or ~/.efficiency/config.yaml when present), then
// environment variables. A missing default file is not an error; a file
// with unknown keys is.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("EFFICIENCY_CONFIG")
	explicit := path != ""
	if !explicit {
		path = filepath.Join(homeDir(), "config.yaml")
	}
	if err := cfg.mergeFile(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return cfg, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode overlays YAML from r onto c. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := c.Decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("EFFICIENCY_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("EFFICIENCY_STATE_BACKEND"); v != "" {
		if b := StateBackend(strings.ToLower(v)); b == BackendSQLite || b == BackendFile {
			c.StateBackend = b
		}
	}
	if v := os.Getenv("EFFICIENCY_STATE_DIR"); v != "" {
		c.StateDir = v
	}
	if v := os.Getenv("EFFICIENCY_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("EFFICIENCY_API_TOKEN"); v != "" {
		c.APIToken = v
	}
	if v := os.Getenv("EFFICIENCY_HTTP_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.HTTPTimeoutMs = n
		}
	}
	if v := os.Getenv("EFFICIENCY_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("EFFICIENCY_LOG_CALLS"); v != "" {
		c.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("EFFICIENCY_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("EFFICIENCY_REFRESH_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RefreshMs = n
		}
	}
}

// Validate rejects values a file could set but the binary cannot use.
func (c Config) Validate() error {
	switch c.StateBackend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("state_backend %q: must be sqlite or file", c.StateBackend)
	}
	if c.APIURL == "" {
		return errors.New("api_url must be set")
	}
	if c.HTTPTimeoutMs <= 0 {
		return fmt.Errorf("http_timeout_ms %d: must be positive", c.HTTPTimeoutMs)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries %d: must not be negative", c.MaxRetries)
	}
	if c.RefreshMs <= 0 {
		return fmt.Errorf("refresh_ms %d: must be positive", c.RefreshMs)
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".efficiency"
	}
	return filepath.Join(home, ".efficiency")
}
