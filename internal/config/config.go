// Package config loads the client configuration from
// ~/.certa/configs/certa.yaml, an optional .env file and CERTA_*
// environment variables, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"certa/pkg/appapi"
)

const configHeader = `# certa client configuration
# Path: ~/.certa/configs/certa.yaml
#
# Backend accounts live in KeePass under backend/<environment>/<name>:
#   Title    → account display name
#   URL      → API base URL (e.g. "https://api.clinic.example/v1")
#   UserName → therapist login
#   Password → API token
#   Custom Attributes:
#     therapist_id → default therapist for new certifications
#     timezone     → IANA zone used to expand schedules
#
# Environment overrides: CERTA_API_URL, CERTA_API_TOKEN, CERTA_TIMEOUT,
# CERTA_DOWNLOAD_DIR, CERTA_TIMEZONE.
`

// Env variable names.
const (
	EnvAPIURL      = "CERTA_API_URL"
	EnvAPIToken    = "CERTA_API_TOKEN"
	EnvTimeout     = "CERTA_TIMEOUT"
	EnvDownloadDir = "CERTA_DOWNLOAD_DIR"
	EnvTimezone    = "CERTA_TIMEZONE"
)

// Config is the YAML document plus the values only env can supply.
type Config struct {
	API          APIConfig   `yaml:"api"`
	Account      string      `yaml:"account"`
	Environments []EnvToggle `yaml:"environments"`
	DownloadDir  string      `yaml:"download_dir"`
	Timezone     string      `yaml:"timezone"`
	UI           UIConfig    `yaml:"ui"`
	Debug        DebugConfig `yaml:"debug"`

	// Token is never written to disk.
	Token string `yaml:"-"`
}

// APIConfig is the fallback backend when no KeePass account is selected.
type APIConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// EnvToggle enables or disables a KeePass environment group.
type EnvToggle struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
}

type UIConfig struct {
	PageSize        int  `yaml:"page_size"`
	ConfirmDeletes  bool `yaml:"confirm_deletes"`
	PreviewSessions int  `yaml:"preview_sessions"`
}

type DebugConfig struct {
	Enabled     bool `yaml:"enabled"`
	LogAPICalls bool `yaml:"log_api_calls"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		API: APIConfig{TimeoutSeconds: 30},
		Environments: []EnvToggle{
			{Name: "production", Enabled: true},
			{Name: "staging", Enabled: true},
			{Name: "development", Enabled: true},
		},
		DownloadDir: filepath.Join(appapi.CertaDir(), "downloads"),
		UI: UIConfig{
			PageSize:        50,
			ConfirmDeletes:  true,
			PreviewSessions: 6,
		},
	}
}

// Load reads path (DefaultConfigPath when empty), writing the default
// document first if the file does not exist. Env overrides are applied.
func Load(path string) (*Config, error) {
	if path == "" {
		path = appapi.DefaultConfigPath()
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := Write(path, Default()); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a YAML document on top of Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Write stores cfg at path with the explanatory header.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader+"\n"), body...), 0o644)
}

// LoadEnvFile loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. An empty path means ".env" in
// the working directory; a missing default file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from CERTA_* variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.URL = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		secs, err := strconv.Atoi(strings.TrimSuffix(v, "s"))
		if err != nil || secs <= 0 {
			return fmt.Errorf("%s: expected a positive number of seconds, got %q", EnvTimeout, v)
		}
		c.API.TimeoutSeconds = secs
	}
	if v := os.Getenv(EnvDownloadDir); v != "" {
		c.DownloadDir = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Timezone = v
	}
	return c.Validate()
}

// Validate rejects values the client cannot run with.
func (c *Config) Validate() error {
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive")
	}
	if c.UI.PageSize < 0 {
		return fmt.Errorf("ui.page_size must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Timeout is the HTTP client timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// Location resolves Timezone, defaulting to the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// EnabledEnvironments is the set of KeePass environments to read accounts from.
func (c *Config) EnabledEnvironments() map[string]bool {
	m := make(map[string]bool, len(c.Environments))
	for _, e := range c.Environments {
		if e.Enabled {
			m[e.Name] = true
		}
	}
	return m
}
