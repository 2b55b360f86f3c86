// Package config handles qboxup configuration parsing and location resolution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/qbox-app/qboxup/internal/release"
)

// Defaults used when no config file is found or a field is left empty.
const (
	DefaultOwner      = "qbox-app"
	DefaultRepository = "qbox"
	DefaultTimeout    = "15s"
	DefaultListen     = "127.0.0.1:8787"
	DefaultCacheTTL   = "5m"
	DefaultLogLevel   = "info"
	DefaultKeep       = 3
)

// TokenEnv is the environment variable holding the API token.
const TokenEnv = "GITHUB_TOKEN"

// Repository identifies where releases are published.
type Repository struct {
	Owner string `yaml:"owner" toml:"owner" json:"owner"`
	Name  string `yaml:"name" toml:"name" json:"name"`
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// Updates configures the in-app updater.
type Updates struct {
	Enabled      *bool  `yaml:"enabled,omitempty" toml:"enabled,omitempty" json:"enabled,omitempty"`
	DownloadDir  string `yaml:"download_dir,omitempty" toml:"download_dir,omitempty" json:"download_dir,omitempty"`
	CheckOnStart bool   `yaml:"check_on_start,omitempty" toml:"check_on_start,omitempty" json:"check_on_start,omitempty"`
	// Keep is how many downloaded installers survive a prune. Unset means
	// DefaultKeep; 0 keeps none.
	Keep *int `yaml:"keep,omitempty" toml:"keep,omitempty" json:"keep,omitempty"`
}

// HTTP configures outbound requests.
type HTTP struct {
	Timeout string `yaml:"timeout,omitempty" toml:"timeout,omitempty" json:"timeout,omitempty"`
}

// Server configures `qboxup serve`.
type Server struct {
	Listen   string `yaml:"listen,omitempty" toml:"listen,omitempty" json:"listen,omitempty"`
	CacheTTL string `yaml:"cache_ttl,omitempty" toml:"cache_ttl,omitempty" json:"cache_ttl,omitempty"`
}

// Log configures diagnostic logging.
type Log struct {
	Level string `yaml:"level,omitempty" toml:"level,omitempty" json:"level,omitempty"`
	Color *bool  `yaml:"color,omitempty" toml:"color,omitempty" json:"color,omitempty"`
}

// Config represents the parsed configuration file.
type Config struct {
	Repository   Repository `yaml:"repository" toml:"repository" json:"repository"`
	ReleasesPage string     `yaml:"releases_page,omitempty" toml:"releases_page,omitempty" json:"releases_page,omitempty"`
	APIBaseURL   string     `yaml:"api_base_url,omitempty" toml:"api_base_url,omitempty" json:"api_base_url,omitempty"`
	Updates      Updates    `yaml:"updates" toml:"updates" json:"updates"`
	HTTP         HTTP       `yaml:"http" toml:"http" json:"http"`
	Server       Server     `yaml:"server" toml:"server" json:"server"`
	Log          Log        `yaml:"log" toml:"log" json:"log"`

	// Token comes from the environment only.
	Token string `yaml:"-" toml:"-" json:"-"`
	// Path is the file the config was loaded from, empty for defaults.
	Path string `yaml:"-" toml:"-" json:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	c.Token = os.Getenv(TokenEnv)
	return c
}

func (c *Config) applyDefaults() {
	if c.Repository.Owner == "" {
		c.Repository.Owner = DefaultOwner
	}
	if c.Repository.Name == "" {
		c.Repository.Name = DefaultRepository
	}
	if c.ReleasesPage == "" {
		c.ReleasesPage = release.ReleasesPageURL(c.Repository.Owner, c.Repository.Name)
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = release.DefaultBaseURL
	}
	if c.Updates.DownloadDir == "" {
		c.Updates.DownloadDir = defaultDownloadDir()
	}
	if c.HTTP.Timeout == "" {
		c.HTTP.Timeout = DefaultTimeout
	}
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.Server.CacheTTL == "" {
		c.Server.CacheTTL = DefaultCacheTTL
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

func defaultDownloadDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "qboxup", "downloads")
	}
	return filepath.Join(os.TempDir(), "qboxup", "downloads")
}

// UpdatesEnabled reports whether the updater capability is on. It defaults
// to true.
func (c *Config) UpdatesEnabled() bool {
	return c.Updates.Enabled == nil || *c.Updates.Enabled
}

// KeepInstallers returns how many installers a prune keeps.
func (c *Config) KeepInstallers() int {
	if c.Updates.Keep == nil {
		return DefaultKeep
	}
	return *c.Updates.Keep
}

// Timeout returns the HTTP client timeout. Call Validate first; an invalid
// value falls back to the default.
func (c *Config) Timeout() time.Duration {
	return durationOr(c.HTTP.Timeout, DefaultTimeout)
}

// CacheTTL returns how long the server caches the latest release.
func (c *Config) CacheTTL() time.Duration {
	return durationOr(c.Server.CacheTTL, DefaultCacheTTL)
}

func durationOr(value, fallback string) time.Duration {
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}

// ConfigDirs returns the directories searched for a config file, in order.
func ConfigDirs() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine home directory: %w", err)
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		filepath.Join(xdgConfig, "qboxup"),
		filepath.Join(home, ".qboxup"),
	}, nil
}

// fileNames are the accepted config file names in each directory.
var fileNames = []string{
	"qboxup.yaml",
	"qboxup.yml",
	"qboxup.toml",
	"qboxup.json",
	"config.yaml",
	"config.toml",
	"config.json",
}

// Find searches for a config file in the standard locations. It returns ""
// with no error when nothing is found, since defaults are used then.
func Find(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("specified config not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	if envPath := os.Getenv("QBOXUP_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	dirs, err := ConfigDirs()
	if err != nil {
		return "", err
	}

	for _, dir := range dirs {
		for _, name := range fileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	return "", nil
}

// Load reads, parses and validates the config at path. An empty path yields
// the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	format := detectFormat(path, content)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unable to detect file format for %s", path)
	}

	cfg, err := parse(content, format)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	cfg.Token = os.Getenv(TokenEnv)
	cfg.applyDefaults()

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindAndLoad combines Find and Load.
func FindAndLoad(explicitPath string) (*Config, error) {
	path, err := Find(explicitPath)
	if err != nil {
		return nil, err
	}
	return Load(path)
}
