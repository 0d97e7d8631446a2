package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by every rbxmanager workflow.
type Config struct {
	// ReleasesAPIURL is the HTTP endpoint listing RbxPI releases as JSON.
	ReleasesAPIURL string `yaml:"releases_api_url"`
	// ReleasesHost is the base URL assets and source archives are served from.
	ReleasesHost string `yaml:"releases_host"`
	// Owner is the account owning the RbxPI repository.
	Owner string `yaml:"owner"`
	// Repo is the RbxPI repository name.
	Repo string `yaml:"repo"`
	// CacheFile is the path of the JSON release cache.
	CacheFile string `yaml:"cache_file"`
	// LogFile is the path of the rotating log file.
	LogFile string `yaml:"log_file"`
	// FetchTimeout bounds the release list request.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	// DownloadTimeout bounds asset and archive downloads.
	DownloadTimeout time.Duration `yaml:"download_timeout"`
}

const (
	// DefaultConfigFilename is the default filename for rbxmanager settings.
	DefaultConfigFilename = "rbxmanager-settings.yaml"

	// DefaultOwner and DefaultRepo point at the upstream RbxPI repository.
	DefaultOwner = "rbxpi"
	DefaultRepo  = "rbxpi-core"

	// DefaultReleasesHost is where release assets and tag archives live.
	DefaultReleasesHost = "https://github.com"

	// DefaultFetchTimeout bounds the release metadata request.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultDownloadTimeout bounds file downloads.
	DefaultDownloadTimeout = 15 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errRepositoryRequired is returned when owner or repo is missing.
	errRepositoryRequired = errors.New("repository owner and name must be provided")
)

// Default returns the built-in settings pointing at the upstream RbxPI repository.
// The manager is expected to work with no configuration file at all.
func Default() *Config {
	cfg := &Config{
		Owner:        DefaultOwner,
		Repo:         DefaultRepo,
		ReleasesHost: DefaultReleasesHost,
	}
	fillDefaults(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
// A missing file is not an error: the manager falls back to built-in defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Owner == "" || cfg.Repo == "" {
		return errRepositoryRequired
	}

	fillDefaults(cfg)

	if _, err := url.ParseRequestURI(cfg.ReleasesAPIURL); err != nil {
		return fmt.Errorf("invalid releases API URL: %w", err)
	}

	if _, err := url.ParseRequestURI(cfg.ReleasesHost); err != nil {
		return fmt.Errorf("invalid releases host: %w", err)
	}

	return nil
}

// fillDefaults completes optional fields so callers never see empty settings.
func fillDefaults(cfg *Config) {
	if cfg.ReleasesHost == "" {
		cfg.ReleasesHost = DefaultReleasesHost
	}

	if cfg.ReleasesAPIURL == "" {
		cfg.ReleasesAPIURL = fmt.Sprintf("https://api.github.com/repos/%s/%s/releases", cfg.Owner, cfg.Repo)
	}

	if cfg.CacheFile == "" {
		cfg.CacheFile = filepath.Join(dataDirectory(), "data.json")
	}

	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(dataDirectory(), "logs", "rbxmanager.log")
	}

	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}

	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = DefaultDownloadTimeout
	}
}

// dataDirectory is where the cache and logs live by default.
func dataDirectory() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = "."
	}

	return filepath.Join(base, "rbxmanager")
}
