package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	// DefaultBaseURL is the default auth service API base path.
	DefaultBaseURL = "http://localhost:3001/api"

	// DefaultPlatformCode is the master platform used for console logins.
	DefaultPlatformCode = "auth_tgoo"

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 10 * time.Second

	// envPrefix is the prefix for environment variable overrides,
	// e.g. AUTHADM_API_BASE_URL overrides api.base_url.
	envPrefix = "AUTHADM"
)

// Config is the root configuration for authadm.
type Config struct {
	Global Global       `yaml:"global" mapstructure:"global"`
	API    API          `yaml:"api" mapstructure:"api"`
	Audit  *Audit       `yaml:"audit,omitempty" mapstructure:"audit"`
	Export ExportConfig `yaml:"export,omitempty" mapstructure:"export"`
}

// Global contains settings shared by every command.
type Global struct {
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`

	// StateDir holds the persisted session snapshot and, with the sqlite
	// driver, the audit database. Empty means a per-user default.
	StateDir string `yaml:"state_dir,omitempty" mapstructure:"state_dir"`
}

// API contains auth service connection settings.
type API struct {
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	PlatformCode string        `yaml:"platform_code" mapstructure:"platform_code"`
	Timeout      time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`

	// RequestsPerMinute throttles outgoing requests when > 0.
	RequestsPerMinute int `yaml:"requests_per_minute,omitempty" mapstructure:"requests_per_minute"`
}

// Audit configures the local audit trail of admin mutations.
type Audit struct {
	Enabled  bool           `yaml:"enabled" mapstructure:"enabled"`
	Driver   string         `yaml:"driver" mapstructure:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty" mapstructure:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres,omitempty" mapstructure:"postgres"`
}

// SQLiteConfig contains SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
	SSLMode  string `yaml:"ssl_mode,omitempty" mapstructure:"ssl_mode"`
}

// ExportConfig contains report export settings.
type ExportConfig struct {
	Dir string          `yaml:"dir,omitempty" mapstructure:"dir"`
	S3  *S3UploadConfig `yaml:"s3,omitempty" mapstructure:"s3"`
}

// S3UploadConfig contains S3 settings for uploading exported reports.
type S3UploadConfig struct {
	Enabled         bool   `yaml:"enabled" mapstructure:"enabled"`
	EndpointURL     string `yaml:"endpoint_url,omitempty" mapstructure:"endpoint_url"`
	Region          string `yaml:"region,omitempty" mapstructure:"region"`
	Bucket          string `yaml:"bucket" mapstructure:"bucket"`
	Prefix          string `yaml:"prefix,omitempty" mapstructure:"prefix"`
	AccessKeyID     string `yaml:"access_key_id,omitempty" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" mapstructure:"secret_access_key"`
	ForcePathStyle  bool   `yaml:"force_path_style" mapstructure:"force_path_style"`
	StorageClass    string `yaml:"storage_class,omitempty" mapstructure:"storage_class"`
	ACL             string `yaml:"acl,omitempty" mapstructure:"acl"`
}

// Load reads the configuration file (if any) and applies AUTHADM_*
// environment overrides. An empty path loads defaults plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Bind known keys so AutomaticEnv sees them even without a file.
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env for %q: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configKeys lists every key that may be set via environment variables.
var configKeys = []string{
	"global.log_level",
	"global.state_dir",
	"api.base_url",
	"api.platform_code",
	"api.timeout",
	"api.requests_per_minute",
	"export.dir",
}

// applyDefaults sets default values for unspecified configuration options.
func (c *Config) applyDefaults() error {
	if c.Global.LogLevel == "" {
		c.Global.LogLevel = DefaultLogLevel
	}

	if c.Global.StateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolving user config dir: %w", err)
		}

		c.Global.StateDir = filepath.Join(base, "authadm")
	}

	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}

	if c.API.PlatformCode == "" {
		c.API.PlatformCode = DefaultPlatformCode
	}

	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultTimeout
	}

	if c.Audit != nil && c.Audit.Enabled {
		if c.Audit.Driver == "" {
			c.Audit.Driver = "sqlite"
		}

		if c.Audit.Driver == "sqlite" && c.Audit.SQLite.Path == "" {
			c.Audit.SQLite.Path = filepath.Join(c.Global.StateDir, "audit.db")
		}
	}

	if c.Export.Dir == "" {
		c.Export.Dir = "./exports"
	}

	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api base_url %q: %w", c.API.BaseURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base_url must be http or https, got %q", c.API.BaseURL)
	}

	if c.API.PlatformCode == "" {
		return fmt.Errorf("api platform_code is required")
	}

	if c.API.RequestsPerMinute < 0 {
		return fmt.Errorf("api requests_per_minute must not be negative")
	}

	if c.Audit != nil && c.Audit.Enabled {
		switch c.Audit.Driver {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("unsupported audit driver: %s", c.Audit.Driver)
		}
	}

	if c.Export.S3 != nil && c.Export.S3.Enabled && c.Export.S3.Bucket == "" {
		return fmt.Errorf("export s3 bucket is required when s3 upload is enabled")
	}

	return nil
}

// SessionPath returns the path of the persisted session snapshot.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Global.StateDir, "auth-storage.json")
}
