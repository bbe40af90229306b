package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Config holds runtime settings for the sealfin CLI.
//
// Units: the timeouts are time.Duration values (e.g. 6*time.Second).
type Config struct {
	DatabasePath  string
	DeviceName    string
	ClientVersion string

	ConnectTimeout time.Duration
	SocketTimeout  time.Duration
	RequestTimeout time.Duration
	RetryAttempts  uint

	LogFile  string
	LogLevel string

	SealTokens bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = defaultDatabasePath()
	c.DeviceName = defaultDeviceName()
	c.ClientVersion = "0.1.0"
	c.ConnectTimeout = 6 * time.Second
	c.SocketTimeout = 10 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.RetryAttempts = 3
	c.LogFile = ""
	c.LogLevel = "info"
	c.SealTokens = false
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "sealfin.db"
	}
	return filepath.Join(dir, "sealfin", "sealfin.db")
}

func defaultDeviceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "sealfin-cli"
	}
	return host
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	for name, d := range map[string]time.Duration{
		"connect timeout": c.ConnectTimeout,
		"socket timeout":  c.SocketTimeout,
		"request timeout": c.RequestTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.RetryAttempts == 0 {
		errs = append(errs, errors.New("retry attempts must be at least 1"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// Load constructs a Config from defaults, then the JSON file named by the
// --config flag (if any), then explicitly set flags. Later sources take
// precedence over earlier ones. fs must have been set up with BindFlags and
// parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path, err := fs.GetString(FlagConfig)
	if err != nil {
		return nil, err
	}
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, fs); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
