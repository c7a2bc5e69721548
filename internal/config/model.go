package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/thinkpad-online/notes/internal/common"
	"github.com/thinkpad-online/notes/internal/models"
)

const (
	DefaultEndpoint  = "http://localhost:5001"
	DefaultTimeout   = 10 * time.Second
	DefaultDebounce  = 50 * time.Millisecond
	DefaultStatePath = "~/.config/thinkpad"
)

// Config represents the application configuration structure
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	State   StateConfig   `mapstructure:"state"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Logging LoggingConfig `mapstructure:"logging"`

	logger *logBuffer
}

type APIConfig struct {
	Endpoint string `mapstructure:"endpoint" default:"http://localhost:5001"`
	Timeout  string `mapstructure:"timeout" default:"10s"`
}

type StateConfig struct {
	// Root of the per-user state directory. Sessions are kept per API host below it.
	Path string `mapstructure:"path" default:"~/.config/thinkpad"`
}

type WatchConfig struct {
	Debounce string `mapstructure:"debounce" default:"50ms"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" default:"info"`
	Format string `mapstructure:"format" default:"text"`
	Output string `mapstructure:"output"`
}

// Validate checks the values that cannot fall back to a default.
func (c *Config) Validate() error {
	if !common.IsValidEndpoint(c.API.Endpoint) {
		return fmt.Errorf("invalid api endpoint: %q", c.API.Endpoint)
	}
	if len(strings.TrimSpace(c.State.Path)) == 0 {
		return fmt.Errorf("state path must not be empty")
	}
	return nil
}

func (c *Config) GetAPIUrl() string {
	return strings.TrimSuffix(c.API.Endpoint, "/")
}

// SetAPIEndpoint overrides the configured endpoint, e.g. from the --api flag.
func (c *Config) SetAPIEndpoint(endpoint string) error {
	if !common.IsValidEndpoint(endpoint) {
		return fmt.Errorf("invalid api endpoint: %q", endpoint)
	}
	c.API.Endpoint = endpoint
	return nil
}

// GetAPIHostname returns the endpoint host in a form usable as a directory name.
func (c *Config) GetAPIHostname() string {
	u, err := url.Parse(c.GetAPIUrl())
	if err != nil || len(u.Host) == 0 {
		return "default"
	}
	return strings.NewReplacer(":", "_", "/", "_").Replace(strings.ToLower(u.Host))
}

func (c *Config) GetTimeout() time.Duration {
	return parseDurationOr(c.API.Timeout, DefaultTimeout, "api.timeout")
}

func (c *Config) GetDebounce() time.Duration {
	return parseDurationOr(c.Watch.Debounce, DefaultDebounce, "watch.debounce")
}

func parseDurationOr(value string, fallback time.Duration, key string) time.Duration {
	if len(value) == 0 {
		return fallback
	}
	parsed, err := common.ParseDuration(value)
	if err != nil || parsed <= 0 {
		logrus.WithError(err).WithFields(logrus.Fields{
			"key":   key,
			"value": value,
		}).Warnln("Invalid duration, using default")
		return fallback
	}
	return parsed
}

// GetStatePath expands a leading ~ to the user's home directory.
func (c *Config) GetStatePath() string {
	path := c.State.Path
	if len(path) == 0 {
		path = DefaultStatePath
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return filepath.Clean(path)
}

// GetSessionPath is the directory holding the session for the configured API host.
func (c *Config) GetSessionPath() string {
	return filepath.Join(c.GetStatePath(), c.GetAPIHostname())
}

// GetPreferencesPath holds settings shared by every API host.
func (c *Config) GetPreferencesPath() string {
	return c.GetStatePath()
}

func (c *Config) GetRecentLogs(count int) []*models.LogEntry {
	if c.logger == nil {
		return nil
	}
	return c.logger.GetRecentEvents(count)
}
