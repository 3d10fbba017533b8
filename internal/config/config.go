// Package config loads nearby-events settings.
//
// Values are layered: built-in defaults, then an optional YAML file, then the
// environment (after loading a .env file from the working directory if present).
// Command-line flags are applied last by the cli package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/nearby-events/internal/logger"
)

// DefaultUserAgent is a current desktop Chrome user agent
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// Config holds scraper configuration.
type Config struct {
	BaseURL string `yaml:"base_url"`

	LaunchTimeout     time.Duration `yaml:"launch_timeout"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	SelectorTimeout   time.Duration `yaml:"selector_timeout"`
	ContentTimeout    time.Duration `yaml:"content_timeout"`
	SettleDelay       time.Duration `yaml:"settle_delay"`
	RunTimeout        time.Duration `yaml:"run_timeout"`

	MinContentLength int    `yaml:"min_content_length"`
	UserAgent        string `yaml:"user_agent"`
	AcceptLanguage   string `yaml:"accept_language"`

	ChromePath      string `yaml:"chrome_path"`
	ChromeRemoteURL string `yaml:"chrome_remote_url"`

	LogLevel    string `yaml:"log_level"`
	MetricsFile string `yaml:"metrics_file"`
}

// Default returns the settings the scraper was tuned with.
func Default() *Config {
	return &Config{
		BaseURL:           "https://www.songkick.com",
		LaunchTimeout:     60 * time.Second,
		NavigationTimeout: 60 * time.Second,
		SelectorTimeout:   10 * time.Second,
		ContentTimeout:    10 * time.Second,
		SettleDelay:       3 * time.Second,
		RunTimeout:        120 * time.Second,
		MinContentLength:  1000,
		UserAgent:         DefaultUserAgent,
		AcceptLanguage:    "en-US,en;q=0.5",
		LogLevel:          "info",
	}
}

// Load builds a Config from defaults, the optional YAML file at path and the
// environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Ignoring unreadable .env file", logger.Fields{"error": err.Error()})
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.BaseURL = getEnv("NEAR_BASE_URL", c.BaseURL)
	c.LaunchTimeout = getEnvDuration("NEAR_LAUNCH_TIMEOUT", c.LaunchTimeout)
	c.NavigationTimeout = getEnvDuration("NEAR_NAVIGATION_TIMEOUT", c.NavigationTimeout)
	c.SelectorTimeout = getEnvDuration("NEAR_SELECTOR_TIMEOUT", c.SelectorTimeout)
	c.ContentTimeout = getEnvDuration("NEAR_CONTENT_TIMEOUT", c.ContentTimeout)
	c.SettleDelay = getEnvDuration("NEAR_SETTLE_DELAY", c.SettleDelay)
	c.RunTimeout = getEnvDuration("NEAR_RUN_TIMEOUT", c.RunTimeout)
	c.MinContentLength = getEnvInt("NEAR_MIN_CONTENT_LENGTH", c.MinContentLength)
	c.UserAgent = getEnv("NEAR_USER_AGENT", c.UserAgent)
	c.AcceptLanguage = getEnv("NEAR_ACCEPT_LANGUAGE", c.AcceptLanguage)
	c.ChromePath = getEnv("CHROME_PATH", c.ChromePath)
	c.ChromeRemoteURL = getEnv("CHROME_REMOTE_URL", c.ChromeRemoteURL)
	c.LogLevel = getEnv("NEAR_LOG_LEVEL", c.LogLevel)
	c.MetricsFile = getEnv("NEAR_METRICS_FILE", c.MetricsFile)
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if err := validateURL("base URL", c.BaseURL); err != nil {
		return err
	}
	if c.ChromeRemoteURL != "" {
		if err := validateURL("chrome remote URL", c.ChromeRemoteURL); err != nil {
			return err
		}
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"launch timeout", c.LaunchTimeout},
		{"navigation timeout", c.NavigationTimeout},
		{"selector timeout", c.SelectorTimeout},
		{"content timeout", c.ContentTimeout},
		{"run timeout", c.RunTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive", d.name)
		}
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle delay cannot be negative")
	}
	if c.MinContentLength <= 0 {
		return fmt.Errorf("min content length must be positive")
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s must include a scheme and host", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
