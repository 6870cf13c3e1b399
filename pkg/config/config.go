package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the scraper.
type Config struct {
	// DeviantArt account and request settings
	DeviantArt DeviantArtConfig `yaml:"deviantart" json:"deviantart"`

	// HTTP client settings
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Cookie persistence settings
	Cookies CookieConfig `yaml:"cookies" json:"cookies"`

	// Scrape settings
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// DeviantArtConfig holds account credentials and the browser identity
// the client presents.
type DeviantArtConfig struct {
	Username  string `yaml:"username" json:"username"`
	Password  string `yaml:"password" json:"password"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// HTTPConfig holds HTTP client configuration.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// CookieConfig holds session cookie persistence configuration.
type CookieConfig struct {
	File string `yaml:"file" json:"file"`
}

// ScrapeConfig holds scrape behavior configuration.
type ScrapeConfig struct {
	ConcurrentPages int    `yaml:"concurrent_pages" json:"concurrent_pages"`
	CheckpointFile  string `yaml:"checkpoint_file" json:"checkpoint_file"`
}

// OutputConfig holds output configuration.
type OutputConfig struct {
	Format string `yaml:"format" json:"format"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DeviantArt: DeviantArtConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/101.0.4951.54 Safari/537.36",
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Cookies: CookieConfig{
			File: defaultStatePath("cookies.json"),
		},
		Scrape: ScrapeConfig{
			ConcurrentPages: 4,
			CheckpointFile:  defaultStatePath("checkpoint.json"),
		},
		Output: OutputConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// defaultStatePath places a state file under the user config dir,
// falling back to the working directory.
func defaultStatePath(name string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(base, "dascraper", name)
}

// LoadFromEnv loads configuration from environment variables.
func (c *Config) LoadFromEnv() error {
	if username := os.Getenv("DASCRAPER_USERNAME"); username != "" {
		c.DeviantArt.Username = username
	}
	if password := os.Getenv("DASCRAPER_PASSWORD"); password != "" {
		c.DeviantArt.Password = password
	}
	if userAgent := os.Getenv("DASCRAPER_USER_AGENT"); userAgent != "" {
		c.DeviantArt.UserAgent = userAgent
	}

	if timeout := os.Getenv("DASCRAPER_HTTP_TIMEOUT"); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid DASCRAPER_HTTP_TIMEOUT: %w", err)
		}
		c.HTTP.Timeout = parsed
	}

	if cookieFile := os.Getenv("DASCRAPER_COOKIE_FILE"); cookieFile != "" {
		c.Cookies.File = cookieFile
	}

	if concurrent := os.Getenv("DASCRAPER_CONCURRENT_PAGES"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Scrape.ConcurrentPages = val
		}
	}

	if logLevel := os.Getenv("DASCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file.
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations.
func (c *Config) findConfigFile() string {
	locations := []string{
		".dascraper.yaml",
		".dascraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "dascraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "dascraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".dascraper.yaml"),
		filepath.Join(os.Getenv("HOME"), ".dascraper.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. Credentials are not
// required here; read-only scraping works anonymously.
func (c *Config) Validate() error {
	var errs []error

	if c.DeviantArt.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}

	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http timeout must be positive"))
	}

	if c.Scrape.ConcurrentPages <= 0 {
		errs = append(errs, errors.New("concurrent pages must be positive"))
	}
	if c.Scrape.ConcurrentPages > 16 {
		errs = append(errs, errors.New("concurrent pages should not exceed 16"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	validFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validFormats[strings.ToLower(c.Output.Format)] {
		errs = append(errs, errors.New("invalid output format"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load builds the effective configuration: defaults, then an optional
// .env file, then the YAML config file, then environment overrides.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".dascraper.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
