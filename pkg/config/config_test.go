package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.HTTP.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout to be 30s, got %v", config.HTTP.Timeout)
	}

	if config.Scrape.ConcurrentPages != 4 {
		t.Errorf("Expected default concurrent pages to be 4, got %d", config.Scrape.ConcurrentPages)
	}

	if !strings.Contains(config.DeviantArt.UserAgent, "Chrome/101") {
		t.Errorf("Expected default user agent to identify as Chrome 101, got %s", config.DeviantArt.UserAgent)
	}

	if config.Output.Format != "text" {
		t.Errorf("Expected default output format to be text, got %s", config.Output.Format)
	}

	if config.Logging.Level != "info" {
		t.Errorf("Expected default log level to be info, got %s", config.Logging.Level)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DASCRAPER_USERNAME", "envuser")
	t.Setenv("DASCRAPER_PASSWORD", "envpass")
	t.Setenv("DASCRAPER_USER_AGENT", "test-agent/1.0")
	t.Setenv("DASCRAPER_HTTP_TIMEOUT", "45s")
	t.Setenv("DASCRAPER_COOKIE_FILE", "/tmp/test-cookies.json")
	t.Setenv("DASCRAPER_CONCURRENT_PAGES", "8")
	t.Setenv("DASCRAPER_LOG_LEVEL", "debug")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.DeviantArt.Username != "envuser" {
		t.Errorf("Expected username to be envuser, got %s", config.DeviantArt.Username)
	}

	if config.DeviantArt.Password != "envpass" {
		t.Errorf("Expected password to be envpass, got %s", config.DeviantArt.Password)
	}

	if config.DeviantArt.UserAgent != "test-agent/1.0" {
		t.Errorf("Expected user agent to be test-agent/1.0, got %s", config.DeviantArt.UserAgent)
	}

	if config.HTTP.Timeout != 45*time.Second {
		t.Errorf("Expected timeout to be 45s, got %v", config.HTTP.Timeout)
	}

	if config.Cookies.File != "/tmp/test-cookies.json" {
		t.Errorf("Expected cookie file to be /tmp/test-cookies.json, got %s", config.Cookies.File)
	}

	if config.Scrape.ConcurrentPages != 8 {
		t.Errorf("Expected concurrent pages to be 8, got %d", config.Scrape.ConcurrentPages)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvInvalidTimeout(t *testing.T) {
	t.Setenv("DASCRAPER_HTTP_TIMEOUT", "not-a-duration")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err == nil {
		t.Error("Expected error for invalid timeout duration")
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
deviantart:
  username: fileuser
  user_agent: file-agent/2.0
http:
  timeout: 1m
scrape:
  concurrent_pages: 2
logging:
  level: warn
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if config.DeviantArt.Username != "fileuser" {
		t.Errorf("Expected username to be fileuser, got %s", config.DeviantArt.Username)
	}

	if config.DeviantArt.UserAgent != "file-agent/2.0" {
		t.Errorf("Expected user agent to be file-agent/2.0, got %s", config.DeviantArt.UserAgent)
	}

	if config.HTTP.Timeout != time.Minute {
		t.Errorf("Expected timeout to be 1m, got %v", config.HTTP.Timeout)
	}

	if config.Scrape.ConcurrentPages != 2 {
		t.Errorf("Expected concurrent pages to be 2, got %d", config.Scrape.ConcurrentPages)
	}

	if config.Logging.Level != "warn" {
		t.Errorf("Expected log level to be warn, got %s", config.Logging.Level)
	}

	// Values not in the file keep their defaults.
	if config.Output.Format != "text" {
		t.Errorf("Expected output format to stay text, got %s", config.Output.Format)
	}
}

func TestLoadFromFileMissingPathIsNotAnError(t *testing.T) {
	config := DefaultConfig()

	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	os.Chdir(t.TempDir())

	if err := config.LoadFromFile(""); err != nil {
		t.Errorf("Missing config file should not be an error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty user agent",
			mutate:  func(c *Config) { c.DeviantArt.UserAgent = "" },
			wantErr: "user agent is required",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.HTTP.Timeout = 0 },
			wantErr: "http timeout must be positive",
		},
		{
			name:    "zero concurrent pages",
			mutate:  func(c *Config) { c.Scrape.ConcurrentPages = 0 },
			wantErr: "concurrent pages must be positive",
		},
		{
			name:    "too many concurrent pages",
			mutate:  func(c *Config) { c.Scrape.ConcurrentPages = 64 },
			wantErr: "concurrent pages should not exceed 16",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "bad output format",
			mutate:  func(c *Config) { c.Output.Format = "xml" },
			wantErr: "invalid output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error to contain %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	config := DefaultConfig()
	config.DeviantArt.Username = "saveduser"
	config.Logging.Level = "error"

	if err := config.Save(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	reloaded := DefaultConfig()
	if err := reloaded.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	if reloaded.DeviantArt.Username != "saveduser" {
		t.Errorf("Expected username to be saveduser, got %s", reloaded.DeviantArt.Username)
	}

	if reloaded.Logging.Level != "error" {
		t.Errorf("Expected log level to be error, got %s", reloaded.Logging.Level)
	}
}
