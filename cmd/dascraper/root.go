package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"dascraper/pkg/config"
	"dascraper/pkg/deviantart"
	"dascraper/pkg/logger"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	cookieFile string

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dascraper",
	Short: "Extract media urls and metadata from DeviantArt pages",
	Long: `dascraper reads the state embedded in DeviantArt pages and resolves
media urls from it.

Features:
  - Resolve deviation pages to direct media urls
  - Walk search results with resumable cursors
  - List gallery folders, following pagination
  - Sign in and persist the session cookies
  - Secure credential storage using the system keychain`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if cookieFile != "" {
			cfg.Cookies.File = cookieFile
		}

		return logger.Initialize(&cfg.Logging)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.config/dascraper/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cookieFile, "cookies", "", "session cookie file")

	rootCmd.SetVersionTemplate(`dascraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// newClient builds a client from the effective configuration and loads
// persisted session cookies when present.
func newClient() *deviantart.Client {
	client := deviantart.NewClient(cfg.HTTP.Timeout, logger.GetLogger())
	client.SetUserAgent(cfg.DeviantArt.UserAgent)

	if cfg.Cookies.File != "" {
		if _, err := os.Stat(cfg.Cookies.File); err == nil {
			if err := client.LoadCookies(cfg.Cookies.File); err != nil {
				logger.WithError(err).Warn("failed to load session cookies")
			}
		}
	}

	return client
}

// persistCookies saves the client's cookies so the session survives
// restarts.
func persistCookies(client *deviantart.Client) {
	if cfg.Cookies.File == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Cookies.File), 0700); err != nil {
		logger.WithError(err).Warn("failed to create cookie directory")
		return
	}
	if err := client.SaveCookies(cfg.Cookies.File); err != nil {
		logger.WithError(err).Warn("failed to save session cookies")
	}
}
