package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dascraper/pkg/auth"
	"dascraper/pkg/deviantart"
	"dascraper/pkg/logger"
)

var loginSkipStore bool

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Sign in to DeviantArt and store the session",
	Long: `Sign in to DeviantArt with username and password.

On success the session cookies are written to the cookie file so later
commands run signed in, and the credentials are stored securely using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)`,
	Example: `  # Interactive login
  dascraper login

  # Login with username
  dascraper login myusername`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [username]",
	Short: "Remove stored credentials and session cookies",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogout,
}

// accountsCmd represents the accounts command
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List stored accounts",
	Long:  `List all stored DeviantArt accounts with passwords masked.`,
	RunE:  runAccounts,
}

func init() {
	loginCmd.Flags().BoolVar(&loginSkipStore, "no-store", false, "do not store credentials after signing in")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(accountsCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	var username string
	if len(args) == 1 {
		username = strings.TrimSpace(args[0])
	}

	reader := bufio.NewReader(os.Stdin)
	if username == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return errors.New("username is required")
	}

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := string(passwordBytes)
	if password == "" {
		return errors.New("password is required")
	}

	client := newClient()
	if err := client.SignIn(cmd.Context(), username, password); err != nil {
		if errors.Is(err, deviantart.ErrSignInFailed) {
			return errors.New("sign-in rejected; check the username and password")
		}
		return fmt.Errorf("sign-in failed: %w", err)
	}
	persistCookies(client)
	fmt.Printf("Signed in as %s\n", username)

	if loginSkipStore {
		return nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	if err := manager.Store(&auth.Credentials{
		Username:     username,
		Password:     password,
		LastModified: time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	fmt.Println("Credentials stored")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	var username string
	if len(args) == 1 {
		username = strings.TrimSpace(args[0])
	} else {
		creds, err := manager.RetrieveDefault()
		if err != nil {
			return errors.New("no stored account to log out")
		}
		username = creds.Username
	}

	if err := manager.Delete(username); err != nil {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}

	if cfg.Cookies.File != "" {
		if err := os.Remove(cfg.Cookies.File); err != nil && !os.IsNotExist(err) {
			logger.WithError(err).Warn("failed to remove cookie file")
		}
	}

	fmt.Printf("Logged out %s\n", username)
	return nil
}

func runAccounts(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) == 0 {
		fmt.Println("No stored accounts")
		return nil
	}

	for _, creds := range accounts {
		sanitized := auth.Sanitize(creds)
		fmt.Printf("%s  (password %s, updated %s)\n",
			sanitized.Username, sanitized.Password,
			sanitized.LastModified.Format("2006-01-02 15:04"))
	}
	return nil
}
