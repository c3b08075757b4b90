package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bskygrab/pkg/auth"
	"bskygrab/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Bluesky credentials",
	Long: `Manage stored Bluesky credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (BSKY_USERNAME / BSKY_APP_TOKEN)

Always use an app password, never your account password.`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [identifier]",
	Short: "Store Bluesky credentials securely",
	Long: `Store a Bluesky handle and app password in the system keychain
or an encrypted file.

To create an app password:
1. Open the Bluesky app or web client
2. Go to Settings > Privacy and Security > App Passwords
3. Create a new app password for bskygrab`,
	Example: `  # Interactive login
  bskygrab auth login

  # Login with handle
  bskygrab auth login alice.bsky.social`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [identifier]",
	Short: "Remove stored credentials",
	Long: `Remove stored Bluesky credentials.

If no identifier is provided, you will be shown a list of stored
accounts to choose from.`,
	Example: `  # Interactive logout
  bskygrab auth logout

  # Logout specific account
  bskygrab auth logout alice.bsky.social`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored Bluesky accounts with masked credential information.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var identifier string
	if len(args) > 0 {
		identifier = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	if identifier == "" {
		fmt.Print("Bluesky handle (e.g. alice.bsky.social): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read handle", err.Error())
			os.Exit(1)
		}
		identifier = strings.TrimSpace(input)
	}
	identifier = strings.TrimPrefix(identifier, "@")

	if identifier == "" {
		ui.PrintError("Handle is required")
		os.Exit(1)
	}

	// Check if account already exists
	if existing, _ := manager.Retrieve(identifier); existing != nil {
		fmt.Printf("Account '%s' already exists. Update credentials? (y/N): ", identifier)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	// App passwords look like xxxx-xxxx-xxxx-xxxx
	var appPassword string
	for {
		fmt.Print("App password (hidden as you type): ")
		appPassword, err = readPassword()
		if err != nil {
			ui.PrintError("Failed to read app password", err.Error())
			os.Exit(1)
		}

		if len(appPassword) < 8 {
			fmt.Println("That doesn't look like a valid app password.")
			fmt.Println("Create one under Settings > App Passwords in Bluesky.")
			fmt.Print("Try again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	account := &auth.Account{
		Identifier:   identifier,
		AppPassword:  appPassword,
		LastModified: time.Now(),
	}

	if err := manager.Store(account); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", identifier))
	fmt.Println("\nDownload media from any account:")
	fmt.Println("  $ bskygrab fetch <handle> 50")
	fmt.Println("  $ bskygrab fetch <handle> all likes")
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if len(args) > 0 {
		identifier := args[0]
		if err := manager.Delete(identifier); err != nil {
			ui.PrintError("Failed to remove account", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Account removed: " + identifier)
		return
	}

	accounts, err := manager.List()
	if err != nil || len(accounts) == 0 {
		ui.PrintError("No stored accounts found")
		return
	}

	reader := bufio.NewReader(os.Stdin)

	if len(accounts) == 1 {
		account := accounts[0]
		fmt.Printf("Remove account '%s'? (y/N): ", account.Identifier)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
		if err := manager.Delete(account.Identifier); err != nil {
			ui.PrintError("Failed to remove account", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Account removed: " + account.Identifier)
		return
	}

	fmt.Println("Select account to remove:")
	for i, account := range accounts {
		fmt.Printf("  %d. %s\n", i+1, account.Identifier)
	}
	fmt.Printf("  0. Cancel\n\n")

	fmt.Print("Choice: ")
	input, _ := reader.ReadString('\n')

	var choice int
	fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

	if choice < 1 || choice > len(accounts) {
		return
	}

	account := accounts[choice-1]
	if err := manager.Delete(account.Identifier); err != nil {
		ui.PrintError("Failed to remove account", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Account removed: " + account.Identifier)
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list accounts", err.Error())
		os.Exit(1)
	}

	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'bskygrab auth login' to add an account")
		return
	}

	for i, account := range accounts {
		fmt.Printf("%d. Handle: %s\n", i+1, account.Identifier)
		fmt.Printf("   App Password: %s\n", maskSecret(account.AppPassword))
		fmt.Printf("   Last Modified: %s\n", account.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

// maskSecret hides all but the first and last two characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

// readPassword reads a password from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
