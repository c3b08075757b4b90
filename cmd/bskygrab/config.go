package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bskygrab/pkg/config"
	"bskygrab/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage bskygrab configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.bskygrab.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration merged from all sources.

Sensitive values like the app password are masked.`,
	Run: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".bskygrab.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# bskygrab configuration file
#
# Credentials may also come from the environment
# (BSKY_USERNAME / BSKY_APP_TOKEN) or from 'bskygrab auth login'.

# Bluesky account and service endpoints
bluesky:
  # Your handle or DID
  identifier: ""

  # App password (Settings > App Passwords in Bluesky)
  # Prefer 'bskygrab auth login' over putting it here
  app_password: ""

  # PDS service URL
  service_url: "https://bsky.social"

# Rate limiting configuration
rate_limit:
  # Requests per minute against the API and CDN
  requests_per_minute: 120

  # Maximum number of retries for failed requests
  max_retries: 3

  # Delay between retries
  retry_delay: 5s

# Output configuration
output:
  # Base directory for downloads; media lands in
  # <base>/<account>_<mode>/
  base_directory: "."

  # Sidecar file recording URLs that failed to download
  failure_log: "failed_urls.txt"

# Download configuration
download:
  # Number of concurrent download workers (1-16)
  concurrent_downloads: 4

  # Per-download timeout
  download_timeout: 60s

# Video conversion configuration
convert:
  # Path to the ffmpeg binary
  ffmpeg_path: "ffmpeg"

  # Per-conversion timeout
  timeout: 5m

  # Answer the conversion prompt automatically: "yes", "no",
  # or empty to ask interactively
  auto_answer: ""

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional, stderr only when empty)
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Run 'bskygrab auth login' to store your credentials")
	fmt.Println("2. Start downloading with 'bskygrab fetch <account> <count>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	displayCfg := *cfg
	if displayCfg.Bluesky.AppPassword != "" {
		displayCfg.Bluesky.AppPassword = "***"
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (BSKY_*, BSKYGRAB_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}
