package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bskygrab/pkg/auth"
	"bskygrab/pkg/bsky"
	"bskygrab/pkg/config"
	"bskygrab/pkg/convert"
	"bskygrab/pkg/feed"
	"bskygrab/pkg/logger"
	"bskygrab/pkg/pipeline"
	"bskygrab/pkg/ratelimit"
	"bskygrab/pkg/ui"
)

var (
	// Fetch command flags
	outputDir   string
	concurrent  int
	rateLimit   int
	autoConvert string
	serviceURL  string
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <account> <count|all> [posts|likes|feeds]",
	Short: "Download media from an account's posts, likes, or feeds",
	Long: `Fetch posts from a Bluesky account and download their embedded media.

The count may be a positive number or 'all'. 'all' resolves to the
account's total post count ('all' is not supported for feeds and
falls back to 100 posts). The third argument selects the source:
authored posts (default), liked posts, or one of the account's
published feeds, chosen interactively.

Credentials come from stored accounts ('bskygrab auth login'), the
BSKY_USERNAME and BSKY_APP_TOKEN environment variables, or a .env
file in the working directory.`,
	Example: `  # Download media from the 25 most recent posts
  bskygrab fetch alice.bsky.social 25

  # Download everything the account has ever posted
  bskygrab fetch alice.bsky.social all posts

  # Download media from the last 200 liked posts
  bskygrab fetch alice.bsky.social 200 likes

  # Pick one of the account's feeds and download from it
  bskygrab fetch alice.bsky.social 50 feeds`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		runFetch(args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "base directory for downloads (default: current directory)")
	fetchCmd.Flags().IntVar(&concurrent, "concurrent", 4, "number of concurrent downloads")
	fetchCmd.Flags().IntVar(&rateLimit, "rate-limit", 120, "requests per minute")
	fetchCmd.Flags().StringVar(&autoConvert, "convert", "", "answer the conversion prompt automatically ('yes' or 'no')")
	fetchCmd.Flags().StringVar(&serviceURL, "service", "", "PDS service URL (default: https://bsky.social)")
}

func runFetch(args []string) {
	account := strings.TrimSpace(args[0])

	countArg := strings.ToLower(strings.TrimSpace(args[1]))
	requested := feed.Unbounded
	if countArg != "all" {
		n, err := strconv.Atoi(countArg)
		if err != nil || n < 1 {
			ui.PrintError("Count must be a positive number or 'all'", countArg)
			os.Exit(1)
		}
		requested = n
	}

	modeArg := "posts"
	if len(args) > 2 {
		modeArg = strings.ToLower(strings.TrimSpace(args[2]))
	}
	mode, err := feed.ParseMode(modeArg)
	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}

	// NamedFeed mode cannot run unbounded; the original tool falls
	// back to one page worth of posts.
	if mode == feed.ModeNamedFeed && requested == feed.Unbounded {
		ui.PrintWarning("'all' is not supported for feeds. Defaulting to 100 posts.")
		requested = 100
	}

	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if concurrent != 4 {
		flags["concurrent"] = concurrent
	}
	if rateLimit != 120 {
		flags["rate-limit"] = rateLimit
	}
	if autoConvert != "" {
		flags["auto-answer"] = autoConvert
	}
	if serviceURL != "" {
		flags["service"] = serviceURL
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err)
		os.Exit(1)
	}

	if quiet {
		cfg.Logging.Level = "error"
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logging", err)
		os.Exit(1)
	}

	if !quiet {
		ui.PrintBanner()
	}

	identifier, appPassword := resolveCredentials(cfg)

	client := bsky.NewClient(cfg.Bluesky.ServiceURL, cfg.Download.DownloadTimeout, cfg.RateLimit.RetryDelay, cfg.RateLimit.MaxRetries, logger.GetLogger())

	ctx := context.Background()

	fmt.Printf("Logging in as %s\n", identifier)
	if _, err := client.Login(ctx, identifier, appPassword); err != nil {
		ui.PrintError("Login failed", err)
		os.Exit(1)
	}

	did, err := client.ResolveHandle(ctx, account)
	if err != nil || did == "" {
		ui.PrintError(fmt.Sprintf("Could not resolve account %s to a DID. Please check the account name.", account))
		os.Exit(1)
	}

	profile, err := client.GetProfile(ctx, did)
	if err != nil {
		ui.PrintError("Failed to fetch profile", err)
		os.Exit(1)
	}
	ui.PrintInfo("Account", fmt.Sprintf("%s [%s]", profile.DisplayName, account))

	req := &feed.Request{
		Account: account,
		DID:     did,
		Mode:    mode,
		Limit:   requested,
	}

	if mode == feed.ModeNamedFeed {
		req.FeedURI = chooseFeed(ctx, client, did, profile.DisplayName)
	}

	if req.Limit == feed.Unbounded {
		req.Limit = profile.PostsCount
		if req.Limit < 1 {
			ui.PrintError("Account has no posts")
			os.Exit(1)
		}
		fmt.Printf("Fetching all posts from the account (%d posts)\n", req.Limit)
	}

	limiter := ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute)
	remuxer := convert.NewRemuxer(cfg.Convert.FFmpegPath, cfg.Convert.Timeout, logger.GetLogger())

	p := pipeline.New(client, client, remuxer, limiter, pipeline.Options{
		BaseDirectory: cfg.Output.BaseDirectory,
		FailureLog:    cfg.Output.FailureLog,
		Workers:       cfg.Download.ConcurrentDownloads,
		RetryAttempts: cfg.Download.RetryAttempts,
		RetryDelay:    cfg.RateLimit.RetryDelay,
		Prompt:        conversionPrompt(cfg),
	}, logger.GetLogger())

	result, err := p.Run(ctx, req)
	if err != nil {
		ui.PrintError("Download run failed", err)
		os.Exit(1)
	}

	if result.Posts == 0 {
		ui.PrintError("No posts returned; nothing to download")
		os.Exit(1)
	}
}

// resolveCredentials finds Bluesky credentials: config/env first, then
// the credential manager's stored accounts.
func resolveCredentials(cfg *config.Config) (string, string) {
	if cfg.Bluesky.Identifier != "" && cfg.Bluesky.AppPassword != "" {
		return cfg.Bluesky.Identifier, cfg.Bluesky.AppPassword
	}

	credManager, err := auth.NewManager()
	if err == nil {
		if account, err := credManager.RetrieveDefault(); err == nil {
			return account.Identifier, account.AppPassword
		}
	}

	ui.PrintError("No Bluesky credentials found", "")
	fmt.Println("\nTo store credentials securely, run:")
	fmt.Println("  bskygrab auth login")
	fmt.Println("\nOr set environment variables (also read from .env):")
	fmt.Println("  export BSKY_USERNAME=you.bsky.social")
	fmt.Println("  export BSKY_APP_TOKEN=your_app_password")
	os.Exit(1)
	return "", ""
}

// chooseFeed lists the account's feed generators and prompts for one
func chooseFeed(ctx context.Context, client *bsky.Client, did, displayName string) string {
	feeds, err := client.ListActorFeeds(ctx, did)
	if err != nil {
		ui.PrintError("Failed to list feeds", err)
		os.Exit(1)
	}
	if len(feeds.Feeds) == 0 {
		ui.PrintError(fmt.Sprintf("No feeds found for %s.", displayName))
		os.Exit(1)
	}

	fmt.Printf("Found %d feeds for %s\n", len(feeds.Feeds), displayName)
	fmt.Println("Available feeds:")
	for i, f := range feeds.Feeds {
		fmt.Printf("%d. %s - %s\n", i+1, f.DisplayName, f.Description)
	}

	fmt.Print("Enter the number of the feed you want to download media from: ")
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		ui.PrintError("No feed selected.")
		os.Exit(1)
	}

	choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		ui.PrintError("Invalid input. Please enter a number.")
		os.Exit(1)
	}
	if choice < 1 || choice > len(feeds.Feeds) {
		ui.PrintError("Invalid feed choice.")
		os.Exit(1)
	}

	selected := feeds.Feeds[choice-1]
	fmt.Printf("Selected feed %s\n", selected.DisplayName)
	return selected.URI
}

// conversionPrompt returns the operator gate for playlist conversion,
// honoring a configured automatic answer.
func conversionPrompt(cfg *config.Config) func() bool {
	switch strings.ToLower(cfg.Convert.AutoAnswer) {
	case "yes":
		return func() bool { return true }
	case "no":
		return func() bool { return false }
	default:
		return func() bool {
			return ui.ConfirmStdin("Would you like to convert the m3u8 files to mp4?")
		}
	}
}
