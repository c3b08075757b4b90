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

// Config holds all configuration options for the Bluesky media downloader
type Config struct {
	// Bluesky account and service settings
	Bluesky BlueskyConfig `yaml:"bluesky" json:"bluesky"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Playlist conversion settings
	Convert ConvertConfig `yaml:"convert" json:"convert"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BlueskyConfig holds Bluesky-specific configuration
type BlueskyConfig struct {
	Identifier  string `yaml:"identifier" json:"identifier"`
	AppPassword string `yaml:"app_password" json:"app_password"`
	ServiceURL  string `yaml:"service_url" json:"service_url"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	MaxRetries        int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	FailureLog    string `yaml:"failure_log" json:"failure_log"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	ConcurrentDownloads int           `yaml:"concurrent_downloads" json:"concurrent_downloads"`
	DownloadTimeout     time.Duration `yaml:"download_timeout" json:"download_timeout"`
	RetryAttempts       int           `yaml:"retry_attempts" json:"retry_attempts"`
}

// ConvertConfig holds playlist conversion settings
type ConvertConfig struct {
	FFmpegPath string        `yaml:"ffmpeg_path" json:"ffmpeg_path"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
	AutoAnswer string        `yaml:"auto_answer" json:"auto_answer"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a configuration populated with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Bluesky: BlueskyConfig{
			ServiceURL: "https://bsky.social",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 120,
			MaxRetries:        3,
			RetryDelay:        time.Second * 2,
		},
		Output: OutputConfig{
			BaseDirectory: ".",
			FailureLog:    "failed_urls.txt",
		},
		Download: DownloadConfig{
			ConcurrentDownloads: 4,
			DownloadTimeout:     time.Second * 60,
			RetryAttempts:       3,
		},
		Convert: ConvertConfig{
			FFmpegPath: "ffmpeg",
			Timeout:    time.Minute * 10,
			AutoAnswer: "",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if identifier := os.Getenv("BSKY_USERNAME"); identifier != "" {
		c.Bluesky.Identifier = identifier
	}
	if appPassword := os.Getenv("BSKY_APP_TOKEN"); appPassword != "" {
		c.Bluesky.AppPassword = appPassword
	}
	if service := os.Getenv("BSKYGRAB_SERVICE_URL"); service != "" {
		c.Bluesky.ServiceURL = service
	}

	if rpm := os.Getenv("BSKYGRAB_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if outputDir := os.Getenv("BSKYGRAB_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	if concurrent := os.Getenv("BSKYGRAB_CONCURRENT_DOWNLOADS"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Download.ConcurrentDownloads = val
		}
	}

	if ffmpeg := os.Getenv("BSKYGRAB_FFMPEG_PATH"); ffmpeg != "" {
		c.Convert.FFmpegPath = ffmpeg
	}

	if logLevel := os.Getenv("BSKYGRAB_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
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

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".bskygrab.yaml",
		".bskygrab.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "bskygrab", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "bskygrab", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".bskygrab.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Bluesky.ServiceURL == "" {
		errs = append(errs, errors.New("service URL is required"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}

	if c.Download.ConcurrentDownloads <= 0 {
		errs = append(errs, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.ConcurrentDownloads > 16 {
		errs = append(errs, errors.New("concurrent downloads should not exceed 16"))
	}
	if c.Download.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Convert.FFmpegPath == "" {
		errs = append(errs, errors.New("ffmpeg path is required"))
	}
	switch strings.ToLower(c.Convert.AutoAnswer) {
	case "", "yes", "no":
	default:
		errs = append(errs, errors.New("convert auto_answer must be empty, 'yes' or 'no'"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
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

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if identifier, ok := flags["identifier"].(string); ok && identifier != "" {
		c.Bluesky.Identifier = identifier
	}
	if service, ok := flags["service"].(string); ok && service != "" {
		c.Bluesky.ServiceURL = service
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if concurrent, ok := flags["concurrent"].(int); ok && concurrent > 0 {
		c.Download.ConcurrentDownloads = concurrent
	}
	if rpm, ok := flags["rate-limit"].(int); ok && rpm > 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if answer, ok := flags["auto-answer"].(string); ok && answer != "" {
		c.Convert.AutoAnswer = answer
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".bskygrab.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
