package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bskygrab/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "valid config with info level",
			cfg:     &config.LoggingConfig{Level: "info"},
			wantErr: false,
		},
		{
			name:    "valid config with debug level",
			cfg:     &config.LoggingConfig{Level: "debug"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestNewWithFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "bskygrab.log")

	logger, err := New(&config.LoggingConfig{Level: "info", File: logFile})
	if err != nil {
		t.Fatalf("New() with file output failed: %v", err)
	}

	logger.InfoWithFields("download completed", map[string]interface{}{
		"filename": "2024-01-01T10-00-00.000Z_3k1_11111.jpeg",
	})

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "download completed") {
		t.Error("Expected log message in file output")
	}
	if !strings.Contains(string(content), "3k1_11111") {
		t.Error("Expected structured field in file output")
	}
}

func TestWithFieldChaining(t *testing.T) {
	logger, err := New(&config.LoggingConfig{Level: "debug"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	derived := logger.WithField("account", "alice.bsky.social").WithError(os.ErrNotExist)
	if derived == nil {
		t.Fatal("Expected derived logger")
	}

	// The parent logger must not be mutated by derivation.
	if logger == derived {
		t.Error("Expected WithField to return a new logger")
	}
}

func TestGetLoggerDefault(t *testing.T) {
	if GetLogger() == nil {
		t.Error("Expected a usable default logger")
	}
}
