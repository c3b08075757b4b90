package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, os.ErrClosed
}

func TestManager(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir, "failed_urls.txt")
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	// Test Exists for non-existent file
	if manager.Exists("photo.jpg") {
		t.Error("Expected Exists to return false for non-existent file")
	}

	// Test Save
	testData := []byte("test media data")
	n, err := manager.Save(bytes.NewReader(testData), "photo.jpg")
	if err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}
	if n != int64(len(testData)) {
		t.Errorf("Expected %d bytes written, got %d", len(testData), n)
	}

	// Verify file was created with the right content
	content, err := os.ReadFile(filepath.Join(tempDir, "photo.jpg"))
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if !bytes.Equal(content, testData) {
		t.Error("File content does not match expected data")
	}

	// Test Exists for existing file
	if !manager.Exists("photo.jpg") {
		t.Error("Expected Exists to return true for existing file")
	}

	// No temporary file should be left behind
	if _, err := os.Stat(filepath.Join(tempDir, "photo.jpg.tmp")); !os.IsNotExist(err) {
		t.Error("Expected temporary file to be gone after save")
	}
}

func TestManagerCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	nested := filepath.Join(tempDir, "alice_posts")

	if _, err := NewManager(nested, ""); err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	info, err := os.Stat(nested)
	if err != nil {
		t.Fatalf("Expected output directory to exist: %v", err)
	}
	if !info.IsDir() {
		t.Error("Expected output path to be a directory")
	}
}

func TestSaveFailureLeavesNoTarget(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir, "")
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if _, err := manager.Save(failingReader{}, "broken.jpg"); err == nil {
		t.Fatal("Expected save with failing reader to return an error")
	}

	// Neither the target nor the temporary file may exist after a
	// failed save; a partial file would falsely pass the Exists check
	// on the next run.
	if manager.Exists("broken.jpg") {
		t.Error("Expected target file to be absent after failed save")
	}
	if _, err := os.Stat(filepath.Join(tempDir, "broken.jpg.tmp")); !os.IsNotExist(err) {
		t.Error("Expected temporary file to be removed after failed save")
	}
}

func TestLogFailure(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir, "failed_urls.txt")
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	urls := []string{
		"https://cdn.example.com/one@jpeg",
		"https://cdn.example.com/two@jpeg",
	}
	for _, u := range urls {
		if err := manager.LogFailure(u); err != nil {
			t.Fatalf("Failed to log failure: %v", err)
		}
	}

	content, err := os.ReadFile(filepath.Join(tempDir, "failed_urls.txt"))
	if err != nil {
		t.Fatalf("Failed to read failure log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != len(urls) {
		t.Fatalf("Expected %d log lines, got %d", len(urls), len(lines))
	}
	for i, u := range urls {
		if lines[i] != u {
			t.Errorf("Expected line %d to be %q, got %q", i, u, lines[i])
		}
	}
}

func TestLogFailureDisabled(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir, "")
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.LogFailure("https://cdn.example.com/one@jpeg"); err != nil {
		t.Errorf("Expected disabled failure log to be a no-op, got %v", err)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("Failed to read output directory: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no files written, found %d", len(entries))
	}
}
