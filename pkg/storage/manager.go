package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Manager handles file storage for one output directory. The directory
// tree is the only persisted state of a run: a file that exists is a
// file that was fully downloaded, which is what makes re-runs
// idempotent. Writes therefore go to a temporary path first and are
// renamed into place only on success, so an interrupted run never
// leaves a truncated file that would be mistaken for complete.
type Manager struct {
	outputDir  string
	failureLog string
	mu         sync.Mutex
}

// NewManager creates a storage manager rooted at outputDir, creating
// the directory if needed. Creation is idempotent and safe under
// concurrent first use.
func NewManager(outputDir, failureLog string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		outputDir:  outputDir,
		failureLog: failureLog,
	}, nil
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// Path returns the full path for a filename within the output directory
func (m *Manager) Path(filename string) string {
	return filepath.Join(m.outputDir, filename)
}

// Exists reports whether the named file is already on disk. This check
// is the sole deduplication mechanism; there is no separate manifest.
func (m *Manager) Exists(filename string) bool {
	_, err := os.Stat(m.Path(filename))
	return err == nil
}

// Save streams the reader to the named file. Data is written to a
// temporary path and renamed on success; on any failure the temporary
// file is removed and the target is left untouched.
func (m *Manager) Save(r io.Reader, filename string) (int64, error) {
	target := m.Path(filename)
	tmp := target + ".tmp"

	out, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}

	n, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to write media data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return n, nil
}

// LogFailure appends a failed source URL to the diagnostic sidecar
// log. Failures here are not fatal; the log is best-effort.
func (m *Manager) LogFailure(url string) error {
	if m.failureLog == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := os.OpenFile(m.Path(m.failureLog), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open failure log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, url); err != nil {
		return fmt.Errorf("failed to write failure log: %w", err)
	}
	return nil
}
