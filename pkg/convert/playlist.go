package convert

import (
	"fmt"
	"os"
	"strings"

	"bskygrab/pkg/media"
)

// Target is one playlist entry resolved into a remux job
type Target struct {
	// InputURL is the absolute URL of the variant or segment list
	InputURL string
	// OutputPath is the single-file container to produce
	OutputPath string
}

// ParsePlaylist extracts the media entries from HLS manifest text:
// non-empty lines that are not '#' directives. Order is preserved.
func ParsePlaylist(text string) []string {
	var entries []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	return entries
}

// Targets reads a downloaded manifest and derives one remux target per
// media entry. Entries resolve against the record's base URL. The
// output name appends the entry's full relative path (sanitized) to
// the manifest name, so variants that share a leading path segment
// cannot collide.
func Targets(record media.PlaylistRecord) ([]Target, error) {
	data, err := os.ReadFile(record.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist %s: %w", record.Path, err)
	}

	entries := ParsePlaylist(string(data))
	if len(entries) == 0 {
		return nil, nil
	}

	stem := strings.TrimSuffix(record.Path, ".m3u8")

	targets := make([]Target, 0, len(entries))
	for _, entry := range entries {
		targets = append(targets, Target{
			InputURL:   record.BaseURL + entry,
			OutputPath: fmt.Sprintf("%s_%s.mp4", stem, sanitizeEntry(entry)),
		})
	}
	return targets, nil
}

// sanitizeEntry turns a relative playlist entry into a filename-safe
// suffix
func sanitizeEntry(entry string) string {
	// Drop any query string before flattening the path
	if idx := strings.IndexAny(entry, "?#"); idx >= 0 {
		entry = entry[:idx]
	}
	entry = strings.TrimSuffix(entry, ".m3u8")
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-")
	return replacer.Replace(entry)
}
