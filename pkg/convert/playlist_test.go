package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bskygrab/pkg/media"
)

const sampleManifest = `#EXTM3U
#EXT-X-VERSION:3

#EXT-X-STREAM-INF:BANDWIDTH=950000,RESOLUTION=640x360
360p/video.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=2850000,RESOLUTION=1280x720
720p/video.m3u8
`

func TestParsePlaylist(t *testing.T) {
	entries := ParsePlaylist(sampleManifest)

	// Blank lines and '#' directives are dropped, order is preserved.
	assert.Equal(t, []string{"360p/video.m3u8", "720p/video.m3u8"}, entries)
}

func TestParsePlaylistDirectivesOnly(t *testing.T) {
	assert.Empty(t, ParsePlaylist("#EXTM3U\n#EXT-X-VERSION:3\n"))
	assert.Empty(t, ParsePlaylist(""))
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "2024-06-01T10-00-00.000Z_3kvid.m3u8")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTargets(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	record := media.PlaylistRecord{
		Path:    path,
		BaseURL: "https://video.bsky.app/watch/did/bafyvid/",
	}

	targets, err := Targets(record)

	require.NoError(t, err)
	require.Len(t, targets, 2)

	// Entries resolve against the manifest's base URL.
	assert.Equal(t, "https://video.bsky.app/watch/did/bafyvid/360p/video.m3u8", targets[0].InputURL)
	assert.Equal(t, "https://video.bsky.app/watch/did/bafyvid/720p/video.m3u8", targets[1].InputURL)

	// Output names carry the sanitized relative path so variants that
	// share a file name cannot collide.
	stem := filepath.Join(filepath.Dir(path), "2024-06-01T10-00-00.000Z_3kvid")
	assert.Equal(t, stem+"_360p-video.mp4", targets[0].OutputPath)
	assert.Equal(t, stem+"_720p-video.mp4", targets[1].OutputPath)
	assert.NotEqual(t, targets[0].OutputPath, targets[1].OutputPath)
}

func TestTargetsEmptyManifest(t *testing.T) {
	path := writeManifest(t, "#EXTM3U\n")
	record := media.PlaylistRecord{Path: path, BaseURL: "https://example.com/"}

	targets, err := Targets(record)

	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestTargetsMissingManifest(t *testing.T) {
	record := media.PlaylistRecord{
		Path:    filepath.Join(t.TempDir(), "gone.m3u8"),
		BaseURL: "https://example.com/",
	}

	_, err := Targets(record)

	assert.Error(t, err)
}

func TestTargetsStripsQueryString(t *testing.T) {
	path := writeManifest(t, "720p/video.m3u8?session=abc123\n")
	record := media.PlaylistRecord{Path: path, BaseURL: "https://example.com/"}

	targets, err := Targets(record)

	require.NoError(t, err)
	require.Len(t, targets, 1)
	// The query string stays in the URL but not in the output name.
	assert.Equal(t, "https://example.com/720p/video.m3u8?session=abc123", targets[0].InputURL)
	assert.NotContains(t, targets[0].OutputPath, "?")
	assert.NotContains(t, targets[0].OutputPath, "abc123")
}

func TestBuildArgs(t *testing.T) {
	r := NewRemuxer("ffmpeg", 0, nil)
	target := Target{
		InputURL:   "https://video.bsky.app/watch/did/bafyvid/720p/video.m3u8",
		OutputPath: "/tmp/out/2024-06-01T10-00-00.000Z_3kvid_720p-video.mp4",
	}

	args := r.BuildArgs(target)

	// Stream copy, never re-encode.
	assert.Equal(t, []string{
		"-y",
		"-i", target.InputURL,
		"-c", "copy",
		target.OutputPath,
	}, args)
}
