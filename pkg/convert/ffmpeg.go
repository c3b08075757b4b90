package convert

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"bskygrab/pkg/logger"
	"bskygrab/pkg/media"
)

// Result is the outcome of converting one target
type Result struct {
	Target Target
	Err    error
}

// Remuxer converts downloaded HLS playlists to single-file MP4
// containers by invoking ffmpeg with stream copy, so no re-encoding
// happens.
type Remuxer struct {
	ffmpegPath string
	timeout    time.Duration
	logger     logger.Logger
}

// NewRemuxer creates a remuxer using the given ffmpeg binary
func NewRemuxer(ffmpegPath string, timeout time.Duration, log logger.Logger) *Remuxer {
	if log == nil {
		log = logger.GetLogger()
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Remuxer{
		ffmpegPath: ffmpegPath,
		timeout:    timeout,
		logger:     log,
	}
}

// BuildArgs builds the ffmpeg argument list for one target
func (r *Remuxer) BuildArgs(t Target) []string {
	return []string{
		"-y",
		"-i", t.InputURL,
		"-c", "copy",
		t.OutputPath,
	}
}

// ConvertAll converts every playlist record in sequence. A failing
// target is recorded and the batch continues; an empty or
// directive-only manifest is skipped with a log line. ffmpeg runs one
// process at a time since each invocation saturates its own streams.
func (r *Remuxer) ConvertAll(ctx context.Context, records []media.PlaylistRecord) []Result {
	var results []Result

	for _, record := range records {
		targets, err := Targets(record)
		if err != nil {
			results = append(results, Result{Err: err})
			continue
		}
		if len(targets) == 0 {
			r.logger.WarnWithFields("no media entries in playlist, skipping conversion", map[string]interface{}{
				"playlist": record.Path,
			})
			continue
		}

		for _, target := range targets {
			results = append(results, Result{
				Target: target,
				Err:    r.convert(ctx, target),
			})
		}
	}

	return results
}

// convert runs one ffmpeg stream-copy invocation
func (r *Remuxer) convert(ctx context.Context, t Target) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, r.ffmpegPath, r.BuildArgs(t)...)

	var stderr strings.Builder
	cmd.Stderr = &stderr

	err := cmd.Run()
	duration := time.Since(start)

	if err != nil {
		// Partial containers are useless and would shadow a retry
		os.Remove(t.OutputPath)

		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 300 {
			detail = detail[len(detail)-300:]
		}
		err = fmt.Errorf("ffmpeg failed for %s: %w (%s)", t.InputURL, err, detail)
	}

	logger.LogConversion(t.InputURL, t.OutputPath, duration, err)
	return err
}
