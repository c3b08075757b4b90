package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"bskygrab/internal/downloader"
	"bskygrab/pkg/bsky"
	"bskygrab/pkg/convert"
	"bskygrab/pkg/feed"
	"bskygrab/pkg/logger"
	"bskygrab/pkg/media"
	"bskygrab/pkg/ratelimit"
	"bskygrab/pkg/storage"
	"bskygrab/pkg/ui"
)

// Converter remuxes downloaded playlists to single-file containers
type Converter interface {
	ConvertAll(ctx context.Context, records []media.PlaylistRecord) []convert.Result
}

// Options configures a pipeline run
type Options struct {
	// BaseDirectory is the parent of the per-request output directory
	BaseDirectory string
	// FailureLog is the sidecar filename for failed URLs ("" disables it)
	FailureLog string
	// Workers bounds concurrent downloads
	Workers int
	// RetryAttempts bounds tries per download for transient failures
	RetryAttempts int
	// RetryDelay spaces retried downloads
	RetryDelay time.Duration
	// Prompt is the operator confirmation gate before bulk conversion.
	// When nil, conversion is skipped.
	Prompt func() bool
}

// Result carries the aggregate outcome of one run
type Result struct {
	Stats     media.Stats
	Posts     int
	WithMedia int
	Playlists []media.PlaylistRecord
	Converted []convert.Result
	Elapsed   time.Duration
}

// Pipeline sequences one run: paginate, filter, extract, download,
// and optionally convert. It owns the request and the aggregate
// counters for the lifetime of a run; individual download tasks are
// owned by the worker executing them until their outcome is returned.
type Pipeline struct {
	paginator   *feed.Paginator
	fetcher     downloader.Fetcher
	remuxer     Converter
	rateLimiter ratelimit.Limiter
	opts        Options
	logger      logger.Logger
}

// New creates a pipeline from its collaborators
func New(lister feed.Lister, fetcher downloader.Fetcher, remuxer Converter, limiter ratelimit.Limiter, opts Options, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Pipeline{
		paginator:   feed.NewPaginator(lister, log),
		fetcher:     fetcher,
		remuxer:     remuxer,
		rateLimiter: limiter,
		opts:        opts,
		logger:      log,
	}
}

// Run executes the full pipeline for one request. Pagination failures
// abort the run since no partial feed is usable; individual download
// failures are counted and do not. The final counts are always
// reported when the scheduler ran.
func (p *Pipeline) Run(ctx context.Context, req *feed.Request) (*Result, error) {
	start := time.Now()

	fmt.Printf("Fetching %d post(s) from %s's %s\n", req.Limit, req.Account, req.Mode)

	items, err := p.paginator.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	fmt.Printf("Fetched %d post(s)\n", len(items))

	withMedia := filterWithMedia(items)
	fmt.Printf("Found %d post(s) with media\n", len(withMedia))

	outDir := filepath.Join(p.opts.BaseDirectory, req.Dir())
	store, err := storage.NewManager(outDir, p.opts.FailureLog)
	if err != nil {
		return nil, err
	}

	tasks := media.ExtractAll(withMedia, req.Dir())

	result := &Result{
		Posts:     len(items),
		WithMedia: len(withMedia),
	}

	p.download(ctx, store, tasks, result)

	result.Elapsed = time.Since(start)
	fmt.Printf("\nDownloaded %d/%d media files, %d newly downloaded. Took %.2f seconds\n",
		result.Stats.Have(), result.Stats.Total, result.Stats.Downloaded, result.Elapsed.Seconds())

	p.convertPlaylists(ctx, result)

	return result, nil
}

// download runs the scheduler phase and aggregates outcomes
func (p *Pipeline) download(ctx context.Context, store *storage.Manager, tasks []media.Task, result *Result) {
	if len(tasks) == 0 {
		return
	}

	pool := downloader.NewWorkerPool(ctx, p.opts.Workers, p.fetcher, store, p.rateLimiter,
		p.opts.RetryAttempts, p.opts.RetryDelay, p.logger)
	pool.Start()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for outcome := range pool.Results() {
			result.Stats.Add(outcome)
			logger.LogDownload(outcome.Task.Dir, outcome.Task.Filename,
				outcome.Task.Kind.String(), outcome.Status != media.StatusFailed, outcome.Err)

			switch outcome.Status {
			case media.StatusAlreadyPresent:
				ui.PrintStatus(fmt.Sprintf("%s already exists, skipping download", outcome.Task.Filename))
			case media.StatusDownloaded:
				ui.PrintStatus(fmt.Sprintf("Downloaded %s", outcome.Task.Filename))
				if outcome.Task.Kind == media.KindPlaylist {
					result.Playlists = append(result.Playlists, media.PlaylistRecord{
						Path:    store.Path(outcome.Task.Filename),
						BaseURL: playlistBaseURL(outcome.Task.URL),
					})
				}
			case media.StatusFailed:
				ui.PrintStatus("")
				ui.PrintError(fmt.Sprintf("Failed to download %s", outcome.Task.URL), outcome.Err)
			}
		}
	}()

	for _, task := range tasks {
		if err := pool.Submit(task); err != nil {
			p.logger.WithError(err).WithField("filename", task.Filename).Error("failed to submit download task")
		}
	}

	pool.Stop()
	wg.Wait()
}

// convertPlaylists gates the post-processor behind the operator prompt
func (p *Pipeline) convertPlaylists(ctx context.Context, result *Result) {
	if len(result.Playlists) == 0 {
		fmt.Println("No m3u8 files downloaded.")
		return
	}

	fmt.Println("Downloaded m3u8 files:")
	for _, record := range result.Playlists {
		fmt.Printf("- %s\n", record.Path)
	}

	if p.remuxer == nil || p.opts.Prompt == nil || !p.opts.Prompt() {
		return
	}

	result.Converted = p.remuxer.ConvertAll(ctx, result.Playlists)

	failed := 0
	for _, r := range result.Converted {
		if r.Err != nil {
			failed++
			ui.PrintError("Conversion failed", r.Err)
		}
	}
	if failed == 0 {
		ui.PrintSuccess(fmt.Sprintf("Converted %d playlist stream(s)", len(result.Converted)))
	} else {
		ui.PrintWarning(fmt.Sprintf("Converted %d playlist stream(s), %d failed", len(result.Converted)-failed, failed))
	}
}

// filterWithMedia drops items without an image or playlist embed
// before extraction runs
func filterWithMedia(items []bsky.FeedItem) []bsky.FeedItem {
	var kept []bsky.FeedItem
	for _, item := range items {
		if item.Post.HasMedia() {
			kept = append(kept, item)
		}
	}
	return kept
}

// playlistBaseURL strips the trailing manifest filename so playlist
// entries can resolve against the remainder
func playlistBaseURL(url string) string {
	if idx := strings.LastIndex(url, "/"); idx >= 0 {
		return url[:idx+1]
	}
	return url
}
