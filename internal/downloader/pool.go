package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"bskygrab/pkg/errors"
	"bskygrab/pkg/logger"
	"bskygrab/pkg/media"
	"bskygrab/pkg/ratelimit"
	"bskygrab/pkg/retry"
)

// Fetcher performs streaming GETs for media bodies
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*http.Response, error)
}

// Store persists downloaded media and answers existence checks
type Store interface {
	Exists(filename string) bool
	Save(r io.Reader, filename string) (int64, error)
	LogFailure(url string) error
}

// WorkerPool runs media download tasks over a bounded set of workers
// sharing one connection-pooled client. Completion order among tasks
// is unspecified; callers must aggregate outcomes by summing, never by
// position.
type WorkerPool struct {
	numWorkers    int
	jobQueue      chan media.Task
	resultQueue   chan media.Outcome
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
	fetcher       Fetcher
	store         Store
	rateLimiter   ratelimit.Limiter
	retryAttempts int
	retryDelay    time.Duration
	logger        logger.Logger
}

// NewWorkerPool creates a new download worker pool. retryAttempts
// bounds the tries per task for transient failures; retryDelay spaces
// them.
func NewWorkerPool(
	ctx context.Context,
	numWorkers int,
	fetcher Fetcher,
	store Store,
	rateLimiter ratelimit.Limiter,
	retryAttempts int,
	retryDelay time.Duration,
	log logger.Logger,
) *WorkerPool {
	ctx, cancel := context.WithCancel(ctx)

	if log == nil {
		log = logger.GetLogger()
	}
	if retryAttempts <= 0 {
		retryAttempts = 1
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	return &WorkerPool{
		numWorkers:    numWorkers,
		jobQueue:      make(chan media.Task, numWorkers*2),
		resultQueue:   make(chan media.Outcome, numWorkers),
		ctx:           ctx,
		cancel:        cancel,
		fetcher:       fetcher,
		store:         store,
		rateLimiter:   rateLimiter,
		retryAttempts: retryAttempts,
		retryDelay:    retryDelay,
		logger:        log,
	}
}

// Start initializes and starts all workers
func (wp *WorkerPool) Start() {
	wp.logger.DebugWithFields("starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the job queue, waits for in-flight tasks, and closes the
// result queue.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// Submit adds a download task to the queue
func (wp *WorkerPool) Submit(task media.Task) error {
	select {
	case wp.jobQueue <- task:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the channel of task outcomes
func (wp *WorkerPool) Results() <-chan media.Outcome {
	return wp.resultQueue
}

// worker is the main worker routine
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for task := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			return
		default:
		}

		outcome := wp.processTask(task, id)

		select {
		case wp.resultQueue <- outcome:
		case <-wp.ctx.Done():
			return
		}
	}
}

// processTask handles a single download task
func (wp *WorkerPool) processTask(task media.Task, workerID int) media.Outcome {
	start := time.Now()
	outcome := media.Outcome{Task: task}

	// The on-disk file is the deduplication ledger: if it exists, the
	// task is done without any network I/O.
	if wp.store.Exists(task.Filename) {
		wp.logger.DebugWithFields("media already present, skipping download", map[string]interface{}{
			"worker_id": workerID,
			"filename":  task.Filename,
		})
		outcome.Status = media.StatusAlreadyPresent
		outcome.Duration = time.Since(start)
		return outcome
	}

	if !wp.rateLimiter.Allow() {
		wp.rateLimiter.Wait()
	}

	var size int64
	err := retry.Do(func() error {
		resp, err := wp.fetcher.Fetch(wp.ctx, task.URL)
		if err != nil {
			return fmt.Errorf("download failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errors.FromStatusCode(resp.StatusCode)
		}

		written, err := wp.store.Save(resp.Body, task.Filename)
		if err != nil {
			return fmt.Errorf("save failed: %w", err)
		}
		size = written
		return nil
	}, &retry.Config{
		MaxAttempts: wp.retryAttempts,
		Backoff:     &retry.ConstantBackoff{Delay: wp.retryDelay},
		RetryIf:     retry.DefaultRetryIf,
		Context:     wp.ctx,
		Logger:      wp.logger,
	})
	if err != nil {
		return wp.fail(outcome, start, err)
	}

	outcome.Status = media.StatusDownloaded
	outcome.Size = size
	outcome.Duration = time.Since(start)

	wp.logger.DebugWithFields("download completed", map[string]interface{}{
		"worker_id": workerID,
		"filename":  task.Filename,
		"kind":      task.Kind.String(),
		"size":      size,
		"duration":  outcome.Duration,
	})

	return outcome
}

// fail finalizes a failed outcome and records the URL in the sidecar log
func (wp *WorkerPool) fail(outcome media.Outcome, start time.Time, err error) media.Outcome {
	outcome.Status = media.StatusFailed
	outcome.Err = err
	outcome.Duration = time.Since(start)

	wp.logger.ErrorWithFields("download failed", map[string]interface{}{
		"filename": outcome.Task.Filename,
		"url":      outcome.Task.URL,
		"error":    err.Error(),
	})

	if logErr := wp.store.LogFailure(outcome.Task.URL); logErr != nil {
		wp.logger.WithError(logErr).Warn("failed to record failed URL")
	}

	return outcome
}

// QueueSize returns the current number of queued tasks
func (wp *WorkerPool) QueueSize() int {
	return len(wp.jobQueue)
}
