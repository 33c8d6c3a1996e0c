package queue

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

// WorkerPool runs jobs on a fixed number of workers fed by a bounded queue
type WorkerPool struct {
	jobQueue    chan *types.Job
	workerCount int
	processor   Processor
	logger      *slog.Logger

	mu      sync.RWMutex // guards stopped and the close of jobQueue
	stopped bool
	started bool
	wg      sync.WaitGroup
	active  atomic.Int32
}

// NewWorkerPool creates a pool of workerCount workers and a queue holding
// up to queueSize jobs that wait for a worker.
func NewWorkerPool(workerCount, queueSize int, processor Processor, logger *slog.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &WorkerPool{
		jobQueue:    make(chan *types.Job, queueSize),
		workerCount: workerCount,
		processor:   processor,
		logger:      logger.With("component", "worker_pool"),
	}
}

// Start launches the workers. Jobs run with ctx; a running job is never
// interrupted by Stop.
func (wp *WorkerPool) Start(ctx context.Context) {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.started {
		return
	}
	wp.started = true

	wp.logger.Info("starting worker pool", "workers", wp.workerCount, "queue_size", cap(wp.jobQueue))
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Enqueue hands job to the pool without blocking.
func (wp *WorkerPool) Enqueue(job *types.Job) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.stopped {
		return ErrPoolStopped
	}

	select {
	case wp.jobQueue <- job:
		wp.logger.Info("job enqueued", "job_id", job.ID, "queue_depth", len(wp.jobQueue))
		return nil
	default:
		return ErrQueueFull
	}
}

// QueueDepth is the number of jobs waiting for a worker.
func (wp *WorkerPool) QueueDepth() int {
	return len(wp.jobQueue)
}

// Active is the number of jobs being processed.
func (wp *WorkerPool) Active() int {
	return int(wp.active.Load())
}

// Stop refuses new jobs and waits until queued and running jobs finish or
// ctx is done.
func (wp *WorkerPool) Stop(ctx context.Context) error {
	wp.mu.Lock()
	if !wp.stopped {
		wp.stopped = true
		close(wp.jobQueue)
	}
	wp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		wp.logger.Info("worker pool stopped")
		return nil
	case <-ctx.Done():
		wp.logger.Warn("worker pool stop timed out", "active", wp.Active(), "queued", wp.QueueDepth())
		return fmt.Errorf("waiting for workers: %w", ctx.Err())
	}
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	wp.logger.Debug("worker started", "worker", id)

	for job := range wp.jobQueue {
		wp.run(ctx, id, job)
	}
}

func (wp *WorkerPool) run(ctx context.Context, id int, job *types.Job) {
	wp.active.Add(1)
	defer wp.active.Add(-1)

	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error("panic processing job",
				"worker", id,
				"job_id", job.ID,
				"panic", r,
				"stack", string(debug.Stack()))
			job.State = types.StateFailed
			job.Error = fmt.Errorf("worker panic: %v", r)
		}
	}()

	wp.logger.Debug("processing job", "worker", id, "job_id", job.ID)
	if err := wp.processor.Process(ctx, job); err != nil {
		wp.logger.Debug("job failed", "worker", id, "job_id", job.ID, "error", err)
	}
}
