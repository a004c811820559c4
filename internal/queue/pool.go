package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
)

// Runner executes one job by id.
type Runner interface {
	Run(ctx context.Context, jobID string) error
}

// WorkerPool drains the job queue with a fixed set of workers. Each
// worker holds one job at a time and runs it under the configured
// wall-clock timeout. Messages are acknowledged after the run whether
// it succeeded or failed; the job row carries the outcome, so a retry
// through queue redelivery would only repeat a completed analysis.
type WorkerPool struct {
	queue        *JobQueue
	runner       Runner
	concurrency  int
	pollInterval time.Duration
	jobTimeout   time.Duration
	logger       arbor.ILogger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewWorkerPool(queue *JobQueue, runner Runner, concurrency int, pollInterval, jobTimeout time.Duration, logger arbor.ILogger) *WorkerPool {
	if concurrency <= 0 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	if jobTimeout <= 0 {
		jobTimeout = 600 * time.Second
	}
	return &WorkerPool{
		queue:        queue,
		runner:       runner,
		concurrency:  concurrency,
		pollInterval: pollInterval,
		jobTimeout:   jobTimeout,
		logger:       logger,
	}
}

// Start launches the workers. Stop shuts them down.
func (p *WorkerPool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	p.logger.Info().Int("workers", p.concurrency).Msg("Worker pool started")
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (p *WorkerPool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info().Msg("Worker pool stopped")
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		delivery, err := p.queue.Receive(ctx)
		if err != nil {
			if !errors.Is(err, ErrEmpty) {
				p.logger.Warn().Err(err).Int("worker", id).Msg("Queue receive failed")
			}
			continue
		}

		p.runOne(ctx, id, delivery)
	}
}

func (p *WorkerPool) runOne(ctx context.Context, workerID int, delivery *Delivery) {
	runCtx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	defer cancel()

	err := p.safeRun(runCtx, delivery.JobID)
	if err != nil {
		p.logger.Warn().Err(err).Int("worker", workerID).Str("job_id", delivery.JobID).Msg("Job run failed")
	} else {
		p.logger.Debug().Int("worker", workerID).Str("job_id", delivery.JobID).Msg("Job run finished")
	}

	if err := delivery.Delete(); err != nil {
		p.logger.Warn().Err(err).Str("job_id", delivery.JobID).Msg("Queue acknowledge failed")
	}
}

// safeRun converts a runner panic into an error so one bad job cannot
// take down the worker.
func (p *WorkerPool) safeRun(ctx context.Context, jobID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job runner panic: %v", r)
		}
	}()
	return p.runner.Run(ctx, jobID)
}
