// Package scheduler runs the periodic stale-publisher recheck sweep.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
)

// Submitter accepts a URL for pipeline processing. The gate satisfies
// this; a sweep submission goes through the same dedup and freshness
// checks as a user submission.
type Submitter interface {
	Submit(ctx context.Context, rawURL string) (*models.ResolutionJob, error)
}

// Sweeper periodically resubmits publishers whose last check has aged
// past the publisher freshness TTL.
type Sweeper struct {
	publishers   interfaces.PublisherStorage
	gate         Submitter
	cron         *cron.Cron
	schedule     string
	publisherTTL time.Duration
	batchSize    int
	logger       arbor.ILogger

	mu       sync.Mutex
	running  bool
	sweeping bool
}

func NewSweeper(publishers interfaces.PublisherStorage, gate Submitter, schedule string, publisherTTL time.Duration, batchSize int, logger arbor.ILogger) *Sweeper {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Sweeper{
		publishers:   publishers,
		gate:         gate,
		cron:         cron.New(),
		schedule:     schedule,
		publisherTTL: publisherTTL,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Start registers the sweep on the configured cron schedule. An empty
// schedule disables the sweeper.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("sweeper already running")
	}
	if s.schedule == "" {
		s.logger.Info().Msg("Recheck sweeper disabled (no schedule configured)")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.Sweep(context.Background()) }); err != nil {
		return fmt.Errorf("failed to register recheck sweep: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info().
		Str("schedule", s.schedule).
		Int("batch_size", s.batchSize).
		Msg("Recheck sweeper started")
	return nil
}

// Stop halts the cron scheduler and waits for an in-flight sweep.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Recheck sweeper stopped")
}

// Sweep resubmits up to batchSize publishers not checked within the
// publisher TTL. Overlapping sweeps are collapsed into one.
func (s *Sweeper) Sweep(ctx context.Context) int {
	s.mu.Lock()
	if s.sweeping {
		s.mu.Unlock()
		s.logger.Debug().Msg("Sweep already in progress, skipping")
		return 0
	}
	s.sweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sweeping = false
		s.mu.Unlock()
	}()

	cutoff := time.Now().UTC().Add(-s.publisherTTL)
	stale, err := s.publishers.ListStale(ctx, cutoff, s.batchSize)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to list stale publishers")
		return 0
	}
	if len(stale) == 0 {
		return 0
	}

	submitted := 0
	for _, publisher := range stale {
		url := publisher.URL
		if url == "" {
			url = "https://" + publisher.Domain + "/"
		}
		job, err := s.gate.Submit(ctx, url)
		if err != nil {
			s.logger.Warn().Err(err).Str("domain", publisher.Domain).Msg("Recheck submission failed")
			continue
		}
		submitted++
		s.logger.Info().
			Str("domain", publisher.Domain).
			Str("job_id", job.ID).
			Msg("Stale publisher resubmitted")
	}
	return submitted
}
