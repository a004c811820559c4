package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/canonical"
	"github.com/itsascout/scout/internal/common"
	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
)

// Enqueuer hands a job id to the background worker pool.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobID string) error
}

// Gate is the submission entry point: it canonicalizes the URL,
// deduplicates against in-flight or completed jobs for the same
// canonical URL, and creates plus enqueues a new job otherwise.
type Gate struct {
	jobs       interfaces.JobStorage
	publishers interfaces.PublisherStorage
	queue      Enqueuer
	logger     arbor.ILogger
}

func NewGate(jobs interfaces.JobStorage, publishers interfaces.PublisherStorage, queue Enqueuer, logger arbor.ILogger) *Gate {
	return &Gate{jobs: jobs, publishers: publishers, queue: queue, logger: logger}
}

// Submit resolves a raw URL to a job. An existing pending, running, or
// completed job for the same canonical URL is returned as-is, making
// resubmission idempotent. Validation failures return
// canonical.ErrInvalidURL wrapped with detail.
func (g *Gate) Submit(ctx context.Context, rawURL string) (*models.ResolutionJob, error) {
	canonicalURL, err := canonical.Canonicalize(rawURL)
	if err != nil {
		return nil, err
	}
	domain, err := canonical.ExtractDomain(canonicalURL)
	if err != nil {
		return nil, err
	}

	existing, err := g.jobs.FindActiveByCanonicalURL(ctx, canonicalURL)
	if err != nil {
		return nil, fmt.Errorf("job lookup: %w", err)
	}
	if existing != nil {
		g.logger.Info().Str("job_id", existing.ID).Str("canonical_url", canonicalURL).Msg("Reusing existing job for resubmitted URL")
		return existing, nil
	}

	if _, err := g.publishers.GetOrCreate(ctx, domain, "https://"+domain+"/"); err != nil {
		return nil, fmt.Errorf("publisher lookup: %w", err)
	}

	now := time.Now().UTC()
	job := &models.ResolutionJob{
		ID:           common.NewJobID(),
		SubmittedURL: rawURL,
		CanonicalURL: canonicalURL,
		Domain:       domain,
		Status:       models.JobStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := g.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	if err := g.queue.Enqueue(ctx, job.ID); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	g.logger.Info().Str("job_id", job.ID).Str("domain", domain).Str("canonical_url", canonicalURL).Msg("Job submitted")
	return job, nil
}
