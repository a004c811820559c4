package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
)

// JobStorage persists resolution jobs keyed by job id.
type JobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

func NewJobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.JobStorage {
	return &JobStorage{db: db, logger: logger}
}

func (s *JobStorage) Create(_ context.Context, job *models.ResolutionJob) error {
	if err := s.db.Store().Insert(job.ID, job); err != nil {
		return fmt.Errorf("insert job %s: %w", job.ID, err)
	}
	return nil
}

func (s *JobStorage) GetByID(_ context.Context, id string) (*models.ResolutionJob, error) {
	var job models.ResolutionJob
	err := s.db.Store().FindOne(&job, badgerhold.Where("ID").Eq(id))
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find job %s: %w", id, err)
	}
	return &job, nil
}

func (s *JobStorage) Mutate(_ context.Context, id string, fn func(*models.ResolutionJob)) error {
	err := s.db.Store().UpdateMatching(&models.ResolutionJob{}, badgerhold.Where("ID").Eq(id), func(record interface{}) error {
		job, ok := record.(*models.ResolutionJob)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		fn(job)
		return nil
	})
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	return nil
}

func (s *JobStorage) FindActiveByCanonicalURL(_ context.Context, canonicalURL string) (*models.ResolutionJob, error) {
	var jobs []models.ResolutionJob
	query := badgerhold.Where("CanonicalURL").Eq(canonicalURL).
		And("Status").In(models.JobStatusPending, models.JobStatusRunning, models.JobStatusCompleted).
		SortBy("CreatedAt").Reverse().Limit(1)
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("find active job for %s: %w", canonicalURL, err)
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	return &jobs[0], nil
}

func (s *JobStorage) FindPriorCompleted(_ context.Context, domain, excludeJobID string) (*models.ResolutionJob, error) {
	var jobs []models.ResolutionJob
	query := badgerhold.Where("Domain").Eq(domain).
		And("Status").Eq(models.JobStatusCompleted).
		And("ID").Ne(excludeJobID).
		SortBy("CreatedAt").Reverse().Limit(1)
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("find prior job for %s: %w", domain, err)
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	return &jobs[0], nil
}
