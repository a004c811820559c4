package handlers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/itsascout/scout/internal/models"
)

// fakeJobs is a map-backed JobStorage for handler tests.
type fakeJobs struct {
	mu   sync.Mutex
	rows map[string]*models.ResolutionJob
}

func newFakeJobs(jobs ...*models.ResolutionJob) *fakeJobs {
	f := &fakeJobs{rows: make(map[string]*models.ResolutionJob)}
	for _, j := range jobs {
		f.rows[j.ID] = j
	}
	return f
}

func (f *fakeJobs) Create(_ context.Context, job *models.ResolutionJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[job.ID] = job
	return nil
}

func (f *fakeJobs) GetByID(_ context.Context, id string) (*models.ResolutionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.rows[id]; ok {
		clone := *j
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeJobs) Mutate(_ context.Context, id string, fn func(*models.ResolutionJob)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.rows[id]
	if !ok {
		return errors.New("job not found")
	}
	fn(j)
	return nil
}

func (f *fakeJobs) FindActiveByCanonicalURL(_ context.Context, canonicalURL string) (*models.ResolutionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.rows {
		if j.CanonicalURL != canonicalURL {
			continue
		}
		switch j.Status {
		case models.JobStatusPending, models.JobStatusRunning, models.JobStatusCompleted:
			clone := *j
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeJobs) FindPriorCompleted(context.Context, string, string) (*models.ResolutionJob, error) {
	return nil, nil
}

// fakePublishers is a map-backed PublisherStorage.
type fakePublishers struct {
	mu   sync.Mutex
	rows map[string]*models.Publisher
}

func newFakePublishers(publishers ...*models.Publisher) *fakePublishers {
	f := &fakePublishers{rows: make(map[string]*models.Publisher)}
	for _, p := range publishers {
		f.rows[p.Domain] = p
	}
	return f
}

func (f *fakePublishers) GetByDomain(_ context.Context, domain string) (*models.Publisher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.rows[domain]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, nil
}

func (f *fakePublishers) GetOrCreate(_ context.Context, domain, homepageURL string) (*models.Publisher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.rows[domain]; ok {
		clone := *p
		return &clone, nil
	}
	p := &models.Publisher{Domain: domain, Name: domain, URL: homepageURL, CreatedAt: time.Now().UTC()}
	f.rows[domain] = p
	clone := *p
	return &clone, nil
}

func (f *fakePublishers) Mutate(_ context.Context, domain string, fn func(*models.Publisher)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[domain]
	if !ok {
		return errors.New("publisher not found")
	}
	fn(p)
	return nil
}

func (f *fakePublishers) SetFetchStrategy(_ context.Context, domain, strategy string) error {
	return f.Mutate(context.Background(), domain, func(p *models.Publisher) { p.FetchStrategy = strategy })
}

func (f *fakePublishers) List(context.Context) ([]*models.Publisher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Publisher
	for _, p := range f.rows {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakePublishers) ListStale(context.Context, time.Time, int) ([]*models.Publisher, error) {
	return nil, nil
}

// fakeReports is a slice-backed WAFReportStorage.
type fakeReports struct {
	rows []*models.WAFReport
}

func (f *fakeReports) Append(_ context.Context, report *models.WAFReport) error {
	f.rows = append(f.rows, report)
	return nil
}

func (f *fakeReports) LatestByDomain(_ context.Context, domain string) (*models.WAFReport, error) {
	var newest *models.WAFReport
	for _, r := range f.rows {
		if r.Domain != domain {
			continue
		}
		if newest == nil || r.CreatedAt.After(newest.CreatedAt) {
			newest = r
		}
	}
	return newest, nil
}

// fakeEnqueuer records enqueued job ids.
type fakeEnqueuer struct {
	mu     sync.Mutex
	jobIDs []string
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobIDs = append(f.jobIDs, jobID)
	return nil
}
