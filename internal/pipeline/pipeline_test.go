package pipeline

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
)

// memStore is an in-memory StorageManager for supervisor and gate tests.
type memStore struct {
	mu         sync.Mutex
	publishers map[string]*models.Publisher
	jobs       map[string]*models.ResolutionJob
	articles   []*models.ArticleMetadata
	reports    []*models.WAFReport

	failArticleCreate bool
}

func newMemStore() *memStore {
	return &memStore{
		publishers: make(map[string]*models.Publisher),
		jobs:       make(map[string]*models.ResolutionJob),
	}
}

func (s *memStore) Publishers() interfaces.PublisherStorage { return (*memPublishers)(s) }
func (s *memStore) Jobs() interfaces.JobStorage             { return (*memJobs)(s) }
func (s *memStore) Articles() interfaces.ArticleStorage     { return (*memArticles)(s) }
func (s *memStore) WAFReports() interfaces.WAFReportStorage { return (*memReports)(s) }
func (s *memStore) Close() error                            { return nil }

type memPublishers memStore

func (s *memPublishers) GetByDomain(_ context.Context, domain string) (*models.Publisher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.publishers[domain]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, nil
}

func (s *memPublishers) GetOrCreate(_ context.Context, domain, homepageURL string) (*models.Publisher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.publishers[domain]; ok {
		clone := *p
		return &clone, nil
	}
	now := time.Now().UTC()
	p := &models.Publisher{Domain: domain, Name: domain, URL: homepageURL, CreatedAt: now, UpdatedAt: now}
	s.publishers[domain] = p
	clone := *p
	return &clone, nil
}

func (s *memPublishers) Mutate(_ context.Context, domain string, fn func(*models.Publisher)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.publishers[domain]
	if !ok {
		return errors.New("publisher not found: " + domain)
	}
	fn(p)
	return nil
}

func (s *memPublishers) SetFetchStrategy(_ context.Context, domain, strategy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.publishers[domain]; ok {
		p.FetchStrategy = strategy
	}
	return nil
}

func (s *memPublishers) List(_ context.Context) ([]*models.Publisher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Publisher
	for _, p := range s.publishers {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (s *memPublishers) ListStale(_ context.Context, cutoff time.Time, limit int) ([]*models.Publisher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Publisher
	for _, p := range s.publishers {
		if p.LastCheckedAt != nil && p.LastCheckedAt.Before(cutoff) && len(out) < limit {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

type memJobs memStore

func (s *memJobs) Create(_ context.Context, job *models.ResolutionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *job
	s.jobs[job.ID] = &clone
	return nil
}

func (s *memJobs) GetByID(_ context.Context, id string) (*models.ResolutionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		clone := *j
		return &clone, nil
	}
	return nil, nil
}

func (s *memJobs) Mutate(_ context.Context, id string, fn func(*models.ResolutionJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return errors.New("job not found: " + id)
	}
	fn(j)
	return nil
}

func (s *memJobs) FindActiveByCanonicalURL(_ context.Context, canonicalURL string) (*models.ResolutionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []*models.ResolutionJob
	for _, j := range s.jobs {
		if j.CanonicalURL != canonicalURL {
			continue
		}
		switch j.Status {
		case models.JobStatusPending, models.JobStatusRunning, models.JobStatusCompleted:
			matches = append(matches, j)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sort.Slice(matches, func(i, k int) bool { return matches[i].CreatedAt.After(matches[k].CreatedAt) })
	clone := *matches[0]
	return &clone, nil
}

func (s *memJobs) FindPriorCompleted(_ context.Context, domain, excludeJobID string) (*models.ResolutionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []*models.ResolutionJob
	for _, j := range s.jobs {
		if j.Domain == domain && j.Status == models.JobStatusCompleted && j.ID != excludeJobID {
			matches = append(matches, j)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sort.Slice(matches, func(i, k int) bool { return matches[i].CreatedAt.After(matches[k].CreatedAt) })
	clone := *matches[0]
	return &clone, nil
}

type memArticles memStore

func (s *memArticles) Create(_ context.Context, article *models.ArticleMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failArticleCreate {
		return errors.New("article storage unavailable")
	}
	clone := *article
	s.articles = append(s.articles, &clone)
	return nil
}

func (s *memArticles) MostRecentByURL(_ context.Context, articleURL string) (*models.ArticleMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest *models.ArticleMetadata
	for _, a := range s.articles {
		if a.ArticleURL != articleURL {
			continue
		}
		if newest == nil || a.CreatedAt.After(newest.CreatedAt) {
			newest = a
		}
	}
	if newest == nil {
		return nil, nil
	}
	clone := *newest
	return &clone, nil
}

func (s *memArticles) ListByJob(_ context.Context, jobID string) ([]*models.ArticleMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ArticleMetadata
	for _, a := range s.articles {
		if a.JobID == jobID {
			clone := *a
			out = append(out, &clone)
		}
	}
	return out, nil
}

type memReports memStore

func (s *memReports) Append(_ context.Context, report *models.WAFReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *report
	s.reports = append(s.reports, &clone)
	return nil
}

func (s *memReports) LatestByDomain(_ context.Context, domain string) (*models.WAFReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest *models.WAFReport
	for _, r := range s.reports {
		if r.Domain != domain {
			continue
		}
		if newest == nil || r.CreatedAt.After(newest.CreatedAt) {
			newest = r
		}
	}
	if newest == nil {
		return nil, nil
	}
	clone := *newest
	return &clone, nil
}

// recordingEvents captures published step events in order.
type recordingEvents struct {
	mu     sync.Mutex
	events []models.StepEvent
}

func (r *recordingEvents) Publish(_ context.Context, _ string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev, ok := payload.(models.StepEvent); ok {
		r.events = append(r.events, ev)
	}
}

func (r *recordingEvents) Subscribe(string) (<-chan []byte, func()) {
	ch := make(chan []byte)
	close(ch)
	return ch, func() {}
}

func (r *recordingEvents) Close() error { return nil }

func (r *recordingEvents) all() []models.StepEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.StepEvent(nil), r.events...)
}

// stubFetch serves canned bodies per URL and records calls.
type stubFetch struct {
	mu     sync.Mutex
	bodies map[string]string
	calls  []string
}

func (f *stubFetch) Fetch(_ context.Context, url string, _ *models.Publisher) (*models.FetchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	body, ok := f.bodies[url]
	if !ok {
		return nil, errors.New("not found: " + url)
	}
	return &models.FetchResult{Body: body, StatusCode: 200, Strategy: "browser", URL: url}, nil
}

func (f *stubFetch) fetched(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == url {
			return true
		}
	}
	return false
}

type stubScanner struct {
	mu       sync.Mutex
	findings []models.WAFFinding
	err      error
	calls    int
}

func (s *stubScanner) Scan(context.Context, string) ([]models.WAFFinding, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.findings, s.err
}

type stubAgents struct {
	discovery  *models.TermsDiscovery
	evaluation *models.TermsEvaluation
	summary    string
	err        error
}

func (a *stubAgents) DiscoverTerms(context.Context, []models.PageLink, string) (*models.TermsDiscovery, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.discovery, nil
}

func (a *stubAgents) EvaluateTerms(context.Context, string, string) (*models.TermsEvaluation, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.evaluation, nil
}

func (a *stubAgents) ProfileMetadata(context.Context, *models.ArticleExtraction) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return a.summary, nil
}

type stubEnqueuer struct {
	mu     sync.Mutex
	jobIDs []string
	err    error
}

func (e *stubEnqueuer) Enqueue(_ context.Context, jobID string) error {
	if e.err != nil {
		return e.err
	}
	e.mu.Lock()
	e.jobIDs = append(e.jobIDs, jobID)
	e.mu.Unlock()
	return nil
}
