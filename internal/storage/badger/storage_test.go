package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager(arbor.NewLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestPublisherGetOrCreate(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	missing, err := m.Publishers().GetByDomain(ctx, "example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := m.Publishers().GetOrCreate(ctx, "example.com", "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "example.com", created.Name, "new publisher is named after its domain")
	assert.Equal(t, "https://example.com/", created.URL)

	again, err := m.Publishers().GetOrCreate(ctx, "example.com", "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt.Unix(), again.CreatedAt.Unix())
}

func TestPublisherMutateIsNarrow(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.Publishers().GetOrCreate(ctx, "example.com", "https://example.com/")
	require.NoError(t, err)

	require.NoError(t, m.Publishers().Mutate(ctx, "example.com", func(p *models.Publisher) {
		p.WAFDetected = true
		p.WAFType = "Cloudflare"
	}))
	require.NoError(t, m.Publishers().SetFetchStrategy(ctx, "example.com", "proxy"))

	publisher, err := m.Publishers().GetByDomain(ctx, "example.com")
	require.NoError(t, err)
	assert.True(t, publisher.WAFDetected)
	assert.Equal(t, "Cloudflare", publisher.WAFType)
	assert.Equal(t, "proxy", publisher.FetchStrategy)
	assert.Equal(t, "example.com", publisher.Name, "untouched fields survive narrow writes")
}

func TestPublisherListStale(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for _, domain := range []string{"fresh.com", "stale.com", "never.com"} {
		_, err := m.Publishers().GetOrCreate(ctx, domain, "https://"+domain+"/")
		require.NoError(t, err)
	}

	recent := time.Now().UTC().Add(-time.Hour)
	old := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, m.Publishers().Mutate(ctx, "fresh.com", func(p *models.Publisher) { p.LastCheckedAt = &recent }))
	require.NoError(t, m.Publishers().Mutate(ctx, "stale.com", func(p *models.Publisher) { p.LastCheckedAt = &old }))

	stale, err := m.Publishers().ListStale(ctx, time.Now().UTC().Add(-24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "stale.com", stale[0].Domain)
}

func TestJobLifecycle(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	job := &models.ResolutionJob{
		ID:           "job-1",
		SubmittedURL: "https://example.com/story",
		CanonicalURL: "https://example.com/story",
		Domain:       "example.com",
		Status:       models.JobStatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, m.Jobs().Create(ctx, job))

	require.NoError(t, m.Jobs().Mutate(ctx, "job-1", func(j *models.ResolutionJob) {
		j.Status = models.JobStatusRunning
		j.WAFResult = &models.WAFResult{WAFDetected: true, WAFType: "Cloudflare"}
	}))

	loaded, err := m.Jobs().GetByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusRunning, loaded.Status)
	require.NotNil(t, loaded.WAFResult)
	assert.Equal(t, "Cloudflare", loaded.WAFResult.WAFType)

	missing, err := m.Jobs().GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindActiveByCanonicalURL(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	seed := []struct {
		id     string
		status models.JobStatus
		offset time.Duration
	}{
		{"job-failed", models.JobStatusFailed, 0},
		{"job-old", models.JobStatusCompleted, 10 * time.Minute},
		{"job-new", models.JobStatusRunning, 20 * time.Minute},
	}
	for _, s := range seed {
		require.NoError(t, m.Jobs().Create(ctx, &models.ResolutionJob{
			ID:           s.id,
			CanonicalURL: "https://example.com/story",
			Domain:       "example.com",
			Status:       s.status,
			CreatedAt:    base.Add(s.offset),
		}))
	}

	active, err := m.Jobs().FindActiveByCanonicalURL(ctx, "https://example.com/story")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "job-new", active.ID, "most recent non-failed job wins")

	none, err := m.Jobs().FindActiveByCanonicalURL(ctx, "https://example.com/other")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestFindPriorCompleted(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, m.Jobs().Create(ctx, &models.ResolutionJob{
		ID: "job-1", Domain: "example.com", Status: models.JobStatusCompleted, CreatedAt: base,
	}))
	require.NoError(t, m.Jobs().Create(ctx, &models.ResolutionJob{
		ID: "job-2", Domain: "example.com", Status: models.JobStatusCompleted, CreatedAt: base.Add(10 * time.Minute),
	}))
	require.NoError(t, m.Jobs().Create(ctx, &models.ResolutionJob{
		ID: "job-3", Domain: "example.com", Status: models.JobStatusRunning, CreatedAt: base.Add(20 * time.Minute),
	}))

	prior, err := m.Jobs().FindPriorCompleted(ctx, "example.com", "job-3")
	require.NoError(t, err)
	require.NotNil(t, prior)
	assert.Equal(t, "job-2", prior.ID)

	excluded, err := m.Jobs().FindPriorCompleted(ctx, "example.com", "job-2")
	require.NoError(t, err)
	require.NotNil(t, excluded)
	assert.Equal(t, "job-1", excluded.ID)
}

func TestArticleMostRecentByURL(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, m.Articles().Create(ctx, &models.ArticleMetadata{
		ID: "article_1", JobID: "job-1", ArticleURL: "https://example.com/story", CreatedAt: base,
	}))
	require.NoError(t, m.Articles().Create(ctx, &models.ArticleMetadata{
		ID: "article_2", JobID: "job-2", ArticleURL: "https://example.com/story", CreatedAt: base.Add(10 * time.Minute),
	}))

	newest, err := m.Articles().MostRecentByURL(ctx, "https://example.com/story")
	require.NoError(t, err)
	require.NotNil(t, newest)
	assert.Equal(t, "article_2", newest.ID)

	byJob, err := m.Articles().ListByJob(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, byJob, 1)
	assert.Equal(t, "article_1", byJob[0].ID)
}

func TestWAFReportLatestByDomain(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, m.WAFReports().Append(ctx, &models.WAFReport{
		ID: "waf_1", Domain: "example.com", Firewall: "Generic", CreatedAt: base,
	}))
	require.NoError(t, m.WAFReports().Append(ctx, &models.WAFReport{
		ID: "waf_2", Domain: "example.com", Detected: true, Firewall: "Cloudflare", CreatedAt: base.Add(10 * time.Minute),
	}))

	latest, err := m.WAFReports().LatestByDomain(ctx, "example.com")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "Cloudflare", latest.Firewall)

	none, err := m.WAFReports().LatestByDomain(ctx, "other.com")
	require.NoError(t, err)
	assert.Nil(t, none)
}
