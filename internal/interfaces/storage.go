package interfaces

import (
	"context"
	"time"

	"github.com/itsascout/scout/internal/models"
)

// PublisherStorage persists Publisher rows keyed by canonical domain.
// Mutations go through Mutate so writes stay scoped to the fields the
// caller actually changes.
type PublisherStorage interface {
	// GetByDomain returns the publisher or (nil, nil) when absent.
	GetByDomain(ctx context.Context, domain string) (*models.Publisher, error)

	// GetOrCreate returns the existing publisher for the domain or
	// creates one named after the domain with the given homepage URL.
	GetOrCreate(ctx context.Context, domain, homepageURL string) (*models.Publisher, error)

	// Mutate applies fn to the stored row inside a single transaction.
	Mutate(ctx context.Context, domain string, fn func(*models.Publisher)) error

	// SetFetchStrategy writes the preferred-strategy field and nothing else.
	SetFetchStrategy(ctx context.Context, domain, strategy string) error

	List(ctx context.Context) ([]*models.Publisher, error)

	// ListStale returns up to limit publishers whose last check is older
	// than the cutoff (never-checked publishers excluded).
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*models.Publisher, error)
}

// JobStorage persists ResolutionJob rows.
type JobStorage interface {
	Create(ctx context.Context, job *models.ResolutionJob) error

	// GetByID returns the job or (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*models.ResolutionJob, error)

	// Mutate applies fn to the stored row inside a single transaction.
	Mutate(ctx context.Context, id string, fn func(*models.ResolutionJob)) error

	// FindActiveByCanonicalURL returns the most recent job for the URL
	// with status pending, running, or completed, or (nil, nil).
	FindActiveByCanonicalURL(ctx context.Context, canonicalURL string) (*models.ResolutionJob, error)

	// FindPriorCompleted returns the most recent completed job for the
	// domain excluding the given job ID, or (nil, nil).
	FindPriorCompleted(ctx context.Context, domain, excludeJobID string) (*models.ResolutionJob, error)
}

// ArticleStorage persists ArticleMetadata rows.
type ArticleStorage interface {
	Create(ctx context.Context, article *models.ArticleMetadata) error

	// MostRecentByURL returns the newest row for the article URL, or
	// (nil, nil) when none exists.
	MostRecentByURL(ctx context.Context, articleURL string) (*models.ArticleMetadata, error)

	ListByJob(ctx context.Context, jobID string) ([]*models.ArticleMetadata, error)
}

// WAFReportStorage persists WAF scan history rows.
type WAFReportStorage interface {
	Append(ctx context.Context, report *models.WAFReport) error
	LatestByDomain(ctx context.Context, domain string) (*models.WAFReport, error)
}

// StorageManager bundles the per-entity storages behind one lifecycle.
type StorageManager interface {
	Publishers() PublisherStorage
	Jobs() JobStorage
	Articles() ArticleStorage
	WAFReports() WAFReportStorage
	Close() error
}
