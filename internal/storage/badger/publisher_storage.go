package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
)

// PublisherStorage persists publishers keyed by canonical domain.
type PublisherStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

func NewPublisherStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PublisherStorage {
	return &PublisherStorage{db: db, logger: logger}
}

func (s *PublisherStorage) GetByDomain(_ context.Context, domain string) (*models.Publisher, error) {
	var publisher models.Publisher
	err := s.db.Store().FindOne(&publisher, badgerhold.Where("Domain").Eq(domain))
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find publisher %s: %w", domain, err)
	}
	return &publisher, nil
}

func (s *PublisherStorage) GetOrCreate(ctx context.Context, domain, homepageURL string) (*models.Publisher, error) {
	existing, err := s.GetByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	publisher := &models.Publisher{
		Domain:    domain,
		Name:      domain,
		URL:       homepageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.Store().Insert(domain, publisher); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			// Raced with another creator; theirs wins.
			return s.GetByDomain(ctx, domain)
		}
		return nil, fmt.Errorf("insert publisher %s: %w", domain, err)
	}

	s.logger.Debug().Str("domain", domain).Msg("Publisher created")
	return publisher, nil
}

func (s *PublisherStorage) Mutate(_ context.Context, domain string, fn func(*models.Publisher)) error {
	err := s.db.Store().UpdateMatching(&models.Publisher{}, badgerhold.Where("Domain").Eq(domain), func(record interface{}) error {
		publisher, ok := record.(*models.Publisher)
		if !ok {
			return fmt.Errorf("unexpected record type %T", record)
		}
		fn(publisher)
		return nil
	})
	if err != nil {
		return fmt.Errorf("update publisher %s: %w", domain, err)
	}
	return nil
}

func (s *PublisherStorage) SetFetchStrategy(ctx context.Context, domain, strategy string) error {
	return s.Mutate(ctx, domain, func(p *models.Publisher) {
		p.FetchStrategy = strategy
		p.UpdatedAt = time.Now().UTC()
	})
}

func (s *PublisherStorage) List(_ context.Context) ([]*models.Publisher, error) {
	var publishers []models.Publisher
	if err := s.db.Store().Find(&publishers, badgerhold.Where("Domain").Ne("")); err != nil {
		return nil, fmt.Errorf("list publishers: %w", err)
	}

	sort.Slice(publishers, func(i, j int) bool {
		return publishers[i].CreatedAt.After(publishers[j].CreatedAt)
	})

	out := make([]*models.Publisher, len(publishers))
	for i := range publishers {
		out[i] = &publishers[i]
	}
	return out, nil
}

// ListStale filters in memory because LastCheckedAt is a pointer field
// that the index machinery cannot compare.
func (s *PublisherStorage) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*models.Publisher, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var stale []*models.Publisher
	for _, p := range all {
		if p.LastCheckedAt == nil || !p.LastCheckedAt.Before(cutoff) {
			continue
		}
		stale = append(stale, p)
		if limit > 0 && len(stale) >= limit {
			break
		}
	}
	return stale, nil
}
