// Package fetch implements the strategy-based fetch layer: an ordered
// list of fetchers with per-publisher strategy memory and WAF-aware
// failure reporting.
package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
)

// Manager tries strategies in order, preferring the publisher's stored
// strategy, and remembers the winning strategy with a narrow write.
type Manager struct {
	strategies []interfaces.Fetcher
	publishers interfaces.PublisherStorage
	limiter    *originLimiter
	logger     arbor.ILogger
}

// NewManager creates a fetch manager over the given strategies in
// declared order. publishers may be nil to disable strategy memory.
func NewManager(strategies []interfaces.Fetcher, publishers interfaces.PublisherStorage, perOriginInterval time.Duration, logger arbor.ILogger) *Manager {
	return &Manager{
		strategies: strategies,
		publishers: publishers,
		limiter:    newOriginLimiter(perOriginInterval),
		logger:     logger,
	}
}

// Fetch fetches the URL through the first strategy that succeeds.
// Reentrant; no per-URL locking.
func (m *Manager) Fetch(ctx context.Context, url string, publisher *models.Publisher) (*models.FetchResult, error) {
	if err := m.limiter.Wait(ctx, url); err != nil {
		return nil, err
	}

	var attempts []*FetchError
	for _, strategy := range m.ordered(publisher) {
		result, err := strategy.Fetch(ctx, url)
		if err != nil {
			var fe *FetchError
			if !errors.As(err, &fe) {
				fe = &FetchError{Strategy: strategy.Name(), Cause: err}
			}
			attempts = append(attempts, fe)
			m.logger.Warn().
				Str("url", url).
				Str("strategy", strategy.Name()).
				Err(err).
				Msg("Fetch strategy failed, trying next")
			continue
		}

		m.remember(ctx, publisher, strategy.Name())
		return result, nil
	}

	return nil, &AllStrategiesExhausted{URL: url, Errors: attempts}
}

// ordered returns the strategies with the publisher's preference first.
func (m *Manager) ordered(publisher *models.Publisher) []interfaces.Fetcher {
	if publisher == nil || publisher.FetchStrategy == "" {
		return m.strategies
	}

	ordered := make([]interfaces.Fetcher, 0, len(m.strategies))
	for _, s := range m.strategies {
		if s.Name() == publisher.FetchStrategy {
			ordered = append(ordered, s)
		}
	}
	for _, s := range m.strategies {
		if s.Name() != publisher.FetchStrategy {
			ordered = append(ordered, s)
		}
	}
	return ordered
}

// remember persists the winning strategy when it differs from the
// stored preference. Writes touch the strategy field only; a write
// failure is logged, never surfaced.
func (m *Manager) remember(ctx context.Context, publisher *models.Publisher, strategy string) {
	if publisher == nil || m.publishers == nil || publisher.FetchStrategy == strategy {
		return
	}

	if err := m.publishers.SetFetchStrategy(ctx, publisher.Domain, strategy); err != nil {
		m.logger.Warn().
			Str("domain", publisher.Domain).
			Str("strategy", strategy).
			Err(err).
			Msg("Failed to persist fetch strategy preference")
		return
	}

	publisher.FetchStrategy = strategy
	m.logger.Debug().
		Str("domain", publisher.Domain).
		Str("strategy", strategy).
		Msg("Fetch strategy preference updated")
}
