package interfaces

import (
	"context"

	"github.com/itsascout/scout/internal/models"
)

// Fetcher is one fetch strategy. Fetch returns a FetchResult or a
// *fetch.FetchError describing why this strategy could not produce one.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, url string) (*models.FetchResult, error)
}

// FetchManager tries an ordered list of strategies, remembering the
// winning strategy per publisher. A nil publisher disables the memory.
// When every strategy fails the returned error is
// *fetch.AllStrategiesExhausted carrying the per-strategy errors.
type FetchManager interface {
	Fetch(ctx context.Context, url string, publisher *models.Publisher) (*models.FetchResult, error)
}
