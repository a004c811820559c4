package interfaces

import (
	"context"

	"github.com/itsascout/scout/internal/models"
)

// WAFScanner runs the external WAF fingerprinter against a URL and
// returns its findings.
type WAFScanner interface {
	Scan(ctx context.Context, url string) ([]models.WAFFinding, error)
}
