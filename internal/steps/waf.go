package steps

import (
	"context"

	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
)

// DetectWAF fingerprints the publisher homepage with the external
// scanner. The findings are returned alongside the result so the caller
// can persist scan history.
func DetectWAF(ctx context.Context, scanner interfaces.WAFScanner, homepageURL string) (*models.WAFResult, []models.WAFFinding) {
	if scanner == nil {
		return &models.WAFResult{Error: "waf scanner not configured"}, nil
	}

	findings, err := scanner.Scan(ctx, homepageURL)
	if err != nil {
		return &models.WAFResult{WAFDetected: false, WAFType: "", Error: err.Error()}, nil
	}

	for _, finding := range findings {
		if finding.Detected {
			return &models.WAFResult{WAFDetected: true, WAFType: finding.Firewall}, findings
		}
	}
	return &models.WAFResult{WAFDetected: false, WAFType: ""}, findings
}
