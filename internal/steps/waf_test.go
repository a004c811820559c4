package steps

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsascout/scout/internal/models"
)

type stubScanner struct {
	findings []models.WAFFinding
	err      error
}

func (s *stubScanner) Scan(_ context.Context, _ string) ([]models.WAFFinding, error) {
	return s.findings, s.err
}

func TestDetectWAFDetected(t *testing.T) {
	scanner := &stubScanner{findings: []models.WAFFinding{
		{Firewall: "Generic", Detected: false},
		{Firewall: "Cloudflare", Detected: true},
	}}

	result, findings := DetectWAF(context.Background(), scanner, "https://example.com/")

	assert.True(t, result.WAFDetected)
	assert.Equal(t, "Cloudflare", result.WAFType)
	require.Len(t, findings, 2)
}

func TestDetectWAFNotDetected(t *testing.T) {
	scanner := &stubScanner{findings: []models.WAFFinding{{Firewall: "Generic", Detected: false}}}

	result, _ := DetectWAF(context.Background(), scanner, "https://example.com/")

	assert.False(t, result.WAFDetected)
	assert.Empty(t, result.WAFType)
	assert.Empty(t, result.Error)
}

func TestDetectWAFScanError(t *testing.T) {
	scanner := &stubScanner{err: errors.New("binary not found")}

	result, findings := DetectWAF(context.Background(), scanner, "https://example.com/")

	assert.False(t, result.WAFDetected)
	assert.Equal(t, "binary not found", result.Error)
	assert.Nil(t, findings)
}

func TestDetectWAFNilScanner(t *testing.T) {
	result, _ := DetectWAF(context.Background(), nil, "https://example.com/")
	assert.NotEmpty(t, result.Error)
}
