package steps

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itsascout/scout/internal/models"
)

// fakeFetchManager serves canned bodies per URL and records call order.
type fakeFetchManager struct {
	bodies  map[string]string
	headers map[string]http.Header
	calls   []string
}

func (f *fakeFetchManager) Fetch(_ context.Context, url string, _ *models.Publisher) (*models.FetchResult, error) {
	f.calls = append(f.calls, url)
	body, ok := f.bodies[url]
	if !ok {
		return nil, errors.New("not found: " + url)
	}
	return &models.FetchResult{
		Body:       body,
		StatusCode: 200,
		Strategy:   "browser",
		URL:        url,
		Headers:    f.headers[url],
	}, nil
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "https://example.com/terms", resolveURL("https://example.com/", "/terms"))
	assert.Equal(t, "https://other.com/x", resolveURL("https://example.com/", "https://other.com/x"))
	assert.Equal(t, "", resolveURL("https://example.com/", "  "))
}

func TestSameResource(t *testing.T) {
	assert.True(t, sameResource("https://example.com/", "https://example.com"))
	assert.True(t, sameResource("https://Example.com", "https://example.com/"))
	assert.False(t, sameResource("https://example.com/a", "https://example.com/b"))
}
