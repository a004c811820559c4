package steps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsascout/scout/internal/models"
)

type stubDiscoverer struct {
	links  []models.PageLink
	result *models.TermsDiscovery
	err    error
}

func (s *stubDiscoverer) DiscoverTerms(_ context.Context, links []models.PageLink, _ string) (*models.TermsDiscovery, error) {
	s.links = links
	return s.result, s.err
}

type stubEvaluator struct {
	document string
	result   *models.TermsEvaluation
	err      error
}

func (s *stubEvaluator) EvaluateTerms(_ context.Context, document, _ string) (*models.TermsEvaluation, error) {
	s.document = document
	return s.result, s.err
}

func TestDiscoverToSCollectsAndResolvesLinks(t *testing.T) {
	html := `<html><body>
<a href="/terms">Terms of Service</a>
<a href="https://example.com/privacy">Privacy</a>
<a href="javascript:void(0)">Menu</a>
<a href="#top">Back to top</a>
</body></html>`

	agent := &stubDiscoverer{result: &models.TermsDiscovery{
		TermsOfServiceURL: "/terms",
		ConfidenceScore:   0.9,
		Notes:             "footer link",
	}}

	result := DiscoverToS(context.Background(), agent, html, "https://example.com/")

	require.Len(t, agent.links, 2)
	assert.Equal(t, "https://example.com/terms", agent.links[0].Href)
	assert.Equal(t, "Terms of Service", agent.links[0].Text)

	assert.Equal(t, "https://example.com/terms", result.TosURL)
	assert.Equal(t, 0.9, result.Confidence)
	assert.Equal(t, "footer link", result.Notes)
}

func TestDiscoverToSEmptyHomepage(t *testing.T) {
	result := DiscoverToS(context.Background(), &stubDiscoverer{}, "", "https://example.com/")
	assert.NotEmpty(t, result.Error)
}

func TestEvaluateToSSkippedWithoutURL(t *testing.T) {
	result := EvaluateToS(context.Background(), &fakeFetchManager{}, &stubEvaluator{}, nil, "")

	assert.True(t, result.Skipped)
	assert.NotEmpty(t, result.Reason)
}

func TestEvaluateToSConvertsAndEvaluates(t *testing.T) {
	fetcher := &fakeFetchManager{bodies: map[string]string{
		"https://example.com/terms": "<html><body><h1>Terms</h1><p>No scraping.</p></body></html>",
	}}
	agent := &stubEvaluator{result: &models.TermsEvaluation{
		Permissions: []models.ActivityPermission{
			{Activity: "scraping", Permission: models.PermissionExplicitlyProhibited},
		},
		DocumentType:    "terms_of_service",
		ConfidenceScore: 0.8,
	}}

	result := EvaluateToS(context.Background(), fetcher, agent, nil, "https://example.com/terms")

	assert.Contains(t, agent.document, "Terms", "document should reach the evaluator as markdown")
	require.Len(t, result.Permissions, 1)
	assert.Equal(t, models.PermissionExplicitlyProhibited, result.Permissions[0].Permission)
	assert.Equal(t, "terms_of_service", result.DocumentType)
}

func TestEvaluateToSFetchFailure(t *testing.T) {
	result := EvaluateToS(context.Background(), &fakeFetchManager{}, &stubEvaluator{}, nil, "https://example.com/terms")
	assert.NotEmpty(t, result.Error)
}

func TestMergeToSResultsEvaluationWins(t *testing.T) {
	discovery := &models.ToSResult{TosURL: "https://example.com/terms", Confidence: 0.9, Notes: "footer"}
	evaluation := &models.ToSResult{
		Permissions:     []models.ActivityPermission{{Activity: "ai_training", Permission: models.PermissionConditionalAmbiguous}},
		DocumentType:    "terms_of_service",
		ConfidenceScore: 0.7,
	}

	merged := MergeToSResults(discovery, evaluation)

	assert.Equal(t, "https://example.com/terms", merged.TosURL)
	assert.Equal(t, 0.9, merged.Confidence)
	assert.Equal(t, "terms_of_service", merged.DocumentType)
	assert.Equal(t, 0.7, merged.ConfidenceScore)
	require.Len(t, merged.Permissions, 1)
}

func TestMergeToSResultsNilSides(t *testing.T) {
	only := &models.ToSResult{TosURL: "https://example.com/terms"}
	assert.Equal(t, only, MergeToSResults(only, nil))
	assert.Equal(t, only, MergeToSResults(nil, only))
}

func TestMergeToSResultsSkippedEvaluation(t *testing.T) {
	discovery := &models.ToSResult{TosURL: ""}
	evaluation := &models.ToSResult{Skipped: true, Reason: "no terms of service url discovered"}

	merged := MergeToSResults(discovery, evaluation)

	assert.True(t, merged.Skipped)
	assert.Equal(t, "no terms of service url discovered", merged.Reason)
}
