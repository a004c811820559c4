package interfaces

import (
	"context"

	"github.com/itsascout/scout/internal/models"
)

// LLMService is a minimal chat-completion client over one provider.
type LLMService interface {
	// Complete sends a system prompt plus one user message and returns
	// the model's text response.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	ProviderName() string
}

// TermsDiscoverer picks the canonical Terms of Service URL from a page's
// anchor list.
type TermsDiscoverer interface {
	DiscoverTerms(ctx context.Context, links []models.PageLink, baseURL string) (*models.TermsDiscovery, error)
}

// TermsEvaluator classifies a ToS document into a permission matrix over
// the automated-use activities.
type TermsEvaluator interface {
	EvaluateTerms(ctx context.Context, document, url string) (*models.TermsEvaluation, error)
}

// MetadataProfiler summarizes an article's extracted metadata.
type MetadataProfiler interface {
	ProfileMetadata(ctx context.Context, extraction *models.ArticleExtraction) (string, error)
}
