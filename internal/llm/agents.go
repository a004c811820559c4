// Package llm holds the provider-backed completion services and the
// JSON-returning collaborators built on top of them: ToS discovery,
// ToS evaluation, and the article metadata profile.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
)

const termsDiscoverySystemPrompt = `You identify the canonical Terms of Service page of a website from its homepage links.
Pick the single link most likely to be the site's general Terms of Service (also called Terms of Use or Terms and Conditions).
Exclude privacy policies, cookie policies, and product-specific terms.
Respond with a JSON object only: {"terms_of_service_url": "<absolute url or empty string>", "confidence_score": <0..1>, "notes": "<short reasoning>"}.`

const termsEvaluationSystemPrompt = `You are a legal-document analyst. Given a website's Terms of Service text, classify what it says about each of these activities:
scraping, ai_training, manual_use, archiving_caching, text_data_mining, api_rss, redistribution, user_generated_content.
Label each activity as "explicitly_permitted", "explicitly_prohibited", or "conditional_ambiguous", with short notes quoting or paraphrasing the relevant clause.
Also report any territorial exceptions, arbitration clauses, the document type, and your overall confidence.
Respond with a JSON object only:
{"permissions": [{"activity": "...", "permission": "...", "notes": "..."}], "territorial_exceptions": "...", "arbitration_clauses": "...", "document_type": "...", "confidence_score": <0..1>}.`

const metadataProfileSystemPrompt = `You summarize article metadata for publishing analysts.
Given structured metadata extracted from an article page, write a concise plain-text profile (2-4 sentences): what the article is, who published it, when, and anything notable about its metadata coverage.
Respond with a JSON object only: {"summary": "<profile text>"}.`

// maxDocumentChars bounds the ToS text sent to the evaluator.
const maxDocumentChars = 60000

// maxLinks bounds the anchor list sent to the discoverer.
const maxLinks = 200

// Agents implements the LLM collaborator interfaces over one provider,
// with a per-call timeout and a single retry.
type Agents struct {
	service interfaces.LLMService
	timeout time.Duration
	logger  arbor.ILogger
}

// NewAgents wires the collaborators to a completion service. A nil
// service is tolerated; every call then fails cleanly, which the step
// layer converts into an in-result error.
func NewAgents(service interfaces.LLMService, timeout time.Duration, logger arbor.ILogger) *Agents {
	return &Agents{
		service: service,
		timeout: timeout,
		logger:  logger,
	}
}

// DiscoverTerms asks for the canonical ToS URL among the page links.
func (a *Agents) DiscoverTerms(ctx context.Context, links []models.PageLink, baseURL string) (*models.TermsDiscovery, error) {
	if len(links) > maxLinks {
		links = links[:maxLinks]
	}
	linksJSON, err := json.Marshal(links)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize links: %w", err)
	}

	prompt := fmt.Sprintf("Base URL: %s\n\nLinks (href + visible text):\n%s", baseURL, string(linksJSON))

	var result models.TermsDiscovery
	if err := a.completeJSON(ctx, termsDiscoverySystemPrompt, prompt, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EvaluateTerms classifies a ToS document into the permission matrix.
func (a *Agents) EvaluateTerms(ctx context.Context, document, url string) (*models.TermsEvaluation, error) {
	if len(document) > maxDocumentChars {
		document = document[:maxDocumentChars]
	}

	prompt := fmt.Sprintf("Document URL: %s\n\nDocument text:\n%s", url, document)

	var result models.TermsEvaluation
	if err := a.completeJSON(ctx, termsEvaluationSystemPrompt, prompt, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProfileMetadata summarizes an article's extracted metadata.
func (a *Agents) ProfileMetadata(ctx context.Context, extraction *models.ArticleExtraction) (string, error) {
	extractionJSON, err := json.Marshal(extraction)
	if err != nil {
		return "", fmt.Errorf("failed to serialize extraction: %w", err)
	}

	var result struct {
		Summary string `json:"summary"`
	}
	if err := a.completeJSON(ctx, metadataProfileSystemPrompt, string(extractionJSON), &result); err != nil {
		return "", err
	}
	return result.Summary, nil
}

// completeJSON runs one completion with timeout and a single retry,
// then parses the first JSON object in the response into out.
func (a *Agents) completeJSON(ctx context.Context, systemPrompt, userPrompt string, out any) error {
	if a.service == nil {
		return fmt.Errorf("no llm provider configured")
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		response, err := a.service.Complete(callCtx, systemPrompt, userPrompt)
		cancel()
		if err != nil {
			lastErr = err
			a.logger.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("provider", a.service.ProviderName()).
				Msg("LLM call failed")
			continue
		}

		if err := json.Unmarshal([]byte(extractJSON(response)), out); err != nil {
			lastErr = fmt.Errorf("invalid json in llm response: %w", err)
			continue
		}
		return nil
	}
	return lastErr
}

// extractJSON strips markdown fences and surrounding prose, returning
// the first top-level JSON object in the text.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
