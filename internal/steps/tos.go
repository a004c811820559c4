package steps

import (
	"context"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
)

// maxAnchorText truncates long anchor texts before the discovery call.
const maxAnchorText = 120

// DiscoverToS extracts the homepage anchors and asks the discovery
// collaborator for the canonical Terms of Service URL. Relative hrefs
// are resolved against the homepage.
func DiscoverToS(ctx context.Context, agent interfaces.TermsDiscoverer, homepageHTML, homepageURL string) *models.ToSResult {
	if strings.TrimSpace(homepageHTML) == "" {
		return &models.ToSResult{Error: "homepage unavailable"}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(homepageHTML))
	if err != nil {
		return &models.ToSResult{Error: "failed to parse homepage html: " + err.Error()}
	}

	var links []models.PageLink
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "#") {
			return
		}
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if len(text) > maxAnchorText {
			text = text[:maxAnchorText]
		}
		links = append(links, models.PageLink{
			Href: resolveURL(homepageURL, href),
			Text: text,
		})
	})

	discovery, err := agent.DiscoverTerms(ctx, links, homepageURL)
	if err != nil {
		return &models.ToSResult{Error: err.Error()}
	}

	return &models.ToSResult{
		TosURL:     resolveURL(homepageURL, discovery.TermsOfServiceURL),
		Confidence: discovery.ConfidenceScore,
		Notes:      discovery.Notes,
	}
}

// EvaluateToS fetches the discovered ToS document, converts it to
// markdown, and asks the evaluation collaborator for the permission
// matrix. Skipped when no ToS URL was discovered.
func EvaluateToS(ctx context.Context, fetcher interfaces.FetchManager, agent interfaces.TermsEvaluator, publisher *models.Publisher, tosURL string) *models.ToSResult {
	if tosURL == "" {
		return &models.ToSResult{Skipped: true, Reason: "no terms of service url discovered"}
	}

	result, err := fetcher.Fetch(ctx, tosURL, publisher)
	if err != nil {
		return &models.ToSResult{Error: "failed to fetch terms document: " + err.Error()}
	}

	document := result.Body
	if markdown, err := md.NewConverter("", true, nil).ConvertString(result.Body); err == nil {
		document = markdown
	}

	evaluation, err := agent.EvaluateTerms(ctx, document, tosURL)
	if err != nil {
		return &models.ToSResult{Error: err.Error()}
	}

	return &models.ToSResult{
		Permissions:           evaluation.Permissions,
		DocumentType:          evaluation.DocumentType,
		ConfidenceScore:       evaluation.ConfidenceScore,
		TerritorialExceptions: evaluation.TerritorialExceptions,
		ArbitrationClauses:    evaluation.ArbitrationClauses,
	}
}

// MergeToSResults unions the evaluation result onto the discovery
// result at the top level; evaluation wins on collision.
func MergeToSResults(discovery, evaluation *models.ToSResult) *models.ToSResult {
	if discovery == nil {
		return evaluation
	}
	if evaluation == nil {
		return discovery
	}

	merged := *discovery
	if len(evaluation.Permissions) > 0 {
		merged.Permissions = evaluation.Permissions
	}
	if evaluation.DocumentType != "" {
		merged.DocumentType = evaluation.DocumentType
	}
	if evaluation.ConfidenceScore != 0 {
		merged.ConfidenceScore = evaluation.ConfidenceScore
	}
	if evaluation.TerritorialExceptions != "" {
		merged.TerritorialExceptions = evaluation.TerritorialExceptions
	}
	if evaluation.ArbitrationClauses != "" {
		merged.ArbitrationClauses = evaluation.ArbitrationClauses
	}
	if evaluation.Skipped {
		merged.Skipped = true
		merged.Reason = evaluation.Reason
	}
	if evaluation.Error != "" {
		merged.Error = evaluation.Error
	}
	return &merged
}
