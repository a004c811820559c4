package models

import "net/http"

// Step result types, one per pipeline step. A step that fails internally
// reports through its Error field instead of propagating; the pipeline
// continues so partial results still land on the job.

// WAFResult is the outcome of the WAF fingerprinting step.
type WAFResult struct {
	WAFDetected bool   `json:"waf_detected"`
	WAFType     string `json:"waf_type"`
	Error       string `json:"error,omitempty"`
}

// ActivityPermission labels one automated-use activity from a Terms of
// Service document.
type ActivityPermission struct {
	Activity   string `json:"activity"`
	Permission string `json:"permission"`
	Notes      string `json:"notes,omitempty"`
}

// Permission labels used by the ToS evaluation collaborator.
const (
	PermissionExplicitlyPermitted  = "explicitly_permitted"
	PermissionExplicitlyProhibited = "explicitly_prohibited"
	PermissionConditionalAmbiguous = "conditional_ambiguous"
)

// ToSResult carries the merged output of the ToS discovery and ToS
// evaluation steps. Discovery fills TosURL/Confidence/Notes; evaluation
// fills the rest and wins on collision.
type ToSResult struct {
	TosURL     string  `json:"tos_url"`
	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes,omitempty"`

	Permissions           []ActivityPermission `json:"permissions,omitempty"`
	DocumentType          string               `json:"document_type,omitempty"`
	ConfidenceScore       float64              `json:"confidence_score,omitempty"`
	TerritorialExceptions string               `json:"territorial_exceptions,omitempty"`
	ArbitrationClauses    string               `json:"arbitration_clauses,omitempty"`

	Skipped bool   `json:"skipped,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RobotsResult is the parsed robots.txt outcome. RawText is retained for
// downstream steps (AI-bot evaluation, RSL) but never serialized into
// events or storage blobs.
type RobotsResult struct {
	RobotsFound bool     `json:"robots_found"`
	URLAllowed  *bool    `json:"url_allowed,omitempty"`
	Sitemaps    []string `json:"sitemaps,omitempty"`
	CrawlDelay  string   `json:"crawl_delay,omitempty"`
	Licenses    []string `json:"licenses,omitempty"`
	Error       string   `json:"error,omitempty"`

	RawText string `json:"-"`
}

// AIBotResult maps the well-known AI crawler user agents to their
// blocked state under the publisher's robots.txt.
type AIBotResult struct {
	Bots         map[string]BotBlock `json:"bots"`
	BlockedCount int                 `json:"blocked_count"`
	TotalCount   int                 `json:"total_count"`
	Error        string              `json:"error,omitempty"`
}

// SitemapResult lists discovered sitemap URLs and where they came from.
// Source is "robots.txt", "probe", or "none".
type SitemapResult struct {
	SitemapURLs []string `json:"sitemap_urls"`
	Source      string   `json:"source"`
	Count       int      `json:"count"`
	Error       string   `json:"error,omitempty"`
}

// Feed is one syndication feed advertised by the homepage.
type Feed struct {
	URL   string `json:"url"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
}

// RSSResult lists feeds discovered from homepage <link rel="alternate"> tags.
type RSSResult struct {
	Feeds []Feed `json:"feeds"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// RSLIndicator is one Really Simple Licensing advertisement. Source is
// "robots.txt", "link_tag", or "http_header".
type RSLIndicator struct {
	Source string `json:"source"`
	URL    string `json:"url"`
}

// RSLResult is the outcome of the RSL detection step.
type RSLResult struct {
	RSLDetected bool           `json:"rsl_detected"`
	Indicators  []RSLIndicator `json:"indicators"`
	Count       int            `json:"count"`
	Error       string         `json:"error,omitempty"`
}

// OrganizationResult is the outcome of the structured-data scorer over
// the homepage. Source is "json-ld", "microdata", or "none".
type OrganizationResult struct {
	Found          bool          `json:"found"`
	Source         string        `json:"source"`
	Score          int           `json:"score"`
	Organization   *Organization `json:"organization,omitempty"`
	CandidateCount int           `json:"candidate_count"`
	Error          string        `json:"error,omitempty"`
}

// ArticleExtraction holds the per-format structured data extracted from
// the article HTML.
type ArticleExtraction struct {
	JSONLDFields    map[string]any    `json:"jsonld_fields,omitempty"`
	OpengraphFields map[string]any    `json:"opengraph_fields,omitempty"`
	MicrodataFields map[string]any    `json:"microdata_fields,omitempty"`
	TwitterCards    map[string]string `json:"twitter_cards,omitempty"`
	FormatsFound    []string          `json:"formats_found"`
	Error           string            `json:"error,omitempty"`
}

// Paywall statuses produced by the classifier.
const (
	PaywallStatusFree      = "free"
	PaywallStatusPaywalled = "paywalled"
	PaywallStatusMetered   = "metered"
	PaywallStatusUnknown   = "unknown"
)

// PaywallResult is the outcome of the paywall classifier.
// SchemaAccessible is nil when the article schema was silent on
// isAccessibleForFree.
type PaywallResult struct {
	PaywallStatus    string   `json:"paywall_status"`
	Signals          []string `json:"signals"`
	SchemaAccessible *bool    `json:"schema_accessible"`
	Error            string   `json:"error,omitempty"`
}

// ProfileResult is the LLM metadata-profile summary.
type ProfileResult struct {
	Summary string `json:"summary"`
	Error   string `json:"error,omitempty"`
}

// ArticleResult composes the article-level step outputs stored on the job.
type ArticleResult struct {
	ArticleExtraction

	ArticleURL string         `json:"article_url"`
	Paywall    *PaywallResult `json:"paywall,omitempty"`
	Profile    *ProfileResult `json:"profile,omitempty"`
}

// FetchResult is the value returned by a successful fetch strategy.
type FetchResult struct {
	Body       string      `json:"-"`
	StatusCode int         `json:"status_code"`
	Strategy   string      `json:"strategy"`
	URL        string      `json:"url"`
	Headers    http.Header `json:"-"`
}
