package models

// Step names published on a job's event channel (closed set).
const (
	StepWAF             = "waf"
	StepToSDiscovery    = "tos_discovery"
	StepToSEvaluation   = "tos_evaluation"
	StepRobots          = "robots"
	StepAIBotBlocking   = "ai_bot_blocking"
	StepSitemap         = "sitemap"
	StepRSS             = "rss"
	StepRSL             = "rsl"
	StepPublisher       = "publisher_details"
	StepArticle         = "article_extraction"
	StepPaywall         = "paywall_detection"
	StepMetadataProfile = "metadata_profile"
	StepPipeline        = "pipeline"
)

// Step event statuses.
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// StepEvent is the payload published for every step lifecycle change.
type StepEvent struct {
	Step   string `json:"step"`
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// PublisherSteps lists the publisher-level steps in pipeline order, used
// when emitting skipped events for a fresh publisher.
var PublisherSteps = []string{
	StepWAF,
	StepToSDiscovery,
	StepToSEvaluation,
	StepRobots,
	StepAIBotBlocking,
	StepSitemap,
	StepRSS,
	StepRSL,
	StepPublisher,
}

// ArticleSteps lists the article-level steps in pipeline order.
var ArticleSteps = []string{
	StepArticle,
	StepPaywall,
	StepMetadataProfile,
}
