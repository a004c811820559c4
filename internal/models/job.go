package models

import "time"

// JobStatus represents the state of a resolution job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// ResolutionJob is the unit of work created by one article submission.
// One job analyzes one article URL plus its publisher. Result fields are
// nil until the corresponding step has run; each is written at most once
// per job, except ToSResult which receives the discovery result first
// and the evaluation result merged on top.
type ResolutionJob struct {
	ID           string `json:"id" badgerhold:"unique"`
	SubmittedURL string `json:"submitted_url"`
	CanonicalURL string `json:"canonical_url"`
	Domain       string `json:"domain"`

	Status JobStatus `json:"status"`

	WAFResult      *WAFResult          `json:"waf_result,omitempty"`
	ToSResult      *ToSResult          `json:"tos_result,omitempty"`
	RobotsResult   *RobotsResult       `json:"robots_result,omitempty"`
	AIBotResult    *AIBotResult        `json:"ai_bot_result,omitempty"`
	SitemapResult  *SitemapResult      `json:"sitemap_result,omitempty"`
	RSSResult      *RSSResult          `json:"rss_result,omitempty"`
	RSLResult      *RSLResult          `json:"rsl_result,omitempty"`
	MetadataResult *OrganizationResult `json:"metadata_result,omitempty"`
	ArticleResult  *ArticleResult      `json:"article_result,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal reports whether the job has reached a final status.
func (j *ResolutionJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
