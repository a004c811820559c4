package models

import "time"

// ArticleMetadata is one persisted extraction row per (job, article URL).
// The presence booleans mirror whether the corresponding field map is
// non-empty.
type ArticleMetadata struct {
	ID         string `json:"id" badgerhold:"unique"`
	JobID      string `json:"job_id"`
	Domain     string `json:"domain"`
	ArticleURL string `json:"article_url"`

	JSONLDFields    map[string]any    `json:"jsonld_fields,omitempty"`
	OpengraphFields map[string]any    `json:"opengraph_fields,omitempty"`
	MicrodataFields map[string]any    `json:"microdata_fields,omitempty"`
	TwitterCards    map[string]string `json:"twitter_cards,omitempty"`

	HasJSONLD       bool `json:"has_jsonld"`
	HasOpengraph    bool `json:"has_opengraph"`
	HasMicrodata    bool `json:"has_microdata"`
	HasTwitterCards bool `json:"has_twitter_cards"`

	PaywallStatus   string   `json:"paywall_status"`
	PaywallSignals  []string `json:"paywall_signals,omitempty"`
	MetadataProfile string   `json:"metadata_profile,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewArticleMetadata builds a row from an extraction and its companion
// step results, deriving the presence booleans.
func NewArticleMetadata(id, jobID, domain, articleURL string, ext *ArticleExtraction, paywall *PaywallResult, profile *ProfileResult) *ArticleMetadata {
	row := &ArticleMetadata{
		ID:         id,
		JobID:      jobID,
		Domain:     domain,
		ArticleURL: articleURL,
		CreatedAt:  time.Now().UTC(),
	}
	if ext != nil {
		row.JSONLDFields = ext.JSONLDFields
		row.OpengraphFields = ext.OpengraphFields
		row.MicrodataFields = ext.MicrodataFields
		row.TwitterCards = ext.TwitterCards
		row.HasJSONLD = len(ext.JSONLDFields) > 0
		row.HasOpengraph = len(ext.OpengraphFields) > 0
		row.HasMicrodata = len(ext.MicrodataFields) > 0
		row.HasTwitterCards = len(ext.TwitterCards) > 0
	}
	if paywall != nil {
		row.PaywallStatus = paywall.PaywallStatus
		row.PaywallSignals = paywall.Signals
	}
	if profile != nil {
		row.MetadataProfile = profile.Summary
	}
	return row
}
