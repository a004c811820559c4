package models

import "time"

// Publisher holds the cached analysis profile for one canonical domain.
// Created lazily on the first job for its domain; mutated only by the
// pipeline supervisor (the fetch manager may update FetchStrategy and
// only that field). Never deleted by the core.
type Publisher struct {
	Domain string `json:"domain" badgerhold:"unique"`
	Name   string `json:"name"`
	URL    string `json:"url"`

	// Cached publisher-level analysis outputs.
	WAFDetected    bool                 `json:"waf_detected"`
	WAFType        string               `json:"waf_type"`
	ToSURL         string               `json:"tos_url"`
	ToSPermissions []ActivityPermission `json:"tos_permissions,omitempty"`
	RobotsFound    *bool                `json:"robots_found,omitempty"`
	SitemapURLs    []string             `json:"sitemap_urls,omitempty"`
	RSSFeedURLs    []string             `json:"rss_feed_urls,omitempty"`
	RSLDetected    *bool                `json:"rsl_detected,omitempty"`
	AIBotBlocks    map[string]BotBlock  `json:"ai_bot_blocks,omitempty"`
	Organization   *Organization        `json:"organization,omitempty"`
	HasPaywall     *bool                `json:"has_paywall,omitempty"`

	// Preferred fetch strategy learned by the fetch manager. Empty until
	// a fetch succeeds for this domain.
	FetchStrategy string `json:"fetch_strategy,omitempty"`

	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Organization is the normalized identity extracted from homepage
// structured data (JSON-LD or microdata).
type Organization struct {
	Name   string   `json:"name"`
	Type   string   `json:"type,omitempty"`
	URL    string   `json:"url,omitempty"`
	ID     string   `json:"id,omitempty"`
	Logo   string   `json:"logo,omitempty"`
	SameAs []string `json:"same_as,omitempty"`
}

// BotBlock records whether a single AI crawler user agent is blocked by
// the publisher's robots.txt, together with the operating company.
type BotBlock struct {
	Company string `json:"company"`
	Blocked bool   `json:"blocked"`
}
