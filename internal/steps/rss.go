package steps

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/itsascout/scout/internal/models"
)

// feedTypes are the <link rel="alternate"> MIME types treated as feeds.
var feedTypes = map[string]struct{}{
	"application/rss+xml":  {},
	"application/atom+xml": {},
	"application/xml":      {},
	"text/xml":             {},
}

// DiscoverFeeds collects the syndication feeds advertised by the
// homepage's <link rel="alternate"> tags.
func DiscoverFeeds(homepageHTML, homepageURL string) *models.RSSResult {
	if strings.TrimSpace(homepageHTML) == "" {
		return &models.RSSResult{Feeds: []models.Feed{}, Error: "homepage unavailable"}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(homepageHTML))
	if err != nil {
		return &models.RSSResult{Feeds: []models.Feed{}, Error: "failed to parse homepage html: " + err.Error()}
	}

	feeds := []models.Feed{}
	doc.Find(`link[rel="alternate"]`).Each(func(_ int, sel *goquery.Selection) {
		feedType := strings.ToLower(strings.TrimSpace(sel.AttrOr("type", "")))
		if _, ok := feedTypes[feedType]; !ok {
			return
		}
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" {
			return
		}
		feeds = append(feeds, models.Feed{
			URL:   resolveURL(homepageURL, href),
			Type:  feedType,
			Title: strings.TrimSpace(sel.AttrOr("title", "")),
		})
	})

	return &models.RSSResult{Feeds: feeds, Count: len(feeds)}
}
