package steps

import (
	"context"
	"net/url"
	"strings"

	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
	"github.com/itsascout/scout/internal/robots"
)

// FetchRobots fetches and parses https://{domain}/robots.txt. A body
// that opens with an HTML tag is a WAF challenge, not a robots file.
// url_allowed is evaluated for the job's canonical URL under the
// configured user agent.
func FetchRobots(ctx context.Context, fetcher interfaces.FetchManager, publisher *models.Publisher, canonicalURL, userAgent string) *models.RobotsResult {
	robotsURL := "https://" + publisher.Domain + "/robots.txt"

	result, err := fetcher.Fetch(ctx, robotsURL, publisher)
	if err != nil {
		return &models.RobotsResult{RobotsFound: false, Error: err.Error()}
	}

	body := result.Body
	opening := strings.ToLower(strings.TrimSpace(body))
	if strings.HasPrefix(opening, "<html") || strings.HasPrefix(opening, "<!doctype") {
		return &models.RobotsResult{RobotsFound: false, Error: "robots.txt returned an html challenge page"}
	}

	data := robots.Parse(body)

	path := "/"
	if u, err := url.Parse(canonicalURL); err == nil && u.Path != "" {
		path = u.RequestURI()
	}
	allowed := data.Allowed(userAgent, path)

	return &models.RobotsResult{
		RobotsFound: true,
		URLAllowed:  &allowed,
		Sitemaps:    data.Sitemaps,
		CrawlDelay:  data.CrawlDelay(userAgent),
		Licenses:    data.Licenses,
		RawText:     body,
	}
}
