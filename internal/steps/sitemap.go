package steps

import (
	"context"
	"sort"
	"strings"

	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
)

// sitemapProbePaths are tried in order when robots.txt lists no sitemaps.
var sitemapProbePaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap/sitemap.xml",
	"/wp-sitemap.xml",
}

// DiscoverSitemaps resolves the robots-declared sitemaps against the
// homepage, or probes the conventional paths, stopping at the first
// body that looks like XML.
func DiscoverSitemaps(ctx context.Context, fetcher interfaces.FetchManager, publisher *models.Publisher, homepageURL string, robotsSitemaps []string) *models.SitemapResult {
	var urls []string
	for _, raw := range robotsSitemaps {
		if resolved := resolveURL(homepageURL, raw); resolved != "" {
			urls = append(urls, resolved)
		}
	}

	source := "robots.txt"
	if len(urls) == 0 {
		source = "none"
		for _, path := range sitemapProbePaths {
			probeURL := resolveURL(homepageURL, path)
			result, err := fetcher.Fetch(ctx, probeURL, publisher)
			if err != nil {
				continue
			}
			if looksLikeSitemap(result.Body) {
				urls = append(urls, probeURL)
				source = "probe"
				break
			}
		}
	}

	sort.Strings(urls)
	return &models.SitemapResult{
		SitemapURLs: urls,
		Source:      source,
		Count:       len(urls),
	}
}

func looksLikeSitemap(body string) bool {
	trimmed := strings.TrimSpace(body)
	return strings.HasPrefix(trimmed, "<?xml") ||
		strings.Contains(trimmed, "<urlset") ||
		strings.Contains(trimmed, "<sitemapindex")
}
