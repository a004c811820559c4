package steps

import (
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/itsascout/scout/internal/models"
)

const rslMediaType = "application/rsl+xml"

// DetectRSL looks for Really Simple Licensing advertisements in the
// robots License directives, the homepage <link rel="license"> tags,
// and the homepage HTTP Link header.
func DetectRSL(robotsLicenses []string, homepageHTML string, homepageHeaders http.Header, homepageURL string) *models.RSLResult {
	indicators := []models.RSLIndicator{}

	for _, license := range robotsLicenses {
		if resolved := resolveURL(homepageURL, license); resolved != "" {
			indicators = append(indicators, models.RSLIndicator{Source: "robots.txt", URL: resolved})
		}
	}

	if strings.TrimSpace(homepageHTML) != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(homepageHTML)); err == nil {
			doc.Find(`link[rel="license"]`).Each(func(_ int, sel *goquery.Selection) {
				if !strings.EqualFold(strings.TrimSpace(sel.AttrOr("type", "")), rslMediaType) {
					return
				}
				href := strings.TrimSpace(sel.AttrOr("href", ""))
				if href == "" {
					return
				}
				indicators = append(indicators, models.RSLIndicator{Source: "link_tag", URL: resolveURL(homepageURL, href)})
			})
		}
	}

	if homepageHeaders != nil {
		linkHeader := homepageHeaders.Get("Link")
		if strings.Contains(linkHeader, `rel="license"`) && strings.Contains(linkHeader, rslMediaType) {
			if target := firstLinkTarget(linkHeader); target != "" {
				indicators = append(indicators, models.RSLIndicator{Source: "http_header", URL: resolveURL(homepageURL, target)})
			}
		}
	}

	return &models.RSLResult{
		RSLDetected: len(indicators) > 0,
		Indicators:  indicators,
		Count:       len(indicators),
	}
}

// firstLinkTarget extracts the first <...> URL from a Link header value.
func firstLinkTarget(header string) string {
	start := strings.IndexByte(header, '<')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(header[start:], '>')
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(header[start+1 : start+end])
}
