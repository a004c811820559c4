package steps

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/itsascout/scout/internal/models"
)

var loginWallPhrases = []string{
	"subscribe to continue reading",
	"sign in to read",
	"create an account to continue",
	"already a subscriber?",
	"subscription required",
	"members only",
}

var paywallClassFragments = []string{
	"paywall",
	"subscriber-only",
	"premium-content",
	"meter-",
	"gated-content",
	"regwall",
}

var meterPhrases = []string{
	"articles remaining",
	"free articles",
	"monthly limit",
	"article limit",
}

// ClassifyPaywall decides the article's access model. Schema markup is
// authoritative when present; the heuristic signals only run when the
// schema is silent.
func ClassifyPaywall(articleHTML string, extraction *models.ArticleExtraction) *models.PaywallResult {
	result := &models.PaywallResult{
		PaywallStatus: models.PaywallStatusUnknown,
		Signals:       []string{},
	}

	if extraction != nil {
		if accessible, ok := schemaAccessible(extraction.JSONLDFields); ok {
			result.SchemaAccessible = &accessible
			if accessible {
				result.PaywallStatus = models.PaywallStatusFree
				result.Signals = append(result.Signals, "schema:isAccessibleForFree=true")
			} else {
				result.PaywallStatus = models.PaywallStatusPaywalled
				result.Signals = append(result.Signals, "schema:isAccessibleForFree=false")
			}
			return result
		}
	}

	if strings.TrimSpace(articleHTML) == "" {
		result.Error = "article page unavailable"
		return result
	}

	lowered := strings.ToLower(articleHTML)

	var loginHits, classHits, meterHits int
	for _, phrase := range loginWallPhrases {
		if strings.Contains(lowered, phrase) {
			loginHits++
			result.Signals = append(result.Signals, "phrase:"+phrase)
		}
	}
	for _, phrase := range meterPhrases {
		if strings.Contains(lowered, phrase) {
			meterHits++
			result.Signals = append(result.Signals, "meter:"+phrase)
		}
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(articleHTML)); err == nil {
		seen := map[string]struct{}{}
		doc.Find("[class]").Each(func(_ int, sel *goquery.Selection) {
			classAttr := strings.ToLower(sel.AttrOr("class", ""))
			for _, fragment := range paywallClassFragments {
				if !strings.Contains(classAttr, fragment) {
					continue
				}
				if _, dup := seen[fragment]; dup {
					continue
				}
				seen[fragment] = struct{}{}
				classHits++
				result.Signals = append(result.Signals, "class:"+fragment)
			}
		})
	}

	switch {
	case meterHits > 0:
		result.PaywallStatus = models.PaywallStatusMetered
	case loginHits > 0 && classHits > 0:
		result.PaywallStatus = models.PaywallStatusPaywalled
	case loginHits == 0 && classHits == 0 && meterHits == 0:
		result.PaywallStatus = models.PaywallStatusFree
	default:
		result.PaywallStatus = models.PaywallStatusUnknown
	}

	return result
}

// schemaAccessible interprets isAccessibleForFree from the article
// JSON-LD, falling back to the first hasPart child that sets the
// property. The second return is false when the markup is silent.
func schemaAccessible(jsonldFields map[string]any) (bool, bool) {
	if jsonldFields == nil {
		return false, false
	}
	if v, ok := jsonldFields["isAccessibleForFree"]; ok {
		return truthyAccessible(v), true
	}
	if hasPart, ok := jsonldFields["hasPart"]; ok {
		var children []any
		switch v := hasPart.(type) {
		case map[string]any:
			children = []any{v}
		case []any:
			children = v
		}
		for _, child := range children {
			part, ok := child.(map[string]any)
			if !ok {
				continue
			}
			if v, ok := part["isAccessibleForFree"]; ok {
				return truthyAccessible(v), true
			}
		}
	}
	return false, false
}

func truthyAccessible(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true
		}
	case float64:
		return v == 1
	}
	return false
}
