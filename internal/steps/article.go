package steps

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/itsascout/scout/internal/models"
)

// articleTypes are the schema.org types accepted as the page's primary
// article node, checked by suffix so subtypes match.
var articleTypes = []string{
	"Article",
	"NewsArticle",
	"BlogPosting",
	"TechArticle",
	"ScholarlyArticle",
	"OpinionNewsArticle",
	"AnalysisNewsArticle",
	"ReportageNewsArticle",
	"ReviewNewsArticle",
	"LiveBlogPosting",
	"SocialMediaPosting",
	"WebPage",
	"CreativeWork",
}

// articleFields are the JSON-LD properties carried into the result.
var articleFields = []string{
	"headline",
	"author",
	"datePublished",
	"dateModified",
	"image",
	"description",
	"isAccessibleForFree",
	"wordCount",
	"articleSection",
	"inLanguage",
	"keywords",
}

// opengraphMapping translates og/article meta properties to the shared
// field vocabulary.
var opengraphMapping = map[string]string{
	"og:title":               "headline",
	"og:description":         "description",
	"og:image":               "image",
	"og:type":                "type",
	"og:site_name":           "publisher_name",
	"og:locale":              "inLanguage",
	"article:published_time": "datePublished",
	"article:modified_time":  "dateModified",
	"article:author":         "author",
	"article:section":        "articleSection",
}

// ExtractArticle pulls structured metadata for the article page from
// JSON-LD, Open Graph, microdata, and Twitter Card tags.
func ExtractArticle(articleHTML string) *models.ArticleExtraction {
	ext := &models.ArticleExtraction{
		JSONLDFields:    map[string]any{},
		OpengraphFields: map[string]any{},
		MicrodataFields: map[string]any{},
		TwitterCards:    map[string]string{},
		FormatsFound:    []string{},
	}

	if strings.TrimSpace(articleHTML) == "" {
		ext.Error = "article page unavailable"
		return ext
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(articleHTML))
	if err != nil {
		ext.Error = "failed to parse article html: " + err.Error()
		return ext
	}

	ext.JSONLDFields = extractArticleJSONLD(doc)
	ext.OpengraphFields = extractOpengraph(doc)
	ext.MicrodataFields = extractArticleMicrodata(doc)
	ext.TwitterCards = extractTwitterCards(doc)

	if len(ext.JSONLDFields) > 0 {
		ext.FormatsFound = append(ext.FormatsFound, "json-ld")
	}
	if len(ext.OpengraphFields) > 0 {
		ext.FormatsFound = append(ext.FormatsFound, "opengraph")
	}
	if len(ext.MicrodataFields) > 0 {
		ext.FormatsFound = append(ext.FormatsFound, "microdata")
	}
	if len(ext.TwitterCards) > 0 {
		ext.FormatsFound = append(ext.FormatsFound, "twitter_cards")
	}

	return ext
}

// extractArticleJSONLD finds the first node whose type matches an
// article type and keeps its fields of interest.
func extractArticleJSONLD(doc *goquery.Document) map[string]any {
	for _, node := range extractJSONLDNodes(doc) {
		if !isArticleNode(node) {
			continue
		}

		fields := map[string]any{}
		if types := nodeTypes(node); len(types) > 0 {
			fields["type"] = strings.Join(types, ",")
		}
		for _, key := range articleFields {
			value, ok := node[key]
			if !ok || value == nil {
				continue
			}
			switch key {
			case "author":
				if name := flattenEntity(value); name != "" {
					fields[key] = name
				}
			case "keywords":
				if list := stringList(value); len(list) > 0 {
					fields[key] = list
				}
			case "image":
				if img := flattenImage(value); img != "" {
					fields[key] = img
				}
			default:
				fields[key] = value
			}
		}
		if publisher := flattenEntity(node["publisher"]); publisher != "" {
			fields["publisher_name"] = publisher
		}
		// hasPart carries paywall markup hints and is kept raw.
		if hasPart, ok := node["hasPart"]; ok && hasPart != nil {
			fields["hasPart"] = hasPart
		}
		return fields
	}
	return map[string]any{}
}

func isArticleNode(node map[string]any) bool {
	for _, t := range nodeTypes(node) {
		for _, want := range articleTypes {
			if strings.HasSuffix(t, want) {
				return true
			}
		}
	}
	return false
}

// flattenImage reduces an image value (string, ImageObject, or list) to
// a single URL.
func flattenImage(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		return stringField(v, "url")
	case []any:
		for _, item := range v {
			if s := flattenImage(item); s != "" {
				return s
			}
		}
	}
	return ""
}

func extractOpengraph(doc *goquery.Document) map[string]any {
	fields := map[string]any{}
	var tags []string

	doc.Find(`meta[property]`).Each(func(_ int, sel *goquery.Selection) {
		property := strings.TrimSpace(sel.AttrOr("property", ""))
		content := strings.TrimSpace(sel.AttrOr("content", ""))
		if content == "" {
			return
		}
		if property == "article:tag" {
			tags = append(tags, content)
			return
		}
		mapped, ok := opengraphMapping[property]
		if !ok {
			return
		}
		if _, exists := fields[mapped]; !exists {
			fields[mapped] = content
		}
	})

	if len(tags) > 0 {
		fields["keywords"] = tags
	}
	return fields
}

// extractArticleMicrodata keeps only the headline-level props of the
// first article-typed itemscope.
func extractArticleMicrodata(doc *goquery.Document) map[string]any {
	fields := map[string]any{}

	doc.Find("[itemscope][itemtype]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		itemtype := sel.AttrOr("itemtype", "")
		short := itemtype
		if idx := strings.LastIndexByte(itemtype, '/'); idx >= 0 {
			short = itemtype[idx+1:]
		}
		matched := false
		for _, want := range articleTypes {
			if short == want {
				matched = true
				break
			}
		}
		if !matched {
			return true
		}

		fields["type"] = short
		for _, prop := range []string{"headline", "author", "datePublished", "dateModified", "description"} {
			if v := microdataProp(sel, prop); v != "" {
				fields[prop] = v
			}
		}
		return false
	})

	if len(fields) == 1 {
		// Type alone with no properties is not worth reporting.
		return map[string]any{}
	}
	return fields
}

func extractTwitterCards(doc *goquery.Document) map[string]string {
	cards := map[string]string{}
	doc.Find(`meta[name]`).Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.AttrOr("name", ""))
		if !strings.HasPrefix(name, "twitter:") {
			return
		}
		content := strings.TrimSpace(sel.AttrOr("content", ""))
		if content == "" {
			return
		}
		if _, exists := cards[name]; !exists {
			cards[name] = content
		}
	})
	return cards
}
