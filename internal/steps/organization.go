package steps

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/itsascout/scout/internal/models"
)

// organizationTypes are the schema.org types accepted as Organization
// candidates.
var organizationTypes = map[string]struct{}{
	"Organization":            {},
	"NewsMediaOrganization":   {},
	"Corporation":             {},
	"LocalBusiness":           {},
	"NGO":                     {},
	"EducationalOrganization": {},
}

type orgCandidate struct {
	node     map[string]any
	score    int
	docOrder int

	urlIsHomepage  bool
	idHasOrgAnchor bool
}

// DiscoverOrganization extracts and ranks Organization nodes from the
// homepage structured data. JSON-LD is scored first; microdata is only
// consulted when JSON-LD produced no candidates.
func DiscoverOrganization(homepageHTML, homepageURL string) *models.OrganizationResult {
	if strings.TrimSpace(homepageHTML) == "" {
		return &models.OrganizationResult{Found: false, Source: "none", Error: "homepage unavailable"}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(homepageHTML))
	if err != nil {
		return &models.OrganizationResult{Found: false, Source: "none", Error: "failed to parse homepage html: " + err.Error()}
	}

	if result := scoreJSONLD(doc, homepageURL); result != nil {
		return result
	}
	if result := scoreMicrodata(doc, homepageURL); result != nil {
		return result
	}
	return &models.OrganizationResult{Found: false, Source: "none"}
}

func scoreJSONLD(doc *goquery.Document, homepageURL string) *models.OrganizationResult {
	nodes := extractJSONLDNodes(doc)
	if len(nodes) == 0 {
		return nil
	}

	// IDs and URLs referenced by any node's publisher/author/isPartOf.
	referenced := referencedIDs(nodes)

	var candidates []orgCandidate
	for i, node := range nodes {
		if !isOrganizationNode(node) {
			continue
		}

		id := stringField(node, "@id")
		url := stringField(node, "url")

		c := orgCandidate{node: node, docOrder: i}
		if id != "" && sameResource(id, homepageURL) {
			c.score += 4
		}
		if url != "" && sameResource(url, homepageURL) {
			c.score += 3
			c.urlIsHomepage = true
		}
		for _, t := range nodeTypes(node) {
			if t == "NewsMediaOrganization" {
				c.score += 3
				break
			}
		}
		loweredID := strings.ToLower(id)
		if strings.Contains(loweredID, "#organization") || strings.Contains(loweredID, "#publisher") || strings.Contains(loweredID, "#brand") {
			c.score += 2
			c.idHasOrgAnchor = true
		}
		if _, ok := referenced[normalizeRef(id)]; ok && id != "" {
			c.score += 2
		} else if _, ok := referenced[normalizeRef(url)]; ok && url != "" {
			c.score += 2
		}
		if _, ok := node["logo"]; ok {
			c.score++
		}
		if len(stringList(node["sameAs"])) > 0 {
			c.score++
		}
		if _, ok := node["contactPoint"]; ok {
			c.score++
		} else if _, ok := node["address"]; ok {
			c.score++
		}

		// A zero-score candidate with no identity is noise.
		if c.score == 0 && url == "" && id == "" {
			continue
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.urlIsHomepage != b.urlIsHomepage {
			return a.urlIsHomepage
		}
		if a.idHasOrgAnchor != b.idHasOrgAnchor {
			return a.idHasOrgAnchor
		}
		return a.docOrder < b.docOrder
	})

	winner := candidates[0]
	return &models.OrganizationResult{
		Found:          true,
		Source:         "json-ld",
		Score:          winner.score,
		Organization:   normalizeOrganization(winner.node),
		CandidateCount: len(candidates),
	}
}

func isOrganizationNode(node map[string]any) bool {
	for _, t := range nodeTypes(node) {
		if _, ok := organizationTypes[t]; ok {
			return true
		}
	}
	return false
}

// referencedIDs collects the @id/url values referenced by any node's
// publisher, author, or isPartOf field.
func referencedIDs(nodes []map[string]any) map[string]struct{} {
	refs := make(map[string]struct{})

	addRef := func(value any) {
		switch v := value.(type) {
		case map[string]any:
			if id := stringField(v, "@id"); id != "" {
				refs[normalizeRef(id)] = struct{}{}
			}
			if url := stringField(v, "url"); url != "" {
				refs[normalizeRef(url)] = struct{}{}
			}
		case []any:
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					if id := stringField(m, "@id"); id != "" {
						refs[normalizeRef(id)] = struct{}{}
					}
					if url := stringField(m, "url"); url != "" {
						refs[normalizeRef(url)] = struct{}{}
					}
				}
			}
		}
	}

	for _, node := range nodes {
		addRef(node["publisher"])
		addRef(node["author"])
		addRef(node["isPartOf"])
	}
	return refs
}

func normalizeRef(s string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(s)), "/")
}

// normalizeOrganization flattens a winning node into the output shape.
func normalizeOrganization(node map[string]any) *models.Organization {
	org := &models.Organization{
		Name:   flattenEntity(node["name"]),
		URL:    stringField(node, "url"),
		ID:     stringField(node, "@id"),
		SameAs: stringList(node["sameAs"]),
	}

	if types := nodeTypes(node); len(types) > 0 {
		org.Type = strings.Join(types, ",")
	}

	switch logo := node["logo"].(type) {
	case string:
		org.Logo = strings.TrimSpace(logo)
	case map[string]any:
		org.Logo = stringField(logo, "url")
	}

	return org
}

// scoreMicrodata is the lighter fallback applied only when JSON-LD
// produced no candidates.
func scoreMicrodata(doc *goquery.Document, homepageURL string) *models.OrganizationResult {
	var candidates []orgCandidate

	doc.Find("[itemscope][itemtype]").Each(func(_ int, sel *goquery.Selection) {
		itemtype := sel.AttrOr("itemtype", "")
		short := itemtype
		if idx := strings.LastIndexByte(itemtype, '/'); idx >= 0 {
			short = itemtype[idx+1:]
		}
		if _, ok := organizationTypes[short]; !ok {
			return
		}

		url := microdataProp(sel, "url")
		itemid := sel.AttrOr("itemid", "")

		c := orgCandidate{docOrder: len(candidates)}
		if url != "" && sameResource(resolveURL(homepageURL, url), homepageURL) {
			c.score += 3
			c.urlIsHomepage = true
		}
		if itemid != "" && sameResource(itemid, homepageURL) {
			c.score += 2
		}
		if microdataProp(sel, "logo") != "" {
			c.score++
		}
		if microdataProp(sel, "sameAs") != "" {
			c.score++
		}
		if isNestedPublisher(sel) {
			c.score += 2
		}

		c.node = map[string]any{
			"name":   microdataProp(sel, "name"),
			"url":    url,
			"@id":    itemid,
			"logo":   microdataProp(sel, "logo"),
			"sameAs": microdataSameAs(sel),
			"@type":  short,
		}
		candidates = append(candidates, c)
	})

	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.urlIsHomepage != b.urlIsHomepage {
			return a.urlIsHomepage
		}
		return a.docOrder < b.docOrder
	})

	winner := candidates[0]
	org := &models.Organization{
		Name: winner.node["name"].(string),
		Type: winner.node["@type"].(string),
		URL:  winner.node["url"].(string),
		ID:   winner.node["@id"].(string),
		Logo: winner.node["logo"].(string),
	}
	if sameAs, ok := winner.node["sameAs"].([]string); ok {
		org.SameAs = sameAs
	}

	return &models.OrganizationResult{
		Found:          true,
		Source:         "microdata",
		Score:          winner.score,
		Organization:   org,
		CandidateCount: len(candidates),
	}
}

// microdataProp returns the first itemprop value within the scope,
// preferring content/href attributes over element text.
func microdataProp(scope *goquery.Selection, prop string) string {
	node := scope.Find(`[itemprop="` + prop + `"]`).First()
	if node.Length() == 0 {
		return ""
	}
	if content := strings.TrimSpace(node.AttrOr("content", "")); content != "" {
		return content
	}
	if href := strings.TrimSpace(node.AttrOr("href", "")); href != "" {
		return href
	}
	if src := strings.TrimSpace(node.AttrOr("src", "")); src != "" {
		return src
	}
	return strings.TrimSpace(node.Text())
}

func microdataSameAs(scope *goquery.Selection) []string {
	var values []string
	scope.Find(`[itemprop="sameAs"]`).Each(func(_ int, sel *goquery.Selection) {
		v := strings.TrimSpace(sel.AttrOr("href", sel.AttrOr("content", "")))
		if v != "" {
			values = append(values, v)
		}
	})
	return values
}

// isNestedPublisher reports whether the scope is the publisher of an
// enclosing WebPage or WebSite itemscope.
func isNestedPublisher(scope *goquery.Selection) bool {
	if scope.AttrOr("itemprop", "") != "publisher" {
		return false
	}
	parent := scope.ParentsFiltered("[itemscope][itemtype]").First()
	if parent.Length() == 0 {
		return false
	}
	itemtype := parent.AttrOr("itemtype", "")
	return strings.HasSuffix(itemtype, "/WebPage") || strings.HasSuffix(itemtype, "/WebSite")
}
