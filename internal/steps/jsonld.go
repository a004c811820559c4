package steps

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractJSONLDNodes parses every <script type="application/ld+json">
// block and flattens top-level arrays and @graph containers into a
// single node list in document order. Malformed blocks are skipped.
func extractJSONLDNodes(doc *goquery.Document) []map[string]any {
	var nodes []map[string]any

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var parsed any
		if err := json.Unmarshal([]byte(sel.Text()), &parsed); err != nil {
			return
		}

		var items []any
		switch v := parsed.(type) {
		case []any:
			items = v
		default:
			items = []any{v}
		}

		for _, item := range items {
			node, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if graph, ok := node["@graph"].([]any); ok {
				for _, g := range graph {
					if gn, ok := g.(map[string]any); ok {
						nodes = append(nodes, gn)
					}
				}
			}
			if _, ok := node["@type"]; ok {
				nodes = append(nodes, node)
			}
		}
	})

	return nodes
}

// nodeTypes returns the @type values of a node as plain strings,
// normalizing the full-URL form https://schema.org/<T> to <T>.
func nodeTypes(node map[string]any) []string {
	var types []string

	appendType := func(v any) {
		s, ok := v.(string)
		if !ok {
			return
		}
		s = strings.TrimSpace(s)
		if idx := strings.LastIndexByte(s, '/'); idx >= 0 && strings.Contains(s, "schema.org") {
			s = s[idx+1:]
		}
		if s != "" {
			types = append(types, s)
		}
	}

	switch v := node["@type"].(type) {
	case string:
		appendType(v)
	case []any:
		for _, t := range v {
			appendType(t)
		}
	}
	return types
}

// stringField returns a node field as a string when it is one.
func stringField(node map[string]any, key string) string {
	if s, ok := node[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// flattenEntity reduces a nested entity value (dict, list, or string)
// to a display string: the name, falling back to @id, falling back to
// the raw string.
func flattenEntity(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if name := stringField(v, "name"); name != "" {
			return name
		}
		return stringField(v, "@id")
	case []any:
		for _, item := range v {
			if s := flattenEntity(item); s != "" {
				return s
			}
		}
	}
	return ""
}

// stringList normalizes a string-or-list value into a string slice.
func stringList(value any) []string {
	switch v := value.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	}
	return nil
}
