// Package robots parses robots.txt documents per RFC 9309 and exposes
// the non-group directives (Sitemap, License) used by the analysis
// pipeline.
package robots

import (
	"strings"
)

type rule struct {
	allow   bool
	pattern string
}

type group struct {
	agents     []string
	rules      []rule
	crawlDelay string
}

// Data is a parsed robots.txt document.
type Data struct {
	groups []group

	// Sitemaps and Licenses are collected file-wide, case-insensitively
	// and line-anchored, regardless of group placement.
	Sitemaps []string
	Licenses []string

	Raw string
}

// Parse parses a robots.txt body. Unknown directives are ignored; the
// parser never fails.
func Parse(body string) *Data {
	data := &Data{Raw: body}

	var current *group
	// A run of consecutive user-agent lines opens one group.
	inAgentRun := false

	flush := func() {
		if current != nil {
			data.groups = append(data.groups, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(body, "\n") {
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		directive := strings.ToLower(strings.TrimSpace(line[:colon]))
		value := strings.TrimSpace(line[colon+1:])

		switch directive {
		case "user-agent":
			if !inAgentRun {
				flush()
				current = &group{}
				inAgentRun = true
			}
			current.agents = append(current.agents, strings.ToLower(value))
		case "allow", "disallow":
			inAgentRun = false
			if current == nil || value == "" {
				continue
			}
			current.rules = append(current.rules, rule{
				allow:   directive == "allow",
				pattern: value,
			})
		case "crawl-delay":
			inAgentRun = false
			if current != nil && current.crawlDelay == "" {
				current.crawlDelay = value
			}
		case "sitemap":
			inAgentRun = false
			if value != "" {
				data.Sitemaps = append(data.Sitemaps, value)
			}
		case "license":
			inAgentRun = false
			if value != "" {
				data.Licenses = append(data.Licenses, value)
			}
		default:
			inAgentRun = false
		}
	}
	flush()

	return data
}

// Allowed evaluates whether the user agent may fetch the path. Group
// selection picks the most specific matching user-agent token, falling
// back to the wildcard group. Within the selected groups the
// longest-matching rule wins; allow wins ties; no match allows.
func (d *Data) Allowed(userAgent, path string) bool {
	if path == "" {
		path = "/"
	}

	rules := d.rulesFor(userAgent)

	bestLen := -1
	allowed := true
	for _, r := range rules {
		if n, ok := match(r.pattern, path); ok {
			if n > bestLen || (n == bestLen && r.allow && !allowed) {
				bestLen = n
				allowed = r.allow
			}
		}
	}
	return allowed
}

// CrawlDelay returns the Crawl-delay value for the user agent, or empty.
func (d *Data) CrawlDelay(userAgent string) string {
	agent := strings.ToLower(userAgent)

	bestSpec := -1
	delay := ""
	for _, g := range d.groups {
		if g.crawlDelay == "" {
			continue
		}
		if spec := g.specificity(agent); spec > bestSpec {
			bestSpec = spec
			delay = g.crawlDelay
		}
	}
	return delay
}

// rulesFor merges the rules of every group at the highest matching
// specificity for the agent.
func (d *Data) rulesFor(userAgent string) []rule {
	agent := strings.ToLower(userAgent)

	bestSpec := -1
	for _, g := range d.groups {
		if spec := g.specificity(agent); spec > bestSpec {
			bestSpec = spec
		}
	}
	if bestSpec < 0 {
		return nil
	}

	var rules []rule
	for _, g := range d.groups {
		if g.specificity(agent) == bestSpec {
			rules = append(rules, g.rules...)
		}
	}
	return rules
}

// specificity returns the length of the longest group token contained in
// the agent string, 0 for the wildcard group, and -1 for no match.
func (g *group) specificity(agent string) int {
	best := -1
	for _, token := range g.agents {
		if token == "*" {
			if best < 0 {
				best = 0
			}
			continue
		}
		if strings.Contains(agent, token) && len(token) > best {
			best = len(token)
		}
	}
	return best
}

// match reports whether the rule pattern matches the path, supporting
// the * wildcard and $ end anchor. The returned length is the pattern
// length, used for longest-match precedence.
func match(pattern, path string) (int, bool) {
	anchored := strings.HasSuffix(pattern, "$")
	if anchored {
		pattern = pattern[:len(pattern)-1]
	}
	if matchHere(pattern, path, anchored) {
		return len(pattern), true
	}
	return 0, false
}

func matchHere(pattern, path string, anchored bool) bool {
	star := strings.IndexByte(pattern, '*')
	if star < 0 {
		if anchored {
			return path == pattern
		}
		return strings.HasPrefix(path, pattern)
	}

	prefix := pattern[:star]
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := pattern[star+1:]
	remainder := path[len(prefix):]
	for i := 0; i <= len(remainder); i++ {
		if matchHere(rest, remainder[i:], anchored) {
			return true
		}
	}
	return false
}
