// Package canonical normalizes submitted URLs into their stable,
// deduplicable form and extracts the canonical publisher domain.
package canonical

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ErrInvalidURL is returned when the input lacks a scheme or host after
// parsing.
var ErrInvalidURL = errors.New("invalid url")

// trackingParams are query parameters stripped during canonicalization.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"fbclid":       {},
	"gclid":        {},
	"gclsrc":       {},
	"dclid":        {},
	"gbraid":       {},
	"wbraid":       {},
	"msclkid":      {},
	"twclid":       {},
	"igshid":       {},
	"mc_cid":       {},
	"mc_eid":       {},
	"_openstat":    {},
	"vero_id":      {},
	"wickedid":     {},
	"yclid":        {},
	"rb_clickid":   {},
	"s_cid":        {},
	"mkt_tok":      {},
	"trk":          {},
	"trkCampaign":  {},
	"trkInfo":      {},
	"oly_anon_id":  {},
	"oly_enc_id":   {},
}

// Canonicalize normalizes a URL: forces https, lowercases and strips the
// www. label from the host, drops the fragment and default ports,
// removes tracking parameters, and sorts the remaining query
// parameters lexicographically. The path (including any trailing slash)
// is preserved. Idempotent for all inputs that do not fail.
func Canonicalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: missing scheme or host in %q", ErrInvalidURL, raw)
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	// Strip the port only when it is the default for the original
	// scheme; anything else stays non-default under the forced https.
	if port := u.Port(); port != "" && port != defaultPort(u.Scheme) {
		host = host + ":" + port
	}

	u.Scheme = "https"
	u.Host = host
	u.Fragment = ""
	u.RawQuery = normalizeQuery(u.Query())

	return u.String(), nil
}

// defaultPort returns the well-known port for the scheme, or "" when
// the scheme has none.
func defaultPort(scheme string) string {
	switch strings.ToLower(scheme) {
	case "http":
		return "80"
	case "https":
		return "443"
	}
	return ""
}

// ExtractDomain returns the host of the canonicalized form.
func ExtractDomain(raw string) (string, error) {
	canonicalURL, err := Canonicalize(raw)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(canonicalURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	return u.Hostname(), nil
}

// normalizeQuery drops tracking parameters and re-encodes the remainder
// with keys (and values within a key) in lexicographic order.
func normalizeQuery(values url.Values) string {
	for key := range values {
		if _, tracked := trackingParams[key]; tracked {
			values.Del(key)
		}
	}
	if len(values) == 0 {
		return ""
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		vals := append([]string(nil), values[key]...)
		sort.Strings(vals)
		for _, val := range vals {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(val))
		}
	}
	return b.String()
}
