// Package steps implements the per-step analysis functions of the
// pipeline. Every step recovers internally: failures surface through
// the Error field of its result, never as a returned Go error, so the
// pipeline keeps running and partial results still land on the job.
package steps

import (
	"net/url"
	"strings"
)

// resolveURL resolves a possibly-relative reference against a base URL.
// Returns the reference unchanged when either side fails to parse.
func resolveURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// sameResource compares two URLs ignoring a trailing slash difference.
func sameResource(a, b string) bool {
	return strings.TrimRight(strings.ToLower(a), "/") == strings.TrimRight(strings.ToLower(b), "/")
}
