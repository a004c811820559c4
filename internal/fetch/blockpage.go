package fetch

import "strings"

// wafSignatures are substrings whose presence in a lowercased 2xx body
// marks the response as a WAF challenge page rather than real content.
var wafSignatures = []string{
	"checking your browser",
	"cloudflare",
	"access denied",
	"just a moment",
	"cf-browser-verification",
	"ray id",
}

// BlockSignature returns the first matching WAF challenge signature in
// the body, if any.
func BlockSignature(body string) (string, bool) {
	lowered := strings.ToLower(body)
	for _, sig := range wafSignatures {
		if strings.Contains(lowered, sig) {
			return sig, true
		}
	}
	return "", false
}
