package steps

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectRSLFromRobotsLicense(t *testing.T) {
	result := DetectRSL([]string{"/license.xml"}, "", nil, "https://example.com/")

	require.True(t, result.RSLDetected)
	require.Len(t, result.Indicators, 1)
	assert.Equal(t, "robots.txt", result.Indicators[0].Source)
	assert.Equal(t, "https://example.com/license.xml", result.Indicators[0].URL)
}

func TestDetectRSLFromLinkTag(t *testing.T) {
	html := `<html><head>
<link rel="license" type="application/rsl+xml" href="/rsl.xml">
<link rel="license" type="text/html" href="/human-license">
</head></html>`

	result := DetectRSL(nil, html, nil, "https://example.com/")

	require.Len(t, result.Indicators, 1)
	assert.Equal(t, "link_tag", result.Indicators[0].Source)
	assert.Equal(t, "https://example.com/rsl.xml", result.Indicators[0].URL)
}

func TestDetectRSLFromLinkHeader(t *testing.T) {
	headers := http.Header{}
	headers.Set("Link", `<https://example.com/rsl.xml>; rel="license"; type="application/rsl+xml"`)

	result := DetectRSL(nil, "", headers, "https://example.com/")

	require.Len(t, result.Indicators, 1)
	assert.Equal(t, "http_header", result.Indicators[0].Source)
	assert.Equal(t, "https://example.com/rsl.xml", result.Indicators[0].URL)
}

func TestDetectRSLHeaderWithoutMediaType(t *testing.T) {
	headers := http.Header{}
	headers.Set("Link", `<https://example.com/style.css>; rel="license"`)

	result := DetectRSL(nil, "", headers, "https://example.com/")

	assert.False(t, result.RSLDetected)
	assert.Equal(t, 0, result.Count)
}

func TestDetectRSLNothing(t *testing.T) {
	result := DetectRSL(nil, "<html></html>", nil, "https://example.com/")
	assert.False(t, result.RSLDetected)
	assert.Empty(t, result.Indicators)
}
