package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverFeeds(t *testing.T) {
	html := `<html><head>
<link rel="alternate" type="application/rss+xml" title="Main feed" href="/feed">
<link rel="alternate" type="application/atom+xml" href="https://example.com/atom.xml">
<link rel="alternate" type="application/json" href="/feed.json">
<link rel="stylesheet" type="text/css" href="/main.css">
</head></html>`

	result := DiscoverFeeds(html, "https://example.com/")

	require.Len(t, result.Feeds, 2)
	assert.Equal(t, "https://example.com/feed", result.Feeds[0].URL)
	assert.Equal(t, "application/rss+xml", result.Feeds[0].Type)
	assert.Equal(t, "Main feed", result.Feeds[0].Title)
	assert.Equal(t, "https://example.com/atom.xml", result.Feeds[1].URL)
	assert.Equal(t, 2, result.Count)
}

func TestDiscoverFeedsNone(t *testing.T) {
	result := DiscoverFeeds("<html><head></head></html>", "https://example.com/")
	assert.Empty(t, result.Feeds)
	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Error)
}

func TestDiscoverFeedsEmptyHomepage(t *testing.T) {
	result := DiscoverFeeds("", "https://example.com/")
	assert.NotEmpty(t, result.Error)
}
