package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverOrganizationScoresJSONLD(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@graph": [
    {
      "@type": "WebSite",
      "@id": "https://example.com/#website",
      "publisher": {"@id": "https://example.com/#organization"}
    },
    {
      "@type": "NewsMediaOrganization",
      "@id": "https://example.com/#organization",
      "name": "Example News",
      "url": "https://example.com/",
      "logo": {"@type": "ImageObject", "url": "https://example.com/logo.png"},
      "sameAs": ["https://twitter.com/example"]
    },
    {
      "@type": "Organization",
      "name": "Some Vendor",
      "url": "https://vendor.example.org/"
    }
  ]
}
</script>
</head><body></body></html>`

	result := DiscoverOrganization(html, "https://example.com/")

	require.True(t, result.Found)
	assert.Equal(t, "json-ld", result.Source)
	assert.Equal(t, 2, result.CandidateCount)
	// NewsMediaOrganization +3, url==homepage +3, #organization in @id +2,
	// referenced as publisher +2, logo +1, sameAs +1.
	assert.Equal(t, 12, result.Score)

	require.NotNil(t, result.Organization)
	assert.Equal(t, "Example News", result.Organization.Name)
	assert.Equal(t, "https://example.com/#organization", result.Organization.ID)
	assert.Equal(t, "https://example.com/logo.png", result.Organization.Logo)
	assert.Equal(t, []string{"https://twitter.com/example"}, result.Organization.SameAs)
}

func TestDiscoverOrganizationTieBreakPrefersHomepageURL(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">
{"@type": "Organization", "name": "First", "url": "https://elsewhere.example.com/", "logo": "a.png", "sameAs": ["x"], "contactPoint": {}}
</script>
<script type="application/ld+json">
{"@type": "Organization", "name": "Second", "url": "https://example.com/"}
</script>
</head></html>`

	result := DiscoverOrganization(html, "https://example.com/")

	require.True(t, result.Found)
	// Both score 3; url==homepage breaks the tie.
	assert.Equal(t, "Second", result.Organization.Name)
	assert.Equal(t, 2, result.CandidateCount)
}

func TestDiscoverOrganizationTieBreakDocumentOrder(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">
{"@type": "Organization", "name": "Alpha", "url": "https://a.example.org/"}
</script>
<script type="application/ld+json">
{"@type": "Organization", "name": "Beta", "url": "https://b.example.org/"}
</script>
</head></html>`

	result := DiscoverOrganization(html, "https://example.com/")

	require.True(t, result.Found)
	assert.Equal(t, "Alpha", result.Organization.Name)
}

func TestDiscoverOrganizationDiscardsAnonymousZeroScore(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">
{"@type": "Organization", "name": "Nameless Outfit"}
</script>
</head></html>`

	result := DiscoverOrganization(html, "https://example.com/")

	assert.False(t, result.Found)
	assert.Equal(t, "none", result.Source)
}

func TestDiscoverOrganizationSchemaURLType(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">
{"@type": "https://schema.org/NewsMediaOrganization", "name": "Typed", "url": "https://example.com/"}
</script>
</head></html>`

	result := DiscoverOrganization(html, "https://example.com/")

	require.True(t, result.Found)
	assert.Equal(t, 6, result.Score)
}

func TestDiscoverOrganizationMicrodataFallback(t *testing.T) {
	html := `<html><body>
<div itemscope itemtype="https://schema.org/WebPage">
  <div itemprop="publisher" itemscope itemtype="https://schema.org/Organization">
    <meta itemprop="name" content="Micro News">
    <link itemprop="url" href="https://example.com/">
    <img itemprop="logo" src="https://example.com/logo.png">
  </div>
</div>
</body></html>`

	result := DiscoverOrganization(html, "https://example.com/")

	require.True(t, result.Found)
	assert.Equal(t, "microdata", result.Source)
	// url==homepage +3, logo +1, nested publisher of WebPage +2.
	assert.Equal(t, 6, result.Score)
	assert.Equal(t, "Micro News", result.Organization.Name)
}

func TestDiscoverOrganizationEmptyHomepage(t *testing.T) {
	result := DiscoverOrganization("", "https://example.com/")
	assert.False(t, result.Found)
	assert.NotEmpty(t, result.Error)
}
