package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsascout/scout/internal/models"
)

func TestClassifyPaywallSchemaFree(t *testing.T) {
	ext := &models.ArticleExtraction{JSONLDFields: map[string]any{"isAccessibleForFree": true}}

	result := ClassifyPaywall("<html>subscribe to continue reading</html>", ext)

	assert.Equal(t, models.PaywallStatusFree, result.PaywallStatus)
	require.NotNil(t, result.SchemaAccessible)
	assert.True(t, *result.SchemaAccessible)
}

func TestClassifyPaywallSchemaStringVariants(t *testing.T) {
	for _, v := range []any{"true", "True", "yes", "1", float64(1)} {
		ext := &models.ArticleExtraction{JSONLDFields: map[string]any{"isAccessibleForFree": v}}
		result := ClassifyPaywall("", ext)
		assert.Equal(t, models.PaywallStatusFree, result.PaywallStatus, "value %v", v)
	}

	ext := &models.ArticleExtraction{JSONLDFields: map[string]any{"isAccessibleForFree": "false"}}
	result := ClassifyPaywall("", ext)
	assert.Equal(t, models.PaywallStatusPaywalled, result.PaywallStatus)
	require.NotNil(t, result.SchemaAccessible)
	assert.False(t, *result.SchemaAccessible)
}

func TestClassifyPaywallHasPart(t *testing.T) {
	ext := &models.ArticleExtraction{JSONLDFields: map[string]any{
		"hasPart": []any{map[string]any{
			"@type":               "WebPageElement",
			"isAccessibleForFree": false,
			"cssSelector":         ".paywall",
		}},
	}}

	result := ClassifyPaywall("", ext)

	assert.Equal(t, models.PaywallStatusPaywalled, result.PaywallStatus)
	require.NotNil(t, result.SchemaAccessible)
	assert.False(t, *result.SchemaAccessible)
}

func TestClassifyPaywallHasPartLaterChild(t *testing.T) {
	ext := &models.ArticleExtraction{JSONLDFields: map[string]any{
		"hasPart": []any{
			map[string]any{
				"@type":       "WebPageElement",
				"cssSelector": ".lede",
			},
			map[string]any{
				"@type":               "WebPageElement",
				"isAccessibleForFree": false,
				"cssSelector":         ".paywall",
			},
		},
	}}

	result := ClassifyPaywall("", ext)

	assert.Equal(t, models.PaywallStatusPaywalled, result.PaywallStatus)
	require.NotNil(t, result.SchemaAccessible)
	assert.False(t, *result.SchemaAccessible)
}

func TestClassifyPaywallMeterWins(t *testing.T) {
	html := `<html><body>
<div class="paywall">Subscribe to continue reading. You have 2 free articles remaining this month.</div>
</body></html>`

	result := ClassifyPaywall(html, &models.ArticleExtraction{})

	assert.Equal(t, models.PaywallStatusMetered, result.PaywallStatus)
}

func TestClassifyPaywallLoginPlusClass(t *testing.T) {
	html := `<html><body>
<div class="regwall-overlay">Sign in to read this story.</div>
</body></html>`

	result := ClassifyPaywall(html, &models.ArticleExtraction{})

	assert.Equal(t, models.PaywallStatusPaywalled, result.PaywallStatus)
	assert.Contains(t, result.Signals, "phrase:sign in to read")
	assert.Contains(t, result.Signals, "class:regwall")
}

func TestClassifyPaywallNoSignalsIsFree(t *testing.T) {
	result := ClassifyPaywall("<html><body><p>Plain open article.</p></body></html>", &models.ArticleExtraction{})

	assert.Equal(t, models.PaywallStatusFree, result.PaywallStatus)
	assert.Nil(t, result.SchemaAccessible)
	assert.Empty(t, result.Signals)
}

func TestClassifyPaywallAmbiguousIsUnknown(t *testing.T) {
	// A paywall class with no login phrase is not conclusive.
	html := `<html><body><div class="premium-content">Exclusive analysis.</div></body></html>`

	result := ClassifyPaywall(html, &models.ArticleExtraction{})

	assert.Equal(t, models.PaywallStatusUnknown, result.PaywallStatus)
}

func TestClassifyPaywallEmptyPage(t *testing.T) {
	result := ClassifyPaywall("", &models.ArticleExtraction{})

	assert.Equal(t, models.PaywallStatusUnknown, result.PaywallStatus)
	assert.NotEmpty(t, result.Error)
}
