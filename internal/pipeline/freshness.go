package pipeline

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
)

// Freshness decides whether analysis work can be reused from a prior
// job instead of being redone. It never fails: storage problems during
// a lookup degrade to "not fresh" so the pipeline just does the work.
type Freshness struct {
	articles     interfaces.ArticleStorage
	publisherTTL time.Duration
	articleTTL   time.Duration
	logger       arbor.ILogger

	now func() time.Time
}

func NewFreshness(articles interfaces.ArticleStorage, publisherTTL, articleTTL time.Duration, logger arbor.ILogger) *Freshness {
	return &Freshness{
		articles:     articles,
		publisherTTL: publisherTTL,
		articleTTL:   articleTTL,
		logger:       logger,
		now:          time.Now,
	}
}

// ShouldSkipPublisherSteps reports whether the publisher was checked
// within the publisher TTL. A publisher never checked is never fresh.
func (f *Freshness) ShouldSkipPublisherSteps(publisher *models.Publisher) bool {
	if publisher == nil || publisher.LastCheckedAt == nil {
		return false
	}
	return f.now().Sub(*publisher.LastCheckedAt) < f.publisherTTL
}

// ShouldSkipArticleSteps reports whether a recent enough extraction row
// already exists for the article URL.
func (f *Freshness) ShouldSkipArticleSteps(ctx context.Context, articleURL string) bool {
	row, err := f.articles.MostRecentByURL(ctx, articleURL)
	if err != nil {
		f.logger.Warn().Err(err).Str("article_url", articleURL).Msg("Article freshness lookup failed, treating as stale")
		return false
	}
	if row == nil {
		return false
	}
	return row.CreatedAt.After(f.now().Add(-f.articleTTL))
}
