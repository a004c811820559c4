package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
)

// ArticleStorage persists per-article extraction rows.
type ArticleStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

func NewArticleStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ArticleStorage {
	return &ArticleStorage{db: db, logger: logger}
}

func (s *ArticleStorage) Create(_ context.Context, article *models.ArticleMetadata) error {
	if err := s.db.Store().Insert(article.ID, article); err != nil {
		return fmt.Errorf("insert article %s: %w", article.ID, err)
	}
	return nil
}

func (s *ArticleStorage) MostRecentByURL(_ context.Context, articleURL string) (*models.ArticleMetadata, error) {
	var articles []models.ArticleMetadata
	query := badgerhold.Where("ArticleURL").Eq(articleURL).SortBy("CreatedAt").Reverse().Limit(1)
	if err := s.db.Store().Find(&articles, query); err != nil {
		return nil, fmt.Errorf("find article for %s: %w", articleURL, err)
	}
	if len(articles) == 0 {
		return nil, nil
	}
	return &articles[0], nil
}

func (s *ArticleStorage) ListByJob(_ context.Context, jobID string) ([]*models.ArticleMetadata, error) {
	var articles []models.ArticleMetadata
	if err := s.db.Store().Find(&articles, badgerhold.Where("JobID").Eq(jobID)); err != nil {
		return nil, fmt.Errorf("list articles for job %s: %w", jobID, err)
	}

	out := make([]*models.ArticleMetadata, len(articles))
	for i := range articles {
		out[i] = &articles[i]
	}
	return out, nil
}
