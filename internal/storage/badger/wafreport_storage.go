package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
)

// WAFReportStorage persists WAF scan history rows, append-only.
type WAFReportStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

func NewWAFReportStorage(db *BadgerDB, logger arbor.ILogger) interfaces.WAFReportStorage {
	return &WAFReportStorage{db: db, logger: logger}
}

func (s *WAFReportStorage) Append(_ context.Context, report *models.WAFReport) error {
	if err := s.db.Store().Insert(report.ID, report); err != nil {
		return fmt.Errorf("insert waf report %s: %w", report.ID, err)
	}
	return nil
}

func (s *WAFReportStorage) LatestByDomain(_ context.Context, domain string) (*models.WAFReport, error) {
	var reports []models.WAFReport
	query := badgerhold.Where("Domain").Eq(domain).SortBy("CreatedAt").Reverse().Limit(1)
	if err := s.db.Store().Find(&reports, query); err != nil {
		return nil, fmt.Errorf("find waf report for %s: %w", domain, err)
	}
	if len(reports) == 0 {
		return nil, nil
	}
	return &reports[0], nil
}
