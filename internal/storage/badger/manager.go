package badger

import (
	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/interfaces"
)

// Manager implements the StorageManager interface on one Badger store.
type Manager struct {
	db         *BadgerDB
	publishers interfaces.PublisherStorage
	jobs       interfaces.JobStorage
	articles   interfaces.ArticleStorage
	wafReports interfaces.WAFReportStorage
	logger     arbor.ILogger
}

func NewManager(logger arbor.ILogger, path string) (*Manager, error) {
	db, err := NewBadgerDB(logger, path)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:         db,
		publishers: NewPublisherStorage(db, logger),
		jobs:       NewJobStorage(db, logger),
		articles:   NewArticleStorage(db, logger),
		wafReports: NewWAFReportStorage(db, logger),
		logger:     logger,
	}

	logger.Info().Str("path", path).Msg("Badger storage manager initialized")
	return manager, nil
}

func (m *Manager) Publishers() interfaces.PublisherStorage { return m.publishers }
func (m *Manager) Jobs() interfaces.JobStorage             { return m.jobs }
func (m *Manager) Articles() interfaces.ArticleStorage     { return m.articles }
func (m *Manager) WAFReports() interfaces.WAFReportStorage { return m.wafReports }

// DB exposes the raw Badger handle so the job queue can share the
// database file.
func (m *Manager) DB() *badgerdb.DB {
	return m.db.Store().Badger()
}

func (m *Manager) Close() error {
	return m.db.Close()
}
