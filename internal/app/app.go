// Package app assembles the application: storage, event bus, fetch
// strategies, LLM collaborators, the pipeline, and the worker pool.
package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/common"
	"github.com/itsascout/scout/internal/events"
	"github.com/itsascout/scout/internal/fetch"
	"github.com/itsascout/scout/internal/handlers"
	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/llm"
	"github.com/itsascout/scout/internal/pipeline"
	"github.com/itsascout/scout/internal/queue"
	"github.com/itsascout/scout/internal/scheduler"
	badgerstore "github.com/itsascout/scout/internal/storage/badger"
	"github.com/itsascout/scout/internal/waf"
)

// App holds all application components and dependencies.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager
	EventService   interfaces.EventService
	FetchManager   interfaces.FetchManager

	Gate       *pipeline.Gate
	Supervisor *pipeline.Supervisor
	Queue      *queue.JobQueue
	Workers    *queue.WorkerPool
	Sweeper    *scheduler.Sweeper
	Router     *handlers.Router

	storage     *badgerstore.Manager
	browserPool *fetch.BrowserPool
}

// New wires the application from configuration. Optional capabilities
// degrade rather than abort: a browser that fails to launch drops the
// browser strategy, a missing LLM key leaves the collaborator steps
// reporting their own errors.
func New(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	storage, err := badgerstore.NewManager(logger, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	a.storage = storage
	a.StorageManager = storage

	a.EventService = events.NewBus(logger)

	if err := a.initFetch(); err != nil {
		a.Close()
		return nil, err
	}

	if err := a.initPipeline(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.Router = handlers.NewRouter(a.Gate, a.StorageManager, a.EventService, logger)

	return a, nil
}

// initFetch builds the ordered fetch strategies from configuration.
func (a *App) initFetch() error {
	cfg := a.Config.Fetch
	timeout := cfg.TimeoutDuration()

	var strategies []interfaces.Fetcher
	for _, name := range cfg.Strategies {
		switch name {
		case "browser":
			pool, err := fetch.NewBrowserPool(cfg.Browser, a.Logger)
			if err != nil {
				a.Logger.Warn().Err(err).Msg("Browser pool unavailable, dropping browser strategy")
				continue
			}
			a.browserPool = pool
			strategies = append(strategies, fetch.NewBrowserFetcher(pool, timeout, cfg.Browser.WaitTimeDuration(), a.Logger))
		case "proxy":
			if cfg.ProxyAPIKey == "" {
				a.Logger.Warn().Msg("Proxy API key not configured, dropping proxy strategy")
				continue
			}
			strategies = append(strategies, fetch.NewProxyFetcher(cfg.ProxyAPIURL, cfg.ProxyAPIKey, timeout, a.Logger))
		default:
			return fmt.Errorf("unknown fetch strategy: %s", name)
		}
	}

	if len(strategies) == 0 {
		return fmt.Errorf("no fetch strategy available")
	}

	a.FetchManager = fetch.NewManager(strategies, a.StorageManager.Publishers(), cfg.PerOriginIntervalDuration(), a.Logger)
	return nil
}

// initPipeline builds the supervisor, the job queue, the worker pool,
// the submission gate, and the recheck sweeper.
func (a *App) initPipeline(ctx context.Context) error {
	var scanner interfaces.WAFScanner
	if a.Config.WAF.Enabled {
		scanner = waf.NewScanner(a.Config.WAF.Binary, a.Config.WAF.TimeoutDuration(), a.Logger)
	} else {
		a.Logger.Info().Msg("WAF fingerprinting disabled")
	}

	llmService, err := llm.NewService(ctx, &a.Config.LLM, a.Logger)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("LLM provider unavailable, collaborator steps will report errors")
	}
	agents := llm.NewAgents(llmService, a.Config.LLM.TimeoutDuration(), a.Logger)

	freshness := pipeline.NewFreshness(
		a.StorageManager.Articles(),
		a.Config.Freshness.PublisherTTLDuration(),
		a.Config.Freshness.ArticleTTLDuration(),
		a.Logger,
	)

	a.Supervisor = pipeline.NewSupervisor(pipeline.SupervisorOptions{
		Store:           a.StorageManager,
		Fetcher:         a.FetchManager,
		Events:          a.EventService,
		Scanner:         scanner,
		Discoverer:      agents,
		Evaluator:       agents,
		Profiler:        agents,
		Freshness:       freshness,
		RobotsUserAgent: a.Config.Robots.UserAgent,
		Logger:          a.Logger,
	})

	jobQueue, err := queue.NewJobQueue(
		a.storage.DB(),
		a.Config.Queue.Name,
		a.Config.Queue.VisibilityTimeoutDuration(),
		a.Config.Queue.MaxReceive,
	)
	if err != nil {
		return fmt.Errorf("failed to create job queue: %w", err)
	}
	a.Queue = jobQueue

	a.Workers = queue.NewWorkerPool(
		jobQueue,
		a.Supervisor,
		a.Config.Queue.Concurrency,
		a.Config.Queue.PollIntervalDuration(),
		a.Config.Queue.JobTimeoutDuration(),
		a.Logger,
	)

	a.Gate = pipeline.NewGate(a.StorageManager.Jobs(), a.StorageManager.Publishers(), jobQueue, a.Logger)

	a.Sweeper = scheduler.NewSweeper(
		a.StorageManager.Publishers(),
		a.Gate,
		a.Config.Scheduler.RecheckSchedule,
		a.Config.Freshness.PublisherTTLDuration(),
		a.Config.Scheduler.BatchSize,
		a.Logger,
	)

	return nil
}

// Start launches the background components: the worker pool and the
// recheck sweeper. The HTTP server is started by the caller.
func (a *App) Start(ctx context.Context) error {
	a.Workers.Start(ctx)
	if err := a.Sweeper.Start(); err != nil {
		return fmt.Errorf("failed to start sweeper: %w", err)
	}
	return nil
}

// Close stops background work and releases resources in reverse
// dependency order.
func (a *App) Close() error {
	if a.Sweeper != nil {
		a.Sweeper.Stop()
	}

	if a.Workers != nil {
		a.Workers.Stop()
		a.Logger.Info().Msg("Worker pool stopped")
	}

	if a.browserPool != nil {
		a.browserPool.Close()
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event bus")
		}
	}

	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
			return err
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
