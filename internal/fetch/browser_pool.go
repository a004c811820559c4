package fetch

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/common"
)

// BrowserPool manages a fixed set of headless Chrome contexts handed out
// round-robin to the browser fetch strategy.
type BrowserPool struct {
	mu               sync.Mutex
	browsers         []context.Context
	browserCancels   []context.CancelFunc
	allocatorCancels []context.CancelFunc
	next             int
	logger           arbor.ILogger
}

// NewBrowserPool starts the configured number of browser instances. An
// instance that fails its startup test is skipped; the pool errors only
// when no instance could be started.
func NewBrowserPool(config common.BrowserConfig, logger arbor.ILogger) (*BrowserPool, error) {
	p := &BrowserPool{logger: logger}

	for i := 0; i < config.MaxInstances; i++ {
		if err := p.startInstance(config); err != nil {
			logger.Warn().Err(err).Int("instance", i).Msg("Failed to start browser instance")
		}
	}

	if len(p.browsers) == 0 {
		p.Close()
		return nil, fmt.Errorf("no browser instances could be started")
	}

	logger.Info().
		Int("instances", len(p.browsers)).
		Bool("headless", config.Headless).
		Msg("Browser pool ready")

	return p, nil
}

func (p *BrowserPool) startInstance(config common.BrowserConfig) error {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", config.Headless),
		chromedp.Flag("no-sandbox", config.NoSandbox),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(config.UserAgent),
	)

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	if err := chromedp.Run(browserCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return fmt.Errorf("browser startup test failed: %w", err)
	}

	p.mu.Lock()
	p.browsers = append(p.browsers, browserCtx)
	p.browserCancels = append(p.browserCancels, browserCancel)
	p.allocatorCancels = append(p.allocatorCancels, allocatorCancel)
	p.mu.Unlock()

	return nil
}

// Get returns a browser context from the pool, round-robin.
func (p *BrowserPool) Get() (context.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.browsers) == 0 {
		return nil, fmt.Errorf("browser pool is empty")
	}

	ctx := p.browsers[p.next%len(p.browsers)]
	p.next = (p.next + 1) % len(p.browsers)
	return ctx, nil
}

// Close shuts down every browser instance.
func (p *BrowserPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, cancel := range p.browserCancels {
		cancel()
	}
	for _, cancel := range p.allocatorCancels {
		cancel()
	}
	p.browsers = nil
	p.browserCancels = nil
	p.allocatorCancels = nil
}
