package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/models"
)

// StrategyBrowser is the name of the real-browser fetch strategy.
const StrategyBrowser = "browser"

// BrowserFetcher renders the page in a pooled headless Chrome instance.
// A real browser carries a genuine TLS fingerprint, which passes origins
// that reject plain HTTP clients. Non-2xx statuses and challenge-page
// bodies are reported as FetchErrors, not successes.
type BrowserFetcher struct {
	pool     *BrowserPool
	timeout  time.Duration
	waitTime time.Duration
	logger   arbor.ILogger
}

// NewBrowserFetcher creates the browser strategy on top of a pool.
func NewBrowserFetcher(pool *BrowserPool, timeout, waitTime time.Duration, logger arbor.ILogger) *BrowserFetcher {
	return &BrowserFetcher{
		pool:     pool,
		timeout:  timeout,
		waitTime: waitTime,
		logger:   logger,
	}
}

func (f *BrowserFetcher) Name() string {
	return StrategyBrowser
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*models.FetchResult, error) {
	browserCtx, err := f.pool.Get()
	if err != nil {
		return nil, &FetchError{Strategy: StrategyBrowser, Cause: err}
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()

	runCtx, cancelRun := context.WithTimeout(tabCtx, f.timeout)
	defer cancelRun()

	// Capture the status and headers of the main document response.
	var statusCode int
	headers := http.Header{}
	chromedp.ListenTarget(runCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument || statusCode != 0 {
			return
		}
		statusCode = int(resp.Response.Status)
		for name, value := range resp.Response.Headers {
			headers.Set(name, fmt.Sprintf("%v", value))
		}
	})

	var html string
	err = chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.Sleep(f.waitTime),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, &FetchError{Strategy: StrategyBrowser, Cause: err}
	}

	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	if cause := responseError(statusCode, html); cause != nil {
		return nil, &FetchError{Strategy: StrategyBrowser, Cause: cause}
	}

	f.logger.Debug().
		Str("url", url).
		Int("status", statusCode).
		Int("bytes", len(html)).
		Msg("Browser fetch succeeded")

	return &models.FetchResult{
		Body:       html,
		StatusCode: statusCode,
		Strategy:   StrategyBrowser,
		URL:        url,
		Headers:    headers,
	}, nil
}

// responseError rejects any non-2xx response so the manager falls back
// to the next strategy, and screens 2xx bodies for challenge pages.
func responseError(statusCode int, html string) error {
	if statusCode == http.StatusForbidden {
		return fmt.Errorf("blocked with status 403")
	}
	if statusCode < 200 || statusCode >= 300 {
		return fmt.Errorf("unexpected status %d", statusCode)
	}
	if sig, blocked := BlockSignature(html); blocked {
		return fmt.Errorf("waf challenge page detected (%q)", sig)
	}
	return nil
}
