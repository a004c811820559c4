package fetch

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/models"
)

// StrategyProxy is the name of the proxy API fetch strategy.
const StrategyProxy = "proxy"

// ProxyFetcher fetches through an extraction proxy API authenticated
// with a shared secret. The API accepts {url, httpResponseBody:true}
// and returns the page body base64-encoded.
type ProxyFetcher struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   arbor.ILogger
}

type proxyRequest struct {
	URL              string `json:"url"`
	HTTPResponseBody bool   `json:"httpResponseBody"`
}

type proxyResponse struct {
	URL              string `json:"url"`
	StatusCode       int    `json:"statusCode"`
	HTTPResponseBody string `json:"httpResponseBody"`
}

// NewProxyFetcher creates the proxy strategy.
func NewProxyFetcher(endpoint, apiKey string, timeout time.Duration, logger arbor.ILogger) *ProxyFetcher {
	return &ProxyFetcher{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (f *ProxyFetcher) Name() string {
	return StrategyProxy
}

func (f *ProxyFetcher) Fetch(ctx context.Context, url string) (*models.FetchResult, error) {
	if f.apiKey == "" {
		return nil, &FetchError{Strategy: StrategyProxy, Cause: fmt.Errorf("proxy api key not configured")}
	}

	payload, err := json.Marshal(proxyRequest{URL: url, HTTPResponseBody: true})
	if err != nil {
		return nil, &FetchError{Strategy: StrategyProxy, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &FetchError{Strategy: StrategyProxy, Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(f.apiKey, "")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Strategy: StrategyProxy, Cause: err}
	}
	defer resp.Body.Close()

	// The body is only base64-decoded on 200; any other status is a
	// strategy failure carrying the status code.
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Strategy: StrategyProxy, Cause: fmt.Errorf("proxy api returned status %d", resp.StatusCode)}
	}

	var decoded proxyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &FetchError{Strategy: StrategyProxy, Cause: fmt.Errorf("invalid proxy api response: %w", err)}
	}

	body, err := base64.StdEncoding.DecodeString(decoded.HTTPResponseBody)
	if err != nil {
		return nil, &FetchError{Strategy: StrategyProxy, Cause: fmt.Errorf("invalid base64 body: %w", err)}
	}

	statusCode := decoded.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	finalURL := decoded.URL
	if finalURL == "" {
		finalURL = url
	}

	f.logger.Debug().
		Str("url", url).
		Int("status", statusCode).
		Int("bytes", len(body)).
		Msg("Proxy fetch succeeded")

	return &models.FetchResult{
		Body:       string(body),
		StatusCode: statusCode,
		Strategy:   StrategyProxy,
		URL:        finalURL,
		Headers:    http.Header{},
	}, nil
}
