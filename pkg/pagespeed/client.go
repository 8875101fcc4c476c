// Package pagespeed provides a client for the Google PageSpeed Insights API.
package pagespeed

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/webangle/teardown-cli/internal/model"
)

// Client defines the PageSpeed lookup operation. Implementations must report
// quota or network failure as an unavailable mobile score, never as an error
// and never as a score of zero.
type Client interface {
	Metrics(ctx context.Context, targetURL string) (*model.PerformanceMetrics, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(base string) Option {
	return func(c *httpClient) {
		c.baseURL = base
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// httpClient implements Client against the real API.
type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a PageSpeed client. The API key is optional; keyless
// requests run under a shared quota.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://www.googleapis.com/pagespeedonline/v5",
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse mirrors the slice of the Lighthouse payload we read.
type apiResponse struct {
	LighthouseResult struct {
		Categories struct {
			Performance struct {
				Score *float64 `json:"score"`
			} `json:"performance"`
		} `json:"categories"`
		Audits map[string]struct {
			NumericValue *float64 `json:"numericValue"`
		} `json:"audits"`
	} `json:"lighthouseResult"`
}

// Metrics runs a mobile-strategy PageSpeed audit for targetURL. HTTP-level
// and quota failures degrade to an unavailable score.
func (c *httpClient) Metrics(ctx context.Context, targetURL string) (*model.PerformanceMetrics, error) {
	q := url.Values{}
	q.Set("url", targetURL)
	q.Set("strategy", "mobile")
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	apiURL := c.baseURL + "/runPagespeed?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "pagespeed: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		zap.L().Debug("pagespeed: request failed", zap.String("url", targetURL), zap.Error(err))
		return &model.PerformanceMetrics{}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		zap.L().Debug("pagespeed: non-200 response",
			zap.String("url", targetURL),
			zap.Int("status", resp.StatusCode),
		)
		return &model.PerformanceMetrics{}, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8*1024*1024))
	if err != nil {
		return &model.PerformanceMetrics{}, nil
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		zap.L().Debug("pagespeed: unmarshal failed", zap.String("url", targetURL), zap.Error(err))
		return &model.PerformanceMetrics{}, nil
	}

	metrics := &model.PerformanceMetrics{}
	if score := parsed.LighthouseResult.Categories.Performance.Score; score != nil {
		v := int(math.Round(*score * 100))
		metrics.MobileScore = &v
	}

	audits := parsed.LighthouseResult.Audits
	if lcp := audits["largest-contentful-paint"].NumericValue; lcp != nil {
		v := *lcp / 1000
		metrics.LCP = &v
	}
	if cls := audits["cumulative-layout-shift"].NumericValue; cls != nil {
		v := math.Round(*cls*1000) / 1000
		metrics.CLS = &v
	}
	if tbt := audits["total-blocking-time"].NumericValue; tbt != nil {
		v := int(math.Round(*tbt))
		metrics.TBT = &v
	}
	if tti := audits["interactive"].NumericValue; tti != nil {
		v := int(math.Round(*tti / 1000))
		metrics.LoadTimeApprox = &v
	}

	return metrics, nil
}
