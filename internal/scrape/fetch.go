package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	userAgent   = "Mozilla/5.0 (compatible; TeardownBot/1.0; +https://webangle.dev)"
	maxBodySize = 2 * 1024 * 1024
)

// Fetcher retrieves raw HTML over HTTP with a bounded timeout, body size
// limit, block detection, and an optional rate limit shared across all
// requests issued through it.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithRateLimit caps outgoing requests to rps per second. Zero or negative
// disables limiting.
func WithRateLimit(rps float64) FetcherOption {
	return func(f *Fetcher) {
		if rps > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewFetcher creates a Fetcher with sensible defaults.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the HTML body of targetURL. Blocked responses (Cloudflare,
// captcha) and HTTP errors are returned as errors; the caller decides whether
// that is fatal.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "scrape: rate limit wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "scrape: create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "scrape: fetch %s", targetURL)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", eris.Wrap(err, "scrape: read body")
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return "", eris.Errorf("scrape: blocked (%s) fetching %s", blockType, targetURL)
	}

	if resp.StatusCode >= 400 {
		return "", eris.Errorf("scrape: status %d fetching %s", resp.StatusCode, targetURL)
	}

	return string(body), nil
}
