package scrape

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// RobotsChecker answers whether the crawl may fetch a given path. Any failure
// to fetch or parse robots.txt degrades to "allowed" — the auxiliary crawl is
// best-effort and must never abort an analysis.
type RobotsChecker struct {
	group *robotstxt.Group
}

// FetchRobots retrieves and parses robots.txt for the origin of siteURL.
func FetchRobots(ctx context.Context, f *Fetcher, siteURL string) *RobotsChecker {
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return &RobotsChecker{}
	}
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return &RobotsChecker{}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		zap.L().Debug("scrape: robots.txt fetch failed", zap.String("url", robotsURL), zap.Error(err))
		return &RobotsChecker{}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &RobotsChecker{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return &RobotsChecker{}
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		zap.L().Debug("scrape: robots.txt parse failed", zap.String("url", robotsURL), zap.Error(err))
		return &RobotsChecker{}
	}

	return &RobotsChecker{group: data.FindGroup("TeardownBot")}
}

// Allowed reports whether the crawl may fetch path.
func (r *RobotsChecker) Allowed(path string) bool {
	if r == nil || r.group == nil {
		return true
	}
	return r.group.Test(path)
}
