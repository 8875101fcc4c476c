package pipeline

import (
	"context"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/webangle/teardown-cli/internal/model"
	"github.com/webangle/teardown-cli/internal/scrape"
)

// auxConcurrency bounds parallel auxiliary page fetches per run.
const auxConcurrency = 3

// crawlAuxiliary fetches and extracts the important internal pages discovered
// on the homepage. Individual page failures are logged and dropped; the
// returned slice preserves the discovery order of the pages that succeeded.
func (a *Analyzer) crawlAuxiliary(ctx context.Context, homeURL, homeHTML string, robots *scrape.RobotsChecker) []model.PageData {
	links := scrape.ExtractInternalLinks(homeHTML, homeURL)
	paths := a.matcher.FilterImportant(links, a.cfg.Crawl.MaxAuxPages)
	if len(paths) == 0 {
		return nil
	}

	base, err := url.Parse(homeURL)
	if err != nil {
		return nil
	}
	origin := base.Scheme + "://" + base.Host

	log := zap.L().With(zap.String("url", homeURL))

	results := make([]*model.PageData, len(paths))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(auxConcurrency)

	for i, path := range paths {
		g.Go(func() error {
			if robots != nil && !robots.Allowed(path) {
				log.Debug("crawl: path disallowed by robots", zap.String("path", path))
				return nil
			}

			pageURL := origin + path
			html, fetchErr := a.fetcher.Fetch(gCtx, pageURL)
			if fetchErr != nil {
				log.Debug("crawl: aux page fetch failed", zap.String("path", path), zap.Error(fetchErr))
				return nil
			}

			sig, extractErr := scrape.ExtractSignals(html)
			if extractErr != nil {
				log.Debug("crawl: aux page parse failed", zap.String("path", path), zap.Error(extractErr))
				return nil
			}

			results[i] = &model.PageData{URL: pageURL, PageSignals: *sig}
			return nil
		})
	}
	// Workers absorb their own failures.
	_ = g.Wait()

	pages := make([]model.PageData, 0, len(paths))
	for _, r := range results {
		if r != nil {
			pages = append(pages, *r)
		}
	}
	log.Info("crawl: auxiliary pages fetched",
		zap.Int("requested", len(paths)),
		zap.Int("fetched", len(pages)),
		zap.Strings("paths", paths),
	)
	return pages
}
