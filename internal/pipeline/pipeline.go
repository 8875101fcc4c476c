// Package pipeline orchestrates a full website teardown: fetch, extract,
// conditional render, bounded crawl, scoring, and AI opportunity generation.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/webangle/teardown-cli/internal/ai"
	"github.com/webangle/teardown-cli/internal/analyzer"
	"github.com/webangle/teardown-cli/internal/config"
	"github.com/webangle/teardown-cli/internal/model"
	"github.com/webangle/teardown-cli/internal/render"
	"github.com/webangle/teardown-cli/internal/scrape"
	"github.com/webangle/teardown-cli/internal/store"
	"github.com/webangle/teardown-cli/internal/style"
	"github.com/webangle/teardown-cli/pkg/pagespeed"
)

// Analyzer runs the teardown pipeline for one URL at a time.
type Analyzer struct {
	cfg       *config.Config
	store     store.Store
	fetcher   *scrape.Fetcher
	renderer  render.Renderer
	pagespeed pagespeed.Client
	generator ai.Generator
	matcher   *scrape.PathMatcher
}

// New creates an Analyzer with all dependencies.
func New(
	cfg *config.Config,
	st store.Store,
	fetcher *scrape.Fetcher,
	renderer render.Renderer,
	ps pagespeed.Client,
	gen ai.Generator,
) *Analyzer {
	return &Analyzer{
		cfg:       cfg,
		store:     st,
		fetcher:   fetcher,
		renderer:  renderer,
		pagespeed: ps,
		generator: gen,
		matcher:   scrape.NewPathMatcher(cfg.Crawl.ImportantPaths),
	}
}

// RunOptions tweak a single analysis run.
type RunOptions struct {
	// SkipCache forces a fresh analysis even when a cached result exists.
	SkipCache bool
}

// Run analyzes one website end to end. Homepage fetch, homepage parse, and
// opportunity generation are fatal; rendering, auxiliary pages, and PageSpeed
// degrade to partial data.
func (a *Analyzer) Run(ctx context.Context, rawURL string, opts RunOptions) (*model.AnalysisResult, error) {
	start := time.Now()

	targetURL := scrape.NormalizeURL(rawURL)
	cacheKey := scrape.CanonicalKey(targetURL)
	log := zap.L().With(zap.String("url", targetURL))

	if !opts.SkipCache {
		cached, err := a.store.GetAnalysis(ctx, cacheKey)
		if err != nil {
			log.Warn("pipeline: cache read failed", zap.Error(err))
		} else if cached != nil {
			log.Info("pipeline: cache hit", zap.String("key", cacheKey))
			return cached, nil
		}
	}
	log.Info("pipeline: starting analysis")

	// Homepage fetch and parse. Nothing can proceed without them.
	html, err := a.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch homepage")
	}
	signals, err := scrape.ExtractSignals(html)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: parse homepage")
	}

	// Render when the static HTML looks like a JS shell. Render failure falls
	// back to the static signals.
	renderUsed := false
	var styleSignals *model.StyleSignals
	var responsiveSignals *model.ResponsiveSignals
	if a.cfg.Render.Enabled && a.renderer != nil && IsShell(signals) {
		log.Info("pipeline: shell detected, rendering")
		rendered, renderErr := a.renderer.Render(ctx, targetURL)
		if renderErr != nil {
			log.Warn("pipeline: render failed, using static signals", zap.Error(renderErr))
		} else {
			renderedSignals, extractErr := scrape.ExtractSignals(rendered.HTML)
			if extractErr != nil {
				log.Warn("pipeline: rendered HTML parse failed", zap.Error(extractErr))
			} else {
				if renderedSignals.VisibleText == "" && rendered.Text != "" {
					renderedSignals.VisibleText = rendered.Text
				}
				signals = renderedSignals
				html = rendered.HTML
				styleSignals = &rendered.Style
				responsiveSignals = &rendered.Responsive
				renderUsed = true
			}
		}
	}

	homepage := model.PageData{URL: targetURL, PageSignals: *signals}

	var robots *scrape.RobotsChecker
	if a.cfg.Crawl.RespectRobots {
		robots = scrape.FetchRobots(ctx, a.fetcher, targetURL)
	}

	// Auxiliary crawl and PageSpeed run in parallel; both absorb their own
	// failures.
	var auxPages []model.PageData
	performance := model.PerformanceMetrics{}
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		auxPages = a.crawlAuxiliary(gCtx, targetURL, html, robots)
		return nil
	})
	g.Go(func() error {
		metrics, psErr := a.pagespeed.Metrics(gCtx, targetURL)
		if psErr != nil {
			log.Warn("pipeline: pagespeed lookup failed", zap.Error(psErr))
			return nil
		}
		performance = *metrics
		return nil
	})
	_ = g.Wait()

	pages := append([]model.PageData{homepage}, auxPages...)
	contact := MergeContacts(pages)
	techStack := analyzer.DetectTechStack(signals, renderUsed)
	classification := analyzer.ClassifySite(signals)

	// Sub-scores. Render-derived scores exist only when rendering happened.
	var styleScore *model.StyleScore
	var responsiveRaw *int
	if renderUsed && styleSignals != nil {
		ss := style.Score(*styleSignals)
		styleScore = &ss
	}
	if renderUsed && responsiveSignals != nil {
		r := scoreResponsive(*responsiveSignals)
		responsiveRaw = &r
	}
	content := scoreContent(classification)

	var styleRaw *int
	if styleScore != nil {
		styleRaw = &styleScore.Score
	}
	scores := model.Scores{
		Performance: normalizeScore(performance.MobileScore),
		Style:       normalizeScore(styleRaw),
		Responsive:  normalizeScore(responsiveRaw),
		Content:     normalizeScore(&content),
	}
	scores.Overall = compositeScore(scores)

	log.Info("pipeline: scores computed",
		zap.Int("performance", scores.Performance),
		zap.Int("style", scores.Style),
		zap.Int("responsive", scores.Responsive),
		zap.Int("content", scores.Content),
		zap.Int("overall", scores.Overall),
	)

	analysisCtx := &model.AnalysisContext{
		URL:            targetURL,
		Contact:        contact,
		TechStack:      techStack,
		Performance:    performance,
		Classification: classification,
		ContentSummary: BuildContentSummary(pages),
		Style:          buildStyleContext(styleSignals, styleScore),
	}
	opportunities, err := a.generator.Generate(ctx, analysisCtx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: generate opportunities")
	}
	log.Info("pipeline: opportunities generated", zap.Int("count", len(opportunities)))

	result := &model.AnalysisResult{
		URL:            targetURL,
		AnalyzedAt:     time.Now().UTC().Format(time.RFC3339),
		Contact:        contact,
		TechStack:      techStack,
		Performance:    performance,
		Classification: classification,
		Opportunities:  opportunities,
		Meta: model.Meta{
			ScrapeDurationMs: time.Since(start).Milliseconds(),
			CacheHit:         false,
			RenderUsed:       renderUsed,
			PagesAnalyzed:    len(pages),
			OverallScore:     scores.Overall,
			Scores:           scores,
		},
	}

	if err := a.store.SetAnalysis(ctx, cacheKey, result, a.cfg.Store.TTL()); err != nil {
		log.Warn("pipeline: cache write failed", zap.Error(err))
	}

	log.Info("pipeline: analysis complete",
		zap.Int64("duration_ms", result.Meta.ScrapeDurationMs),
		zap.Int("pages", result.Meta.PagesAnalyzed),
		zap.Bool("render_used", renderUsed),
	)
	return result, nil
}
