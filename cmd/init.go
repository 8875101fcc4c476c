package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/webangle/teardown-cli/internal/ai"
	"github.com/webangle/teardown-cli/internal/pipeline"
	"github.com/webangle/teardown-cli/internal/render"
	"github.com/webangle/teardown-cli/internal/scrape"
	"github.com/webangle/teardown-cli/internal/store"
	"github.com/webangle/teardown-cli/pkg/llm"
	"github.com/webangle/teardown-cli/pkg/pagespeed"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "teardown.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initLLM() (llm.Client, error) {
	switch cfg.AI.Provider {
	case "openai":
		if cfg.AI.OpenAIKey == "" {
			return nil, eris.New("openai API key is required (TEARDOWN_AI_OPENAI_KEY)")
		}
		return llm.NewOpenAI(cfg.AI.OpenAIKey,
			llm.WithOpenAIModel(cfg.AI.Model),
			llm.WithOpenAIMaxTokens(cfg.AI.MaxTokens),
		), nil
	case "anthropic":
		if cfg.AI.AnthropicKey == "" {
			return nil, eris.New("anthropic API key is required (TEARDOWN_AI_ANTHROPIC_KEY)")
		}
		return llm.NewAnthropic(cfg.AI.AnthropicKey,
			llm.WithAnthropicModel(cfg.AI.Model),
			llm.WithAnthropicMaxTokens(int64(cfg.AI.MaxTokens)),
		), nil
	default:
		return nil, eris.Errorf("unsupported AI provider: %s", cfg.AI.Provider)
	}
}

// initAnalyzer wires the full pipeline from config. The caller owns the
// returned store and must Close it.
func initAnalyzer(ctx context.Context) (*pipeline.Analyzer, store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, eris.Wrap(err, "migrate store")
	}

	llmClient, err := initLLM()
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	fetcher := scrape.NewFetcher(
		scrape.WithTimeout(time.Duration(cfg.Crawl.FetchTimeoutSecs)*time.Second),
		scrape.WithRateLimit(cfg.Crawl.RequestsPerSecond),
	)

	var renderer render.Renderer
	if cfg.Render.Enabled {
		renderer = render.NewChromeRenderer(
			render.WithTimeout(cfg.Render.Timeout()),
			render.WithChromePath(cfg.Render.ChromePath),
		)
	}

	psClient := pagespeed.NewClient(cfg.PageSpeed.Key, pagespeed.WithBaseURL(cfg.PageSpeed.BaseURL))
	generator := ai.NewGenerator(llmClient)

	return pipeline.New(cfg, st, fetcher, renderer, psClient, generator), st, nil
}
