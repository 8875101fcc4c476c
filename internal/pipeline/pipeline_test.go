package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/webangle/teardown-cli/internal/config"
	"github.com/webangle/teardown-cli/internal/model"
	"github.com/webangle/teardown-cli/internal/render"
	"github.com/webangle/teardown-cli/internal/scrape"
	"github.com/webangle/teardown-cli/internal/store"
)

// --- mocks ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetAnalysis(ctx context.Context, urlKey string) (*model.AnalysisResult, error) {
	args := m.Called(ctx, urlKey)
	if r := args.Get(0); r != nil {
		return r.(*model.AnalysisResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) SetAnalysis(ctx context.Context, urlKey string, result *model.AnalysisResult, ttl time.Duration) error {
	args := m.Called(ctx, urlKey, result, ttl)
	return args.Error(0)
}

func (m *mockStore) DeleteAnalysis(ctx context.Context, urlKey string) (bool, error) {
	args := m.Called(ctx, urlKey)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) DeleteExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) Stats(ctx context.Context) (*store.CacheStats, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.(*store.CacheStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(ctx context.Context, url string) (*render.Rendered, error) {
	args := m.Called(ctx, url)
	if r := args.Get(0); r != nil {
		return r.(*render.Rendered), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPageSpeed struct {
	mock.Mock
}

func (m *mockPageSpeed) Metrics(ctx context.Context, targetURL string) (*model.PerformanceMetrics, error) {
	args := m.Called(ctx, targetURL)
	if r := args.Get(0); r != nil {
		return r.(*model.PerformanceMetrics), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, analysis *model.AnalysisContext) ([]model.UpgradeOpportunity, error) {
	args := m.Called(ctx, analysis)
	if r := args.Get(0); r != nil {
		return r.([]model.UpgradeOpportunity), args.Error(1)
	}
	return nil, args.Error(1)
}

// --- fixtures ---

var homepageHTML = fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<title>Example Plumbing</title>
	<meta name="description" content="Plumbing repairs in Springfield">
</head>
<body>
	<header>Example Plumbing</header>
	<nav>
		<a href="/contact">Contact</a>
		<a href="/about">About</a>
		<a href="/blog">Blog</a>
	</nav>
	<a href="mailto:info@example.com">Email us</a>
	<a href="https://facebook.com/exampleplumbing">Facebook</a>
	<a href="/quote">Get a Quote</a>
	<button>Call Now</button>
	<p>%s</p>
	<footer>Example Plumbing. Call now. Serving the greater Springfield service area. Open 24 hours.</footer>
</body>
</html>`, strings.Repeat("Trusted residential and commercial plumbing. ", 10))

const contactHTML = `<!DOCTYPE html>
<html><head><title>Contact</title></head>
<body>
	<a href="mailto:sales@example.com">sales@example.com</a>
	<p>Call us at (555) 123-4567 to schedule.</p>
</body></html>`

const aboutHTML = `<!DOCTYPE html>
<html><head><title>About</title></head>
<body><p>Family owned since 1990, our licensed team covers the metro region.</p></body></html>`

const shellHTML = `<!DOCTYPE html>
<html><head><title>App</title></head>
<body><div id="root"></div><noscript>Please enable JavaScript to continue.</noscript></body></html>`

func sampleOpportunities() []model.UpgradeOpportunity {
	return []model.UpgradeOpportunity{
		{ID: "slow-mobile", Title: "Slow on mobile", Confidence: model.ConfidenceHigh},
		{ID: "missing-cta", Title: "Weak call to action", Confidence: model.ConfidenceMedium},
		{ID: "outdated-stack", Title: "Aging platform", Confidence: model.ConfidenceMedium},
	}
}

func testSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(homepageHTML))
	})
	mux.HandleFunc("/contact", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(contactHTML))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(aboutHTML))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig() *config.Config {
	return &config.Config{
		Store: config.StoreConfig{TTLHours: 24},
		Crawl: config.CrawlConfig{
			MaxAuxPages:   5,
			RespectRobots: true,
		},
		Render: config.RenderConfig{Enabled: true, TimeoutSecs: 15},
	}
}

func newTestAnalyzer(cfg *config.Config, st *mockStore, rd *mockRenderer, ps *mockPageSpeed, gen *mockGenerator) *Analyzer {
	return New(cfg, st, scrape.NewFetcher(scrape.WithTimeout(5*time.Second)), rd, ps, gen)
}

// --- tests ---

func TestRunFullAnalysis(t *testing.T) {
	srv := testSite(t)

	st := &mockStore{}
	st.On("GetAnalysis", mock.Anything, srv.URL).Return(nil, nil)
	st.On("SetAnalysis", mock.Anything, srv.URL, mock.Anything, 24*time.Hour).Return(nil)

	ps := &mockPageSpeed{}
	ps.On("Metrics", mock.Anything, srv.URL).Return(&model.PerformanceMetrics{MobileScore: intPtr(35)}, nil)

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return(sampleOpportunities(), nil)

	rd := &mockRenderer{}

	a := newTestAnalyzer(testConfig(), st, rd, ps, gen)
	result, err := a.Run(context.Background(), srv.URL, RunOptions{})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, srv.URL, result.URL)
	assert.Equal(t, 3, result.Meta.PagesAnalyzed)
	assert.False(t, result.Meta.RenderUsed)
	assert.False(t, result.Meta.CacheHit)
	assert.GreaterOrEqual(t, result.Meta.ScrapeDurationMs, int64(0))

	// contacts merged across homepage and contact page
	assert.Contains(t, result.Contact.Emails, "info@example.com")
	assert.Contains(t, result.Contact.Emails, "sales@example.com")
	assert.Contains(t, result.Contact.Phones, "(555) 123-4567")
	assert.Equal(t, "https://facebook.com/exampleplumbing", result.Contact.SocialLinks["facebook"])

	assert.Equal(t, "local-service", result.Classification.SiteType)
	assert.Equal(t, 0.8, result.Classification.Confidence)

	// no render: style and responsive fall back
	assert.Equal(t, 35, result.Meta.Scores.Performance)
	assert.Equal(t, 70, result.Meta.Scores.Style)
	assert.Equal(t, 70, result.Meta.Scores.Responsive)
	assert.Equal(t, 80, result.Meta.Scores.Content)
	assert.Equal(t, 58, result.Meta.OverallScore)

	require.Len(t, result.Opportunities, 3)
	assert.Equal(t, "slow-mobile", result.Opportunities[0].ID)

	rd.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
	st.AssertExpectations(t)
}

func TestRunGeneratorReceivesContext(t *testing.T) {
	srv := testSite(t)

	st := &mockStore{}
	st.On("GetAnalysis", mock.Anything, mock.Anything).Return(nil, nil)
	st.On("SetAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ps := &mockPageSpeed{}
	ps.On("Metrics", mock.Anything, mock.Anything).Return(&model.PerformanceMetrics{}, nil)

	var captured *model.AnalysisContext
	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*model.AnalysisContext)
	}).Return(sampleOpportunities(), nil)

	a := newTestAnalyzer(testConfig(), st, &mockRenderer{}, ps, gen)
	_, err := a.Run(context.Background(), srv.URL, RunOptions{})
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, srv.URL, captured.URL)
	assert.Nil(t, captured.Style)
	blocks := strings.Split(captured.ContentSummary, "\n---\n")
	assert.Len(t, blocks, 3)
	assert.Contains(t, blocks[0], "Title: Example Plumbing")
}

func TestRunShellTriggersRender(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(shellHTML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	st := &mockStore{}
	st.On("GetAnalysis", mock.Anything, mock.Anything).Return(nil, nil)
	st.On("SetAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ps := &mockPageSpeed{}
	ps.On("Metrics", mock.Anything, mock.Anything).Return(&model.PerformanceMetrics{}, nil)

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return(sampleOpportunities(), nil)

	rd := &mockRenderer{}
	rd.On("Render", mock.Anything, srv.URL).Return(&render.Rendered{
		HTML: homepageHTML,
		Style: model.StyleSignals{
			FontCount:       5,
			ColorCount:      20,
			BaseFontSize:    16,
			MaxContentWidth: 1200,
		},
		Responsive: model.ResponsiveSignals{HasViewportMeta: true},
	}, nil)

	a := newTestAnalyzer(testConfig(), st, rd, ps, gen)
	result, err := a.Run(context.Background(), srv.URL, RunOptions{})
	require.NoError(t, err)

	assert.True(t, result.Meta.RenderUsed)
	// rendered HTML replaces the shell for extraction
	assert.Contains(t, result.Contact.Emails, "info@example.com")

	// fonts 5 (-15), colors 20 (-15), no CSS vars (-20)
	assert.Equal(t, 50, result.Meta.Scores.Style)
	assert.Equal(t, 100, result.Meta.Scores.Responsive)
	assert.Equal(t, 70, result.Meta.Scores.Performance)
	assert.Equal(t, 80, result.Meta.Scores.Content)
	assert.Equal(t, 72, result.Meta.OverallScore)

	rd.AssertExpectations(t)
}

func TestRunRenderFailureFallsBack(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(shellHTML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	st := &mockStore{}
	st.On("GetAnalysis", mock.Anything, mock.Anything).Return(nil, nil)
	st.On("SetAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ps := &mockPageSpeed{}
	ps.On("Metrics", mock.Anything, mock.Anything).Return(&model.PerformanceMetrics{}, nil)

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return(sampleOpportunities(), nil)

	rd := &mockRenderer{}
	rd.On("Render", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	a := newTestAnalyzer(testConfig(), st, rd, ps, gen)
	result, err := a.Run(context.Background(), srv.URL, RunOptions{})
	require.NoError(t, err)

	assert.False(t, result.Meta.RenderUsed)
	assert.Equal(t, 70, result.Meta.Scores.Style)
	assert.Equal(t, 70, result.Meta.Scores.Responsive)
}

func TestRunRenderDisabled(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(shellHTML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	st := &mockStore{}
	st.On("GetAnalysis", mock.Anything, mock.Anything).Return(nil, nil)
	st.On("SetAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ps := &mockPageSpeed{}
	ps.On("Metrics", mock.Anything, mock.Anything).Return(&model.PerformanceMetrics{}, nil)

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return(sampleOpportunities(), nil)

	rd := &mockRenderer{}

	cfg := testConfig()
	cfg.Render.Enabled = false

	a := newTestAnalyzer(cfg, st, rd, ps, gen)
	result, err := a.Run(context.Background(), srv.URL, RunOptions{})
	require.NoError(t, err)
	assert.False(t, result.Meta.RenderUsed)
	rd.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestRunCacheHit(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(homepageHTML))
	}))
	defer srv.Close()

	cached := &model.AnalysisResult{
		URL:  srv.URL,
		Meta: model.Meta{CacheHit: true, OverallScore: 61},
	}

	st := &mockStore{}
	st.On("GetAnalysis", mock.Anything, srv.URL).Return(cached, nil)

	a := newTestAnalyzer(testConfig(), st, &mockRenderer{}, &mockPageSpeed{}, &mockGenerator{})
	result, err := a.Run(context.Background(), srv.URL, RunOptions{})
	require.NoError(t, err)

	assert.True(t, result.Meta.CacheHit)
	assert.Equal(t, 61, result.Meta.OverallScore)
	assert.Equal(t, int64(0), hits.Load())
	st.AssertNotCalled(t, "SetAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunSkipCache(t *testing.T) {
	srv := testSite(t)

	st := &mockStore{}
	st.On("SetAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ps := &mockPageSpeed{}
	ps.On("Metrics", mock.Anything, mock.Anything).Return(&model.PerformanceMetrics{}, nil)

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return(sampleOpportunities(), nil)

	a := newTestAnalyzer(testConfig(), st, &mockRenderer{}, ps, gen)
	_, err := a.Run(context.Background(), srv.URL, RunOptions{SkipCache: true})
	require.NoError(t, err)

	st.AssertNotCalled(t, "GetAnalysis", mock.Anything, mock.Anything)
	st.AssertCalled(t, "SetAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunRobotsDisallowSkipsAuxPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(homepageHTML))
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /contact\n"))
	})
	mux.HandleFunc("/contact", func(w http.ResponseWriter, r *http.Request) {
		t.Error("disallowed path was fetched")
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(aboutHTML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	st := &mockStore{}
	st.On("GetAnalysis", mock.Anything, mock.Anything).Return(nil, nil)
	st.On("SetAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ps := &mockPageSpeed{}
	ps.On("Metrics", mock.Anything, mock.Anything).Return(&model.PerformanceMetrics{}, nil)

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return(sampleOpportunities(), nil)

	a := newTestAnalyzer(testConfig(), st, &mockRenderer{}, ps, gen)
	result, err := a.Run(context.Background(), srv.URL, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Meta.PagesAnalyzed)
	assert.NotContains(t, result.Contact.Emails, "sales@example.com")
}

func TestRunAuxPageFailureIsAbsorbed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(homepageHTML))
	})
	mux.HandleFunc("/contact", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(aboutHTML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	st := &mockStore{}
	st.On("GetAnalysis", mock.Anything, mock.Anything).Return(nil, nil)
	st.On("SetAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ps := &mockPageSpeed{}
	ps.On("Metrics", mock.Anything, mock.Anything).Return(&model.PerformanceMetrics{}, nil)

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return(sampleOpportunities(), nil)

	a := newTestAnalyzer(testConfig(), st, &mockRenderer{}, ps, gen)
	result, err := a.Run(context.Background(), srv.URL, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Meta.PagesAnalyzed)
}

func TestRunHomepageFetchFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	st := &mockStore{}
	st.On("GetAnalysis", mock.Anything, mock.Anything).Return(nil, nil)

	a := newTestAnalyzer(testConfig(), st, &mockRenderer{}, &mockPageSpeed{}, &mockGenerator{})
	_, err := a.Run(context.Background(), srv.URL, RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch homepage")
}

func TestRunGeneratorFailureIsFatal(t *testing.T) {
	srv := testSite(t)

	st := &mockStore{}
	st.On("GetAnalysis", mock.Anything, mock.Anything).Return(nil, nil)

	ps := &mockPageSpeed{}
	ps.On("Metrics", mock.Anything, mock.Anything).Return(&model.PerformanceMetrics{}, nil)

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	a := newTestAnalyzer(testConfig(), st, &mockRenderer{}, ps, gen)
	_, err := a.Run(context.Background(), srv.URL, RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate opportunities")
	st.AssertNotCalled(t, "SetAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunCacheWriteFailureIsAbsorbed(t *testing.T) {
	srv := testSite(t)

	st := &mockStore{}
	st.On("GetAnalysis", mock.Anything, mock.Anything).Return(nil, nil)
	st.On("SetAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	ps := &mockPageSpeed{}
	ps.On("Metrics", mock.Anything, mock.Anything).Return(&model.PerformanceMetrics{}, nil)

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return(sampleOpportunities(), nil)

	a := newTestAnalyzer(testConfig(), st, &mockRenderer{}, ps, gen)
	result, err := a.Run(context.Background(), srv.URL, RunOptions{})
	require.NoError(t, err)
	assert.NotNil(t, result)
}
