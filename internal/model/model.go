// Package model defines the shared data types for the teardown pipeline.
package model

// ContactData holds public contact signals extracted from a site.
// Emails and phones are deduplicated by exact string match; SocialLinks maps
// platform name to profile URL.
type ContactData struct {
	Emails      []string          `json:"emails"`
	Phones      []string          `json:"phones"`
	SocialLinks map[string]string `json:"socialLinks"`
}

// PageSignals is the structured extraction of a single fetched page.
// Produced once per URL per run and never mutated afterwards.
type PageSignals struct {
	HTML          string            `json:"-"`
	Contact       ContactData       `json:"contact"`
	MetaTags      map[string]string `json:"metaTags"`
	ScriptSources []string          `json:"scriptSources"`
	CTAText       []string          `json:"ctaText"`
	FooterSnippet string            `json:"footerSnippet,omitempty"`
	HeaderSnippet string            `json:"headerSnippet,omitempty"`
	// VisibleText is a bounded snippet of body text used for shell detection
	// and AI context.
	VisibleText string `json:"visibleText,omitempty"`
}

// PageData pairs extracted signals with the URL they came from.
type PageData struct {
	URL string `json:"url"`
	PageSignals
}

// TechStack holds heuristic tech-stack hints derived from homepage signals.
type TechStack struct {
	Hints         []string `json:"hints"`
	Generator     string   `json:"generator,omitempty"`
	Framework     string   `json:"framework,omitempty"`
	IsDynamic     bool     `json:"isDynamic,omitempty"`
	ScriptSources []string `json:"scriptSources"`
}

// SiteClassification is the heuristic site-type guess with confidence in [0,1].
type SiteClassification struct {
	SiteType   string  `json:"siteType"`
	Confidence float64 `json:"confidence"`
}

// PerformanceMetrics holds PageSpeed-derived metrics. MobileScore is nil when
// no reliable data exists (quota, network failure); nil is distinct from a
// real score of zero and must never be collapsed into one.
type PerformanceMetrics struct {
	MobileScore    *int     `json:"mobileScore"`
	LCP            *float64 `json:"lcp,omitempty"`
	CLS            *float64 `json:"cls,omitempty"`
	TBT            *int     `json:"tbt,omitempty"`
	LoadTimeApprox *int     `json:"loadTimeApprox,omitempty"`
}

// StyleSignals holds computed-CSS signals captured during a headless render.
// Present only when rendering occurred.
type StyleSignals struct {
	FontCount        int     `json:"fontCount"`
	ColorCount       int     `json:"colorCount"`
	BaseFontSize     float64 `json:"baseFontSize"`
	LineHeight       float64 `json:"lineHeight"`
	UsesCSSVariables bool    `json:"usesCssVariables"`
	MaxContentWidth  int     `json:"maxContentWidth"`
}

// ResponsiveSignals holds mobile-friendliness signals from a headless render.
type ResponsiveSignals struct {
	HasViewportMeta       bool `json:"hasViewportMeta"`
	HasHorizontalOverflow bool `json:"hasHorizontalOverflow"`
}

// StyleScore is a 0-100 style/maintainability score with human-readable notes.
type StyleScore struct {
	Score int      `json:"score"`
	Notes []string `json:"notes"`
}

// Opportunity confidence tags.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
)

// UpgradeOpportunity is one AI-generated, outreach-ready site weakness with a
// suggested fix and pitch text.
type UpgradeOpportunity struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Issue          string `json:"issue"`
	BusinessImpact string `json:"businessImpact"`
	SuggestedFix   string `json:"suggestedFix"`
	PitchAngle     string `json:"pitchAngle"`
	Confidence     string `json:"confidence"`
}

// Scores holds the four normalized sub-scores plus the weighted composite.
type Scores struct {
	Performance int `json:"performance"`
	Style       int `json:"style"`
	Responsive  int `json:"responsive"`
	Content     int `json:"content"`
	Overall     int `json:"overall"`
}

// Meta carries run bookkeeping attached to an AnalysisResult.
type Meta struct {
	ScrapeDurationMs int64  `json:"scrapeDurationMs"`
	CacheHit         bool   `json:"cacheHit"`
	RenderUsed       bool   `json:"renderUsed"`
	PagesAnalyzed    int    `json:"pagesAnalyzed"`
	OverallScore     int    `json:"overallScore"`
	Scores           Scores `json:"scores"`
}

// AnalysisResult is the single output record of one analysis run. Immutable
// once constructed; the cache returns copies marked CacheHit but never mutates
// the stored original.
type AnalysisResult struct {
	URL            string               `json:"url"`
	AnalyzedAt     string               `json:"analyzedAt"`
	Contact        ContactData          `json:"contact"`
	TechStack      TechStack            `json:"techStack"`
	Performance    PerformanceMetrics   `json:"performance"`
	Classification SiteClassification   `json:"classification"`
	Opportunities  []UpgradeOpportunity `json:"opportunities"`
	Meta           Meta                 `json:"meta"`
}

// StyleContext is the style summary passed to the opportunity generator.
// Attached to AnalysisContext only when rendering occurred; absence means "no
// style analysis available", not a score of zero.
type StyleContext struct {
	Score            int      `json:"score"`
	Notes            []string `json:"notes"`
	FontCount        int      `json:"fontCount"`
	ColorCount       int      `json:"colorCount"`
	UsesCSSVariables bool     `json:"usesCssVariables"`
}

// AnalysisContext is the assembled input for the opportunity generator.
type AnalysisContext struct {
	URL            string             `json:"url"`
	Contact        ContactData        `json:"contact"`
	TechStack      TechStack          `json:"techStack"`
	Performance    PerformanceMetrics `json:"performance"`
	Classification SiteClassification `json:"classification"`
	ContentSummary string             `json:"contentSummary"`
	Style          *StyleContext      `json:"style,omitempty"`
}
