package pipeline

import (
	"fmt"
	"strings"

	"github.com/webangle/teardown-cli/internal/model"
)

const (
	maxSummaryCTAs    = 5
	maxSummarySnippet = 400
)

// BuildContentSummary renders a compact per-page digest for the opportunity
// generator: one block per page, homepage first.
func BuildContentSummary(pages []model.PageData) string {
	blocks := make([]string, 0, len(pages))
	for _, p := range pages {
		title := p.MetaTags["title"]
		ctas := p.CTAText
		if len(ctas) > maxSummaryCTAs {
			ctas = ctas[:maxSummaryCTAs]
		}
		snippet := p.VisibleText
		if len(snippet) > maxSummarySnippet {
			snippet = snippet[:maxSummarySnippet]
		}
		blocks = append(blocks, fmt.Sprintf("URL: %s\nTitle: %s\nCTAs: %s\nSnippet: %s",
			p.URL, title, strings.Join(ctas, " | "), snippet))
	}
	return strings.Join(blocks, "\n---\n")
}

// buildStyleContext converts render-derived style signals into the generator
// context. Returns nil when the page was never rendered.
func buildStyleContext(signals *model.StyleSignals, score *model.StyleScore) *model.StyleContext {
	if signals == nil || score == nil {
		return nil
	}
	return &model.StyleContext{
		Score:            score.Score,
		Notes:            score.Notes,
		FontCount:        signals.FontCount,
		ColorCount:       signals.ColorCount,
		UsesCSSVariables: signals.UsesCSSVariables,
	}
}
