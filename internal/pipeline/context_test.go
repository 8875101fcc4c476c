package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/webangle/teardown-cli/internal/model"
)

func TestBuildContentSummary(t *testing.T) {
	pages := []model.PageData{
		{
			URL: "https://example.com",
			PageSignals: model.PageSignals{
				MetaTags:    map[string]string{"title": "Example Plumbing"},
				CTAText:     []string{"Get a Quote", "Call Now", "Book Online", "Learn More", "Contact", "Extra CTA"},
				VisibleText: "Trusted plumbers since 1990.",
			},
		},
		{
			URL: "https://example.com/contact",
			PageSignals: model.PageSignals{
				VisibleText: "Reach us at our office.",
			},
		},
	}

	summary := BuildContentSummary(pages)
	blocks := strings.Split(summary, "\n---\n")
	assert.Len(t, blocks, 2)

	assert.Contains(t, blocks[0], "URL: https://example.com\n")
	assert.Contains(t, blocks[0], "Title: Example Plumbing")
	// only the first five CTAs survive
	assert.Contains(t, blocks[0], "Get a Quote | Call Now | Book Online | Learn More | Contact")
	assert.NotContains(t, blocks[0], "Extra CTA")

	assert.Contains(t, blocks[1], "URL: https://example.com/contact")
	assert.Contains(t, blocks[1], "Title: \n")
}

func TestBuildContentSummarySnippetBound(t *testing.T) {
	pages := []model.PageData{
		{
			URL: "https://example.com",
			PageSignals: model.PageSignals{
				VisibleText: strings.Repeat("x", 450),
			},
		},
	}
	summary := BuildContentSummary(pages)
	assert.Contains(t, summary, "Snippet: "+strings.Repeat("x", 400))
	assert.NotContains(t, summary, strings.Repeat("x", 401))
}

func TestBuildStyleContext(t *testing.T) {
	assert.Nil(t, buildStyleContext(nil, nil))
	assert.Nil(t, buildStyleContext(&model.StyleSignals{}, nil))

	signals := &model.StyleSignals{FontCount: 5, ColorCount: 20, UsesCSSVariables: true}
	score := &model.StyleScore{Score: 50, Notes: []string{"Too many fonts used"}}
	ctx := buildStyleContext(signals, score)
	assert.Equal(t, 50, ctx.Score)
	assert.Equal(t, 5, ctx.FontCount)
	assert.Equal(t, 20, ctx.ColorCount)
	assert.True(t, ctx.UsesCSSVariables)
	assert.Equal(t, []string{"Too many fonts used"}, ctx.Notes)
}
