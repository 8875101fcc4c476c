// Package ai turns an assembled analysis context into upgrade opportunities
// via a single chat-completion call.
package ai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/webangle/teardown-cli/internal/model"
	"github.com/webangle/teardown-cli/pkg/llm"
)

const maxOpportunities = 5

// Generator produces upgrade opportunities from an analysis context.
type Generator interface {
	Generate(ctx context.Context, analysis *model.AnalysisContext) ([]model.UpgradeOpportunity, error)
}

// LLMGenerator implements Generator on top of an llm.Client.
type LLMGenerator struct {
	client llm.Client
}

// NewGenerator creates an LLM-backed opportunity generator.
func NewGenerator(client llm.Client) *LLMGenerator {
	return &LLMGenerator{client: client}
}

type opportunitiesResponse struct {
	Opportunities []model.UpgradeOpportunity `json:"opportunities"`
}

// Generate runs one completion and returns between one and five normalized
// opportunities. An empty or unparseable model response is an error, never a
// silent empty result.
func (g *LLMGenerator) Generate(ctx context.Context, analysis *model.AnalysisContext) ([]model.UpgradeOpportunity, error) {
	raw, err := g.client.Complete(ctx, systemPrompt, BuildUserPrompt(analysis))
	if err != nil {
		return nil, eris.Wrap(err, "ai: completion failed")
	}

	var parsed opportunitiesResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return nil, eris.Wrap(err, "ai: parse model response")
	}
	if len(parsed.Opportunities) == 0 {
		return nil, eris.New("ai: model returned no opportunities")
	}

	opps := parsed.Opportunities
	if len(opps) > maxOpportunities {
		zap.L().Debug("ai: truncating opportunities", zap.Int("returned", len(opps)))
		opps = opps[:maxOpportunities]
	}

	out := make([]model.UpgradeOpportunity, len(opps))
	for i, o := range opps {
		out[i] = normalizeOpportunity(o)
	}
	return out, nil
}

func normalizeOpportunity(o model.UpgradeOpportunity) model.UpgradeOpportunity {
	id := strings.Join(strings.Fields(o.ID), "-")
	if id == "" {
		id = "opportunity"
	}
	o.ID = id
	if o.Confidence != model.ConfidenceHigh {
		o.Confidence = model.ConfidenceMedium
	}
	return o
}

// stripFences removes a markdown code fence if the model ignored the
// JSON-only instruction.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
