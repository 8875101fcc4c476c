package pipeline

import (
	"math"

	"github.com/webangle/teardown-cli/internal/model"
)

// fallbackScore stands in for any sub-score with no reliable data. Neutral
// rather than punitive so one missing signal cannot sink the composite.
const fallbackScore = 70

// composite weights
const (
	weightPerformance = 0.4
	weightStyle       = 0.25
	weightResponsive  = 0.15
	weightContent     = 0.2
)

// normalizeScore substitutes the fallback for missing or non-positive
// sub-scores.
func normalizeScore(score *int) int {
	if score == nil || *score <= 0 {
		return fallbackScore
	}
	return *score
}

// scoreResponsive derives a 0-100 mobile-friendliness score from render
// signals. Floor of 50 keeps a broken-but-present mobile layout distinguishable
// from "no data".
func scoreResponsive(sig model.ResponsiveSignals) int {
	score := 100
	if !sig.HasViewportMeta {
		score -= 30
	}
	if sig.HasHorizontalOverflow {
		score -= 40
	}
	if score < 50 {
		score = 50
	}
	return score
}

// scoreContent converts classification confidence into a 0-100 score.
func scoreContent(c model.SiteClassification) int {
	return int(math.Round(c.Confidence * 100))
}

// compositeScore folds the four normalized sub-scores into one weighted
// overall score, clamped to a minimum of 1 so a valid result is never zero.
func compositeScore(s model.Scores) int {
	weighted := float64(s.Performance)*weightPerformance +
		float64(s.Style)*weightStyle +
		float64(s.Responsive)*weightResponsive +
		float64(s.Content)*weightContent
	overall := int(math.Round(weighted))
	if overall < 1 {
		overall = 1
	}
	return overall
}
