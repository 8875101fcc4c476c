// Package style scores render-derived CSS signals for maintainability and
// visual consistency.
package style

import "github.com/webangle/teardown-cli/internal/model"

// Deductions are fixed heuristics; the floor keeps a busy but functional site
// from scoring as broken.
const (
	baseScore  = 100
	floorScore = 30

	maxFonts        = 3
	maxColors       = 12
	minBaseFontSize = 14
	maxContentWidth = 1600
)

// Score rates StyleSignals on a 0-100 scale with human-readable notes for
// each deduction.
func Score(s model.StyleSignals) model.StyleScore {
	score := baseScore
	var notes []string

	if s.FontCount > maxFonts {
		score -= 15
		notes = append(notes, "Too many fonts used")
	}
	if s.ColorCount > maxColors {
		score -= 15
		notes = append(notes, "Excessive number of colors")
	}
	if !s.UsesCSSVariables {
		score -= 20
		notes = append(notes, "No CSS variables / design tokens detected")
	}
	if s.BaseFontSize < minBaseFontSize {
		score -= 10
		notes = append(notes, "Small base font size")
	}
	if s.MaxContentWidth > maxContentWidth {
		score -= 10
		notes = append(notes, "Very wide layout reduces readability")
	}

	if score < floorScore {
		score = floorScore
	}

	return model.StyleScore{Score: score, Notes: notes}
}
