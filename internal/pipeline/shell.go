package pipeline

import (
	"regexp"

	"github.com/webangle/teardown-cli/internal/model"
)

// minVisibleChars is the threshold below which a page is treated as a
// client-side shell that needs a headless render.
const minVisibleChars = 200

var enableJSRe = regexp.MustCompile(`(?i)enable\s+JavaScript`)

// IsShell reports whether the fetched page looks like an empty JS shell:
// near-empty visible text or an explicit "enable JavaScript" notice.
func IsShell(sig *model.PageSignals) bool {
	if len(sig.VisibleText) < minVisibleChars {
		return true
	}
	return enableJSRe.MatchString(sig.HTML)
}
