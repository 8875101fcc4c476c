package ai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/webangle/teardown-cli/internal/model"
)

const systemPrompt = `You are an expert outreach strategist for freelance developers and web agencies. Your job is to turn website teardowns into credible, non-generic pitch angles that a developer could use in cold email or DMs.

Rules:
- Output ONLY valid JSON. No markdown, no code fences, no explanation.
- Select 3-5 upgrade opportunities. Prefer high-confidence, specific issues over vague ones.
- Each opportunity must: (1) name a real weakness, (2) explain business impact in one sentence, (3) suggest a concrete fix a developer could do, (4) provide one outreach-ready pitch angle the sender can copy.
- Pitch angles must sound human and specific to this site, never generic ("we can improve your site") or spammy.
- Confidence: use "high" only when the issue is clearly visible from the data; otherwise "medium".
- IDs: short kebab-case (e.g. "slow-mobile", "missing-cta", "outdated-stack").`

// BuildUserPrompt renders the analysis context as the user message for the
// model. Field order is stable so prompts are reproducible.
func BuildUserPrompt(ctx *model.AnalysisContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Website: %s\n\n", ctx.URL)

	social := sortedKeys(ctx.Contact.SocialLinks)
	socialDesc := "none"
	if len(social) > 0 {
		socialDesc = strings.Join(social, ", ")
	}
	fmt.Fprintf(&b, "Contact found: emails %d, phones %d, social: %s.\n",
		len(ctx.Contact.Emails), len(ctx.Contact.Phones), socialDesc)

	generator := "none"
	if ctx.TechStack.Generator != "" {
		generator = ctx.TechStack.Generator
	}
	fmt.Fprintf(&b, "Tech hints: %s. Generator: %s.", strings.Join(ctx.TechStack.Hints, ", "), generator)
	if ctx.TechStack.Framework != "" {
		fmt.Fprintf(&b, " Framework: %s.", ctx.TechStack.Framework)
	}
	if ctx.TechStack.IsDynamic {
		b.WriteString(" Site is dynamic/SPA.")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Site type: %s (confidence %.1f).\n", ctx.Classification.SiteType, ctx.Classification.Confidence)

	b.WriteString("Performance: mobile score ")
	if ctx.Performance.MobileScore != nil {
		fmt.Fprintf(&b, "%d/100", *ctx.Performance.MobileScore)
	} else {
		b.WriteString("no reliable data")
	}
	if ctx.Performance.LCP != nil {
		fmt.Fprintf(&b, ", LCP ~%gs", *ctx.Performance.LCP)
	}
	if ctx.Performance.CLS != nil {
		fmt.Fprintf(&b, ", CLS %g", *ctx.Performance.CLS)
	}
	if ctx.Performance.TBT != nil {
		fmt.Fprintf(&b, ", TBT %dms", *ctx.Performance.TBT)
	}
	b.WriteString(".\n")

	if ctx.Style != nil {
		cssVars := "no"
		if ctx.Style.UsesCSSVariables {
			cssVars = "yes"
		}
		fmt.Fprintf(&b, "\nStyle (maintainability / consistency): score %d/100, fonts %d, colors %d, CSS variables %s.",
			ctx.Style.Score, ctx.Style.FontCount, ctx.Style.ColorCount, cssVars)
		if len(ctx.Style.Notes) > 0 {
			fmt.Fprintf(&b, " Notes: %s.", strings.Join(ctx.Style.Notes, "; "))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nContent/signals summary:\n")
	b.WriteString(ctx.ContentSummary)
	b.WriteString("\n\n")
	b.WriteString(`Return a JSON object with a single key "opportunities" (array of objects). Each object has: id (string), title (string), issue (string), businessImpact (string), suggestedFix (string), pitchAngle (string), confidence ("high" | "medium").`)

	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
