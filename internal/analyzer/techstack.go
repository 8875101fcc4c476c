// Package analyzer holds pure heuristic classifiers over page signals.
package analyzer

import (
	"regexp"

	"github.com/webangle/teardown-cli/internal/model"
)

const maxScriptSources = 30

var (
	wordpressRe = regexp.MustCompile(`(?i)wp-content|wp-includes|wordpress`)
	webflowRe   = regexp.MustCompile(`(?i)webflow`)
	shopifyRe   = regexp.MustCompile(`(?i)shopify|cdn\.shopify`)
	wixRe       = regexp.MustCompile(`(?i)wix|parastorage`)
	wixHTMLRe   = regexp.MustCompile(`(?i)wix\.com`)
	reactSrcRe  = regexp.MustCompile(`(?i)react|chunk|main\.(js|ts)`)
	reactHTMLRe = regexp.MustCompile(`(?i)__NEXT_DATA__|react`)
	builderRe   = regexp.MustCompile(`(?i)wp-|shopify|webflow|wix`)
)

// techPatterns is evaluated in order and accumulates every matching hint.
var techPatterns = []struct {
	hint string
	test func(sig *model.PageSignals) bool
}{
	{"wordpress", func(sig *model.PageSignals) bool {
		return wordpressRe.MatchString(sig.HTML) || wordpressRe.MatchString(sig.MetaTags["generator"])
	}},
	{"webflow", func(sig *model.PageSignals) bool {
		return anyScript(sig, webflowRe) || webflowRe.MatchString(sig.HTML)
	}},
	{"shopify", func(sig *model.PageSignals) bool {
		return anyScript(sig, shopifyRe) || shopifyRe.MatchString(sig.HTML)
	}},
	{"wix", func(sig *model.PageSignals) bool {
		return anyScript(sig, wixRe) || wixHTMLRe.MatchString(sig.HTML)
	}},
	{"react", func(sig *model.PageSignals) bool {
		return anyScript(sig, reactSrcRe) || reactHTMLRe.MatchString(sig.HTML)
	}},
	{"static", func(sig *model.PageSignals) bool {
		return len(sig.ScriptSources) < 3 && !anyScript(sig, builderRe)
	}},
}

func anyScript(sig *model.PageSignals, re *regexp.Regexp) bool {
	for _, src := range sig.ScriptSources {
		if re.MatchString(src) {
			return true
		}
	}
	return false
}

// DetectTechStack derives heuristic tech hints from homepage signals.
// renderUsed marks sites that needed headless rendering: those gain a
// "js-rendered" hint and are flagged dynamic.
func DetectTechStack(sig *model.PageSignals, renderUsed bool) model.TechStack {
	var hints []string
	for _, p := range techPatterns {
		if p.test(sig) {
			hints = append(hints, p.hint)
		}
	}
	if len(hints) == 0 {
		hints = append(hints, "unknown")
	}

	stack := model.TechStack{
		Hints:     hints,
		Generator: sig.MetaTags["generator"],
	}

	if renderUsed {
		stack.Hints = append(stack.Hints, "js-rendered")
		stack.IsDynamic = true
		for _, h := range hints {
			if h == "react" {
				stack.Framework = "React-based"
				break
			}
		}
	}

	sources := sig.ScriptSources
	if len(sources) > maxScriptSources {
		sources = sources[:maxScriptSources]
	}
	stack.ScriptSources = sources

	return stack
}

// HasHint reports whether stack carries the given hint tag.
func HasHint(stack model.TechStack, hint string) bool {
	for _, h := range stack.Hints {
		if h == hint {
			return true
		}
	}
	return false
}
