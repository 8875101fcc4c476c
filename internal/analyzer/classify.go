package analyzer

import (
	"sort"
	"strings"

	"github.com/webangle/teardown-cli/internal/model"
)

// Site types produced by ClassifySite.
const (
	SiteLocalService  = "local-service"
	SiteEcommerce     = "ecommerce"
	SiteSaaS          = "saas"
	SiteBrochure      = "brochure"
	SiteInformational = "informational"
	SiteOther         = "other"
)

// siteTypeKeywords is evaluated in order; the type with the most keyword hits
// wins, first listed winning ties.
var siteTypeKeywords = []struct {
	siteType string
	keywords []string
}{
	{SiteLocalService, []string{"contact us", "get a quote", "call now", "service area", "hours"}},
	{SiteEcommerce, []string{"add to cart", "buy now", "shop", "checkout", "cart"}},
	{SiteSaaS, []string{"sign up", "login", "pricing", "dashboard", "start free trial"}},
	{SiteBrochure, []string{"about us", "our services", "learn more", "read more"}},
	{SiteInformational, []string{"blog", "articles", "news", "resources"}},
}

// ClassifySite guesses the site type from footer/header snippets, CTA text,
// and meta values. Confidence is a coarse bucket: 0.8 for two or more keyword
// hits, 0.5 for one, 0.3 for none.
func ClassifySite(sig *model.PageSignals) model.SiteClassification {
	metaValues := make([]string, 0, len(sig.MetaTags))
	for _, v := range sig.MetaTags {
		metaValues = append(metaValues, v)
	}
	sort.Strings(metaValues)

	text := strings.ToLower(strings.Join([]string{
		sig.FooterSnippet,
		sig.HeaderSnippet,
		strings.Join(sig.CTAText, " "),
		strings.Join(metaValues, " "),
	}, " "))

	bestType := SiteOther
	bestHits := 0
	for _, entry := range siteTypeKeywords {
		hits := 0
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestType = entry.siteType
			bestHits = hits
		}
	}

	confidence := 0.3
	switch {
	case bestHits >= 2:
		confidence = 0.8
	case bestHits == 1:
		confidence = 0.5
	}

	return model.SiteClassification{
		SiteType:   bestType,
		Confidence: confidence,
	}
}
