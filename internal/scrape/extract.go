// Package scrape fetches pages and extracts contact/content signals from HTML.
package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/webangle/teardown-cli/internal/model"
)

const (
	maxEmails         = 10
	maxPhones         = 5
	maxCTAs           = 20
	maxFooterSnippet  = 500
	maxHeaderSnippet  = 300
	maxVisibleSnippet = 500
)

var (
	emailRe      = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRe      = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// socialDomains maps link-host substrings to platform names. Ordered so a
// given href resolves to the same platform on every run.
var socialDomains = []struct {
	domain   string
	platform string
}{
	{"facebook.com", "facebook"},
	{"twitter.com", "twitter"},
	{"x.com", "twitter"},
	{"linkedin.com", "linkedin"},
	{"instagram.com", "instagram"},
	{"youtube.com", "youtube"},
	{"tiktok.com", "tiktok"},
}

// ExtractSignals parses HTML into a PageSignals record: contact data, meta
// tags, script sources, CTA snippets, and a bounded visible-text snippet.
func ExtractSignals(html string) (*model.PageSignals, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: parse html")
	}

	bodyText := collapseSpace(doc.Find("body").Text())

	mailtos := extractMailtos(doc)
	emails := dedupe(append(mailtos, emailRe.FindAllString(bodyText, -1)...))
	if len(emails) > maxEmails {
		emails = emails[:maxEmails]
	}
	phones := dedupe(phoneRe.FindAllString(bodyText, -1))
	if len(phones) > maxPhones {
		phones = phones[:maxPhones]
	}

	signals := &model.PageSignals{
		HTML: html,
		Contact: model.ContactData{
			Emails:      emails,
			Phones:      phones,
			SocialLinks: extractSocialLinks(doc),
		},
		MetaTags:      extractMetaTags(doc),
		ScriptSources: extractScriptSources(doc),
		CTAText:       extractCTAs(doc),
		FooterSnippet: truncate(collapseSpace(doc.Find("footer").First().Text()), maxFooterSnippet),
		HeaderSnippet: truncate(collapseSpace(doc.Find("header").First().Text()), maxHeaderSnippet),
		VisibleText:   truncate(bodyText, maxVisibleSnippet),
	}
	return signals, nil
}

func extractMailtos(doc *goquery.Document) []string {
	var emails []string
	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		addr := strings.TrimPrefix(strings.TrimPrefix(href, "mailto:"), "MAILTO:")
		if i := strings.IndexAny(addr, "?&"); i >= 0 {
			addr = addr[:i]
		}
		addr = strings.TrimSpace(addr)
		if strings.Contains(addr, "@") {
			emails = append(emails, addr)
		}
	})
	return dedupe(emails)
}

func extractSocialLinks(doc *goquery.Document) map[string]string {
	out := make(map[string]string)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		for _, sd := range socialDomains {
			if strings.Contains(href, sd.domain) {
				if _, taken := out[sd.platform]; !taken {
					out[sd.platform] = href
				}
				break
			}
		}
	})
	return out
}

func extractMetaTags(doc *goquery.Document) map[string]string {
	out := make(map[string]string)
	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("name")
		if !ok {
			name, _ = sel.Attr("property")
		}
		content, hasContent := sel.Attr("content")
		if name != "" && hasContent {
			out[name] = content
		}
	})
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		if _, taken := out["title"]; !taken {
			out["title"] = title
		}
	}
	return out
}

func extractScriptSources(doc *goquery.Document) []string {
	var sources []string
	doc.Find("script[src]").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok && src != "" {
			sources = append(sources, src)
		}
	})
	return sources
}

// extractCTAs gathers short action texts from links, buttons, and elements
// marked role=button. Bounded so one nav-heavy page cannot flood the context.
func extractCTAs(doc *goquery.Document) []string {
	var ctas []string
	doc.Find(`a, button, [role="button"]`).Each(func(_ int, sel *goquery.Selection) {
		t := strings.TrimSpace(collapseSpace(sel.Text()))
		if len(t) > 2 && len(t) < 80 {
			ctas = append(ctas, t)
		}
	})
	ctas = dedupe(ctas)
	if len(ctas) > maxCTAs {
		ctas = ctas[:maxCTAs]
	}
	return ctas
}

func collapseSpace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// dedupe removes exact-string duplicates preserving first-seen order.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}
