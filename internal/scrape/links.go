package scrape

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractInternalLinks returns the same-origin link paths found in html,
// deduplicated in discovery order. Paths carry a leading slash; query strings
// and fragments are dropped. Anchors, javascript: and mailto: links are
// skipped.
func ExtractInternalLinks(html, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var paths []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Host != base.Host {
			return
		}

		path := abs.Path
		if path == "" || path == "/" {
			return
		}
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	})
	return paths
}

// PathMatcher filters crawl candidates against an allow-list of path
// prefixes considered valuable for contact/content signal. A path matches
// when it equals a listed key or starts with key + "/".
type PathMatcher struct {
	allowed []string
}

// defaultImportantPaths is the crawl allow-list. Kept as a fixed heuristic;
// the values mirror the pages that most often carry contact signal.
var defaultImportantPaths = []string{
	"/contact",
	"/about",
	"/about-us",
	"/services",
	"/pricing",
	"/work",
	"/portfolio",
}

// NewPathMatcher creates a PathMatcher from allow-list prefixes. Falls back
// to the default important paths if none are provided.
func NewPathMatcher(allowed []string) *PathMatcher {
	if len(allowed) == 0 {
		allowed = defaultImportantPaths
	}
	return &PathMatcher{allowed: allowed}
}

// Paths returns the configured allow-list.
func (m *PathMatcher) Paths() []string {
	return m.allowed
}

// Matches reports whether path is on the allow-list.
func (m *PathMatcher) Matches(path string) bool {
	for _, key := range m.allowed {
		if path == key || strings.HasPrefix(path, key+"/") {
			return true
		}
	}
	return false
}

// FilterImportant keeps allow-listed paths in discovery order, capped at max.
func (m *PathMatcher) FilterImportant(paths []string, max int) []string {
	var out []string
	for _, p := range paths {
		if !m.Matches(p) {
			continue
		}
		out = append(out, p)
		if len(out) >= max {
			break
		}
	}
	return out
}
