package scrape

import (
	"net/url"
	"regexp"
	"strings"
)

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// NormalizeURL prepares a raw user-supplied URL for fetching: trims
// whitespace, prepends https:// when no scheme is present, and drops the
// fragment. On parse failure the trimmed input is returned unchanged so the
// downstream fetch surfaces the real error.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	candidate := trimmed
	if !schemeRe.MatchString(candidate) {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return trimmed
	}

	out := u.Scheme + "://" + u.Host
	if u.Path != "" && u.Path != "/" {
		out += u.Path
	}
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	return out
}

// CanonicalKey reduces a URL to its cache key: origin + path with the query,
// fragment, and a single trailing slash stripped, so URL variants of the same
// page collapse to one cache entry.
func CanonicalKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	path := strings.TrimSuffix(u.Path, "/")
	return u.Scheme + "://" + u.Host + path
}
