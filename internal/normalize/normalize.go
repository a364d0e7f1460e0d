// Package normalize canonicalizes URLs and classifies them as internal,
// external, navigational, or asset, following the rules of spec §4.1. It
// is adapted from the teacher's normalizeURL in internal/crawler/crawler.go,
// generalized with base-URL resolution, tracking-parameter stripping, and
// query sorting.
package normalize

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// trackingParams is the exhaustive, case-insensitive list from spec §4.1.
var trackingParams = map[string]struct{}{
	"utm_source": {}, "utm_medium": {}, "utm_campaign": {}, "utm_term": {}, "utm_content": {},
	"fbclid": {}, "gclid": {}, "gclsrc": {}, "dclid": {}, "msclkid": {}, "twclid": {},
	"_ga": {}, "_gl": {}, "mc_cid": {}, "mc_eid": {}, "ref": {}, "referrer": {},
}

// assetExtensions is the fixed set from spec §4.1 (images, CSS, JS, JSON,
// fonts, archives, media, PDFs).
var assetExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico", ".bmp", ".avif",
	".css", ".js", ".mjs", ".json",
	".woff", ".woff2", ".ttf", ".otf", ".eot",
	".zip", ".tar", ".gz", ".rar", ".7z",
	".mp4", ".webm", ".mp3", ".wav", ".ogg", ".avi", ".mov",
	".pdf",
}

// nonNavigationalPathMarkers is the fixed substring set from spec §4.1.
var nonNavigationalPathMarkers = []string{
	"/api/", "/rest/", "/graphql", "/webhook", "/_next/", "/static/", "/assets/",
}

// Normalize canonicalizes rawURL per spec §4.1: parse as absolute (resolving
// against base if relative), lowercase the host, upgrade http->https (unless
// host is localhost), drop the fragment, strip tracking query parameters,
// sort the remaining query parameters, and strip a trailing slash except
// for the root path. It returns an error prefixed "normalize-failed:" when
// the input cannot be parsed as absolute even after base resolution.
func Normalize(rawURL string, base *url.URL) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("normalize-failed: parse %q: %w", rawURL, err)
	}

	if !parsed.IsAbs() {
		if base == nil {
			return "", fmt.Errorf("normalize-failed: relative url %q with no base", rawURL)
		}
		parsed = base.ResolveReference(parsed)
	}

	if !parsed.IsAbs() {
		return "", fmt.Errorf("normalize-failed: %q did not resolve to an absolute url", rawURL)
	}

	parsed.Host = strings.ToLower(parsed.Host)
	hostname := strings.ToLower(parsed.Hostname())

	if parsed.Scheme == "http" && hostname != "localhost" {
		parsed.Scheme = "https"
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""

	if parsed.RawQuery != "" {
		values := parsed.Query()
		for key := range values {
			if _, tracked := trackingParams[strings.ToLower(key)]; tracked {
				values.Del(key)
			}
		}
		parsed.RawQuery = sortedQuery(values)
	}

	path := parsed.Path
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "" {
		path = "/"
	}
	parsed.Path = path

	result := parsed.String()
	// Root path with no query/fragment reads cleaner without the trailing
	// "/" that url.URL.String() always reproduces for Path=="/".
	if parsed.Path == "/" {
		result = strings.TrimSuffix(result, "/")
		if result == "" || !strings.Contains(result, "://") {
			result = parsed.Scheme + "://" + parsed.Host
			if parsed.RawQuery != "" {
				result += "?" + parsed.RawQuery
			}
		}
	}

	return result, nil
}

// sortedQuery renders values as a query string with keys sorted
// alphabetically (spec §4.1).
func sortedQuery(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		vs := values[k]
		sort.Strings(vs)
		for j, v := range vs {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
			_ = i
			_ = j
		}
	}
	return b.String()
}

// IsInternal reports whether rawURL belongs to baseHostname, per spec
// §4.1: true iff the hostname equals baseHostname, or (when includeSubdomains)
// ends with "."+baseHostname.
func IsInternal(rawURL string, baseHostname string, includeSubdomains bool) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	base := strings.ToLower(baseHostname)
	if host == base {
		return true
	}
	if includeSubdomains && strings.HasSuffix(host, "."+base) {
		return true
	}
	return false
}

// IsNavigational reports whether rawURL looks like a page to crawl rather
// than an asset or API endpoint, per spec §4.1.
func IsNavigational(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	path := strings.ToLower(parsed.Path)

	for _, ext := range assetExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}
	for _, marker := range nonNavigationalPathMarkers {
		if strings.Contains(path, marker) {
			return false
		}
	}
	return true
}
