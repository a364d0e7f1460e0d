// Package linkextract pulls anchor targets from a rendered page and
// filters/normalizes them into crawl candidates (spec §4.2).
package linkextract

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/nishaddevendra/webauditor/internal/browserdriver"
	"github.com/nishaddevendra/webauditor/internal/normalize"
)

// Config controls filtering behavior for one extraction call.
type Config struct {
	IncludeSubdomains      bool
	FollowNavigationalOnly bool
	ExcludePatterns        []string
	IncludePatterns        []string
	MaxLinksPerPage        int
}

// DefaultConfig matches the teacher/pack defaults used elsewhere in the
// crawl engine.
func DefaultConfig() Config {
	return Config{
		IncludeSubdomains:      false,
		FollowNavigationalOnly: true,
		MaxLinksPerPage:        500,
	}
}

// Link is one retained, normalized anchor target, in discovery order.
type Link struct {
	URL           string `json:"url"`
	NormalizedURL string `json:"normalizedUrl"`
	Text          string `json:"text"`
	Title         string `json:"title,omitempty"`
}

type rawLink struct {
	Href  string `json:"href"`
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
}

// linkExtractScript returns every non-empty, non-fragment-only a[href]/
// area[href] in document order (spec §4.2). Kept as data per spec §9.
const linkExtractScript = `(function(){
  const out = [];
  document.querySelectorAll('a[href], area[href]').forEach(function(el){
    const href = el.getAttribute('href');
    if (!href || href.trim() === '' || href.trim().startsWith('#')) return;
    out.push({
      href: href,
      text: (el.textContent || '').trim(),
      title: el.getAttribute('title') || ''
    });
  });
  return JSON.stringify(out);
})()`

// Extract runs the link-extraction script against page, resolves results
// against pageURL, and applies cfg's filters.
func Extract(ctx context.Context, page browserdriver.Page, pageURL string, cfg Config) ([]Link, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("link-extraction-failed: parse page url %q: %w", pageURL, err)
	}
	baseHostname := base.Hostname()

	var raws []rawLink
	if err := page.Evaluate(ctx, linkExtractScript, &raws); err != nil {
		return nil, fmt.Errorf("link-extraction-failed: %w", err)
	}

	if cfg.MaxLinksPerPage > 0 && len(raws) > cfg.MaxLinksPerPage {
		return nil, fmt.Errorf("link-extraction-failed: page has %d links, exceeds max %d", len(raws), cfg.MaxLinksPerPage)
	}

	seen := make(map[string]struct{}, len(raws))
	links := make([]Link, 0, len(raws))

	for _, r := range raws {
		normalized, err := normalize.Normalize(r.Href, base)
		if err != nil {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}

		if !normalize.IsInternal(normalized, baseHostname, cfg.IncludeSubdomains) {
			continue
		}
		if cfg.FollowNavigationalOnly && !normalize.IsNavigational(normalized) {
			continue
		}
		if matchesAny(normalized, cfg.ExcludePatterns) {
			continue
		}
		if len(cfg.IncludePatterns) > 0 && !matchesAny(normalized, cfg.IncludePatterns) {
			continue
		}

		links = append(links, Link{
			URL:           r.Href,
			NormalizedURL: normalized,
			Text:          r.Text,
			Title:         r.Title,
		})
	}

	return links, nil
}

func matchesAny(u string, patterns []string) bool {
	lower := strings.ToLower(u)
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
