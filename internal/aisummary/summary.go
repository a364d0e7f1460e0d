// Package aisummary generates a natural-language summary of an audit
// result's top issues via Gemini (spec §10), grounded on
// internal/ai/gemini_client.go: same rate limiter/circuit breaker shape
// (reused from internal/resilience), same graceful fallback text when the
// breaker is open.
package aisummary

import (
	"context"
	"fmt"
	"sort"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
	"github.com/nishaddevendra/webauditor/internal/resilience"
)

const fallbackText = "Summary unavailable right now; the AI summary service is temporarily degraded. See the issues list for full detail."

// Summarizer produces a human-readable summary of an audit result.
type Summarizer struct {
	client *genai.Client
	model  string
	guard  *resilience.Guard
}

// New builds a Summarizer. apiKey must be non-empty; callers should treat a
// missing key as "AI summary disabled" rather than calling New.
func New(ctx context.Context, apiKey, model string) (*Summarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("aisummary: missing API key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("aisummary: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	guard := resilience.NewGuard(resilience.Settings{Name: "gemini-summary", RatePerSecond: 0.5, Burst: 1}, nil)
	return &Summarizer{client: client, model: model, guard: guard}, nil
}

// Close releases the underlying genai client.
func (s *Summarizer) Close() error {
	return s.client.Close()
}

// Summarize returns a short prose summary of result's top issues. On
// circuit-breaker-open or any generation failure it returns fallbackText
// rather than an error, since a summary is a convenience, not a required
// output (spec §10's Non-goals still require the JSON result to stand on
// its own).
func (s *Summarizer) Summarize(ctx context.Context, result auditmodel.MultiURLAuditResult) string {
	prompt := buildPrompt(result)

	out, err := s.guard.Do(ctx, func(ctx context.Context) (any, error) {
		model := s.client.GenerativeModel(s.model)
		model.SetTemperature(0.3)
		model.SetMaxOutputTokens(512)
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, err
		}
		return extractText(resp), nil
	})
	if err != nil {
		return fallbackText
	}
	text, _ := out.(string)
	if text == "" {
		return fallbackText
	}
	return text
}

func buildPrompt(result auditmodel.MultiURLAuditResult) string {
	type count struct {
		typ string
		n   int
	}
	totals := map[string]int{}
	for _, audit := range result.Results {
		for typ, n := range audit.Metadata.IssuesByType {
			totals[string(typ)] += n
		}
	}
	counts := make([]count, 0, len(totals))
	for typ, n := range totals {
		if n > 0 {
			counts = append(counts, count{typ, n})
		}
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].n > counts[j].n })

	var b strings.Builder
	fmt.Fprintf(&b, "Summarize layout issues found across %d page(s). ", len(result.Results))
	fmt.Fprintf(&b, "Total issues: %d, critical: %d. ", result.Summary.TotalIssuesFound, result.Summary.CriticalIssues)
	b.WriteString("Breakdown by type: ")
	for i, c := range counts {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%d", c.typ, c.n)
	}
	b.WriteString(". Write two or three sentences a developer could act on.")
	return b.String()
}

func extractText(resp *genai.GenerateContentResponse) string {
	var out strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(out.String())
}
