// Package resilience wraps flaky outbound calls (browser navigation, AI
// summary requests) in a circuit breaker plus a token-bucket limiter, the
// way internal/ai/gemini_client.go wraps calls to the Gemini API.
package resilience

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Guard bundles a circuit breaker and a rate limiter around one outbound
// dependency (one site being crawled, one AI endpoint).
type Guard struct {
	name    string
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Settings configures a Guard. Zero value yields conservative defaults.
type Settings struct {
	Name string
	// MaxRequests is the number of requests allowed through in the
	// half-open state before the breaker decides to close or reopen.
	MaxRequests uint32
	// Interval is how often the breaker resets its failure counts while closed.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// RatePerSecond caps sustained throughput; Burst caps short spikes.
	RatePerSecond float64
	Burst         int
}

// NewGuard builds a Guard, defaulting unset fields the way
// ai.NewGeminiClient defaults unset rate-limit tiers.
func NewGuard(cfg Settings, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 3
	}
	if cfg.Interval == 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RatePerSecond == 0 {
		cfg.RatePerSecond = 5
	}
	if cfg.Burst == 0 {
		cfg.Burst = 2
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit-breaker-state-change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Guard{
		name:    cfg.Name,
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		logger:  logger,
	}
}

// ErrOpen is gobreaker.ErrOpenState, which Do returns as is when the
// breaker is open and the caller should fall back instead of retrying
// immediately.
var ErrOpen = gobreaker.ErrOpenState

// Do waits for the rate limiter, then executes fn through the breaker.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return g.breaker.Execute(func() (any, error) {
		return fn(ctx)
	})
}

// State reports the breaker's current state name for metrics/health checks.
func (g *Guard) State() string {
	return g.breaker.State().String()
}
