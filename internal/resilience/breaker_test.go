package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_PassesThroughSuccess(t *testing.T) {
	g := NewGuard(Settings{Name: "t", RatePerSecond: 1000, Burst: 10}, nil)
	out, err := g.Do(context.Background(), func(ctx context.Context) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestGuard_TripsOpenAfterRepeatedFailures(t *testing.T) {
	g := NewGuard(Settings{Name: "t", MaxRequests: 1, RatePerSecond: 1000, Burst: 10}, nil)
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		_, err := g.Do(context.Background(), func(ctx context.Context) (any, error) {
			return nil, boom
		})
		assert.Error(t, err)
	}

	_, err := g.Do(context.Background(), func(ctx context.Context) (any, error) {
		return "should not run", nil
	})
	assert.ErrorIs(t, err, ErrOpen)
}
