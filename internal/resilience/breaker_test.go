package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(minRequests int, openFor time.Duration) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := NewBreaker("test", minRequests, 0.5, openFor)
	b.now = clock.now
	return b, clock
}

func TestBreakerTransitions(t *testing.T) {
	breaker, clock := newTestBreaker(2, time.Minute)
	ctx := context.Background()

	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)
	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)

	require.Equal(t, Open, breaker.State())
	require.False(t, breaker.Allow(ctx), "breaker should open after threshold exceeded")

	clock.advance(time.Minute)
	require.True(t, breaker.Allow(ctx), "breaker should move to half-open after cool off")
	require.Equal(t, HalfOpen, breaker.State())
	require.False(t, breaker.Allow(ctx), "only one probe while half-open")

	breaker.Report(ctx, true)
	require.Equal(t, Closed, breaker.State())
	require.True(t, breaker.Allow(ctx))
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	breaker, clock := newTestBreaker(1, time.Second)
	ctx := context.Background()

	breaker.Report(ctx, false)
	require.Equal(t, Open, breaker.State())

	clock.advance(time.Second)
	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)
	require.Equal(t, Open, breaker.State())
	require.False(t, breaker.Allow(ctx))
}

func TestBreakerDo(t *testing.T) {
	breaker, _ := newTestBreaker(1, time.Minute)
	ctx := context.Background()
	boom := errors.New("redis down")

	calls := 0
	fail := func(context.Context) error { calls++; return boom }

	require.ErrorIs(t, breaker.Do(ctx, fail), boom)
	require.ErrorIs(t, breaker.Do(ctx, fail), ErrOpenCircuit)
	require.Equal(t, 1, calls)
}

func TestBreakerStaysClosedBelowRatio(t *testing.T) {
	breaker, _ := newTestBreaker(4, time.Minute)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		breaker.Report(ctx, true)
		breaker.Report(ctx, true)
		breaker.Report(ctx, true)
		breaker.Report(ctx, true)
		breaker.Report(ctx, false)
	}
	require.Equal(t, Closed, breaker.State())
}
