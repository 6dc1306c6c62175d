package propagator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFirstReactionMethodPicksMinimum mirrors spec scenario S3: two clocks
// with distinct putative firing times; the sampler must return the earlier
// one and its clock, regardless of draw order.
func TestFirstReactionMethodPicksMinimum(t *testing.T) {
	now := 2.0
	early := &testClock{dist: &stubDistribution{
		sampleFn: func(now float64, _ *rand.Rand) float64 { return now + 1 },
	}}
	late := &testClock{dist: &stubDistribution{
		sampleFn: func(now float64, _ *rand.Rand) float64 { return now + 5 },
	}}
	process := &fixedProcess{now: now, clocks: []Clock{early, late}}

	firing, clock := NewFirstReactionMethod().Next(process, newSequenceRand(0.5))
	require.Same(t, early, clock)
	require.Equal(t, now+1, firing)
}

func TestFirstReactionMethodNoClocks(t *testing.T) {
	process := &fixedProcess{now: 0, clocks: nil}
	firing, clock := NewFirstReactionMethod().Next(process, newSequenceRand(0.5))
	require.True(t, math.IsInf(firing, 1))
	require.Nil(t, clock)
}

func TestFirstReactionMethodRejectsPastFiring(t *testing.T) {
	now := 10.0
	bad := &testClock{dist: &stubDistribution{
		sampleFn: func(float64, *rand.Rand) float64 { return now - 1 },
	}}
	process := &fixedProcess{now: now, clocks: []Clock{bad}}
	require.Panics(t, func() {
		NewFirstReactionMethod().Next(process, newSequenceRand(0.5))
	})
}

func TestFirstReactionMethodObserverIsNoop(t *testing.T) {
	sampler := NewFirstReactionMethod()
	require.NotPanics(t, func() {
		sampler.Observer()(&testClock{}, 0, Fired, newSequenceRand(0.5))
	})
}
