package propagator

import (
	"math"
	"math/rand"
)

// FirstReactionMethod is the general semi-Markov sampler: every call draws a
// putative firing time from every enabled clock's Distribution and returns
// the minimum. It works for arbitrary intensities, at the cost of O(n)
// samples per step, and holds no state between steps.
type FirstReactionMethod struct{}

// NewFirstReactionMethod constructs a FirstReactionMethod sampler.
func NewFirstReactionMethod() *FirstReactionMethod { return &FirstReactionMethod{} }

// Next implements Sampler.
func (f *FirstReactionMethod) Next(process Process, rng *rand.Rand) (float64, Clock) {
	now := process.Time()

	bestTime := math.Inf(1)
	var bestClock Clock
	process.Hazards(rng, func(clock Clock, _ float64, _ EventKind, r *rand.Rand) {
		t := clock.Intensity().Sample(now, r)
		assertf(t >= now, "firstreaction: sample %v earlier than now %v", t, now)
		if t < bestTime {
			bestTime = t
			bestClock = clock
		}
	})

	return bestTime, bestClock
}

// Observer implements Sampler. FirstReactionMethod holds no state between
// steps, so the returned closure is a no-op.
func (f *FirstReactionMethod) Observer() Observer {
	return func(Clock, float64, EventKind, *rand.Rand) {}
}
