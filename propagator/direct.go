package propagator

import (
	"math"
	"math/rand"
	"sort"
)

// DirectMethod is the classical Gillespie algorithm for exponential-only
// clocks: a one-shot cumulative-sum selection over every enabled clock,
// O(n) per step. It holds no state between steps.
//
// Every enabled clock's Distribution must be exponential and expose its
// rate as Parameters()[0]; using a non-exponential Distribution with
// DirectMethod is undefined behavior (spec §4.2).
type DirectMethod struct{}

// NewDirectMethod constructs a DirectMethod sampler. It has no configuration.
func NewDirectMethod() *DirectMethod { return &DirectMethod{} }

// Next implements Sampler.
func (d *DirectMethod) Next(process Process, rng *rand.Rand) (float64, Clock) {
	now := process.Time()

	var cumulative []float64
	var keys []Clock
	total := 0.0
	process.Hazards(rng, func(clock Clock, _ float64, _ EventKind, _ *rand.Rand) {
		lambda := clock.Intensity().Parameters()[0]
		total += lambda
		cumulative = append(cumulative, total)
		keys = append(keys, clock)
	})

	if total <= epsilon {
		return math.Inf(1), nil
	}

	u := rng.Float64() * total
	i := sort.Search(len(cumulative), func(i int) bool { return cumulative[i] >= u })
	assertf(i < len(cumulative), "direct: selection index %d out of range (total=%v, u=%v)", i, total, u)

	uPrime := rng.Float64()
	return now - math.Log(uPrime)/total, keys[i]
}

// Observer implements Sampler. DirectMethod holds no state between steps,
// so the returned closure is a no-op.
func (d *DirectMethod) Observer() Observer {
	return func(Clock, float64, EventKind, *rand.Rand) {}
}
