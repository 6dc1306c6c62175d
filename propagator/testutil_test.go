package propagator

import (
	"math"
	"math/rand"
)

// sequenceSource is a math/rand.Source that replays a fixed sequence of
// Float64 outputs exactly, then repeats its last value forever. It exists so
// the scenario-style tests below can pin down exactly which clock a sampler
// picks without depending on the platform's default source.
//
// Any float64 v in [2^-11, 1) round trips bit-for-bit through Int63/Float64,
// since v * 2^63 is then an exact integer; every value these tests feed to
// newSequenceRand lies in that range.
type sequenceSource struct {
	values []float64
	pos    int
}

func newSequenceRand(values ...float64) *rand.Rand {
	return rand.New(&sequenceSource{values: values})
}

func (s *sequenceSource) Int63() int64 {
	v := s.values[len(s.values)-1]
	if s.pos < len(s.values) {
		v = s.values[s.pos]
		s.pos++
	}
	return int64(v * (1 << 63))
}

func (s *sequenceSource) Seed(int64) {}

// stubDistribution is a Distribution with arbitrary, test-controlled
// outputs for all four operations, for scenarios that need to drive a
// sampler without a real hazard model.
type stubDistribution struct {
	params         []float64
	sampleFn       func(now float64, rng *rand.Rand) float64
	measuredFn     func(now float64, rng *rand.Rand) (float64, float64)
	putativeFn     func(now, xi float64) float64
}

func (d *stubDistribution) Parameters() []float64 { return d.params }

func (d *stubDistribution) Sample(now float64, rng *rand.Rand) float64 {
	return d.sampleFn(now, rng)
}

func (d *stubDistribution) MeasuredSample(now float64, rng *rand.Rand) (float64, float64) {
	return d.measuredFn(now, rng)
}

func (d *stubDistribution) Putative(now, xi float64) float64 {
	return d.putativeFn(now, xi)
}

// testClock is a minimal pointer-identity Clock/IndexedClock for tests.
type testClock struct {
	dist Distribution
	idx  int
}

func (c *testClock) Intensity() Distribution { return c.dist }
func (c *testClock) Index() int              { return c.idx }

// fixedProcess is a Process whose clock set and Time are fixed at
// construction; tests drive further transitions directly through a
// Sampler's Observer.
type fixedProcess struct {
	now    float64
	clocks []Clock
}

func (p *fixedProcess) Time() float64 { return p.now }

func (p *fixedProcess) Hazards(rng *rand.Rand, visit func(Clock, float64, EventKind, *rand.Rand)) {
	for _, c := range p.clocks {
		visit(c, p.now, Enabled, rng)
	}
}

// exponentialStub builds a stubDistribution behaving like Exp(rate) for
// Parameters()[0]: firingTime = now - ln(u)/rate. It is stateless and
// ignores any history before the call, so it is only valid for scenarios
// that never carry a residual across a Modified rate change — see
// accruedExponentialStub for that case.
func exponentialStub(rate float64) *stubDistribution {
	d := &stubDistribution{params: []float64{rate}}
	d.sampleFn = func(now float64, rng *rand.Rand) float64 {
		return now + logViaRand(rng)/rate
	}
	d.measuredFn = func(now float64, rng *rand.Rand) (float64, float64) {
		xi := logViaRand(rng)
		return now + xi/rate, xi
	}
	d.putativeFn = func(now, xi float64) float64 {
		return now + xi/rate
	}
	return d
}

// accruedExponentialStub is a stateful Distribution mirroring demoprocess's
// real Exponential: it tracks Since/AccruedHazard and exposes Rescale, so
// tests can exercise a Modified rate change mid-wait and check Putative
// against the accrued-hazard formula (spec §4.5/§8, scenario S4) instead of
// the stateless exponentialStub's single-draw shortcut.
type accruedExponentialStub struct {
	Rate          float64
	Since         float64
	AccruedHazard float64
	fixedXi       float64
}

func (d *accruedExponentialStub) Parameters() []float64 { return []float64{d.Rate} }

func (d *accruedExponentialStub) Sample(now float64, rng *rand.Rand) float64 {
	return now + logViaRand(rng)/d.Rate
}

func (d *accruedExponentialStub) MeasuredSample(now float64, _ *rand.Rand) (float64, float64) {
	d.Since = now
	d.AccruedHazard = 0
	xi := d.fixedXi
	return now + xi/d.Rate, xi
}

func (d *accruedExponentialStub) Putative(now, xi float64) float64 {
	remaining := xi - d.AccruedHazard
	if remaining < 0 {
		remaining = 0
	}
	return d.Since + remaining/d.Rate
}

func (d *accruedExponentialStub) Rescale(now float64) {
	d.AccruedHazard += d.Rate * (now - d.Since)
	d.Since = now
}

// logViaRand returns -ln(rng.Float64()), i.e. the unit-exponential draw
// rand.ExpFloat64 would give, but expressed directly in terms of Float64 so
// scripted sequenceSource values translate predictably.
func logViaRand(rng *rand.Rand) float64 {
	return -math.Log(rng.Float64())
}
