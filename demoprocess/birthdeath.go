package demoprocess

import (
	"fmt"
	"math/rand"

	"github.com/kgustafsson/semimarkov/propagator"
)

// queueClock is a fixed-slot propagator.IndexedClock: its Index never
// changes across its lifetime, only the Distribution Intensity returns.
type queueClock struct {
	dist  propagator.Distribution
	index int
}

func (c *queueClock) Intensity() propagator.Distribution { return c.dist }
func (c *queueClock) Index() int                          { return c.index }

// BirthDeathQueue is a single-server M/M/1 queue: one exponential arrival
// clock (index 0) and one exponential departure clock (index 1), active
// only while the population is positive. Both hazards are exponential, so
// it exercises DirectMethod and FixedDirectMethod exactly as spec §4.2 and
// §4.3 require, never Sample/MeasuredSample/Putative.
type BirthDeathQueue struct {
	arrivalRate float64
	serviceRate float64

	population int
	now        float64

	arrival   *queueClock
	departure *queueClock

	sampler propagator.Sampler
	observe propagator.Observer
	rng     *rand.Rand

	// Trace, if set, receives one line per transition. Mirrors the
	// per-component Trace hook the stateful propagators themselves expose.
	Trace func(string)
}

// NewBirthDeathQueue constructs a queue with the given arrival and service
// rates, wired to sampler (expected to be a DirectMethod or
// FixedDirectMethod, but any Sampler works). rng drives every draw,
// including the ones the sampler itself makes.
func NewBirthDeathQueue(arrivalRate, serviceRate float64, sampler propagator.Sampler, rng *rand.Rand) *BirthDeathQueue {
	q := &BirthDeathQueue{
		arrivalRate: arrivalRate,
		serviceRate: serviceRate,
		arrival:     &queueClock{dist: &Exponential{Lambda: arrivalRate}, index: 0},
		departure:   &queueClock{dist: &Exponential{Lambda: serviceRate}, index: 1},
		sampler:     sampler,
		rng:         rng,
	}
	q.observe = sampler.Observer()
	return q
}

func (q *BirthDeathQueue) trace(format string, args ...interface{}) {
	if q.Trace != nil {
		q.Trace(fmt.Sprintf(format, args...))
	}
}

// Time implements propagator.Process.
func (q *BirthDeathQueue) Time() float64 { return q.now }

// Hazards implements propagator.Process: the arrival clock is always
// enabled; the departure clock only while the population is positive.
func (q *BirthDeathQueue) Hazards(rng *rand.Rand, visit func(propagator.Clock, float64, propagator.EventKind, *rand.Rand)) {
	visit(q.arrival, q.now, propagator.Enabled, rng)
	if q.population > 0 {
		visit(q.departure, q.now, propagator.Enabled, rng)
	}
}

// Population returns the current number of customers in the system.
func (q *BirthDeathQueue) Population() int { return q.population }

// Step advances the queue by exactly one firing and returns which clock
// fired. Returns ok=false if the sampler reports no further firings (never
// happens here, since the arrival clock is never disabled).
func (q *BirthDeathQueue) Step() (firedArrival bool, ok bool) {
	t, clock := q.sampler.Next(q, q.rng)
	if clock == nil {
		return false, false
	}
	q.now = t

	switch clock {
	case q.arrival:
		q.population++
		q.trace("arrival t=%v population=%d", t, q.population)
		q.observe(q.arrival, t, propagator.Fired, q.rng)
		q.observe(q.arrival, t, propagator.Enabled, q.rng)
		if q.population == 1 {
			q.observe(q.departure, t, propagator.Enabled, q.rng)
		}
		return true, true
	case q.departure:
		q.population--
		q.trace("departure t=%v population=%d", t, q.population)
		q.observe(q.departure, t, propagator.Fired, q.rng)
		if q.population > 0 {
			q.observe(q.departure, t, propagator.Enabled, q.rng)
		}
		return false, true
	default:
		panic(fmt.Sprintf("birthdeath: unrecognized clock fired: %v", clock))
	}
}

// Run advances the queue for exactly n firings, or until the sampler reports
// no further firings.
func (q *BirthDeathQueue) Run(n int) {
	for i := 0; i < n; i++ {
		if _, ok := q.Step(); !ok {
			return
		}
	}
}
