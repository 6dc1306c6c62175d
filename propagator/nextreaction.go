package propagator

import (
	"fmt"
	"math"
	"math/rand"
)

// transitionRecord is the per-clock bookkeeping NextReactionMethod keeps
// across enable/modify/disable/fire cycles (spec §3).
type transitionRecord struct {
	xi     float64 // the preserved unit-exponential residual.
	handle Handle  // position in the firing queue, or noHandle if disabled.
	queued bool
}

// NextReactionMethod is Anderson's Next Reaction Method: general
// semi-Markov sampling that preserves a per-clock unit-exponential residual
// ξ across Modified/Disabled/Enabled cycles, so intensity changes neither
// waste randomness nor bias the distribution. Amortized O(log n) via a
// FiringQueue.
//
// This is the algorithmic heart of the package (spec §4.5).
type NextReactionMethod struct {
	queue   *FiringQueue
	records map[Clock]*transitionRecord
	booted  bool

	// Trace, if set, is called with a one-line description of every
	// enable/disable decision. Per-trajectory logging hook, spec §9.
	Trace func(string)
}

// NewNextReactionMethod constructs an empty NextReactionMethod sampler.
func NewNextReactionMethod() *NextReactionMethod {
	return &NextReactionMethod{
		queue:   NewFiringQueue(),
		records: make(map[Clock]*transitionRecord),
	}
}

func (n *NextReactionMethod) trace(format string, args ...interface{}) {
	if n.Trace != nil {
		n.Trace(fmt.Sprintf(format, args...))
	}
}

// Next implements Sampler.
func (n *NextReactionMethod) Next(process Process, rng *rand.Rand) (float64, Clock) {
	if !n.booted {
		process.Hazards(rng, func(clock Clock, now float64, _ EventKind, r *rand.Rand) {
			n.enable(clock, now, r)
		})
		n.booted = true
	}

	t, c, ok := n.queue.Peek()
	if !ok {
		return math.Inf(1), nil
	}
	return t, c
}

// enable implements the unified routine spec §4.5 describes for Enabled and
// Modified events.
func (n *NextReactionMethod) enable(clock Clock, now float64, rng *rand.Rand) {
	rec, known := n.records[clock]
	if !known {
		tFire, xi := clock.Intensity().MeasuredSample(now, rng)
		handle := n.queue.Push(tFire, clock)
		n.records[clock] = &transitionRecord{xi: xi, handle: handle, queued: true}
		n.trace("nextreaction: enable (fresh xi=%v) t_fire=%v", xi, tFire)
		return
	}

	tFire := clock.Intensity().Putative(now, rec.xi)
	assertf(tFire >= now, "nextreaction: putative time %v earlier than now %v", tFire, now)

	if rec.queued {
		n.queue.Update(rec.handle, tFire, clock)
	} else {
		rec.handle = n.queue.Push(tFire, clock)
		rec.queued = true
	}
	n.trace("nextreaction: enable (preserved xi=%v) t_fire=%v", rec.xi, tFire)
}

// disable implements the unified routine spec §4.5 describes for Disabled
// and Fired events.
func (n *NextReactionMethod) disable(clock Clock, event EventKind) {
	rec, known := n.records[clock]
	assertf(known, "nextreaction: disable of unknown clock")
	assertf(rec.queued, "nextreaction: disable of clock that is not queued")

	n.queue.Remove(rec.handle)
	rec.queued = false

	switch event {
	case Disabled:
		rec.handle = noHandle
		n.trace("nextreaction: disabled, xi=%v preserved", rec.xi)
	case Fired:
		delete(n.records, clock)
		n.trace("nextreaction: fired, record dropped")
	}
}

// Observer implements Sampler.
func (n *NextReactionMethod) Observer() Observer {
	return func(clock Clock, now float64, event EventKind, rng *rand.Rand) {
		switch event {
		case Enabled, Modified:
			n.enable(clock, now, rng)
		case Disabled, Fired:
			n.disable(clock, event)
		}
	}
}
