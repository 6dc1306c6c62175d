package propagator

import (
	"math"
	"math/rand"
)

// NaiveSampler uses the same firing-queue data structure as
// NextReactionMethod but, unlike it, keeps no residual: every Enabled or
// Modified event re-samples a fresh firing time from scratch via
// Distribution.Sample. It is deliberately incorrect and is retained only
// for differential testing against FirstReactionMethod (spec §4.6): its
// marginals match First Reaction on memoryless-only models, but it biases
// the joint distribution of a trajectory otherwise, because a Modified
// event forgets everything the clock had "waited through" so far.
//
// Re-enabling a previously-disabled clock is permitted rather than
// rejected, matching the shipped behavior spec §9 documents as an open
// question resolved in favor of "permit silently, document as unsafe."
type NaiveSampler struct {
	queue   *FiringQueue
	handles map[Clock]Handle
	booted  bool
}

// NewNaiveSampler constructs an empty NaiveSampler.
func NewNaiveSampler() *NaiveSampler {
	return &NaiveSampler{
		queue:   NewFiringQueue(),
		handles: make(map[Clock]Handle),
	}
}

func (s *NaiveSampler) resample(clock Clock, now float64, rng *rand.Rand) {
	t := clock.Intensity().Sample(now, rng)
	assertf(t >= now, "naive: sample %v earlier than now %v", t, now)
	if h, ok := s.handles[clock]; ok {
		s.queue.Update(h, t, clock)
		return
	}
	s.handles[clock] = s.queue.Push(t, clock)
}

func (s *NaiveSampler) remove(clock Clock) {
	if h, ok := s.handles[clock]; ok {
		s.queue.Remove(h)
		delete(s.handles, clock)
	}
	// Disabling an already-removed (or never-known) clock is a no-op —
	// this is the suppressed guard spec §9 mentions.
}

// Next implements Sampler.
func (s *NaiveSampler) Next(process Process, rng *rand.Rand) (float64, Clock) {
	if !s.booted {
		process.Hazards(rng, func(clock Clock, now float64, _ EventKind, r *rand.Rand) {
			s.resample(clock, now, r)
		})
		s.booted = true
	}

	t, c, ok := s.queue.Peek()
	if !ok {
		return math.Inf(1), nil
	}
	return t, c
}

// Observer implements Sampler.
func (s *NaiveSampler) Observer() Observer {
	return func(clock Clock, now float64, event EventKind, rng *rand.Rand) {
		switch event {
		case Enabled, Modified:
			s.resample(clock, now, rng)
		case Disabled, Fired:
			s.remove(clock)
		}
	}
}
