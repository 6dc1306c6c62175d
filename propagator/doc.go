// Package propagator implements stochastic trajectory samplers for
// continuous-time, semi-Markov jump processes defined by a set of competing
// clocks (transitions) with arbitrary waiting-time distributions.
//
// A process exposes its currently enabled clocks and each clock's hazard
// distribution through the Process interface. A Sampler answers one
// question — which clock fires next, and at what absolute time — via Next,
// then stays consistent as clocks are enabled, disabled, modified, or fired
// via the closure returned by Observer.
//
// Five samplers are provided:
//
//	DirectMethod        — classical Gillespie, exponential clocks only, O(n) per step.
//	FixedDirectMethod    — Gillespie variant over a prefix-sum tree indexed by
//	                       a fixed clock slot, O(log n) selection.
//	FirstReactionMethod  — general semi-Markov: sample every enabled clock and
//	                       take the minimum. O(n) samples per step.
//	NextReactionMethod   — general semi-Markov with per-clock unit-exponential
//	                       residuals preserved across enable/disable/modify,
//	                       amortized O(log n) via a mutable priority queue.
//	NaiveSampler         — re-samples on every enable/modify; retained only as
//	                       an intentionally-biased baseline for differential
//	                       testing against FirstReactionMethod.
//
// The package intentionally says nothing about the process model that
// enumerates clocks, the shape of the intensity distributions beyond the
// four operations in Distribution, the RNG implementation, or the outer
// loop that drives a trajectory by alternating Next and Observer calls.
// Those are external collaborators, supplied by the caller.
package propagator
