package propagator

import (
	"fmt"
	"math"
	"math/rand"
)

// FixedDirectMethod is the Gillespie variant that selects the next clock in
// O(log N) via a PrefixSumTree, at the cost of requiring every clock to
// carry a stable IndexedClock.Index() in [0, N), with N fixed at
// construction.
//
// Like DirectMethod, every enabled clock's Distribution must be exponential
// and expose its rate as Parameters()[0]. A clock without an Index is a
// programmer error and panics (spec §4.3, §7).
type FixedDirectMethod struct {
	tree       *PrefixSumTree
	clockIndex []Clock
	booted     bool

	// Trace, if set, is called with a one-line description of every
	// observed state change. It is the per-trajectory logging hook spec
	// §9 describes in place of a global logger.
	Trace func(string)
}

// NewFixedDirectMethod constructs a FixedDirectMethod over n fixed clock
// slots. It returns an error rather than panicking on a negative n, since n
// ordinarily comes from caller-supplied configuration (a clock count), not
// from another propagator invariant.
func NewFixedDirectMethod(n int) (*FixedDirectMethod, error) {
	if n < 0 {
		return nil, errInvalidConfig(fmt.Sprintf("fixeddirect: clock count %d must be >= 0", n))
	}
	return &FixedDirectMethod{
		tree:       NewPrefixSumTree(n),
		clockIndex: make([]Clock, n),
	}, nil
}

func (f *FixedDirectMethod) indexOf(clock Clock) int {
	ic, ok := clock.(IndexedClock)
	assertf(ok, "fixeddirect: clock has no Index(); FixedDirectMethod requires IndexedClock")
	idx := ic.Index()
	assertf(idx >= 0 && idx < f.tree.Len(), "fixeddirect: index %d out of range [0, %d)", idx, f.tree.Len())
	return idx
}

func (f *FixedDirectMethod) trace(format string, args ...interface{}) {
	if f.Trace != nil {
		f.Trace(fmt.Sprintf(format, args...))
	}
}

func (f *FixedDirectMethod) bootstrap(process Process, rng *rand.Rand) {
	process.Hazards(rng, func(clock Clock, _ float64, _ EventKind, _ *rand.Rand) {
		idx := f.indexOf(clock)
		lambda := clock.Intensity().Parameters()[0]
		f.clockIndex[idx] = clock
		f.tree.Update(idx, lambda)
		f.trace("fixeddirect: bootstrap index=%d lambda=%v", idx, lambda)
	})
	f.booted = true
}

// Next implements Sampler.
func (f *FixedDirectMethod) Next(process Process, rng *rand.Rand) (float64, Clock) {
	if !f.booted {
		f.bootstrap(process, rng)
	}

	now := process.Time()
	total := f.tree.Total()
	if total <= epsilon {
		return math.Inf(1), nil
	}

	u := rng.Float64() * total
	idx, _ := f.tree.Choose(u)
	clock := f.clockIndex[idx]
	assertf(clock != nil, "fixeddirect: chosen index %d has no registered clock", idx)

	uPrime := rng.Float64()
	return now - math.Log(uPrime)/total, clock
}

// Observer implements Sampler.
func (f *FixedDirectMethod) Observer() Observer {
	return func(clock Clock, now float64, event EventKind, _ *rand.Rand) {
		idx := f.indexOf(clock)
		switch event {
		case Enabled, Modified:
			lambda := clock.Intensity().Parameters()[0]
			f.clockIndex[idx] = clock
			f.tree.Update(idx, lambda)
			f.trace("fixeddirect: %s index=%d lambda=%v t=%v", event, idx, lambda, now)
		case Disabled, Fired:
			f.tree.Update(idx, 0)
			f.trace("fixeddirect: %s index=%d t=%v", event, idx, now)
		}
	}
}
