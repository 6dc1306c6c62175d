// Package demoprocess supplies concrete Process and Distribution
// implementations that exercise every propagator.Sampler against realistic
// competing-clock models. The propagator package never imports this one.
package demoprocess

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"

	"github.com/kgustafsson/semimarkov/propagator"
)

// DistributionKind identifies which hazard shape a Clock's distribution
// implements, for JSON (de)serialization of a queue's configuration.
type DistributionKind int

const (
	KindExponential DistributionKind = iota
	KindWeibull
	KindDeterministic
)

// String returns the string representation of DistributionKind.
func (k DistributionKind) String() string {
	switch k {
	case KindExponential:
		return "exponential"
	case KindWeibull:
		return "weibull"
	case KindDeterministic:
		return "deterministic"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseDistributionKind parses a string into a DistributionKind.
func ParseDistributionKind(s string) (DistributionKind, error) {
	switch s {
	case "exponential":
		return KindExponential, nil
	case "weibull":
		return KindWeibull, nil
	case "deterministic":
		return KindDeterministic, nil
	default:
		return KindExponential, fmt.Errorf("invalid distribution kind: %s (must be 'exponential', 'weibull', or 'deterministic')", s)
	}
}

// MarshalJSON implements json.Marshaler.
func (k DistributionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *DistributionKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDistributionKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Exponential is a memoryless hazard with rate Lambda. Memorylessness means
// a Modified event never needs to discard what a clock has already waited
// through, but it still needs accrued-hazard bookkeeping across a rate
// change: ∫h ds = xi must integrate whatever rate was in force over each
// segment of the wait, not just the rate in force when xi is finally
// consumed. Since marks where the current segment began; AccruedHazard is
// the hazard integrated over every earlier segment. Rescale must be called
// with the segment boundary's time before Lambda changes (spec §4.5, S4).
type Exponential struct {
	Lambda float64 `json:"lambda"`

	Since         float64 `json:"since"`
	AccruedHazard float64 `json:"accrued_hazard"`
}

var _ propagator.Distribution = (*Exponential)(nil)

// Parameters returns {Lambda}, the rate DirectMethod and FixedDirectMethod
// read as an exponential intensity.
func (e *Exponential) Parameters() []float64 { return []float64{e.Lambda} }

// Sample draws a fresh absolute firing time, discarding any residual and any
// accrued hazard.
func (e *Exponential) Sample(now float64, rng *rand.Rand) float64 {
	return now + unitExponential(rng)/e.Lambda
}

// MeasuredSample draws a fresh firing time together with the unit-exponential
// residual that produced it, starting a new hazard segment at now.
func (e *Exponential) MeasuredSample(now float64, rng *rand.Rand) (float64, float64) {
	xi := unitExponential(rng)
	e.Since = now
	e.AccruedHazard = 0
	return now + xi/e.Lambda, xi
}

// Putative recomputes the firing time from a preserved residual: the hazard
// already accrued in earlier segments is subtracted from xi, and whatever
// remains is consumed at the current Lambda starting from Since. Callers
// must have advanced Since to the current time (via Rescale, for a rate
// change, or by direct assignment when resuming from a pause) before
// calling Putative, so Since already equals now.
func (e *Exponential) Putative(now, xi float64) float64 {
	remaining := xi - e.AccruedHazard
	if remaining < 0 {
		// Floating-point noise only: by construction remaining cannot be
		// negative once Since/AccruedHazard are kept current.
		remaining = 0
	}
	return e.Since + remaining/e.Lambda
}

// Rescale folds the hazard accrued between Since and now, at the rate in
// force up to now, into AccruedHazard, then advances Since to now. Call it
// immediately before changing Lambda (a Modified event) or before a
// Disabled event that pauses the clock, so later Putative calls integrate
// the true piecewise hazard instead of extrapolating one rate across the
// clock's whole history.
func (e *Exponential) Rescale(now float64) {
	e.AccruedHazard += e.Lambda * (now - e.Since)
	e.Since = now
}

// Weibull is a non-memoryless hazard with shape K and scale Lambda: its
// cumulative hazard is H(t) = (t/Lambda)^K, so recovering a firing time from
// a residual ξ requires inverting H, not just adding.
//
// Since marks where the clock's current hazard segment began (reset to now
// on every fresh Enabled); AccruedHazard is the hazard integrated over every
// earlier segment of the same wait. A Modified event that changes Shape or
// Scale mid-wait, or a Disabled event that pauses the clock, must call
// Rescale with the segment boundary's time first, so Putative always
// integrates the hazard actually accrued under whichever parameters were in
// force at each point in the clock's history, not the current parameters
// applied retroactively to the whole span since Since.
type Weibull struct {
	Shape float64 `json:"shape"`
	Scale float64 `json:"scale"`
	Since float64 `json:"since"`

	AccruedHazard float64 `json:"accrued_hazard"`
}

var _ propagator.Distribution = (*Weibull)(nil)

// Parameters returns {Shape, Scale}. FixedDirectMethod and DirectMethod must
// not be used with a Weibull clock; spec-level callers only read
// Parameters()[0] for those, which would misread Shape as a rate.
func (w *Weibull) Parameters() []float64 { return []float64{w.Shape, w.Scale} }

// Sample draws a fresh absolute firing time from a freshly started clock.
func (w *Weibull) Sample(now float64, rng *rand.Rand) float64 {
	xi := unitExponential(rng)
	return now + w.invertHazard(xi)
}

// MeasuredSample draws a fresh firing time together with its residual,
// starting a new hazard segment at now.
func (w *Weibull) MeasuredSample(now float64, rng *rand.Rand) (float64, float64) {
	xi := unitExponential(rng)
	w.Since = now
	w.AccruedHazard = 0
	return now + w.invertHazard(xi), xi
}

// Putative recomputes the firing time from a preserved residual: the hazard
// already accrued in earlier segments is subtracted from xi, and whatever
// remains is inverted against the current Shape/Scale starting from Since.
// Callers must have advanced Since to the current time (via Rescale, or by
// direct assignment when resuming from a pause) before calling Putative, so
// Since already equals now.
func (w *Weibull) Putative(now, xi float64) float64 {
	remaining := xi - w.AccruedHazard
	if remaining < 0 {
		// Floating-point noise only: by construction remaining cannot be
		// negative once Since/AccruedHazard are kept current.
		remaining = 0
	}
	return w.Since + w.invertHazard(remaining)
}

// Rescale folds the hazard accrued between Since and now, under the
// Shape/Scale in force up to now, into AccruedHazard, then advances Since to
// now. Call it immediately before changing Shape or Scale (a Modified
// event) or before a Disabled event that pauses the clock.
func (w *Weibull) Rescale(now float64) {
	w.AccruedHazard += w.hazard(now - w.Since)
	w.Since = now
}

// hazard evaluates H(elapsed) = (elapsed/Scale)^Shape, the cumulative hazard
// an enabled clock accrues over elapsed time units at the current parameters.
func (w *Weibull) hazard(elapsed float64) float64 {
	return math.Pow(elapsed/w.Scale, w.Shape)
}

// invertHazard solves H(elapsed) = xi for elapsed, the inverse of hazard.
func (w *Weibull) invertHazard(xi float64) float64 {
	return w.Scale * math.Pow(xi, 1/w.Shape)
}

// Deterministic fires exactly Interval time units after it was enabled, with
// no randomness consumed at all. It models a fixed maintenance cycle.
type Deterministic struct {
	Interval float64 `json:"interval"`
	Since    float64 `json:"since"`
}

var _ propagator.Distribution = (*Deterministic)(nil)

// Parameters returns {Interval}.
func (d *Deterministic) Parameters() []float64 { return []float64{d.Interval} }

// Sample returns Since + Interval, or now if that time has already passed.
func (d *Deterministic) Sample(now float64, _ *rand.Rand) float64 {
	return d.fireTime(now)
}

// MeasuredSample returns a residual of 0: Deterministic's Putative ignores
// xi entirely, so any constant residual threads through correctly.
func (d *Deterministic) MeasuredSample(now float64, _ *rand.Rand) (float64, float64) {
	return d.fireTime(now), 0
}

// Putative ignores xi; Deterministic has no randomness to preserve.
func (d *Deterministic) Putative(now, _ float64) float64 {
	return d.fireTime(now)
}

func (d *Deterministic) fireTime(now float64) float64 {
	t := d.Since + d.Interval
	if t < now {
		return now
	}
	return t
}

// unitExponential draws ξ ~ Exp(1) via inverse-CDF from rng.Float64(),
// matching the -ln(U) convention spec §3 assumes for a preserved residual.
func unitExponential(rng *rand.Rand) float64 {
	u := rng.Float64()
	if u <= 0 {
		u = math.SmallestNonzeroFloat64
	}
	return -math.Log(u)
}
