package demoprocess

import (
	"fmt"
	"math/rand"

	"github.com/kgustafsson/semimarkov/propagator"
)

// MaintenanceQueue is a single-server semi-Markov queue: Poisson arrivals,
// Weibull service (non-memoryless, so it needs a real residual), and a
// Deterministic maintenance cycle that periodically pauses the server.
// Unlike BirthDeathQueue, its service clock is not exponential, so it
// exercises FirstReactionMethod, NextReactionMethod, and NaiveSampler
// (spec §4.4, §4.5, §4.6) rather than the two Direct variants.
//
// Congestion: each additional customer waiting behind the one in service
// speeds up the server's Scale, delivered as a Modified event on the
// in-progress service clock — the scenario NextReactionMethod's residual
// preservation exists for (spec §4.5, scenario S4).
type MaintenanceQueue struct {
	arrivalRate         float64
	baseScale           float64
	shape               float64
	congestionFactor    float64
	maintenancePeriod   float64
	maintenanceDuration float64

	population       int
	busy             bool
	underMaintenance bool
	now              float64

	// pausedService records whether the service clock was mid-wait when
	// maintenance began, so resuming distinguishes "wake a paused clock"
	// (Since jumps straight to now; AccruedHazard already froze at the
	// pause point via Rescale) from "start a fresh service" for customers
	// who arrived entirely during maintenance.
	pausedService bool

	service     *Weibull
	maintenance *Deterministic

	arrivalClock    *queueClock
	serviceClock    *queueClock
	maintenanceClock *queueClock

	sampler propagator.Sampler
	observe propagator.Observer
	rng     *rand.Rand

	Trace func(string)
}

// MaintenanceQueueConfig groups MaintenanceQueue's parameters.
type MaintenanceQueueConfig struct {
	ArrivalRate         float64
	ServiceShape        float64
	ServiceBaseScale    float64
	CongestionFactor    float64
	MaintenancePeriod   float64
	MaintenanceDuration float64
}

// NewMaintenanceQueue constructs a MaintenanceQueue wired to sampler
// (expected to be FirstReactionMethod, NextReactionMethod, or
// NaiveSampler).
func NewMaintenanceQueue(cfg MaintenanceQueueConfig, sampler propagator.Sampler, rng *rand.Rand) *MaintenanceQueue {
	service := &Weibull{Shape: cfg.ServiceShape, Scale: cfg.ServiceBaseScale}
	maintenance := &Deterministic{Interval: cfg.MaintenancePeriod}

	q := &MaintenanceQueue{
		arrivalRate:         cfg.ArrivalRate,
		baseScale:           cfg.ServiceBaseScale,
		shape:               cfg.ServiceShape,
		congestionFactor:    cfg.CongestionFactor,
		maintenancePeriod:   cfg.MaintenancePeriod,
		maintenanceDuration: cfg.MaintenanceDuration,
		service:             service,
		maintenance:         maintenance,
		arrivalClock:        &queueClock{dist: &Exponential{Lambda: cfg.ArrivalRate}, index: 0},
		serviceClock:        &queueClock{dist: service, index: 1},
		maintenanceClock:    &queueClock{dist: maintenance, index: 2},
		sampler:             sampler,
		rng:                 rng,
	}
	q.observe = sampler.Observer()
	return q
}

func (q *MaintenanceQueue) trace(format string, args ...interface{}) {
	if q.Trace != nil {
		q.Trace(fmt.Sprintf(format, args...))
	}
}

// congestionScale shrinks Scale as more customers queue up behind the one
// currently in service, so a busier queue serves faster.
func (q *MaintenanceQueue) congestionScale() float64 {
	extra := float64(q.population - 1)
	if extra < 0 {
		extra = 0
	}
	return q.baseScale / (1 + q.congestionFactor*extra)
}

// Time implements propagator.Process.
func (q *MaintenanceQueue) Time() float64 { return q.now }

// Hazards implements propagator.Process.
func (q *MaintenanceQueue) Hazards(rng *rand.Rand, visit func(propagator.Clock, float64, propagator.EventKind, *rand.Rand)) {
	visit(q.arrivalClock, q.now, propagator.Enabled, rng)
	if q.busy {
		visit(q.serviceClock, q.now, propagator.Enabled, rng)
	}
	visit(q.maintenanceClock, q.now, propagator.Enabled, rng)
}

// Population returns the current number of customers in the system.
func (q *MaintenanceQueue) Population() int { return q.population }

// UnderMaintenance reports whether the server is currently paused.
func (q *MaintenanceQueue) UnderMaintenance() bool { return q.underMaintenance }

func (q *MaintenanceQueue) startService(now float64) {
	q.service.Since = now
	q.service.AccruedHazard = 0
	q.service.Scale = q.congestionScale()
	q.busy = true
	q.observe(q.serviceClock, now, propagator.Enabled, q.rng)
	q.trace("service started t=%v scale=%v population=%d", now, q.service.Scale, q.population)
}

// Step advances the queue by exactly one firing and reports which clock
// fired ("arrival", "service", or "maintenance").
func (q *MaintenanceQueue) Step() (kind string, ok bool) {
	t, clock := q.sampler.Next(q, q.rng)
	if clock == nil {
		return "", false
	}
	q.now = t

	switch clock {
	case q.arrivalClock:
		q.population++
		q.observe(q.arrivalClock, t, propagator.Fired, q.rng)
		q.observe(q.arrivalClock, t, propagator.Enabled, q.rng)
		q.trace("arrival t=%v population=%d", t, q.population)

		switch {
		case q.population == 1 && !q.underMaintenance:
			q.startService(t)
		case q.busy:
			// A new arrival changed the congestion seen by the customer
			// already in service; its residual carries over, but the
			// hazard accrued under the old Scale up to t must be folded
			// in before Scale changes, or Putative will integrate the new
			// Scale across the whole wait instead of just what remains.
			q.service.Rescale(t)
			q.service.Scale = q.congestionScale()
			q.observe(q.serviceClock, t, propagator.Modified, q.rng)
			q.trace("service rescaled (congestion) t=%v scale=%v", t, q.service.Scale)
		}
		return "arrival", true

	case q.serviceClock:
		q.population--
		q.busy = false
		q.observe(q.serviceClock, t, propagator.Fired, q.rng)
		q.trace("service completed t=%v population=%d", t, q.population)
		if q.population > 0 && !q.underMaintenance {
			q.startService(t)
		}
		return "service", true

	case q.maintenanceClock:
		if !q.underMaintenance {
			q.underMaintenance = true
			if q.busy {
				q.service.Rescale(t)
				q.observe(q.serviceClock, t, propagator.Disabled, q.rng)
				q.pausedService = true
				q.busy = false
				q.trace("maintenance started t=%v (service paused)", t)
			} else {
				q.trace("maintenance started t=%v", t)
			}
			q.maintenance.Since = t
			q.maintenance.Interval = q.maintenanceDuration
		} else {
			q.underMaintenance = false
			q.maintenance.Since = t
			q.maintenance.Interval = q.maintenancePeriod
			q.trace("maintenance ended t=%v", t)
			switch {
			case q.pausedService:
				// No hazard accrues while paused, so Since simply jumps to
				// now; AccruedHazard already holds everything accrued
				// before the pause, frozen by the Rescale call above.
				q.service.Since = t
				q.pausedService = false
				q.busy = true
				q.observe(q.serviceClock, t, propagator.Enabled, q.rng)
			case q.population > 0:
				q.startService(t)
			}
		}
		q.observe(q.maintenanceClock, t, propagator.Fired, q.rng)
		q.observe(q.maintenanceClock, t, propagator.Enabled, q.rng)
		return "maintenance", true

	default:
		panic(fmt.Sprintf("maintenance: unrecognized clock fired: %v", clock))
	}
}

// Run advances the queue for exactly n firings, or until the sampler reports
// no further firings.
func (q *MaintenanceQueue) Run(n int) {
	for i := 0; i < n; i++ {
		if _, ok := q.Step(); !ok {
			return
		}
	}
}
