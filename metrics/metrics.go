// Package metrics wires the Scheduler's and Simulator's runtime counters
// into Prometheus (spec.md "domain stack" wiring). Every method is safe to
// call on a nil *Metrics, so callers never need a nil check at the call
// site — metrics are opt-in via WithMetrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the gauges/counters the runtime exposes when a registry is
// supplied at construction.
type Metrics struct {
	eventsDispatched *prometheus.CounterVec
	pendingEvents    *prometheus.GaugeVec
	wallClockDrift   prometheus.Gauge
	simulatorState   prometheus.Gauge
}

// New registers the runtime's metric families on reg and returns the handle
// used to update them. A nil reg yields a nil *Metrics, silently disabling
// every update below.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		eventsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smp_scheduler_events_dispatched_total",
			Help: "Total scheduler events dispatched, by time kind.",
		}, []string{"kind"}),
		pendingEvents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "smp_scheduler_pending_events",
			Help: "Events currently queued, by time kind.",
		}, []string{"kind"}),
		wallClockDrift: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "smp_scheduler_wallclock_drift_seconds",
			Help: "Difference between requested and actual wall-clock pacing delay.",
		}),
		simulatorState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "smp_simulator_state",
			Help: "Current SimulatorStateKind ordinal.",
		}),
	}
	reg.MustRegister(m.eventsDispatched, m.pendingEvents, m.wallClockDrift, m.simulatorState)
	return m
}

// IncDispatched counts one dispatch of a time-kind-tagged event.
func (m *Metrics) IncDispatched(kind string) {
	if m == nil {
		return
	}
	m.eventsDispatched.WithLabelValues(kind).Inc()
}

// SetPending reports the current queue depth for a time kind.
func (m *Metrics) SetPending(kind string, n float64) {
	if m == nil {
		return
	}
	m.pendingEvents.WithLabelValues(kind).Set(n)
}

// SetWallClockDrift reports the signed seconds by which the last pacing
// sleep over- or under-shot its target.
func (m *Metrics) SetWallClockDrift(seconds float64) {
	if m == nil {
		return
	}
	m.wallClockDrift.Set(seconds)
}

// SetSimulatorState reports the current SimulatorStateKind ordinal.
func (m *Metrics) SetSimulatorState(state float64) {
	if m == nil {
		return
	}
	m.simulatorState.Set(state)
}
