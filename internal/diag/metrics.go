// Package diag exposes engine health as prometheus collectors. The
// session increments these; nothing in the hot path depends on them.
package diag

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	TicksTotal          prometheus.Counter
	ReheatsTotal        prometheus.Counter
	DanglingZoneRefs    prometheus.Counter
	FallbackResolutions prometheus.Counter
	SettledInstances    prometheus.Gauge
	KineticEnergy       prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "graphsim_ticks_total",
			Help: "Simulation ticks executed.",
		}),
		ReheatsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "graphsim_reheats_total",
			Help: "Times the canonical instance was reheated.",
		}),
		DanglingZoneRefs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "graphsim_dangling_zone_refs_total",
			Help: "Zone references observed pointing at deleted zones.",
		}),
		FallbackResolutions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "graphsim_profile_fallback_resolutions_total",
			Help: "Profile lookups satisfied by the fallback profile.",
		}),
		SettledInstances: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "graphsim_settled_instances",
			Help: "Instances currently paused by the settle condition.",
		}),
		KineticEnergy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "graphsim_canonical_kinetic_energy",
			Help: "Canonical instance kinetic energy after the last tick.",
		}),
	}
	reg.MustRegister(
		m.TicksTotal, m.ReheatsTotal, m.DanglingZoneRefs,
		m.FallbackResolutions, m.SettledInstances, m.KineticEnergy,
	)
	return m
}

// NewNop returns metrics registered on a private registry, for callers
// that do not scrape.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
