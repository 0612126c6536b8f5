// Package metrics counts registry traffic. A nil *Metrics is valid and
// records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "imagecore"

const (
	LookupHit    = "hit"
	LookupMiss   = "miss"
	LookupLoaded = "loaded"

	SniffCache = "cache"
	SniffList  = "list"
	SniffNone  = "none"
)

type Metrics struct {
	Lookups     *prometheus.CounterVec
	Sniffs      *prometheus.CounterVec
	ModuleLoads *prometheus.CounterVec
	Formats     prometheus.Gauge
}

// New creates the collectors and registers them with reg when reg is not nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "format",
			Name:      "lookups_total",
			Help:      "Format lookups by result.",
		}, []string{"result"}),
		Sniffs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "magic",
			Name:      "matches_total",
			Help:      "Magic matches by the path that answered them.",
		}, []string{"path"}),
		ModuleLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "module",
			Name:      "registrations_total",
			Help:      "Module registrations by module and outcome.",
		}, []string{"module", "outcome"}),
		Formats: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "format",
			Name:      "registered",
			Help:      "Formats currently in the registry.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Lookups, m.Sniffs, m.ModuleLoads, m.Formats)
	}
	return m
}

func (m *Metrics) Lookup(result string) {
	if m != nil {
		m.Lookups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Sniff(path string) {
	if m != nil {
		m.Sniffs.WithLabelValues(path).Inc()
	}
}

func (m *Metrics) ModuleLoad(module, outcome string) {
	if m != nil {
		m.ModuleLoads.WithLabelValues(module, outcome).Inc()
	}
}

func (m *Metrics) SetFormats(n int) {
	if m != nil {
		m.Formats.Set(float64(n))
	}
}
