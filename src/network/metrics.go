package network

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the activity of a Controller to Prometheus. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	actions      *prometheus.CounterVec
	nodes        *prometheus.GaugeVec
	observations prometheus.Counter
	submissions  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg, if not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radix",
			Subsystem: "network",
			Name:      "actions_total",
			Help:      "Actions dispatched on the controller bus, by action type.",
		}, []string{"action"}),
		nodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "radix",
			Subsystem: "network",
			Name:      "nodes",
			Help:      "Known nodes, by connection status.",
		}, []string{"status"}),
		observations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radix",
			Subsystem: "network",
			Name:      "atom_observations_total",
			Help:      "Atom observations received from nodes.",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radix",
			Subsystem: "network",
			Name:      "submission_updates_total",
			Help:      "Atom submission updates, by state.",
		}, []string{"state"}),
	}

	if reg != nil {
		reg.MustRegister(m.actions, m.nodes, m.observations, m.submissions)
	}

	return m
}

func (m *Metrics) observeAction(a NodeAction) {
	if m == nil {
		return
	}

	m.actions.WithLabelValues(a.Name()).Inc()

	switch a := a.(type) {
	case FetchAtomsObservation:
		m.observations.Inc()
	case SubmitAtomStatus:
		m.submissions.WithLabelValues(a.Update.State.String()).Inc()
	}
}

func (m *Metrics) observeState(s *NetworkState) {
	if m == nil {
		return
	}

	for status, n := range s.CountByStatus() {
		m.nodes.WithLabelValues(status.String()).Set(float64(n))
	}
}
