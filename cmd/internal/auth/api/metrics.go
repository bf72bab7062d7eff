package authapi

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts auth outcomes. A nil *Metrics is a valid no-op.
type Metrics struct {
	events *prometheus.CounterVec
}

// NewMetrics registers the auth counters on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, errors.New("authapi: nil registerer")
	}
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quest2go",
			Subsystem: "auth",
			Name:      "events_total",
			Help:      "Auth events by kind and outcome.",
		}, []string{"event", "outcome"}),
	}
	if err := reg.Register(m.events); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(event, outcome string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(event, outcome).Inc()
}
