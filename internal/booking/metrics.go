package booking

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts booking outcomes. Conflicts are worth watching on their
// own: a rising rate means providers are oversubscribed or clients retry
// stale slot lists.
type Metrics struct {
	Booked    prometheus.Counter
	Conflicts prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Booked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mindwell_sessions_booked_total",
			Help: "Sessions successfully booked.",
		}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mindwell_booking_conflicts_total",
			Help: "Booking attempts rejected because the slot was taken or outside availability.",
		}),
	}
	reg.MustRegister(m.Booked, m.Conflicts)
	return m
}

// NopMetrics keeps tests free of a registry.
func NopMetrics() *Metrics {
	return &Metrics{
		Booked:    prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_booked_total"}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_conflicts_total"}),
	}
}
