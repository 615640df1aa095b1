package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the admission flow.
type BookingMetrics struct {
	admittedTotal    prometheus.Counter
	rejectedTotal    *prometheus.CounterVec
	admissionLatency prometheus.Histogram
	notifyTotal      *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		admittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "saludgo",
			Subsystem: "bookings",
			Name:      "admitted_total",
			Help:      "Total admitted booking requests",
		}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saludgo",
			Subsystem: "bookings",
			Name:      "rejected_total",
			Help:      "Total rejected booking requests",
		}, []string{"reason"}),
		admissionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "saludgo",
			Subsystem: "bookings",
			Name:      "admission_latency_seconds",
			Help:      "Latency of the admission path including boundary wait",
			Buckets:   prometheus.DefBuckets,
		}),
		notifyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saludgo",
			Subsystem: "notifications",
			Name:      "dispatched_total",
			Help:      "Total booking notification dispatch attempts",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.admittedTotal, m.rejectedTotal, m.admissionLatency, m.notifyTotal)
	return m
}

func (m *BookingMetrics) ObserveAdmitted(seconds float64) {
	if m == nil {
		return
	}
	m.admittedTotal.Inc()
	m.admissionLatency.Observe(seconds)
}

func (m *BookingMetrics) ObserveRejected(reason string, seconds float64) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(reason).Inc()
	m.admissionLatency.Observe(seconds)
}

func (m *BookingMetrics) ObserveNotification(status string) {
	if m == nil {
		return
	}
	m.notifyTotal.WithLabelValues(status).Inc()
}
