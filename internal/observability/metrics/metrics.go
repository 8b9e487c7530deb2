package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the waitlist wizard.
type IntakeMetrics struct {
	transitionsTotal *prometheus.CounterVec
	submissionsTotal *prometheus.CounterVec
	submitLatency    prometheus.Histogram
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orbit",
			Subsystem: "intake",
			Name:      "transitions_total",
			Help:      "Wizard navigation events by outcome",
		}, []string{"event", "result"}),
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orbit",
			Subsystem: "intake",
			Name:      "submissions_total",
			Help:      "Waitlist submissions by outcome",
		}, []string{"outcome"}),
		submitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "orbit",
			Subsystem: "intake",
			Name:      "submit_latency_seconds",
			Help:      "Latency of the waitlist store insert",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitionsTotal, m.submissionsTotal, m.submitLatency)
	return m
}

// ObserveTransition records a navigation event; moved is false when a gate held the wizard in place.
func (m *IntakeMetrics) ObserveTransition(event string, moved bool) {
	if m == nil {
		return
	}
	result := "moved"
	if !moved {
		result = "held"
	}
	m.transitionsTotal.WithLabelValues(event, result).Inc()
}

func (m *IntakeMetrics) ObserveSubmission(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
	if seconds >= 0 {
		m.submitLatency.Observe(seconds)
	}
}

// UploadMetrics exposes counters for avatar uploads.
type UploadMetrics struct {
	uploadsTotal *prometheus.CounterVec
	uploadBytes  prometheus.Histogram
}

func NewUploadMetrics(reg prometheus.Registerer) *UploadMetrics {
	m := &UploadMetrics{
		uploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orbit",
			Subsystem: "uploads",
			Name:      "total",
			Help:      "Avatar uploads by status",
		}, []string{"status"}),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "orbit",
			Subsystem: "uploads",
			Name:      "bytes",
			Help:      "Size of accepted avatar uploads",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.uploadsTotal, m.uploadBytes)
	return m
}

func (m *UploadMetrics) ObserveUpload(status string, size int64) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(status).Inc()
	if status == "ok" {
		m.uploadBytes.Observe(float64(size))
	}
}
