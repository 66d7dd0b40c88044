package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NegotiationMetrics records outcomes of negotiation transitions and outbox
// publishing.
type NegotiationMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	published *prometheus.CounterVec
}

// NewNegotiationMetrics registers the negotiation metrics on the provided registerer.
func NewNegotiationMetrics(reg prometheus.Registerer) *NegotiationMetrics {
	if reg == nil {
		return &NegotiationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "negotiation_transition_duration_seconds",
		Help:    "Duration of negotiation transitions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"transition"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "negotiation_transition_success",
		Help: "Successful negotiation transitions.",
	}, []string{"transition"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "negotiation_transition_failure",
		Help: "Failed negotiation transitions.",
	}, []string{"transition"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published",
		Help: "Outbox events published, by sink outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, success, failure, published)
	return &NegotiationMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		published: published,
	}
}

// ObserveDuration records the duration for the named transition.
func (n *NegotiationMetrics) ObserveDuration(transition string, duration time.Duration) {
	if n == nil || n.duration == nil {
		return
	}
	n.duration.WithLabelValues(normalizeLabel(transition)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named transition.
func (n *NegotiationMetrics) IncSuccess(transition string) {
	if n == nil || n.success == nil {
		return
	}
	n.success.WithLabelValues(normalizeLabel(transition)).Inc()
}

// IncFailure increments the failure counter for the named transition.
func (n *NegotiationMetrics) IncFailure(transition string) {
	if n == nil || n.failure == nil {
		return
	}
	n.failure.WithLabelValues(normalizeLabel(transition)).Inc()
}

// IncPublished increments the outbox publish counter for the given outcome.
func (n *NegotiationMetrics) IncPublished(outcome string) {
	if n == nil || n.published == nil {
		return
	}
	n.published.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
