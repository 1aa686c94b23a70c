// Package metrics provides Prometheus metrics for muti-ping.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "muti_ping"
)

// Receive outcome labels.
const (
	OutcomeReply     = "reply"
	OutcomeOther     = "other"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
	OutcomeSkipped   = "skipped"
)

// Metrics contains the session's Prometheus metrics.
type Metrics struct {
	EchoRequestsSent prometheus.Counter
	SendErrors       prometheus.Counter
	Received         *prometheus.CounterVec
	MessageTypes     *prometheus.CounterVec
	RTT              prometheus.Histogram
	LastRTT          prometheus.Gauge
	Sequence         prometheus.Gauge
}

// NewMetricsWithRegistry creates a Metrics instance registered with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EchoRequestsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "echo_requests_sent_total",
			Help:      "Total number of echo requests written to the socket",
		}),
		SendErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_errors_total",
			Help:      "Total number of failed socket writes",
		}),
		Received: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "received_total",
			Help:      "Inbound datagrams by outcome",
		}, []string{"outcome"}),
		MessageTypes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Decoded ICMP messages by type",
		}, []string{"type"}),
		RTT: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rtt_seconds",
			Help:      "Round-trip time of echo replies",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		LastRTT: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_rtt_seconds",
			Help:      "Round-trip time of the most recent echo reply",
		}),
		Sequence: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sequence",
			Help:      "Sequence number of the most recent echo request",
		}),
	}
}

// RecordSent records an echo request written with the given sequence number.
func (m *Metrics) RecordSent(seq uint16) {
	m.EchoRequestsSent.Inc()
	m.Sequence.Set(float64(seq))
}

// RecordSendError records a failed socket write.
func (m *Metrics) RecordSendError() {
	m.SendErrors.Inc()
}

// RecordReply records an echo reply and its round-trip time.
func (m *Metrics) RecordReply(rtt time.Duration) {
	m.Received.WithLabelValues(OutcomeReply).Inc()
	m.RTT.Observe(rtt.Seconds())
	m.LastRTT.Set(rtt.Seconds())
}

// RecordMessage records a decoded message by its type name.
func (m *Metrics) RecordMessage(typeName string) {
	m.MessageTypes.WithLabelValues(typeName).Inc()
}

// RecordOutcome records a receive outcome other than a reply.
func (m *Metrics) RecordOutcome(outcome string) {
	m.Received.WithLabelValues(outcome).Inc()
}
