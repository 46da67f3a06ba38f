package comet

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the channel's Prometheus collectors.
type Metrics struct {
	InFlight        prometheus.Gauge
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InboundMessages prometheus.Counter
	Dropped         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "maruska",
			Subsystem: "comet",
			Name:      "inflight_requests",
			Help:      "HTTP requests currently in flight (at most 2).",
		}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "maruska",
			Subsystem: "comet",
			Name:      "requests_total",
			Help:      "HTTP exchanges by kind (connect, send, poll) and result.",
		}, []string{"kind", "result"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "maruska",
			Subsystem: "comet",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP exchanges. Polls last as long as the server holds them.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"kind"}),
		InboundMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "maruska",
			Subsystem: "comet",
			Name:      "inbound_messages_total",
			Help:      "Messages received from the server.",
		}),
		Dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "maruska",
			Subsystem: "comet",
			Name:      "dropped_messages_total",
			Help:      "Outbound messages that were not sent, by reason.",
		}, []string{"reason"}),
	}
}
