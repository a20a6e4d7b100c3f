package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "blab_bot"

// Metrics groups the Prometheus collectors updated by bridges. A nil
// Registerer yields working but unregistered collectors.
type Metrics struct {
	Connections         *prometheus.CounterVec
	Active              prometheus.Gauge
	FramesReceived      *prometheus.CounterVec
	MessagesSent        prometheus.Counter
	MessagesDropped     prometheus.Counter
	DeliveriesConfirmed prometheus.Counter
	HookPanics          *prometheus.CounterVec
}

// NewMetrics creates the bridge collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Connections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "connections_total",
			Help:      "Controller connection attempts by result.",
		}, []string{"result"}),
		Active: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_conversations",
			Help:      "Bridges currently connected to the controller.",
		}),
		FramesReceived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_received_total",
			Help:      "Inbound frames by kind (message, state, invalid).",
		}, []string{"kind"}),
		MessagesSent: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_sent_total",
			Help:      "Outgoing messages written to the controller.",
		}),
		MessagesDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_dropped_total",
			Help:      "Queued messages discarded because the connection closed.",
		}),
		DeliveriesConfirmed: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "deliveries_confirmed_total",
			Help:      "Outgoing messages echoed back by the controller.",
		}),
		HookPanics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "hook_panics_total",
			Help:      "Recovered panics in bot reaction hooks.",
		}, []string{"hook"}),
	}
}
