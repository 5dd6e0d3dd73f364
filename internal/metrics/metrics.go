// Package metrics provides Prometheus instrumentation for the IncogniChat
// server. It exposes a gauge for live connections, counters for message
// outcomes, and a histogram for moderation latency.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Connections tracks the current number of live WebSocket connections.
	Connections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "incognichat_connections",
		Help: "Current number of live WebSocket connections",
	})

	// MessagesTotal counts processed messages by outcome:
	// "sent", "filtered", "typing_blocked", or "rejected".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "incognichat_messages_total",
		Help: "Total number of messages processed by outcome",
	}, []string{"outcome"})

	// ModerationLatency records end-to-end classification latency in seconds,
	// including remote classifier calls and fallback runs.
	ModerationLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "incognichat_moderation_latency_seconds",
		Help:    "Message classification latency in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	})

	// AdminActions counts admin enforcement actions by kind:
	// "block", "unblock", "delete", "reset_warnings", "resend_verification".
	AdminActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "incognichat_admin_actions_total",
		Help: "Total number of admin enforcement actions",
	}, []string{"action"})
)

func init() {
	prometheus.MustRegister(
		Connections,
		MessagesTotal,
		ModerationLatency,
		AdminActions,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
