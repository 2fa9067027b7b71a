// Package server registers Prometheus collectors for relay activity and
// exposes the metrics handler.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricConnectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signaling_connections_total",
		Help: "Total number of accepted client connections.",
	})
	metricConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_connections_active",
		Help: "Number of currently connected clients.",
	})
	metricRoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_rooms_active",
		Help: "Number of rooms with at least one member.",
	})
	metricMessagesRouted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signaling_messages_routed_total",
		Help: "Inbound messages processed by the router, by message type.",
	}, []string{"type"})
	metricBroadcastDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signaling_broadcast_deliveries_total",
		Help: "Payloads handed to room members during broadcasts.",
	})
	metricParseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signaling_parse_failures_total",
		Help: "Inbound frames dropped because they failed to parse.",
	})
)

// MetricsHandler exposes Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
