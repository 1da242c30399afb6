package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tictactoe"

type Metrics struct {
	registry *prometheus.Registry

	ActiveRooms       prometheus.Gauge
	OnlineConnections prometheus.Gauge
	EventsReceived    *prometheus.CounterVec
	GamesFinished     *prometheus.CounterVec
	EventLatency      prometheus.Histogram
}

// NewMetrics registers the game server collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of active rooms",
		}),
		OnlineConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_connections",
			Help:      "Number of open websocket connections",
		}),
		EventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_received_total",
			Help:      "Total number of inbound events by action",
		}, []string{"action"}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Total number of finished games by outcome",
		}, []string{"outcome"}),
		EventLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_latency_seconds",
			Help:      "Inbound event processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}

	m.registry.MustRegister(
		m.ActiveRooms,
		m.OnlineConnections,
		m.EventsReceived,
		m.GamesFinished,
		m.EventLatency,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (that *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(that.registry, promhttp.HandlerOpts{})
}

func (that *Metrics) SetActiveRooms(count int) {
	that.ActiveRooms.Set(float64(count))
}

func (that *Metrics) IncGamesFinished(outcome string) {
	that.GamesFinished.WithLabelValues(outcome).Inc()
}

func (that *Metrics) IncConnections() {
	that.OnlineConnections.Inc()
}

func (that *Metrics) DecConnections() {
	that.OnlineConnections.Dec()
}

func (that *Metrics) IncEventsReceived(action string) {
	that.EventsReceived.WithLabelValues(action).Inc()
}

func (that *Metrics) ObserveEventLatency(seconds float64) {
	that.EventLatency.Observe(seconds)
}
