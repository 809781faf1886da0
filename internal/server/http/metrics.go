package httpserver

import "github.com/prometheus/client_golang/prometheus"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	messagesSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voice_messages_sent_total",
			Help: "Total number of stored voice messages.",
		},
		[]string{"type"},
	)

	messageAudioBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "voice_message_audio_bytes",
			Help:    "Audio blob sizes for stored voice messages.",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 14),
		},
	)

	wsConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections_active",
			Help: "Currently open realtime WebSocket connections.",
		},
	)
)

// MustRegisterMetrics registers the server's collectors on the default
// registry. Call once at startup.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		messagesSentTotal,
		messageAudioBytes,
		wsConnectionsActive,
	)
}
