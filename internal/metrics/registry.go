// Package metrics exposes the Prometheus counters and gauges the session
// engine updates, wrapped in a private registry so multiple Engine instances
// in the same process (e.g. in tests) never collide on prometheus' global
// default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the four counters/gauges the session engine reports.
type Registry struct {
	registry *prometheus.Registry

	sessions      prometheus.Gauge
	failedAccepts prometheus.Counter
	receivedBytes prometheus.Counter
	sentBytes     prometheus.Counter
}

// NewRegistry builds a fresh, privately-scoped Registry and registers all
// four metrics against it.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		sessions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "net_server_sessions",
			Help: "current amount of sessions",
		}),
		failedAccepts: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "net_server_failed_accepts",
			Help: "total number of connections which the server could not accept due to an error",
		}),
		receivedBytes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "net_server_received_bytes",
			Help: "total bytes read across all sessions",
		}),
		sentBytes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "net_server_sent_bytes",
			Help: "total bytes written across all sessions",
		}),
	}

	return r
}

// Handler returns an http.Handler serving this registry's metrics in the
// Prometheus text exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// SetSessions sets the open-session gauge to n.
func (r *Registry) SetSessions(n int) {
	r.sessions.Set(float64(n))
}

// IncFailedAccepts increments the failed-accept counter.
func (r *Registry) IncFailedAccepts() {
	r.failedAccepts.Inc()
}

// AddReceivedBytes adds n to the received-bytes counter.
func (r *Registry) AddReceivedBytes(n int) {
	r.receivedBytes.Add(float64(n))
}

// AddSentBytes adds n to the sent-bytes counter.
func (r *Registry) AddSentBytes(n int) {
	r.sentBytes.Add(float64(n))
}
