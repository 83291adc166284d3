// Package metrics exposes the Prometheus counters for chat routing, backend
// reads and stream relays.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "solana_terminal"

// Metrics owns a private registry so that tests and multiple servers in one
// process do not collide on registration. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	chatRequests   *prometheus.CounterVec
	backendFetches *prometheus.CounterVec
	streamRelays   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		chatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests by routed intent.",
		}, []string{"intent"}),
		backendFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_fetch_total",
			Help:      "Backend data reads by resource and outcome.",
		}, []string{"resource", "outcome"}),
		streamRelays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_relays_total",
			Help:      "Completed stream relays by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		m.chatRequests,
		m.backendFetches,
		m.streamRelays,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveChat(intent string) {
	if m == nil {
		return
	}
	m.chatRequests.WithLabelValues(intent).Inc()
}

func (m *Metrics) ObserveFetch(resource, outcome string) {
	if m == nil {
		return
	}
	m.backendFetches.WithLabelValues(resource, outcome).Inc()
}

func (m *Metrics) ObserveRelay(outcome string) {
	if m == nil {
		return
	}
	m.streamRelays.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// FetchCount returns the current value of one backend fetch counter.
func (m *Metrics) FetchCount(resource, outcome string) float64 {
	if m == nil {
		return 0
	}
	return counterValue(m.backendFetches.WithLabelValues(resource, outcome))
}

// ChatCount returns the current value of one chat request counter.
func (m *Metrics) ChatCount(intent string) float64 {
	if m == nil {
		return 0
	}
	return counterValue(m.chatRequests.WithLabelValues(intent))
}

// RelayCount returns the current value of one relay counter.
func (m *Metrics) RelayCount(outcome string) float64 {
	if m == nil {
		return 0
	}
	return counterValue(m.streamRelays.WithLabelValues(outcome))
}
