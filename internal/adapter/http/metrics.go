package adapthttp

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	gateRejections *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accounts_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		gateRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accounts_auth_gate_rejections_total",
			Help: "Requests rejected by the auth gate, by reason.",
		}, []string{"reason"}),
	}
	m.registry.MustRegister(m.requests, m.gateRejections)
	return m
}

func (m *metrics) observe(method string, status int) {
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
