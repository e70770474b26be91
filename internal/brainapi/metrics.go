package brainapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds client-side request metrics.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates client metrics and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brainai_client_requests_total",
				Help: "Total number of Brain AI API requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "brainai_client_request_duration_seconds",
				Help:    "Duration of Brain AI API requests",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.Duration)
	}
	return m
}

type metricsDoer struct {
	inner   Doer
	metrics *Metrics
}

// WithMetrics wraps a Doer to count requests and observe their latency.
// Transport failures are counted with status "error".
func WithMetrics(d Doer, m *Metrics) Doer {
	return &metricsDoer{inner: d, metrics: m}
}

func (m *metricsDoer) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := m.inner.Do(req)
	endpoint := Endpoint(req)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	m.metrics.Requests.WithLabelValues(req.Method, endpoint, status).Inc()
	m.metrics.Duration.WithLabelValues(req.Method, endpoint).Observe(time.Since(start).Seconds())
	return resp, err
}
