package transport

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "reelranker_client"

// Metrics holds the transport's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestsFailed  *prometheus.CounterVec
	SessionsCleared prometheus.Counter
}

// NewMetrics registers the transport collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of successful calls to the remote service",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method"}),
		RequestsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_failed_total",
			Help:      "Failed calls by classification and status",
		}, []string{"kind", "status"}),
		SessionsCleared: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sessions_cleared_total",
			Help:      "Sessions torn down after a 401",
		}),
	}
}

func (m *Metrics) observeSuccess(method string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) observeFailure(kind Kind, status int) {
	if m == nil {
		return
	}
	label := ""
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.RequestsFailed.WithLabelValues(kind.String(), label).Inc()
}

func (m *Metrics) observeSessionCleared() {
	if m == nil {
		return
	}
	m.SessionsCleared.Inc()
}
