package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docvault"

// Metrics owns every collector of the service. It is registered against a
// caller-supplied registry so tests can use a fresh one.
type Metrics struct {
	reg prometheus.Gatherer

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	loginAttempts    *prometheus.CounterVec
	tokenValidations *prometheus.CounterVec
	revocations      prometheus.Counter
}

func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,

		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		httpRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),

		loginAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Total number of login attempts",
			},
			[]string{"status"}, // success, invalid_credentials
		),
		tokenValidations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_validations_total",
				Help:      "Total number of bearer token validations",
			},
			[]string{"status"}, // valid, expired, invalid, revoked, missing, error
		),
		revocations: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_revocations_total",
				Help:      "Total number of tokens revoked by logout",
			},
		),
	}
}

// ---- auth.Observer ----

func (m *Metrics) LoginAttempt(status string)    { m.loginAttempts.WithLabelValues(status).Inc() }
func (m *Metrics) TokenValidation(status string) { m.tokenValidations.WithLabelValues(status).Inc() }
func (m *Metrics) TokenRevoked()                 { m.revocations.Inc() }

// ---- HTTP ----

// ObserveRequest records one finished request. path should be the route
// pattern, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *Metrics) InFlightInc() { m.httpRequestsInFlight.Inc() }
func (m *Metrics) InFlightDec() { m.httpRequestsInFlight.Dec() }

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
