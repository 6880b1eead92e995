// Package metrics exposes prometheus collectors for the HTTP surface and
// the access gates.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "warden"

// Gate decision and login attempt results.
const (
	ResultAllowed     = "allowed"
	ResultForbidden   = "forbidden"
	ResultInactive    = "inactive"
	ResultUnauth      = "unauthenticated"
	ResultPasswordReq = "password_change_required"
	ResultInvalid     = "invalid_credentials"
	ResultRateLimited = "rate_limited"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDurations  *prometheus.HistogramVec
	gateDecisions  *prometheus.CounterVec
	loginAttempts  *prometheus.CounterVec
	policyReloads  prometheus.Counter
	activityFailed prometheus.Counter
}

// New registers every collector on a private registry, so tests can build
// as many instances as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests, labeled by method, route and status code",
		}, []string{"method", "route", "status"}),
		httpDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "access",
			Name:      "gate_decisions_total",
			Help:      "Access gate outcomes, labeled by gate and result",
		}, []string{"gate", "result"}),
		loginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts, labeled by result",
		}, []string{"result"}),
		policyReloads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "access",
			Name:      "policy_reloads_total",
			Help:      "Permission policy reloads from the database",
		}),
		activityFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "activity",
			Name:      "write_failures_total",
			Help:      "Activity log entries that could not be written",
		}),
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDurations.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) GateDecision(gate, result string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(gate, result).Inc()
}

func (m *Metrics) LoginAttempt(result string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) PolicyReloaded() {
	if m == nil {
		return
	}
	m.policyReloads.Inc()
}

func (m *Metrics) ActivityWriteFailed() {
	if m == nil {
		return
	}
	m.activityFailed.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
