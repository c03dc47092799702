// Package metrics holds the Prometheus collectors for the gate and its HTTP surface.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ninadrathod/my-website/internal/telemetry"
)

const namespace = "portfolio_gate"

// Metrics owns a registry and every collector registered on it.
type Metrics struct {
	registry *prometheus.Registry

	OTPIssued           prometheus.Counter
	OTPVerifications    *prometheus.CounterVec
	SessionsAuthorized  prometheus.Counter
	SessionsInvalidated *prometheus.CounterVec
	PrivilegedActions   *prometheus.CounterVec
	NotifyFailures      prometheus.Counter
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry, plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		OTPIssued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_issued_total",
			Help:      "The total number of one-time codes issued",
		}),
		OTPVerifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_verifications_total",
			Help:      "The total number of code verifications by result",
		}, []string{"result"}),
		SessionsAuthorized: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_authorized_total",
			Help:      "The total number of sessions promoted to authorized",
		}),
		SessionsInvalidated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_invalidated_total",
			Help:      "The total number of session invalidations by cause",
		}, []string{"cause"}),
		PrivilegedActions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "privileged_actions_total",
			Help:      "The total number of privileged action prechecks by action and result",
		}, []string{"action", "result"}),
		NotifyFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_failures_total",
			Help:      "The total number of failed code dispatches",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "The total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "The HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP records one finished request. route is the matched pattern, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Emit implements telemetry.EventEmitter by counting the event.
func (m *Metrics) Emit(_ context.Context, event *telemetry.Event) error {
	if m == nil || event == nil {
		return nil
	}
	switch event.Type {
	case telemetry.EventOTPIssued:
		m.OTPIssued.Inc()
	case telemetry.EventOTPDispatchFailed:
		m.NotifyFailures.Inc()
	case telemetry.EventOTPVerified, telemetry.EventOTPRejected:
		m.OTPVerifications.WithLabelValues(event.Outcome).Inc()
	case telemetry.EventSessionAuthorized:
		m.SessionsAuthorized.Inc()
	case telemetry.EventSessionInvalidated:
		m.SessionsInvalidated.WithLabelValues(event.Outcome).Inc()
	case telemetry.EventPrivilegedAllowed:
		m.PrivilegedActions.WithLabelValues(event.Action, "allowed").Inc()
	case telemetry.EventPrivilegedDenied:
		m.PrivilegedActions.WithLabelValues(event.Action, "denied").Inc()
	}
	return nil
}
