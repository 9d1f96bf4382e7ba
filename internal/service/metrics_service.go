package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-student-portal/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the portal.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	backendErrors   *prometheus.CounterVec
	gateOutcomes    *prometheus.CounterVec
	loginRedirects  prometheus.Counter

	requestCount uint64
	backendCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Duration of credentialed calls to the student backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	backendErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_request_failures_total",
		Help: "Backend calls that failed at the transport level or returned a non-2xx status",
	}, []string{"method", "path"})

	gateOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_gate_checks_total",
		Help: "Session checks by outcome",
	}, []string{"state"})

	loginRedirects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "login_redirects_total",
		Help: "Browsers sent to the identity provider",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, backendDuration, backendErrors, gateOutcomes, loginRedirects, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		backendDuration: backendDuration,
		backendErrors:   backendErrors,
		gateOutcomes:    gateOutcomes,
		loginRedirects:  loginRedirects,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records inbound request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// ObserveBackendCall records one outbound backend call. Status 0 means the
// backend could not be reached.
func (m *MetricsService) ObserveBackendCall(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := "unreachable"
	if status > 0 {
		labelStatus = fmt.Sprintf("%d", status)
	}
	m.backendDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	if status < 200 || status > 299 {
		m.backendErrors.WithLabelValues(method, path).Inc()
	}
	atomic.AddUint64(&m.backendCount, 1)
}

// RecordGateOutcome counts a resolved session check.
func (m *MetricsService) RecordGateOutcome(state models.GateState) {
	if m == nil {
		return
	}
	m.gateOutcomes.WithLabelValues(string(state)).Inc()
}

// RecordLoginRedirect counts a browser sent to the provider.
func (m *MetricsService) RecordLoginRedirect() {
	if m == nil {
		return
	}
	m.loginRedirects.Inc()
}

// Counts returns the inbound and outbound totals observed so far.
func (m *MetricsService) Counts() (requests, backendCalls uint64) {
	if m == nil {
		return 0, 0
	}
	return atomic.LoadUint64(&m.requestCount), atomic.LoadUint64(&m.backendCount)
}
