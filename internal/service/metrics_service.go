package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP surface
// and the review domain.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	reviewsCreated  *prometheus.CounterVec
	reviewPriority  prometheus.Histogram
	reviewDecisions *prometheus.CounterVec
	triggerOutcomes *prometheus.CounterVec
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

	reviewsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reviews_created_total",
		Help: "Total review records created, by trigger reason",
	}, []string{"reason"})

	reviewPriority := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "review_priority",
		Help:    "Priority distribution of created reviews",
		Buckets: prometheus.LinearBuckets(1, 1, 10),
	})

	reviewDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "review_decisions_total",
		Help: "Total review decisions, by outcome",
	}, []string{"status"})

	triggerOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trigger_evaluations_total",
		Help: "Trigger evaluator outcomes on analysis responses",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, reviewsCreated, reviewPriority, reviewDecisions, triggerOutcomes, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		reviewsCreated:  reviewsCreated,
		reviewPriority:  reviewPriority,
		reviewDecisions: reviewDecisions,
		triggerOutcomes: triggerOutcomes,
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ReviewCreated counts a created review and its priority.
func (m *MetricsService) ReviewCreated(reason string, priority int) {
	if m == nil {
		return
	}
	m.reviewsCreated.WithLabelValues(reason).Inc()
	m.reviewPriority.Observe(float64(priority))
}

// ReviewDecided counts a submitted decision.
func (m *MetricsService) ReviewDecided(status string) {
	if m == nil {
		return
	}
	m.reviewDecisions.WithLabelValues(status).Inc()
}

// TriggerEvaluated counts a trigger evaluator outcome.
func (m *MetricsService) TriggerEvaluated(required bool) {
	if m == nil {
		return
	}
	outcome := "not_required"
	if required {
		outcome = "required"
	}
	m.triggerOutcomes.WithLabelValues(outcome).Inc()
}
