package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Auth metrics
	AuthRejectionsTotal *prometheus.CounterVec
	LoginsTotal         *prometheus.CounterVec

	// Business metrics
	BookingsTotal *prometheus.CounterVec

	otel *OTelMetrics
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventbook_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventbook_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		AuthRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventbook_auth_rejections_total",
				Help: "Requests rejected by an auth gate",
			},
			[]string{"gate", "reason"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventbook_logins_total",
				Help: "Login and registration attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),

		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventbook_bookings_total",
				Help: "Booking operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthRejectionsTotal,
		m.LoginsTotal,
		m.BookingsTotal,
	)

	return m
}

// RecordAuthRejection counts a gate rejection. Safe on a nil receiver.
func (m *Metrics) RecordAuthRejection(gate, reason string) {
	if m == nil {
		return
	}
	m.AuthRejectionsTotal.WithLabelValues(gate, reason).Inc()
	if m.otel != nil {
		m.otel.recordAuthRejection(gate, reason)
	}
}

// RecordLogin counts a login or registration attempt. Safe on a nil receiver.
func (m *Metrics) RecordLogin(provider, outcome string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(provider, outcome).Inc()
	if m.otel != nil {
		m.otel.recordLogin(provider, outcome)
	}
}

// RecordBooking counts a booking operation. Safe on a nil receiver.
func (m *Metrics) RecordBooking(operation, outcome string) {
	if m == nil {
		return
	}
	m.BookingsTotal.WithLabelValues(operation, outcome).Inc()
	if m.otel != nil {
		m.otel.recordBooking(operation, outcome)
	}
}

// AttachOTel forwards the auth and booking recorders to o as well
func (m *Metrics) AttachOTel(o *OTelMetrics) {
	m.otel = o
}

// ObserveDB exports connection pool statistics for db
func (m *Metrics) ObserveDB(db *sql.DB) {
	m.registry.MustRegister(collectors.NewDBStatsCollector(db, "eventbook"))
}

// ObserveCache exports hit and miss counters read from stats on each scrape
func (m *Metrics) ObserveCache(stats func() (hits, misses uint64)) {
	m.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "eventbook_event_cache_hits_total",
			Help: "Event cache hits",
		}, func() float64 {
			hits, _ := stats()
			return float64(hits)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "eventbook_event_cache_misses_total",
			Help: "Event cache misses",
		}, func() float64 {
			_, misses := stats()
			return float64(misses)
		}),
	)
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// routeLabel uses the matched route template to keep label cardinality bounded
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

// HTTPMetricsMiddleware instruments HTTP requests. Install with router.Use
// so the matched route is known.
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			route := routeLabel(r)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, metrics *Metrics) {
	mux.Handle("/metrics", metrics.Handler())
}
