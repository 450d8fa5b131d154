package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moma",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "moma",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	catalogRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moma",
			Subsystem: "catalog",
			Name:      "requests_total",
			Help:      "TMDB requests by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	catalogDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "moma",
			Subsystem: "catalog",
			Name:      "request_duration_seconds",
			Help:      "Duration of TMDB requests including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"endpoint"},
	)

	favoriteToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moma",
			Subsystem: "favorites",
			Name:      "toggles_total",
			Help:      "Favorite toggles by resulting state.",
		},
		[]string{"state"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		catalogRequests,
		catalogDuration,
		favoriteToggles,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Catalog records TMDB request outcomes. The zero value is ready to use.
type Catalog struct{}

// ObserveRequest counts one logical TMDB request, retries included.
func (Catalog) ObserveRequest(endpoint, outcome string, d time.Duration) {
	if endpoint == "" {
		endpoint = "unknown"
	}
	catalogRequests.WithLabelValues(endpoint, outcome).Inc()
	catalogDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordFavoriteToggle counts a toggle by the state it left behind.
func RecordFavoriteToggle(favorite bool) {
	state := "removed"
	if favorite {
		state = "added"
	}
	favoriteToggles.WithLabelValues(state).Inc()
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
// Routes are labelled by their mux path template to keep cardinality bounded.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		route := routeTemplate(r)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
