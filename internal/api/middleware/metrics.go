package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "credit_system_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status_code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "credit_system_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status_code"})

	httpRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "credit_system_http_rejections_total",
		Help: "Client errors (4xx) per API resource.",
	}, []string{"resource", "status_code"})
)

// resourceOf reduces a route pattern to the API resource it serves.
func resourceOf(routePattern string) string {
	switch {
	case strings.HasPrefix(routePattern, "/api/customers"):
		return "customers"
	case strings.HasPrefix(routePattern, "/api/credits"):
		return "credits"
	case strings.HasPrefix(routePattern, "/auth"):
		return "auth"
	default:
		return "other"
	}
}

// MetricsMiddleware labels requests by chi route pattern, not raw path.
func MetricsMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				routePattern := "unmatched"
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					routePattern = rctx.RoutePattern()
				}
				status := strconv.Itoa(ww.Status())

				httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
				httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(time.Since(start).Seconds())
				if ww.Status() >= http.StatusBadRequest && ww.Status() < http.StatusInternalServerError {
					httpRejectionsTotal.WithLabelValues(resourceOf(routePattern), status).Inc()
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
