// Package metrics holds the Prometheus collectors shared by the HTTP layer and services.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "minisocial"

// Toggle kinds.
const (
	KindFollow = "follow"
	KindLike   = "like"
)

// Feed cache results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	// HTTPRequestsTotal counts requests by route pattern, not raw path.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// ToggleTotal counts committed toggles.
	// Labels: kind (follow, like), state (on, off)
	ToggleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "graph",
		Name:      "toggles_total",
		Help:      "Committed follow/like toggles by resulting state",
	}, []string{"kind", "state"})

	// ToggleRetriesTotal counts toggle attempts that lost a race and were retried.
	ToggleRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "graph",
		Name:      "toggle_retries_total",
		Help:      "Toggle transactions retried after a concurrent change",
	}, []string{"kind"})

	// FeedCacheTotal counts first-page feed reads by cache outcome.
	// Labels: result (hit, miss, error)
	FeedCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "feed",
		Name:      "cache_requests_total",
		Help:      "Feed first-page reads by cache result",
	}, []string{"result"})
)

// ToggleState is the label value for a toggle's resulting state.
func ToggleState(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// Middleware records request count and latency. It must run inside a chi
// router so the matched route pattern is available after the handler returns.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
