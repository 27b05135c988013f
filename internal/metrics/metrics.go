package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sg_requests_total",
			Help: "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "code"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sg_request_duration_seconds",
			Help:    "HTTP request duration in seconds by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	EdgesAdded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sg_edges_added_total",
			Help: "Distinct friendship edges added.",
		},
	)
	GraphVertices = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sg_graph_vertices",
			Help: "Users touched by at least one friendship.",
		},
	)
	GraphEdges = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sg_graph_edges",
			Help: "Undirected friendship edges.",
		},
	)
	SuggestRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sg_suggest_requests_total",
			Help: "Suggestion requests by outcome.",
		},
		[]string{"result"}, // ok | empty
	)
	SuggestCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sg_suggest_candidates",
			Help:    "Two-hop candidates considered per suggestion request.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
	PYMKCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sg_pymk_cache_events_total",
			Help: "PYMK cache events.",
		},
		[]string{"event"}, // hit | miss | evict
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal, RequestDuration,
		EdgesAdded, GraphVertices, GraphEdges,
		SuggestRequests, SuggestCandidates, PYMKCache,
	)
}

// ObserveGraph publishes the current graph size.
func ObserveGraph(vertices, edges int) {
	GraphVertices.Set(float64(vertices))
	GraphEdges.Set(float64(edges))
}

func Handler() http.Handler { return promhttp.Handler() }

// routes are the API paths reported as-is; everything else under /users/
// folds into one series and unknown paths into "other".
var routes = map[string]bool{
	"/healthz": true, "/metrics": true, "/friends": true, "/degree": true,
	"/path": true, "/stats": true, "/users": true, "/suggest": true,
}

// Route maps a request path to a bounded label value.
func Route(path string) string {
	switch {
	case routes[path]:
		return path
	case strings.HasPrefix(path, "/users/"):
		return "/users/{id}"
	default:
		return "other"
	}
}

type codeRecorder struct {
	http.ResponseWriter
	code int
}

func (c *codeRecorder) WriteHeader(code int) {
	c.code = code
	c.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware counts requests and observes their latency per route.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := Route(r.URL.Path)
		rec := &codeRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.code)).Inc()
		RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
