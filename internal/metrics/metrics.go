// Package metrics provides the Prometheus instrumentation of the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starquake/trivia/internal/httputil"
)

const namespace = "trivia"

// Metrics holds the collectors of the API.
type Metrics struct {
	gatherer   prometheus.Gatherer
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	quizServed *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests by route pattern and status.",
		}, []string{"route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		quizServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_questions_served_total",
			Help:      "Number of quiz questions served by category scope.",
		}, []string{"scope"}),
	}
	reg.MustRegister(m.requests, m.duration, m.quizServed)

	return m
}

// Handler returns the exposition endpoint for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records the request count and duration, labelled by the matched route pattern.
// It must wrap the ServeMux directly so the pattern set by the mux is visible on r.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := httputil.NewStatusRecorder(w)

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(rec.Status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// QuizServed counts a served quiz question. A zero categoryID counts as "any".
func (m *Metrics) QuizServed(categoryID int64) {
	scope := "category"
	if categoryID == 0 {
		scope = "any"
	}
	m.quizServed.WithLabelValues(scope).Inc()
}
