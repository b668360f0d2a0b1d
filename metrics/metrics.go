// Package metrics exposes Prometheus instruments for the judging service.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "judging"

// Recorder is a set of instruments bound to one registry. A nil *Recorder
// records nothing, so callers never need to check.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	checkIns            *prometheus.CounterVec
	scoreSubmissions    *prometheus.CounterVec
	standingsRuns       *prometheus.CounterVec
	standingsDuration   prometheus.Histogram
	liveSubscribers     prometheus.Gauge
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	auto := promauto.With(reg)

	return &Recorder{
		registry: reg,
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		checkIns: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkin_requests_total",
			Help:      "Check-in desk status requests by target status and outcome.",
		}, []string{"target", "outcome"}),
		scoreSubmissions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_submissions_total",
			Help:      "Judge score submissions by outcome.",
		}, []string{"outcome"}),
		standingsRuns: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "standings_recompute_total",
			Help:      "Standings recomputations by outcome.",
		}, []string{"outcome"}),
		standingsDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "standings_recompute_duration_seconds",
			Help:      "Time spent rebuilding team score aggregates.",
			Buckets:   prometheus.DefBuckets,
		}),
		liveSubscribers: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_subscribers",
			Help:      "Currently connected live feed subscribers.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Recorder) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Recorder) RecordCheckIn(target, outcome string) {
	if m == nil {
		return
	}
	m.checkIns.WithLabelValues(target, outcome).Inc()
}

func (m *Recorder) RecordScoreSubmission(outcome string) {
	if m == nil {
		return
	}
	m.scoreSubmissions.WithLabelValues(outcome).Inc()
}

func (m *Recorder) ObserveStandings(d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.standingsRuns.WithLabelValues(outcome).Inc()
	m.standingsDuration.Observe(d.Seconds())
}

func (m *Recorder) SetLiveSubscribers(n int) {
	if m == nil {
		return
	}
	m.liveSubscribers.Set(float64(n))
}

// Middleware records request counts and latency labelled by the chi route
// pattern, so path parameters do not explode label cardinality.
func (m *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(wrapped.statusCode)).Inc()
		m.httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Hijack is needed by the websocket upgrade behind this middleware.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	return h.Hijack()
}
