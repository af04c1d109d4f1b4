package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	searchesTotal     *prometheus.CounterVec
	searchModeTotal   *prometheus.CounterVec
	searchHitTotal    *prometheus.CounterVec
	searchMissTotal   *prometheus.CounterVec
	searchResultCount *prometheus.HistogramVec
	searchDuration    *prometheus.HistogramVec
	chatTurnsTotal    *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chemtutor",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chemtutor",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "chemtutor",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	searchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chemtutor",
			Subsystem: "search",
			Name:      "searches_total",
			Help:      "Total completed searches.",
		},
		[]string{"service", "endpoint"},
	)
	searchModeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chemtutor",
			Subsystem: "search",
			Name:      "mode_searches_total",
			Help:      "Total completed searches by retrieval mode.",
		},
		[]string{"service", "endpoint", "mode"},
	)
	searchHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chemtutor",
			Subsystem: "search",
			Name:      "hit_total",
			Help:      "Total searches with at least one result above the threshold.",
		},
		[]string{"service", "endpoint"},
	)
	searchMissTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chemtutor",
			Subsystem: "search",
			Name:      "no_match_total",
			Help:      "Total searches without results above the threshold.",
		},
		[]string{"service", "endpoint"},
	)
	searchResultCount := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chemtutor",
			Subsystem: "search",
			Name:      "result_count",
			Help:      "Distribution of returned results per search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		},
		[]string{"service", "endpoint"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chemtutor",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	chatTurnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chemtutor",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total completed chat turns by status.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		searchesTotal,
		searchModeTotal,
		searchHitTotal,
		searchMissTotal,
		searchResultCount,
		searchDuration,
		chatTurnsTotal,
	)

	return &HTTPServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		searchesTotal:     searchesTotal,
		searchModeTotal:   searchModeTotal,
		searchHitTotal:    searchHitTotal,
		searchMissTotal:   searchMissTotal,
		searchResultCount: searchResultCount,
		searchDuration:    searchDuration,
		chatTurnsTotal:    chatTurnsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/media/"):
		return "/media/{key}"
	case strings.HasPrefix(path, "/v1/chat/"):
		return "/v1/chat/{thread_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordSearch(service, endpoint, mode string, resultCount int, duration time.Duration) {
	if mode == "" {
		mode = "unknown"
	}
	m.searchesTotal.WithLabelValues(service, endpoint).Inc()
	m.searchModeTotal.WithLabelValues(service, endpoint, mode).Inc()
	m.searchResultCount.WithLabelValues(service, endpoint).Observe(float64(resultCount))
	m.searchDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())

	if resultCount > 0 {
		m.searchHitTotal.WithLabelValues(service, endpoint).Inc()
		return
	}
	m.searchMissTotal.WithLabelValues(service, endpoint).Inc()
}

func (m *HTTPServerMetrics) RecordChatTurn(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.chatTurnsTotal.WithLabelValues(service, status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
