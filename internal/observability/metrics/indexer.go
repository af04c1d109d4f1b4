package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type IndexerMetrics struct {
	registry *prometheus.Registry

	reindexTotal    *prometheus.CounterVec
	reindexDuration *prometheus.HistogramVec
	documentsGauge  prometheus.Gauge
}

func NewIndexerMetrics(service string) *IndexerMetrics {
	registry := prometheus.NewRegistry()

	reindexTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chemtutor",
			Subsystem: "indexer",
			Name:      "reindex_total",
			Help:      "Total completed reindex runs by status.",
		},
		[]string{"service", "status"},
	)
	reindexDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chemtutor",
			Subsystem: "indexer",
			Name:      "reindex_duration_seconds",
			Help:      "Reindex run duration in seconds by status.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	documentsGauge := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "chemtutor",
			Subsystem: "indexer",
			Name:      "corpus_documents",
			Help:      "Number of documents in the loaded corpus.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(reindexTotal, reindexDuration, documentsGauge)

	return &IndexerMetrics{
		registry:        registry,
		reindexTotal:    reindexTotal,
		reindexDuration: reindexDuration,
		documentsGauge:  documentsGauge,
	}
}

func (m *IndexerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *IndexerMetrics) SetCorpusSize(count int) {
	m.documentsGauge.Set(float64(count))
}

func (m *IndexerMetrics) FinishReindex(service string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.reindexTotal.WithLabelValues(service, status).Inc()
	m.reindexDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}
