package server

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"docqa/internal/domain"
)

// metrics holds the Prometheus instruments exposed on /metrics. A private
// registry keeps the endpoint limited to what this server records.
type metrics struct {
	registry       *prometheus.Registry
	documentsTotal prometheus.Counter
	questionsTotal prometheus.Counter
	errorsTotal    *prometheus.CounterVec
	ingestSeconds  prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		documentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docqa_documents_ingested_total",
			Help: "Documents accepted for ingestion, including reuses of an already indexed document.",
		}),
		questionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docqa_questions_answered_total",
			Help: "Questions answered from an indexed document.",
		}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docqa_errors_total",
			Help: "Failed API operations by error class.",
		}, []string{"class"}),
		ingestSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docqa_ingest_duration_seconds",
			Help:    "Wall time spent ingesting a document.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
	m.registry.MustRegister(m.documentsTotal, m.questionsTotal, m.errorsTotal, m.ingestSeconds)
	return m
}

func (m *metrics) recordError(err error) {
	m.errorsTotal.WithLabelValues(errorClass(err)).Inc()
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingAPIKey):
		return "configuration"
	case errors.Is(err, domain.ErrExtraction):
		return "extraction"
	case errors.Is(err, domain.ErrEmbedding):
		return "embedding"
	case errors.Is(err, domain.ErrSynthesis):
		return "synthesis"
	case errors.Is(err, domain.ErrNoDocument):
		return "no_document"
	case errors.Is(err, domain.ErrEmptyQuestion):
		return "empty_question"
	default:
		return "other"
	}
}
