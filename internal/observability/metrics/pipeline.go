package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics observes document extraction runs regardless of whether
// they arrive through the API or the queue worker.
type PipelineMetrics struct {
	registry *prometheus.Registry

	extractionsTotal   *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	extractionInFlight prometheus.Gauge
	fallbacksTotal     *prometheus.CounterVec
	columnsExtracted   *prometheus.HistogramVec
	queueLag           *prometheus.HistogramVec
}

// NewWorkerMetrics builds pipeline metrics on a fresh registry for the
// queue worker, which serves its own metrics endpoint.
func NewWorkerMetrics() *PipelineMetrics {
	return newPipelineMetrics(prometheus.NewRegistry())
}

func newPipelineMetrics(registry *prometheus.Registry) *PipelineMetrics {
	extractionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docgrid",
			Subsystem: "pipeline",
			Name:      "extractions_total",
			Help:      "Total document extraction runs by status and primary strategy.",
		},
		[]string{"service", "status", "strategy"},
	)
	extractionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docgrid",
			Subsystem: "pipeline",
			Name:      "extraction_duration_seconds",
			Help:      "Document extraction duration in seconds by status.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160},
		},
		[]string{"service", "status"},
	)
	extractionInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docgrid",
			Subsystem: "pipeline",
			Name:      "extractions_in_flight",
			Help:      "Number of documents currently being extracted.",
		},
	)
	fallbacksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docgrid",
			Subsystem: "pipeline",
			Name:      "strategy_fallbacks_total",
			Help:      "Total runs where a secondary strategy was consulted.",
		},
		[]string{"service", "from", "to"},
	)
	columnsExtracted := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docgrid",
			Subsystem: "pipeline",
			Name:      "confident_columns",
			Help:      "Distribution of confident column values per run.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docgrid",
			Subsystem: "pipeline",
			Name:      "queue_lag_seconds",
			Help:      "Delay between job publication and worker pickup.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		extractionsTotal,
		extractionDuration,
		extractionInFlight,
		fallbacksTotal,
		columnsExtracted,
		queueLag,
	)

	return &PipelineMetrics{
		registry:           registry,
		extractionsTotal:   extractionsTotal,
		extractionDuration: extractionDuration,
		extractionInFlight: extractionInFlight,
		fallbacksTotal:     fallbacksTotal,
		columnsExtracted:   columnsExtracted,
		queueLag:           queueLag,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartExtraction() {
	m.extractionInFlight.Inc()
}

func (m *PipelineMetrics) FinishExtraction(service, strategy string, duration time.Duration, successCount int, err error) {
	m.extractionInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	if strategy == "" {
		strategy = "none"
	}

	m.extractionsTotal.WithLabelValues(service, status, strategy).Inc()
	m.extractionDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	m.columnsExtracted.WithLabelValues(service).Observe(float64(successCount))
}

func (m *PipelineMetrics) RecordFallback(service, from, to string) {
	m.fallbacksTotal.WithLabelValues(service, from, to).Inc()
}

func (m *PipelineMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
