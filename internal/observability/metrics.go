// Package observability collects the prometheus metrics for the service.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all metric collectors behind one registry so tests can build
// isolated instances instead of sharing process-global state.
type Metrics struct {
	registry *prometheus.Registry

	PredictionsTotal   *prometheus.CounterVec
	PredictionErrors   *prometheus.CounterVec
	ClassifierDuration prometheus.Histogram
	UploadBytes        prometheus.Histogram
	CapturesDeleted    prometheus.Counter
}

// NewMetrics creates and registers all collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		PredictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phibia_predictions_total",
			Help: "Prediction requests by final status.",
		}, []string{"status"}),
		PredictionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phibia_prediction_errors_total",
			Help: "Prediction pipeline failures by stage.",
		}, []string{"stage"}),
		ClassifierDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "phibia_classifier_request_duration_seconds",
			Help:    "Wall time of external classifier calls.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		UploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "phibia_upload_bytes",
			Help:    "Size of accepted audio uploads.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		CapturesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "phibia_captures_deleted_total",
			Help: "Captures removed on user request.",
		}),
	}

	collectors := []prometheus.Collector{
		m.PredictionsTotal,
		m.PredictionErrors,
		m.ClassifierDuration,
		m.UploadBytes,
		m.CapturesDeleted,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
