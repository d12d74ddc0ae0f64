// Package metrics holds the Prometheus collectors for the upload and catalog workflows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Uploads        *prometheus.CounterVec
	StepOutcomes   *prometheus.CounterVec
	UploadDuration prometheus.Histogram
	CatalogSize    prometheus.Gauge
}

// New registers the collectors on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "video_library",
			Name:      "uploads_total",
			Help:      "Upload attempts by result.",
		}, []string{"result"}),
		StepOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "video_library",
			Name:      "upload_steps_total",
			Help:      "Best-effort upload steps by step and status.",
		}, []string{"step", "status"}),
		UploadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "video_library",
			Name:      "upload_duration_seconds",
			Help:      "Time spent in the upload workflow.",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		CatalogSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "video_library",
			Name:      "catalog_videos",
			Help:      "Number of complete videos seen by the last catalog listing.",
		}),
	}
}
