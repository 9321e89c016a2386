package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "markconv_build_info",
			Help:        "Build information",
			ConstLabels: prometheus.Labels{"component": "server"},
		},
		[]string{"date", "sha", "version"},
	)

	importsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markconv_imports_total",
			Help: "Number of document imports by source format",
		},
		[]string{"format", "outcome"},
	)

	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markconv_exports_total",
			Help: "Number of document exports by target format",
		},
		[]string{"format", "outcome"},
	)

	conversionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "markconv_conversion_duration_seconds",
			Help:    "Conversion duration by operation and format",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "format"},
	)

	visionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markconv_vision_requests_total",
			Help: "Number of vision backend calls",
		},
		[]string{"backend", "outcome"},
	)
)

// Register registers all metrics with the provided registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(buildInfo, importsTotal, exportsTotal, conversionDuration, visionRequestsTotal)
}

// SetBuildInfo sets the build info metric for the server.
func SetBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// RecordImport increments the import counter for a source format.
func RecordImport(format string, success bool) {
	importsTotal.WithLabelValues(format, outcome(success)).Inc()
}

// RecordExport increments the export counter for a target format.
func RecordExport(format string, success bool) {
	exportsTotal.WithLabelValues(format, outcome(success)).Inc()
}

// ObserveConversionDuration records how long an import or export took.
func ObserveConversionDuration(operation, format string, d time.Duration) {
	conversionDuration.WithLabelValues(operation, format).Observe(d.Seconds())
}

// RecordVisionRequest increments the vision backend call counter.
func RecordVisionRequest(backend string, success bool) {
	visionRequestsTotal.WithLabelValues(backend, outcome(success)).Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
