package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type importMetrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	records  *prometheus.CounterVec
	dropped  *prometheus.CounterVec
}

var importMetricsSingleton = sync.OnceValue(func() *importMetrics {
	return &importMetrics{
		runs: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "equipment",
			Name:      "import_runs_total",
			Help:      "Import runs by operation and result.",
		}, []string{"operation", "result"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "equipment",
			Name:      "import_duration_seconds",
			Help:      "Wall time of import runs.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"operation"}),
		records: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "equipment",
			Name:      "import_records_total",
			Help:      "Records written by imports, by kind (inserted, updated, unchanged, replaced).",
		}, []string{"operation", "kind"}),
		dropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "equipment",
			Name:      "import_dropped_rows_total",
			Help:      "Rows dropped for a blank serial.",
		}, []string{"file"}),
	}
})

func getImportMetrics() *importMetrics {
	return importMetricsSingleton()
}
