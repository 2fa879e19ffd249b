package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPipelineMetrics() {
	r.TasksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "asgraph_tasks_total",
			Help: "Finished year tasks by status",
		},
		[]string{"status"},
	)

	r.TaskDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asgraph_task_duration_seconds",
			Help:    "Wall time of one year task",
			Buckets: []float64{0.01, 0.1, 1, 10, 60, 300, 900, 1800},
		},
	)

	r.TasksInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "asgraph_tasks_in_flight",
			Help: "Year tasks currently running",
		},
	)

	r.CorpusFiles = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "asgraph_corpus_files",
			Help: "Source files discovered in the corpus directory",
		},
	)

	r.RunDurationSecs = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "asgraph_run_duration_seconds",
			Help: "Wall time of the last full pipeline run",
		},
	)
}
