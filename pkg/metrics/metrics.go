package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status label values
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusMiss    = "miss"
	StatusCorrupt = "corrupt"
)

// Origin label values for built graphs
const (
	OriginSnapshot = "snapshot"
	OriginSource   = "source"
)

// RecordBuild records one graph build from source records
func (r *Registry) RecordBuild(family string, duration time.Duration, retained, discarded int) {
	r.BuildDuration.WithLabelValues(family).Observe(duration.Seconds())
	r.AnnouncementsTotal.WithLabelValues(family, "retained").Add(float64(retained))
	r.AnnouncementsTotal.WithLabelValues(family, "discarded").Add(float64(discarded))
}

// RecordGraph records the size of a graph produced for a year, either
// loaded from a snapshot or freshly built
func (r *Registry) RecordGraph(year int, family, origin string, vertices, edges int, relationships map[string]int) {
	y := strconv.Itoa(year)
	r.BuildsTotal.WithLabelValues(family, origin).Inc()
	r.GraphVertices.WithLabelValues(y, family).Set(float64(vertices))
	r.GraphEdges.WithLabelValues(y, family).Set(float64(edges))
	for kind, n := range relationships {
		r.GraphRelationships.WithLabelValues(y, family, kind).Set(float64(n))
	}
}

// RecordSnapshotOperation records a snapshot store operation
func (r *Registry) RecordSnapshotOperation(backend, operation, status string, duration time.Duration) {
	r.SnapshotOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	r.SnapshotOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordSourceFile records the announcements read from one source file
func (r *Registry) RecordSourceFile(announcements int, decodeErr bool) {
	r.SourceAnnouncementsTotal.Add(float64(announcements))
	if decodeErr {
		r.SourceDecodeErrorTotal.Inc()
	}
}

// RecordTask records a finished year task
func (r *Registry) RecordTask(status string, duration time.Duration) {
	r.TasksTotal.WithLabelValues(status).Inc()
	r.TaskDuration.Observe(duration.Seconds())
}

// UpdateSystemMetrics refreshes the uptime, goroutine and memory gauges
func (r *Registry) UpdateSystemMetrics() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(r.started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}

// WriteTextfile writes every metric in the Prometheus text format,
// suitable for the node_exporter textfile collector
func (r *Registry) WriteTextfile(path string) error {
	r.UpdateSystemMetrics()
	return prometheus.WriteToTextfile(path, r.registry)
}
