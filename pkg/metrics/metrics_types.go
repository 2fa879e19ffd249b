package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Build Metrics
	BuildsTotal              *prometheus.CounterVec
	BuildDuration            *prometheus.HistogramVec
	AnnouncementsTotal       *prometheus.CounterVec
	GraphVertices            *prometheus.GaugeVec
	GraphEdges               *prometheus.GaugeVec
	GraphRelationships       *prometheus.GaugeVec
	SourceAnnouncementsTotal prometheus.Counter
	SourceDecodeErrorTotal   prometheus.Counter

	// Snapshot Metrics
	SnapshotOperationsTotal   *prometheus.CounterVec
	SnapshotOperationDuration *prometheus.HistogramVec

	// Pipeline Metrics
	TasksTotal      *prometheus.CounterVec
	TaskDuration    prometheus.Histogram
	TasksInFlight   prometheus.Gauge
	CorpusFiles     prometheus.Gauge
	RunDurationSecs prometheus.Gauge

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	started  time.Time
	mu       sync.Mutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
	}

	r.initBuildMetrics()
	r.initSnapshotMetrics()
	r.initPipelineMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
