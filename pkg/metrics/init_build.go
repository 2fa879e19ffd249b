package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initBuildMetrics() {
	r.BuildsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "asgraph_builds_total",
			Help: "Graphs produced, by address family and origin (snapshot or source)",
		},
		[]string{"family", "origin"},
	)

	r.BuildDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "asgraph_build_duration_seconds",
			Help:    "Time to build one graph from a source file",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		},
		[]string{"family"},
	)

	r.AnnouncementsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "asgraph_announcements_total",
			Help: "Announcements fed to graph builders, by outcome (retained or discarded)",
		},
		[]string{"family", "outcome"},
	)

	r.GraphVertices = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "asgraph_graph_vertices",
			Help: "Number of autonomous systems in a built graph",
		},
		[]string{"year", "family"},
	)

	r.GraphEdges = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "asgraph_graph_edges",
			Help: "Number of ordered adjacency entries in a built graph",
		},
		[]string{"year", "family"},
	)

	r.GraphRelationships = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "asgraph_graph_relationships",
			Help: "Classified relationship pairs in a built graph, by kind",
		},
		[]string{"year", "family", "kind"},
	)

	r.SourceAnnouncementsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "asgraph_source_announcements_total",
			Help: "Announcements read from source files",
		},
	)

	r.SourceDecodeErrorTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "asgraph_source_decode_errors_total",
			Help: "Source files abandoned because of a decode error",
		},
	)
}
