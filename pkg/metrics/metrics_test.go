package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	// Verify all metrics are initialized
	if r.BuildsTotal == nil {
		t.Error("BuildsTotal not initialized")
	}
	if r.SnapshotOperationsTotal == nil {
		t.Error("SnapshotOperationsTotal not initialized")
	}
	if r.TasksTotal == nil {
		t.Error("TasksTotal not initialized")
	}
	if r.UptimeSeconds == nil {
		t.Error("UptimeSeconds not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	// Should return the same instance
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	if err := g.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Gauge.GetValue()
}

func TestRecordBuild(t *testing.T) {
	r := NewRegistry()

	r.RecordBuild("ipv4", 2*time.Second, 90, 10)
	r.RecordBuild("ipv4", 3*time.Second, 10, 0)

	if got := counterValue(t, r.AnnouncementsTotal.WithLabelValues("ipv4", "retained")); got != 100 {
		t.Errorf("retained = %v, want 100", got)
	}
	if got := counterValue(t, r.AnnouncementsTotal.WithLabelValues("ipv4", "discarded")); got != 10 {
		t.Errorf("discarded = %v, want 10", got)
	}

	histogram, err := r.BuildDuration.GetMetricWithLabelValues("ipv4")
	if err != nil {
		t.Fatalf("Failed to get histogram: %v", err)
	}
	var metric dto.Metric
	if err := histogram.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 || metric.Histogram.GetSampleSum() != 5 {
		t.Errorf("histogram count=%d sum=%v", metric.Histogram.GetSampleCount(), metric.Histogram.GetSampleSum())
	}
}

func TestRecordGraph(t *testing.T) {
	r := NewRegistry()

	r.RecordGraph(2020, "ipv6", OriginSnapshot, 120, 340, map[string]int{"peer": 7, "sibling": 1})
	r.RecordGraph(2020, "ipv6", OriginSource, 125, 350, nil)

	if got := gaugeValue(t, r.GraphVertices.WithLabelValues("2020", "ipv6")); got != 125 {
		t.Errorf("vertices = %v, want 125 (last write wins)", got)
	}
	if got := gaugeValue(t, r.GraphEdges.WithLabelValues("2020", "ipv6")); got != 350 {
		t.Errorf("edges = %v, want 350", got)
	}
	if got := gaugeValue(t, r.GraphRelationships.WithLabelValues("2020", "ipv6", "peer")); got != 7 {
		t.Errorf("peer relationships = %v, want 7", got)
	}
	if got := counterValue(t, r.BuildsTotal.WithLabelValues("ipv6", OriginSnapshot)); got != 1 {
		t.Errorf("snapshot builds = %v, want 1", got)
	}
	if got := counterValue(t, r.BuildsTotal.WithLabelValues("ipv6", OriginSource)); got != 1 {
		t.Errorf("source builds = %v, want 1", got)
	}
}

func TestRecordSnapshotOperation(t *testing.T) {
	r := NewRegistry()

	r.RecordSnapshotOperation("badger", "get", StatusSuccess, time.Millisecond)
	r.RecordSnapshotOperation("badger", "get", StatusMiss, time.Millisecond)
	r.RecordSnapshotOperation("badger", "get", StatusMiss, time.Millisecond)
	r.RecordSnapshotOperation("file", "put", StatusError, time.Millisecond)

	tests := []struct {
		backend, operation, status string
		expected                   float64
	}{
		{"badger", "get", StatusSuccess, 1},
		{"badger", "get", StatusMiss, 2},
		{"file", "put", StatusError, 1},
		{"file", "get", StatusSuccess, 0},
	}

	for _, tt := range tests {
		t.Run(tt.backend+"_"+tt.operation+"_"+tt.status, func(t *testing.T) {
			got := counterValue(t, r.SnapshotOperationsTotal.WithLabelValues(tt.backend, tt.operation, tt.status))
			if got != tt.expected {
				t.Errorf("counter = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRecordTaskAndSource(t *testing.T) {
	r := NewRegistry()

	r.RecordTask(StatusSuccess, time.Second)
	r.RecordTask(StatusError, time.Second)
	r.RecordSourceFile(1000, false)
	r.RecordSourceFile(20, true)

	if got := counterValue(t, r.TasksTotal.WithLabelValues(StatusError)); got != 1 {
		t.Errorf("failed tasks = %v, want 1", got)
	}
	if got := counterValue(t, r.SourceAnnouncementsTotal); got != 1020 {
		t.Errorf("records = %v, want 1020", got)
	}
	if got := counterValue(t, r.SourceDecodeErrorTotal); got != 1 {
		t.Errorf("decode errors = %v, want 1", got)
	}
}

func TestUpdateSystemMetrics(t *testing.T) {
	r := NewRegistry()
	r.UpdateSystemMetrics()

	if got := gaugeValue(t, r.GoRoutines); got < 1 {
		t.Errorf("GoRoutines = %v, want >= 1", got)
	}
	if got := gaugeValue(t, r.MemorySysBytes); got <= 0 {
		t.Errorf("MemorySysBytes = %v, want > 0", got)
	}
	if got := gaugeValue(t, r.UptimeSeconds); got < 0 {
		t.Errorf("UptimeSeconds = %v, want >= 0", got)
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				r.RecordSnapshotOperation("file", "get", StatusSuccess, time.Millisecond)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	if got := counterValue(t, r.SnapshotOperationsTotal.WithLabelValues("file", "get", StatusSuccess)); got != 1000 {
		t.Errorf("Counter = %v, want 1000", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.RecordTask(StatusSuccess, time.Second)

	path := filepath.Join(t.TempDir(), "asgraph.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`asgraph_tasks_total{status="success"} 1`,
		"# TYPE asgraph_uptime_seconds gauge",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}

func TestMetricNaming(t *testing.T) {
	r := NewRegistry()
	r.RecordBuild("ipv4", time.Second, 1, 1)
	r.RecordGraph(2001, "ipv4", OriginSource, 1, 0, map[string]int{"peer": 0})
	r.RecordSnapshotOperation("file", "put", StatusSuccess, time.Millisecond)
	r.RecordTask(StatusSuccess, time.Second)

	metrics, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	if len(metrics) == 0 {
		t.Fatal("No metrics registered")
	}

	// Verify all metrics have the asgraph_ prefix
	for _, m := range metrics {
		name := m.GetName()
		if !strings.HasPrefix(name, "asgraph_") {
			t.Errorf("Metric %s does not have asgraph_ prefix", name)
		}
	}
}

func BenchmarkRecordSnapshotOperation(b *testing.B) {
	r := NewRegistry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.RecordSnapshotOperation("file", "get", StatusSuccess, 5*time.Millisecond)
	}
}
