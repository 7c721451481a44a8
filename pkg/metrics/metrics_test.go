package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	counter, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
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

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.GraphNodesTotal == nil {
		t.Error("GraphNodesTotal not initialized")
	}
	if r.AlgorithmDuration == nil {
		t.Error("AlgorithmDuration not initialized")
	}
	if r.PartitionsWrittenTotal == nil {
		t.Error("PartitionsWrittenTotal not initialized")
	}
	if r.ProvenanceMismatchesTotal == nil {
		t.Error("ProvenanceMismatchesTotal not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestSetGraphSize(t *testing.T) {
	r := NewRegistry()
	r.SetGraphSize(120, 4_500)

	if got := gaugeValue(t, r.GraphNodesTotal); got != 120 {
		t.Errorf("Nodes gauge = %v, want 120", got)
	}
	if got := gaugeValue(t, r.GraphEdgesTotal); got != 4_500 {
		t.Errorf("Edges gauge = %v, want 4500", got)
	}
}

func TestRecordAlgorithm(t *testing.T) {
	r := NewRegistry()

	r.RecordAlgorithm("louvain", 200*time.Millisecond, nil)
	r.RecordAlgorithm("louvain", 300*time.Millisecond, nil)
	r.RecordAlgorithm("katz", time.Second, errors.New("not converged"))

	if got := counterValue(t, r.AlgorithmRunsTotal, "louvain", StatusSuccess); got != 2 {
		t.Errorf("Louvain success counter = %v, want 2", got)
	}
	if got := counterValue(t, r.AlgorithmRunsTotal, "katz", StatusError); got != 1 {
		t.Errorf("Katz error counter = %v, want 1", got)
	}

	histogram, err := r.AlgorithmDuration.GetMetricWithLabelValues("louvain")
	if err != nil {
		t.Fatalf("Failed to get histogram: %v", err)
	}
	var metric dto.Metric
	if err := histogram.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("Sample count = %v, want 2", metric.Histogram.GetSampleCount())
	}
	if sum := metric.Histogram.GetSampleSum(); sum < 0.49 || sum > 0.51 {
		t.Errorf("Sample sum = %v, want 0.5", sum)
	}
}

func TestRecordDetection(t *testing.T) {
	r := NewRegistry()
	r.RecordDetection(3, 17, 4, 0.61)

	communities, err := r.CommunitiesDetected.GetMetricWithLabelValues("3")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if got := gaugeValue(t, communities); got != 17 {
		t.Errorf("Communities gauge = %v, want 17", got)
	}

	modularity, err := r.CommunityModularity.GetMetricWithLabelValues("3")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if got := gaugeValue(t, modularity); got != 0.61 {
		t.Errorf("Modularity gauge = %v, want 0.61", got)
	}
}

func TestRecordPartitionIO(t *testing.T) {
	r := NewRegistry()

	r.RecordPartitionWrite("file", 1024, 5*time.Millisecond, nil)
	r.RecordPartitionWrite("s3", 0, 5*time.Millisecond, errors.New("denied"))
	r.RecordPartitionRead("file", 1024, time.Millisecond, nil)
	r.RecordPartitionRead("file", 512, time.Millisecond, nil)

	tests := []struct {
		name   string
		vec    *prometheus.CounterVec
		labels []string
		want   float64
	}{
		{"written ok", r.PartitionsWrittenTotal, []string{"file", StatusSuccess}, 1},
		{"written error", r.PartitionsWrittenTotal, []string{"s3", StatusError}, 1},
		{"read ok", r.PartitionsReadTotal, []string{"file", StatusSuccess}, 2},
		{"bytes out", r.PartitionBytesTotal, []string{"file", "out"}, 1024},
		{"bytes in", r.PartitionBytesTotal, []string{"file", "in"}, 1536},
		// Failed writes move no bytes
		{"s3 bytes", r.PartitionBytesTotal, []string{"s3", "out"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counterValue(t, tt.vec, tt.labels...); got != tt.want {
				t.Errorf("Counter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordProvenanceMismatch(t *testing.T) {
	r := NewRegistry()
	r.RecordProvenanceMismatch("movies")
	r.RecordProvenanceMismatch("movies")
	r.RecordProvenanceMismatch("characters")

	if got := counterValue(t, r.ProvenanceMismatchesTotal, "movies"); got != 2 {
		t.Errorf("Movies mismatches = %v, want 2", got)
	}
	if got := counterValue(t, r.ProvenanceMismatchesTotal, "characters"); got != 1 {
		t.Errorf("Characters mismatches = %v, want 1", got)
	}
}

func TestMatchingAndStabilityMetrics(t *testing.T) {
	r := NewRegistry()
	r.SetMatchingEdges(8)
	r.RecordSkippedRuns(2)
	r.RecordSkippedRuns(0)

	if got := gaugeValue(t, r.MatchingEdgesTotal); got != 8 {
		t.Errorf("Matching edges = %v, want 8", got)
	}

	var metric dto.Metric
	if err := r.StabilitySamplesSkipped.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("Skipped runs = %v, want 2", metric.Counter.GetValue())
	}
}

func TestSystemMetrics(t *testing.T) {
	r := NewRegistry()
	start := time.Unix(1_700_000_000, 0)
	r.MarkSessionStart(start)
	r.UpdateSystemMetrics()

	if got := gaugeValue(t, r.SessionStartTimestamp); got != 1_700_000_000 {
		t.Errorf("Session start = %v, want 1700000000", got)
	}
	if got := gaugeValue(t, r.GoRoutines); got < 1 {
		t.Errorf("Expected at least one goroutine, got %v", got)
	}
	if got := gaugeValue(t, r.MemoryAllocBytes); got <= 0 {
		t.Errorf("Expected positive heap allocation, got %v", got)
	}
}

func TestGetPrometheusRegistry(t *testing.T) {
	r := NewRegistry()
	promRegistry := r.GetPrometheusRegistry()
	if promRegistry == nil {
		t.Fatal("GetPrometheusRegistry() returned nil")
	}

	metrics, err := promRegistry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	metricNames := make(map[string]bool)
	for _, m := range metrics {
		metricNames[m.GetName()] = true
	}

	// Unlabelled metrics are exported before any observation
	expectedMetrics := []string{
		"costar_graph_nodes_total",
		"costar_matching_edges_total",
		"costar_goroutines",
		"costar_louvain_levels",
	}
	for _, expected := range expectedMetrics {
		if !metricNames[expected] {
			t.Errorf("Expected metric %s not found", expected)
		}
	}
}

func TestMetricNaming(t *testing.T) {
	r := NewRegistry()
	r.RecordAlgorithm("louvain", time.Millisecond, nil)
	r.RecordPartitionWrite("file", 10, time.Millisecond, nil)

	metrics, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	for _, m := range metrics {
		if !strings.HasPrefix(m.GetName(), "costar_") {
			t.Errorf("Metric %s should have costar_ prefix", m.GetName())
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.SetGraphSize(3, 2)
	r.RecordProvenanceMismatch("characters")

	path := filepath.Join(t.TempDir(), "costar.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read textfile: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		"costar_graph_nodes_total 3",
		"costar_graph_edges_total 2",
		`costar_provenance_mismatches_total{side="characters"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Textfile missing %q:\n%s", want, text)
		}
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.RecordAlgorithm("betweenness", time.Millisecond, nil)
				r.UpdateSystemMetrics()
			}
		}()
	}
	wg.Wait()

	if got := counterValue(t, r.AlgorithmRunsTotal, "betweenness", StatusSuccess); got != 1000 {
		t.Errorf("Counter = %v, want 1000", got)
	}
}

func BenchmarkRecordAlgorithm(b *testing.B) {
	r := NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.RecordAlgorithm("louvain", time.Millisecond, nil)
	}
}

func BenchmarkSetGraphSize(b *testing.B) {
	r := NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.SetGraphSize(i, 2*i)
	}
}
