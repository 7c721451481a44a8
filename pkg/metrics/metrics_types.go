package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for an analysis session
type Registry struct {
	// Graph Metrics
	GraphNodesTotal    prometheus.Gauge
	GraphEdgesTotal    prometheus.Gauge
	GraphBuildDuration prometheus.Histogram

	// Algorithm Metrics
	AlgorithmRunsTotal      *prometheus.CounterVec
	AlgorithmDuration       *prometheus.HistogramVec
	CommunitiesDetected     *prometheus.GaugeVec
	CommunityModularity     *prometheus.GaugeVec
	LouvainLevels           prometheus.Histogram
	MatchingEdgesTotal      prometheus.Gauge
	StabilitySamplesSkipped prometheus.Counter

	// Persistence Metrics
	PartitionsWrittenTotal     *prometheus.CounterVec
	PartitionsReadTotal        *prometheus.CounterVec
	PartitionBytesTotal        *prometheus.CounterVec
	ProvenanceMismatchesTotal  *prometheus.CounterVec
	PartitionOperationDuration *prometheus.HistogramVec

	// Dataset Metrics
	DatasetRowsTotal *prometheus.GaugeVec

	// System Metrics
	SessionStartTimestamp prometheus.Gauge
	GoRoutines            prometheus.Gauge
	MemoryAllocBytes      prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
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
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initGraphMetrics()
	r.initAnalysisMetrics()
	r.initPersistenceMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
