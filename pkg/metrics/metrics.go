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
)

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

// SetGraphSize records the size of the co-appearance graph
func (r *Registry) SetGraphSize(nodes, edges int) {
	r.GraphNodesTotal.Set(float64(nodes))
	r.GraphEdgesTotal.Set(float64(edges))
}

// SetTableRows records the row count of a filtered table
func (r *Registry) SetTableRows(table string, rows int) {
	r.DatasetRowsTotal.WithLabelValues(table).Set(float64(rows))
}

// RecordAlgorithm records one algorithm run with its duration
func (r *Registry) RecordAlgorithm(algorithm string, duration time.Duration, err error) {
	r.AlgorithmRunsTotal.WithLabelValues(algorithm, status(err)).Inc()
	r.AlgorithmDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
}

// RecordDetection records the outcome of community detection for a seed
func (r *Registry) RecordDetection(seed int64, communities, levels int, modularity float64) {
	label := strconv.FormatInt(seed, 10)
	r.CommunitiesDetected.WithLabelValues(label).Set(float64(communities))
	r.CommunityModularity.WithLabelValues(label).Set(modularity)
	r.LouvainLevels.Observe(float64(levels))
}

// RecordPartitionWrite records a partition record written to a store
func (r *Registry) RecordPartitionWrite(store string, bytes int, duration time.Duration, err error) {
	r.PartitionsWrittenTotal.WithLabelValues(store, status(err)).Inc()
	r.PartitionOperationDuration.WithLabelValues("write").Observe(duration.Seconds())
	if err == nil {
		r.PartitionBytesTotal.WithLabelValues(store, "out").Add(float64(bytes))
	}
}

// RecordPartitionRead records a partition record read from a store
func (r *Registry) RecordPartitionRead(store string, bytes int, duration time.Duration, err error) {
	r.PartitionsReadTotal.WithLabelValues(store, status(err)).Inc()
	r.PartitionOperationDuration.WithLabelValues("read").Observe(duration.Seconds())
	if err == nil {
		r.PartitionBytesTotal.WithLabelValues(store, "in").Add(float64(bytes))
	}
}

// RecordProvenanceMismatch counts a record rejected on the given side
// ("movies" or "characters")
func (r *Registry) RecordProvenanceMismatch(side string) {
	r.ProvenanceMismatchesTotal.WithLabelValues(side).Inc()
}

// SetMatchingEdges records the edge count of a matching graph
func (r *Registry) SetMatchingEdges(n int) {
	r.MatchingEdgesTotal.Set(float64(n))
}

// RecordSkippedRuns counts runs the stability sampler could not draw from
func (r *Registry) RecordSkippedRuns(n int) {
	r.StabilitySamplesSkipped.Add(float64(n))
}

// MarkSessionStart stamps the session start time
func (r *Registry) MarkSessionStart(t time.Time) {
	r.SessionStartTimestamp.Set(float64(t.Unix()))
}

// UpdateSystemMetrics samples runtime statistics
func (r *Registry) UpdateSystemMetrics() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
}

// WriteTextfile writes every metric to path in the Prometheus text format,
// for pickup by a node exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return prometheus.WriteToTextfile(path, r.registry)
}
