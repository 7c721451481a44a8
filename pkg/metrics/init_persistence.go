package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPersistenceMetrics() {
	r.PartitionsWrittenTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "costar_partitions_written_total",
			Help: "Total number of partition records written",
		},
		[]string{"store", "status"},
	)

	r.PartitionsReadTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "costar_partitions_read_total",
			Help: "Total number of partition records read",
		},
		[]string{"store", "status"},
	)

	r.PartitionBytesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "costar_partition_bytes_total",
			Help: "Bytes of encoded partition records moved through a store",
		},
		[]string{"store", "direction"},
	)

	r.ProvenanceMismatchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "costar_provenance_mismatches_total",
			Help: "Partition records rejected because their filter metadata differs from the graph",
		},
		[]string{"side"},
	)

	r.PartitionOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "costar_partition_operation_duration_seconds",
			Help:    "Partition store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"operation"},
	)
}
