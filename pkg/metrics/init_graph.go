package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "costar_graph_nodes_total",
			Help: "Number of actors in the co-appearance graph",
		},
	)

	r.GraphEdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "costar_graph_edges_total",
			Help: "Number of co-appearance edges in the graph",
		},
	)

	r.GraphBuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "costar_graph_build_duration_seconds",
			Help:    "Time to build the co-appearance graph from the joined table",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	r.DatasetRowsTotal = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "costar_dataset_rows",
			Help: "Rows held by each table after filtering",
		},
		[]string{"table"},
	)
}
