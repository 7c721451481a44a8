package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AlgorithmRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "costar_algorithm_runs_total",
			Help: "Total number of algorithm runs",
		},
		[]string{"algorithm", "status"},
	)

	r.AlgorithmDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "costar_algorithm_duration_seconds",
			Help:    "Algorithm run duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"algorithm"},
	)

	r.CommunitiesDetected = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "costar_communities_detected",
			Help: "Number of communities found by the last detection for a seed",
		},
		[]string{"seed"},
	)

	r.CommunityModularity = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "costar_community_modularity",
			Help: "Modularity of the last partition detected for a seed",
		},
		[]string{"seed"},
	)

	r.LouvainLevels = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "costar_louvain_levels",
			Help:    "Aggregation levels performed per Louvain run",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	r.MatchingEdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "costar_matching_edges_total",
			Help: "Edges in the last cross-run matching graph",
		},
	)

	r.StabilitySamplesSkipped = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "costar_stability_runs_skipped_total",
			Help: "Runs passed over by the stability sampler because they hold no pair",
		},
	)
}
