package pipeline

import (
	"context"

	"github.com/dd0wney/cluso-costar/pkg/algorithms"
	"github.com/dd0wney/cluso-costar/pkg/graph"
	"github.com/dd0wney/cluso-costar/pkg/logging"
)

// GraphSummary describes the shape of the co-appearance graph.
type GraphSummary struct {
	Nodes             int
	Edges             int
	Components        int
	LargestComponent  int
	Isolated          int
	Triangles         int
	AverageClustering float64
	PageRankConverged bool
	TopPageRank       []algorithms.RankedNode
	TopDegree         []algorithms.RankedNode
}

// Summary reports component structure, clustering and the best-connected
// actors by PageRank and degree.
func (s *Session) Summary(ctx context.Context) (*GraphSummary, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := &GraphSummary{Nodes: g.NodeCount(), Edges: g.EdgeCount()}

	s.step("components", func() error {
		components := algorithms.ConnectedComponents(g)
		sum.Components = components.Len()
		for _, c := range components {
			sum.LargestComponent = max(sum.LargestComponent, len(c))
			if len(c) == 1 {
				sum.Isolated++
			}
		}
		return nil
	}, logging.Nodes(sum.Nodes))

	s.step("triangles", func() error {
		tri := algorithms.CountTriangles(g)
		sum.Triangles = tri.GlobalCount
		sum.AverageClustering = tri.AverageClustering
		return nil
	}, logging.Nodes(sum.Nodes))

	attrs := graph.NewAttributes()
	s.actors.Annotate(g, attrs)

	err = s.step("pagerank", func() error {
		pr, err := algorithms.PageRank(g, algorithms.DefaultPageRankOptions())
		if err != nil {
			return err
		}
		sum.PageRankConverged = pr.Converged
		sum.TopPageRank = algorithms.TopNodes(pr.Scores, s.cfg.Centrality.TopK, attrs)
		return nil
	}, logging.Nodes(sum.Nodes))
	if err != nil {
		return nil, err
	}
	if !sum.PageRankConverged {
		s.logger.Warn("pagerank did not converge", logging.Nodes(sum.Nodes))
	}

	sum.TopDegree = algorithms.TopNodes(algorithms.DegreeCentrality(g), s.cfg.Centrality.TopK, attrs)
	return sum, nil
}
