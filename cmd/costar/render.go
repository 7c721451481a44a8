package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"

	"github.com/dd0wney/cluso-costar/pkg/algorithms"
	"github.com/dd0wney/cluso-costar/pkg/analysis"
	"github.com/dd0wney/cluso-costar/pkg/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// newTable returns a bordered table with styled headers.
func newTable(headers ...string) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF"))).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func formatFloat(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}

func renderSummary(sum *pipeline.GraphSummary) string {
	stats := statsBoxStyle.Render(fmt.Sprintf(
		"Actors:      %d\nEdges:       %d\nComponents:  %d (largest %d, %d isolated)\nTriangles:   %d\nClustering:  %s",
		sum.Nodes, sum.Edges, sum.Components, sum.LargestComponent, sum.Isolated,
		sum.Triangles, formatFloat(sum.AverageClustering, 4),
	))

	t := newTable("Rank", "By PageRank", "Score", "By degree", "Score")
	for i := 0; i < max(len(sum.TopPageRank), len(sum.TopDegree)); i++ {
		row := []string{strconv.Itoa(i + 1), "", "", "", ""}
		if i < len(sum.TopPageRank) {
			row[1], row[2] = sum.TopPageRank[i].Name, formatFloat(sum.TopPageRank[i].Score, 6)
		}
		if i < len(sum.TopDegree) {
			row[3], row[4] = sum.TopDegree[i].Name, formatFloat(sum.TopDegree[i].Score, 4)
		}
		t.Row(row...)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Co-appearance graph"),
		stats,
		t.Render(),
	)
}

func renderDetection(results []*algorithms.CommunityDetectionResult, names []string) string {
	t := newTable("Seed", "Communities", "Largest", "Modularity", "Levels", "Saved as")
	for i, res := range results {
		largest := 0
		for _, size := range res.Partition.Sizes() {
			largest = max(largest, size)
		}
		t.Row(
			strconv.FormatInt(res.Seed, 10),
			strconv.Itoa(res.Partition.Len()),
			strconv.Itoa(largest),
			formatFloat(res.Modularity, 4),
			strconv.Itoa(res.Levels),
			names[i],
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Community detection"),
		t.Render(),
	)
}

func renderQuality(seed int64, report *analysis.QualityReport, limit int) string {
	stats := statsBoxStyle.Render(fmt.Sprintf(
		"Seed:        %d\nCommunities: %d\nCoverage:    %s\nPerformance: %s",
		seed, report.Partition.Len(),
		formatFloat(report.Coverage, 4), formatFloat(report.Performance, 4),
	))

	t := newTable("Rank", "Size", "Dominant ethnicity", "Missing", "Popular films")
	for i, c := range report.Communities {
		if limit > 0 && i >= limit {
			break
		}
		films := report.PopularFilmsOf(c.Index)
		titles := make([]string, len(films))
		for j, f := range films {
			titles[j] = f.Movie.Name
		}
		dominant := c.DominantEthnicity
		if dominant == "" {
			dominant = "-"
		}
		t.Row(
			strconv.Itoa(c.Index),
			strconv.Itoa(c.Size),
			dominant,
			formatFloat(100*c.MissingEthnicity, 1)+"%",
			strings.Join(titles, ", "),
		)
	}

	parts := []string{titleStyle.Render("Partition quality"), stats, t.Render()}
	if limit > 0 && len(report.Communities) > limit {
		parts = append(parts, helpStyle.Render(fmt.Sprintf("%d more communities not shown", len(report.Communities)-limit)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderClusters(seed int64, set analysis.ClusterSet, limit int) string {
	sizes := set.SizeDistribution(0)
	meanSize := 0.0
	for _, n := range sizes {
		meanSize += float64(n)
	}
	if len(sizes) > 0 {
		meanSize /= float64(len(sizes))
	}
	leading := "-"
	if top := set.NthGenreDistribution(1); len(top) > 0 {
		leading = fmt.Sprintf("%s (%d clusters)", top[0].Genre, top[0].Count)
	}
	stats := statsBoxStyle.Render(fmt.Sprintf(
		"Seed:          %d\nClusters:      %d\nMean size:     %s\nMean revenue:  %s\nFemale share:  %s\nLeading genre: %s",
		seed, len(set), formatFloat(meanSize, 2),
		meanOrDash(set.RevenueDistribution(), 0), meanOrDash(set.GenderDistribution(), 3), leading,
	))

	t := newTable("Rank", "Size", "Movies", "Total revenue", "Mean revenue", "Median revenue", "Female", "Top genre")
	for i, c := range set {
		if limit > 0 && i >= limit {
			break
		}
		mean, median := "-", "-"
		if v, ok := c.MeanRevenue(); ok {
			mean = formatFloat(v, 0)
		}
		if v, ok := c.MedianRevenue(); ok {
			median = formatFloat(v, 0)
		}
		female := "-"
		if f, _ := c.Genders(); f > -1 {
			female = formatFloat(100*f, 1) + "%"
		}
		genre := "-"
		if g := c.PreferredGenres(1); len(g) > 0 {
			genre = g[0].Genre
		}
		t.Row(
			strconv.Itoa(i),
			strconv.Itoa(c.Size()),
			strconv.Itoa(len(c.Movies())),
			formatFloat(c.TotalRevenue(), 0),
			mean,
			median,
			female,
			genre,
		)
	}

	parts := []string{titleStyle.Render("Cluster profiles"), stats, t.Render()}
	if limit > 0 && len(set) > limit {
		parts = append(parts, helpStyle.Render(fmt.Sprintf("%d more clusters not shown", len(set)-limit)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func meanOrDash(values []float64, places int) string {
	if len(values) == 0 {
		return "-"
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return formatFloat(sum/float64(len(values)), places)
}

func renderCentrality(report *pipeline.CentralityReport) string {
	s := report.Scores
	t := newTable("Rank", "Actor", "Id", "Importance", "Katz", "Closeness", "Betweenness")
	for i, n := range report.Top {
		t.Row(
			strconv.Itoa(i+1),
			n.Name,
			n.ID,
			formatFloat(n.Score, 4),
			formatFloat(s.Katz[n.ID], 4),
			formatFloat(s.Closeness[n.ID], 4),
			formatFloat(s.Betweenness[n.ID], 4),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Centrality"),
		helpStyle.Render(fmt.Sprintf("%d actors, Katz alpha %s", report.Nodes, formatFloat(s.Alpha, 4))),
		t.Render(),
	)
}

func renderMatching(mg *analysis.MatchingGraph, seeds []int64, places int) string {
	t := newTable("From", "To", "Seeds", "Weight")
	for _, e := range mg.Edges() {
		t.Row(
			e.From.String(),
			e.To.String(),
			fmt.Sprintf("%d -> %d", seeds[e.From.Run], seeds[e.To.Run]),
			formatFloat(e.RoundedWeight(places), places),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Community matching"),
		helpStyle.Render(fmt.Sprintf("%d edges between %d communities", mg.EdgeCount(), len(mg.Nodes()))),
		t.Render(),
	)
}

func renderStability(stability float64, runs, iterations int) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Co-occurrence stability"),
		statsBoxStyle.Render(fmt.Sprintf(
			"Runs:       %d\nIterations: %d\nStability:  %s",
			runs, iterations, formatFloat(stability, 4),
		)),
	)
}

func renderPath(names []string) string {
	if len(names) == 0 {
		return helpStyle.Render("No co-star chain connects these actors")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Degrees of separation: %d", len(names)-1)),
		strings.Join(names, " -> "),
	)
}
