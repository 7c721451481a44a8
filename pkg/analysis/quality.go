package analysis

import (
	"fmt"
	"slices"

	"github.com/dd0wney/cluso-costar/pkg/algorithms"
	"github.com/dd0wney/cluso-costar/pkg/graph"
	"github.com/dd0wney/cluso-costar/pkg/partition"
	"github.com/dd0wney/cluso-costar/pkg/table"
)

// CommunitySummary describes one community of a sorted partition.
type CommunitySummary struct {
	Index             int
	Size              int
	DominantEthnicity string  // empty when no member has one
	MissingEthnicity  float64 // fraction of members without ethnicity
}

// PopularFilm is a movie most of whose credits belong to one community.
type PopularFilm struct {
	PartitionIndex int
	Movie          table.Movie
	Fraction       float64 // community credits / all credits of the movie
}

// QualityReport is the result of Evaluate. Communities, PopularFilms and
// Partition all use the size-descending order of the partition.
type QualityReport struct {
	Coverage     float64
	Performance  float64
	Partition    partition.Partition
	Communities  []CommunitySummary
	PopularFilms []PopularFilm
}

// Evaluate scores p over g and summarises every community. A movie is
// popular in a community when more than takeFilmFraction of its credited
// rows belong to community members.
func Evaluate(
	g *graph.Graph,
	p partition.Partition,
	movies *table.MovieTable,
	appearances *table.AppearanceTable,
	takeFilmFraction float64,
) (*QualityReport, error) {
	if len(p) == 0 {
		return nil, partition.ErrEmptyPartition
	}
	if !(takeFilmFraction > 0 && takeFilmFraction <= 1) {
		return nil, fmt.Errorf("take film fraction %v: %w", takeFilmFraction, ErrInvalidFraction)
	}

	sorted := p.Sorted()
	coverage, performance, err := algorithms.PartitionQuality(g, sorted)
	if err != nil {
		return nil, err
	}

	report := &QualityReport{
		Coverage:    coverage,
		Performance: performance,
		Partition:   sorted,
		Communities: make([]CommunitySummary, 0, len(sorted)),
	}

	ethnicity := actorEthnicities(appearances)
	credits := appearances.CreditCounts()
	membership := sorted.Membership()

	// Community credit counts per movie, one map per community
	communityCredits := make([]map[string]int, len(sorted))
	for i := range communityCredits {
		communityCredits[i] = make(map[string]int)
	}
	for _, row := range appearances.Rows {
		if c, ok := membership[row.ActorID]; ok && row.ActorID != "" {
			communityCredits[c][row.MovieID]++
		}
	}

	for i, c := range sorted {
		dominant, missing := dominantEthnicity(c, ethnicity)
		report.Communities = append(report.Communities, CommunitySummary{
			Index:             i,
			Size:              len(c),
			DominantEthnicity: dominant,
			MissingEthnicity:  missing,
		})

		// Movies table order within a community
		for _, m := range movies.Rows {
			n, ok := communityCredits[i][m.FreebaseID]
			if !ok {
				continue
			}
			fraction := float64(n) / float64(credits[m.FreebaseID])
			if fraction > takeFilmFraction {
				report.PopularFilms = append(report.PopularFilms, PopularFilm{
					PartitionIndex: i,
					Movie:          m,
					Fraction:       fraction,
				})
			}
		}
	}

	return report, nil
}

// PopularFilmsOf returns the popular films of the community at rank index.
func (r *QualityReport) PopularFilmsOf(index int) []PopularFilm {
	var out []PopularFilm
	for _, f := range r.PopularFilms {
		if f.PartitionIndex == index {
			out = append(out, f)
		}
	}
	return out
}

// actorEthnicities maps each actor to the first ethnicity recorded for them.
func actorEthnicities(t *table.AppearanceTable) map[string]string {
	out := make(map[string]string)
	for _, row := range t.Rows {
		if row.ActorID == "" || row.Ethnicity == "" {
			continue
		}
		if _, ok := out[row.ActorID]; !ok {
			out[row.ActorID] = row.Ethnicity
		}
	}
	return out
}

// dominantEthnicity returns the most common ethnicity among members, ties
// going to the lexicographically smallest, and the fraction of members with
// none recorded.
func dominantEthnicity(members partition.Community, ethnicity map[string]string) (string, float64) {
	counts := make(map[string]int)
	missing := 0
	for _, id := range members {
		e, ok := ethnicity[id]
		if !ok {
			missing++
			continue
		}
		counts[e]++
	}

	keys := make([]string, 0, len(counts))
	for e := range counts {
		keys = append(keys, e)
	}
	slices.Sort(keys)

	dominant, best := "", 0
	for _, e := range keys {
		if counts[e] > best {
			dominant, best = e, counts[e]
		}
	}
	return dominant, float64(missing) / float64(len(members))
}
