package analysis

import (
	"math/rand"
	"sort"
)

// CoOccurrenceStability estimates how reproducible the communities of rs
// are. From every run with more than one community it draws iterations
// communities, weighted by their number of actor pairs, and one pair of
// distinct members from each; the result is the mean fraction of runs that
// place the pair in the same community. All sampling is seeded.
func CoOccurrenceStability(rs *RunSet, iterations int, seed int64) (float64, error) {
	rng := rand.New(rand.NewSource(seed))

	total := 0
	samples := 0
	for _, run := range rs.runs {
		if len(run) == 1 {
			continue
		}

		// Cumulative pair counts for weighted community choice
		cumulative := make([]int, len(run))
		pairs := 0
		for k, c := range run {
			pairs += len(c) * (len(c) - 1) / 2
			cumulative[k] = pairs
		}
		if pairs == 0 {
			continue
		}

		for it := 0; it < iterations; it++ {
			r := rng.Intn(pairs)
			k := sort.SearchInts(cumulative, r+1)
			community := run[k]

			a := rng.Intn(len(community))
			b := rng.Intn(len(community) - 1)
			if b >= a {
				b++
			}
			total += rs.coLocated(community[a], community[b])
			samples++
		}
	}

	if samples == 0 {
		return 0, ErrNoSamples
	}
	return float64(total) / float64(samples) / float64(len(rs.runs)), nil
}

// coLocated counts the runs placing a and b in the same community.
func (rs *RunSet) coLocated(a, b string) int {
	n := 0
	for _, m := range rs.membership {
		if m[a] == m[b] {
			n++
		}
	}
	return n
}
