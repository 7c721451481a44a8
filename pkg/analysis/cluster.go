package analysis

import (
	"cmp"
	"slices"

	"github.com/dd0wney/cluso-costar/pkg/partition"
	"github.com/dd0wney/cluso-costar/pkg/table"
)

// GenreCount is the number of cluster movies tagged with a genre.
type GenreCount struct {
	Genre string
	Count int
}

// Cluster is a read-only view over one community: its actors plus the rows
// of the global tables that concern them. The joined rows are built once.
type Cluster struct {
	ActorIDs []string

	index  *table.MovieIndex
	roles  []table.Character     // character rows of members, table order
	joined *table.AppearanceTable // members' rows joined with movies
}

// NewCluster builds the view of ids over the characters and movies tables.
func NewCluster(characters *table.CharacterTable, movies *table.MovieTable, ids []string) *Cluster {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}

	var roles []table.Character
	for _, row := range characters.Rows {
		if _, ok := keep[row.ActorID]; ok {
			roles = append(roles, row)
		}
	}
	return newCluster(table.NewMovieIndex(movies), characters.Filters, ids, roles)
}

func newCluster(index *table.MovieIndex, filters table.FilterMetadata, ids []string, roles []table.Character) *Cluster {
	return &Cluster{
		ActorIDs: slices.Clone(ids),
		index:    index,
		roles:    roles,
		joined:   index.Join(&table.CharacterTable{Rows: roles, Filters: filters}),
	}
}

// Size returns the number of actors.
func (c *Cluster) Size() int { return len(c.ActorIDs) }

// Movies returns every movie in which at least one member played, in movies
// table order.
func (c *Cluster) Movies() []table.Movie {
	seen := make(map[int]struct{})
	positions := make([]int, 0)
	for _, row := range c.joined.Rows {
		pos, ok := c.index.Position(row.MovieWikipediaID)
		if !ok {
			continue
		}
		if _, dup := seen[pos]; !dup {
			seen[pos] = struct{}{}
			positions = append(positions, pos)
		}
	}
	slices.Sort(positions)

	rows := c.index.Movies().Rows
	out := make([]table.Movie, 0, len(positions))
	for _, pos := range positions {
		out = append(out, rows[pos])
	}
	return out
}

// TotalRevenue sums the revenue of the cluster's movies, each counted once
// however many members played in it.
func (c *Cluster) TotalRevenue() float64 {
	total := 0.0
	for _, m := range c.Movies() {
		if m.Revenue != nil {
			total += *m.Revenue
		}
	}
	return total
}

// actorMeanRevenues returns the mean revenue of each member's credited rows,
// skipping members without any revenue.
func (c *Cluster) actorMeanRevenues() []float64 {
	type acc struct {
		sum float64
		n   int
	}
	byActor := make(map[string]*acc)
	order := make([]string, 0)
	for _, row := range c.joined.Rows {
		if row.Revenue == nil {
			continue
		}
		a, ok := byActor[row.ActorID]
		if !ok {
			a = &acc{}
			byActor[row.ActorID] = a
			order = append(order, row.ActorID)
		}
		a.sum += *row.Revenue
		a.n++
	}

	means := make([]float64, 0, len(order))
	for _, id := range order {
		a := byActor[id]
		means = append(means, a.sum/float64(a.n))
	}
	return means
}

// MeanRevenue is the mean over members of each member's mean movie revenue.
// ok is false when no member has revenue data.
func (c *Cluster) MeanRevenue() (mean float64, ok bool) {
	means := c.actorMeanRevenues()
	if len(means) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range means {
		sum += v
	}
	return sum / float64(len(means)), true
}

// MedianRevenue is the median over members of each member's mean movie
// revenue. ok is false when no member has revenue data.
func (c *Cluster) MedianRevenue() (median float64, ok bool) {
	means := c.actorMeanRevenues()
	if len(means) == 0 {
		return 0, false
	}
	slices.Sort(means)
	mid := len(means) / 2
	if len(means)%2 == 1 {
		return means[mid], true
	}
	return (means[mid-1] + means[mid]) / 2, true
}

// Genders returns the female and male fractions among members with a
// recorded gender, taking each member's first role. Both are -1 when no
// member has one.
func (c *Cluster) Genders() (female, male float64) {
	seen := make(map[string]struct{})
	var f, m int
	for _, row := range c.roles {
		if _, dup := seen[row.ActorID]; dup {
			continue
		}
		seen[row.ActorID] = struct{}{}
		switch row.ActorGender {
		case "F":
			f++
		case "M":
			m++
		}
	}
	total := f + m
	if total == 0 {
		return -1, -1
	}
	return float64(f) / float64(total), float64(m) / float64(total)
}

// Ages returns the members' ages at release, one per role. Missing and
// non-positive ages are dropped.
func (c *Cluster) Ages() []float64 {
	ages := make([]float64, 0, len(c.roles))
	for _, row := range c.roles {
		if row.ActorAgeAtRelease != nil && *row.ActorAgeAtRelease > 0 {
			ages = append(ages, *row.ActorAgeAtRelease)
		}
	}
	return ages
}

// Genres counts the cluster's movies per genre, most common first, ties by
// genre name.
func (c *Cluster) Genres() []GenreCount {
	counts := make(map[string]int)
	for _, m := range c.Movies() {
		for _, g := range m.Genres.Names() {
			counts[g]++
		}
	}
	out := make([]GenreCount, 0, len(counts))
	for g, n := range counts {
		out = append(out, GenreCount{Genre: g, Count: n})
	}
	slices.SortFunc(out, func(a, b GenreCount) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Genre, b.Genre)
	})
	return out
}

// PreferredGenres returns the first n entries of Genres.
func (c *Cluster) PreferredGenres(n int) []GenreCount {
	genres := c.Genres()
	if n < len(genres) {
		return genres[:n]
	}
	return genres
}

// ClusterSet is the list of cluster views of one partition, in partition
// order.
type ClusterSet []*Cluster

// NewClusterSet builds one Cluster per community of p. The movie index is
// built once and the character rows are bucketed in a single pass, so p must
// not place an actor in two communities.
func NewClusterSet(characters *table.CharacterTable, movies *table.MovieTable, p partition.Partition) ClusterSet {
	index := table.NewMovieIndex(movies)
	membership := p.Membership()

	buckets := make([][]table.Character, len(p))
	for _, row := range characters.Rows {
		if c, ok := membership[row.ActorID]; ok {
			buckets[c] = append(buckets[c], row)
		}
	}

	set := make(ClusterSet, 0, len(p))
	for i, community := range p {
		set = append(set, newCluster(index, characters.Filters, community, buckets[i]))
	}
	return set
}

// SizeDistribution returns every cluster size, skipping those above
// maxSize when maxSize is positive.
func (s ClusterSet) SizeDistribution(maxSize int) []int {
	sizes := make([]int, 0, len(s))
	for _, c := range s {
		if maxSize > 0 && c.Size() > maxSize {
			continue
		}
		sizes = append(sizes, c.Size())
	}
	return sizes
}

// AgeDistribution returns the mean age at release of every cluster with
// age data.
func (s ClusterSet) AgeDistribution() []float64 {
	means := make([]float64, 0, len(s))
	for _, c := range s {
		ages := c.Ages()
		if len(ages) == 0 {
			continue
		}
		sum := 0.0
		for _, a := range ages {
			sum += a
		}
		means = append(means, sum/float64(len(ages)))
	}
	return means
}

// RevenueDistribution returns MeanRevenue of every cluster with revenue data.
func (s ClusterSet) RevenueDistribution() []float64 {
	means := make([]float64, 0, len(s))
	for _, c := range s {
		if mean, ok := c.MeanRevenue(); ok {
			means = append(means, mean)
		}
	}
	return means
}

// GenderDistribution returns the female fraction of every cluster with
// gender data.
func (s ClusterSet) GenderDistribution() []float64 {
	out := make([]float64, 0, len(s))
	for _, c := range s {
		if female, _ := c.Genders(); female > -1 {
			out = append(out, female)
		}
	}
	return out
}

// NthGenreDistribution counts, across clusters, which genre ranks n-th
// (1-based) in each cluster. Clusters with fewer genres are skipped.
func (s ClusterSet) NthGenreDistribution(n int) []GenreCount {
	if n < 1 {
		return nil
	}
	counts := make(map[string]int)
	for _, c := range s {
		genres := c.Genres()
		if len(genres) >= n {
			counts[genres[n-1].Genre]++
		}
	}
	out := make([]GenreCount, 0, len(counts))
	for g, k := range counts {
		out = append(out, GenreCount{Genre: g, Count: k})
	}
	slices.SortFunc(out, func(a, b GenreCount) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Genre, b.Genre)
	})
	return out
}
