// Package stats derives the cross-year statistics of a run from the built
// graphs. Every ratio it computes is defined as 0 when its denominator is
// empty, so the figures never contain NaN.
package stats

import (
	"sort"

	"github.com/dd0wney/cluso-asgraph/pkg/asgraph"
	"github.com/dd0wney/cluso-asgraph/pkg/pipeline"
)

// FamilyStats summarizes one graph
type FamilyStats struct {
	Vertices int
	// Edges counts every undirected edge twice
	Edges          int
	Paths          int
	MeanPathLength float64
	// Relationships counts the directed entries per relationship kind
	Relationships map[string]int
	// Roles holds the population of each role
	Roles [asgraph.NumRoles]int
}

// YearStats holds the statistics of one year
type YearStats struct {
	Year int
	V4   FamilyStats
	V6   FamilyStats

	// RoleFractions is, per role, the share of the ASes holding that role
	// in either family that hold it in the IPv6 graph
	RoleFractions [asgraph.NumRoles]float64

	// Overall is the share of all ASes of the year present in the IPv6
	// graph
	Overall float64

	// Filled marks a zero entry inserted for a year without data
	Filled bool
}

// Family returns the stats of the given family
func (y YearStats) Family(f asgraph.Family) FamilyStats {
	if f == asgraph.V6 {
		return y.V6
	}
	return y.V4
}

// OfGraph summarizes a single graph
func OfGraph(g *asgraph.Graph) FamilyStats {
	fs := FamilyStats{
		Vertices:       g.VertexCount(),
		Edges:          g.EdgeCount(),
		Paths:          len(g.Paths),
		MeanPathLength: g.MeanPathLength(),
		Relationships:  g.Relationships.Counts(),
	}
	for i, set := range g.Roles {
		fs.Roles[i] = len(set)
	}
	return fs
}

// Year computes the statistics of one year from its two graphs
func Year(year int, v4, v6 *asgraph.Graph) YearStats {
	ys := YearStats{
		Year:    year,
		V4:      OfGraph(v4),
		V6:      OfGraph(v6),
		Overall: CrossFraction(v4.Neighbors, v6.Neighbors),
	}
	for _, r := range asgraph.Roles {
		ys.RoleFractions[r] = CrossFraction(v4.Roles[r], v6.Roles[r])
	}
	return ys
}

// Aggregate computes the statistics of every successful result, in year
// order. Failed results are skipped.
func Aggregate(results []pipeline.Result) []YearStats {
	out := make([]YearStats, 0, len(results))
	for _, r := range results {
		if !r.OK() || r.V4 == nil || r.V6 == nil {
			continue
		}
		out = append(out, Year(r.Year, r.V4, r.V6))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Year < out[j].Year
	})
	return out
}

// CrossFraction returns |v6| / |v4 ∪ v6| over the keys of both maps, 0
// when both are empty
func CrossFraction[V any, M ~map[asgraph.ASN]V](v4, v6 M) float64 {
	if len(v4) == 0 && len(v6) == 0 {
		return 0
	}

	common := 0
	small, big := v4, v6
	if len(v4) > len(v6) {
		small, big = v6, v4
	}
	for a := range small {
		if _, ok := big[a]; ok {
			common++
		}
	}

	union := len(v4) + len(v6) - common
	return float64(len(v6)) / float64(union)
}

// FillMissingYears returns stats covering every year from the first to the
// last, inserting zero entries marked Filled for the gaps. The input must
// be sorted by year.
func FillMissingYears(years []YearStats) []YearStats {
	if len(years) < 2 {
		return years
	}

	first, last := years[0].Year, years[len(years)-1].Year
	out := make([]YearStats, 0, last-first+1)
	next := first
	for _, ys := range years {
		for ; next < ys.Year; next++ {
			out = append(out, YearStats{Year: next, Filled: true})
		}
		out = append(out, ys)
		next = ys.Year + 1
	}
	return out
}
