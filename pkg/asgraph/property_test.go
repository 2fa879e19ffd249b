package asgraph

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// corpusFrom turns generated byte slices into sequence announcements. The
// small ASN space makes shared vertices and repeated pairs likely.
func corpusFrom(raw [][]uint8) []Announcement {
	out := make([]Announcement, 0, len(raw))
	for _, r := range raw {
		asns := make([]ASN, len(r))
		for i, b := range r {
			asns[i] = ASN(b)
		}
		out = append(out, seq(asns...))
	}
	return out
}

// mixedCorpusFrom splits every path in two and turns the second half into
// a set segment when the matching kind byte is odd
func mixedCorpusFrom(raw [][]uint8, kinds []uint8) []Announcement {
	out := make([]Announcement, 0, len(raw))
	for i, r := range raw {
		asns := make([]ASN, len(r))
		for j, b := range r {
			asns[j] = ASN(b)
		}
		kind := Sequence
		if i < len(kinds) && kinds[i]%2 == 1 {
			kind = Set
		}
		mid := len(asns) / 2
		out = append(out, segs(
			Segment{Kind: Sequence, ASNs: asns[:mid]},
			Segment{Kind: kind, ASNs: asns[mid:]},
		))
	}
	return out
}

func buildOrFail(announcements []Announcement) *Graph {
	g, err := BuildFrom(2020, V4, announcements, BuildOptions{})
	if err != nil {
		panic(err)
	}
	return g
}

func isSymmetric(m AdjacencyMap) bool {
	for x, set := range m {
		for y := range set {
			if !m.Contains(y, x) {
				return false
			}
		}
	}
	return true
}

func isRolePartition(g *Graph) bool {
	total := 0
	for _, set := range g.Roles {
		total += len(set)
		for v := range set {
			if _, ok := g.Neighbors[v]; !ok {
				return false
			}
		}
	}
	if total != len(g.Neighbors) {
		return false
	}
	for v := range g.Neighbors {
		if _, ok := g.RoleOf(v); !ok {
			return false
		}
	}
	return true
}

// TestGraphInvariants uses property-based testing to verify build invariants
func TestGraphInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	pathsGen := gen.SliceOf(gen.SliceOf(gen.UInt8Range(1, 24)))

	// Property 1: the neighbor graph is symmetric
	properties.Property("neighbor graph is symmetric", prop.ForAll(
		func(raw [][]uint8, kinds []uint8) bool {
			g := buildOrFail(mixedCorpusFrom(raw, kinds))
			return isSymmetric(g.Neighbors)
		},
		pathsGen,
		gen.SliceOf(gen.UInt8()),
	))

	// Property 2: roles partition the vertex set
	properties.Property("roles partition the vertices", prop.ForAll(
		func(raw [][]uint8, kinds []uint8) bool {
			return isRolePartition(buildOrFail(mixedCorpusFrom(raw, kinds)))
		},
		pathsGen,
		gen.SliceOf(gen.UInt8()),
	))

	// Property 3: the peak is the leftmost maximum
	properties.Property("peak is the leftmost maximum degree", prop.ForAll(
		func(raw [][]uint8) bool {
			g := buildOrFail(corpusFrom(raw))
			for _, p := range g.Paths {
				j := PeakIndex(p, g.Neighbors)
				peak := g.Degree(p[j])
				for i, a := range p {
					d := g.Degree(a)
					if d > peak || (i < j && d == peak) {
						return false
					}
				}
			}
			return true
		},
		pathsGen,
	))

	// Property 4: with sequences only, transit observations follow graph edges
	properties.Property("transit observations are graph edges", prop.ForAll(
		func(raw [][]uint8) bool {
			g := buildOrFail(corpusFrom(raw))
			for x, set := range g.Transit {
				for y := range set {
					if !g.Neighbors.Contains(x, y) {
						return false
					}
				}
			}
			return true
		},
		pathsGen,
	))

	// Property 5: every adjacent pair gets at least one relation
	properties.Property("every adjacent pair is classified", prop.ForAll(
		func(raw [][]uint8, kinds []uint8) bool {
			g := buildOrFail(mixedCorpusFrom(raw, kinds))
			rel := g.Relationships
			for _, p := range g.Paths {
				for i := 0; i+1 < len(p); i++ {
					x, y := p[i], p[i+1]
					if !rel.Customers.Contains(x, y) && !rel.Providers.Contains(x, y) &&
						!rel.Peers.Contains(x, y) && !rel.Siblings.Contains(x, y) {
						return false
					}
				}
			}
			return isSymmetric(rel.Peers) && isSymmetric(rel.Siblings)
		},
		pathsGen,
		gen.SliceOf(gen.UInt8()),
	))

	// Property 6: retained paths are never empty
	properties.Property("retained paths are non-empty", prop.ForAll(
		func(raw [][]uint8) bool {
			g := buildOrFail(corpusFrom(raw))
			for _, p := range g.Paths {
				if len(p) == 0 {
					return false
				}
			}
			return g.MeanPathLength() >= 0
		},
		pathsGen,
	))

	properties.TestingRun(t)
}
