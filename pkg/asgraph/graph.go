package asgraph

// Graph is the result of one (year, family) build. It is immutable once
// returned by Builder.Build or decoded from a snapshot.
type Graph struct {
	Year   int
	Family Family

	// Paths holds every retained observed path in corpus order
	Paths []Path

	// Neighbors is the undirected AS adjacency graph. Vertices without
	// edges are present with an empty set.
	Neighbors AdjacencyMap

	// Transit maps an ASN to the neighbors it was seen transiting toward,
	// on the peak side of each path it appeared in
	Transit AdjacencyMap

	Relationships Relationships

	// Roles partitions the vertex set of Neighbors, indexed by Role
	Roles [NumRoles]ASSet
}

func newGraph(year int, family Family) *Graph {
	g := &Graph{
		Year:          year,
		Family:        family,
		Paths:         make([]Path, 0),
		Neighbors:     make(AdjacencyMap),
		Transit:       make(AdjacencyMap),
		Relationships: newRelationships(),
	}
	for i := range g.Roles {
		g.Roles[i] = make(ASSet)
	}
	return g
}

// VertexCount returns the number of ASes in the neighbor graph
func (g *Graph) VertexCount() int {
	return len(g.Neighbors)
}

// EdgeCount returns the sum of all neighbor-set sizes. Every undirected
// edge is counted twice, a self-loop once.
func (g *Graph) EdgeCount() int {
	return g.Neighbors.Entries()
}

// MeanPathLength returns the mean retained path length, 0 without paths
func (g *Graph) MeanPathLength() float64 {
	if len(g.Paths) == 0 {
		return 0
	}
	total := 0
	for _, p := range g.Paths {
		total += len(p)
	}
	return float64(total) / float64(len(g.Paths))
}

// Degree returns the neighbor count of a
func (g *Graph) Degree(a ASN) int {
	return g.Neighbors.Degree(a)
}

// RoleOf returns the role of a, false if a is not a vertex
func (g *Graph) RoleOf(a ASN) (Role, bool) {
	for r, set := range g.Roles {
		if set.Has(a) {
			return Role(r), true
		}
	}
	return 0, false
}
