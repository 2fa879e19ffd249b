package asgraph

// normalize flattens the segments of one AS-path into a Path and folds
// its adjacencies into the neighbor graph. Sequence kinds link each ASN to
// the previously emitted one; set kinds add isolated vertices and reset
// the chain, so nothing links into or out of a set.
func normalize(segments []Segment, neighbors AdjacencyMap, collapse bool) Path {
	var (
		path    Path
		prev    ASN
		hasPrev bool
	)

	for _, seg := range segments {
		if !seg.Kind.Ordered() {
			for _, a := range seg.ASNs {
				path = append(path, a)
				neighbors.AddVertex(a)
			}
			hasPrev = false
			continue
		}

		for _, a := range seg.ASNs {
			if collapse && hasPrev && prev == a {
				continue
			}
			path = append(path, a)
			neighbors.AddVertex(a)
			if hasPrev {
				neighbors.Link(prev, a)
			}
			prev, hasPrev = a, true
		}
	}

	return path
}
