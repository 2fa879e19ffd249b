package asgraph

// PeakIndex returns the index of the highest-degree ASN on p. Ties go to
// the leftmost occurrence. It returns -1 for an empty path.
func PeakIndex(p Path, neighbors AdjacencyMap) int {
	if len(p) == 0 {
		return -1
	}
	peak, best := 0, neighbors.Degree(p[0])
	for i := 1; i < len(p); i++ {
		if d := neighbors.Degree(p[i]); d > best {
			peak, best = i, d
		}
	}
	return peak
}

// inferTransit records, for every ASN on every path, the neighbor on the
// side of the path's peak. The peak itself gets nothing from its own path.
func inferTransit(paths []Path, neighbors AdjacencyMap) AdjacencyMap {
	transit := make(AdjacencyMap)
	for _, p := range paths {
		j := PeakIndex(p, neighbors)
		for i := 0; i < j; i++ {
			transit.Insert(p[i], p[i+1])
		}
		for i := j + 1; i < len(p); i++ {
			transit.Insert(p[i], p[i-1])
		}
	}
	return transit
}
