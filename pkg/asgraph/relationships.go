package asgraph

// Relation is the relationship inferred for one ordered adjacent pair
type Relation uint8

const (
	// Peer: neither side was seen transiting toward the other
	Peer Relation = iota
	// Sibling: both sides were seen transiting toward each other
	Sibling
	// CustomerOf: the first ASN transits toward the second, so the second
	// is its provider
	CustomerOf
	// ProviderOf: the second ASN transits toward the first
	ProviderOf
)

// String returns the relation name
func (r Relation) String() string {
	switch r {
	case Peer:
		return "peer"
	case Sibling:
		return "sibling"
	case CustomerOf:
		return "customer-of"
	case ProviderOf:
		return "provider-of"
	default:
		return "unknown"
	}
}

// Relationships holds the four relationship maps. Customers[x] holds the
// customers of x and Providers[x] its providers; Peers and Siblings are
// symmetric.
type Relationships struct {
	Customers AdjacencyMap
	Providers AdjacencyMap
	Peers     AdjacencyMap
	Siblings  AdjacencyMap
}

func newRelationships() Relationships {
	return Relationships{
		Customers: make(AdjacencyMap),
		Providers: make(AdjacencyMap),
		Peers:     make(AdjacencyMap),
		Siblings:  make(AdjacencyMap),
	}
}

// Counts returns the number of directed entries per map, keyed by
// "customer", "provider", "peer" and "sibling"
func (r Relationships) Counts() map[string]int {
	return map[string]int{
		"customer": r.Customers.Entries(),
		"provider": r.Providers.Entries(),
		"peer":     r.Peers.Entries(),
		"sibling":  r.Siblings.Entries(),
	}
}

// Classify returns the relation of x to y given the transit relation
func Classify(x, y ASN, transit AdjacencyMap) Relation {
	towardY := transit.Contains(x, y)
	towardX := transit.Contains(y, x)
	switch {
	case towardY && towardX:
		return Sibling
	case towardX:
		return ProviderOf
	case towardY:
		return CustomerOf
	default:
		return Peer
	}
}

func (r Relationships) record(x, y ASN, rel Relation) {
	switch rel {
	case Sibling:
		r.Siblings.Link(x, y)
	case ProviderOf:
		r.Customers.Insert(x, y)
		r.Providers.Insert(y, x)
	case CustomerOf:
		r.Providers.Insert(x, y)
		r.Customers.Insert(y, x)
	default:
		r.Peers.Link(x, y)
	}
}

// classifyRelationships visits every adjacent pair of every path, repeats
// included.
func classifyRelationships(paths []Path, transit AdjacencyMap) Relationships {
	rel := newRelationships()
	for _, p := range paths {
		for i := 0; i+1 < len(p); i++ {
			x, y := p[i], p[i+1]
			rel.record(x, y, Classify(x, y, transit))
		}
	}
	return rel
}
