package asgraph

import (
	"fmt"
	"net/netip"
	"slices"
	"strings"
)

// ASN is an autonomous system number. No validation is done beyond the
// 32-bit range.
type ASN uint32

// Family identifies the address family a graph was built from.
type Family uint8

const (
	// V4 graphs are built from announcements received over IPv4 peerings
	V4 Family = iota
	// V6 graphs are built from announcements received over IPv6 peerings
	V6
)

// Families lists both families in report order.
var Families = [...]Family{V4, V6}

// String returns the family name used in keys, logs and file names
func (f Family) String() string {
	switch f {
	case V4:
		return "ipv4"
	case V6:
		return "ipv6"
	default:
		return fmt.Sprintf("family(%d)", uint8(f))
	}
}

// Valid reports whether f is one of the known families
func (f Family) Valid() bool {
	return f == V4 || f == V6
}

// ParseFamily converts a family name to a Family
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(s) {
	case "ipv4", "v4", "4":
		return V4, nil
	case "ipv6", "v6", "6":
		return V6, nil
	default:
		return 0, fmt.Errorf("unknown address family %q", s)
	}
}

// FamilyOf returns the family of a peer address. IPv4-mapped IPv6
// addresses count as IPv4.
func FamilyOf(addr netip.Addr) Family {
	if addr.Unmap().Is4() {
		return V4
	}
	return V6
}

// SegmentKind is the type of an AS-path segment
type SegmentKind uint8

const (
	Sequence SegmentKind = iota + 1
	Set
	ConfedSequence
	ConfedSet
)

// String returns the segment kind name
func (k SegmentKind) String() string {
	switch k {
	case Sequence:
		return "AS_SEQUENCE"
	case Set:
		return "AS_SET"
	case ConfedSequence:
		return "AS_CONFED_SEQUENCE"
	case ConfedSet:
		return "AS_CONFED_SET"
	default:
		return fmt.Sprintf("segment(%d)", uint8(k))
	}
}

// Ordered reports whether consecutive ASNs of the segment are adjacent.
// Set kinds are unordered aggregation points.
func (k SegmentKind) Ordered() bool {
	return k == Sequence || k == ConfedSequence
}

// Segment is one element of an AS-path
type Segment struct {
	Kind SegmentKind
	ASNs []ASN
}

// Announcement is one decoded route announcement. A nil ASPath means the
// announcement carried no AS-path attribute.
type Announcement struct {
	PeerAddr netip.Addr
	ASPath   []Segment
}

// Path is the flattened ASN sequence of one retained announcement
type Path []ASN

// ASSet is a set of ASNs
type ASSet map[ASN]struct{}

// Has reports whether a is in the set
func (s ASSet) Has(a ASN) bool {
	_, ok := s[a]
	return ok
}

// Add inserts a into the set
func (s ASSet) Add(a ASN) {
	s[a] = struct{}{}
}

// Sorted returns the members in ascending order
func (s ASSet) Sorted() []ASN {
	out := make([]ASN, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

// AdjacencyMap maps an ASN to a set of ASNs. It backs the neighbor graph,
// the transit relation and every relationship map.
type AdjacencyMap map[ASN]ASSet

// AddVertex makes sure a is present as a key and returns its set
func (m AdjacencyMap) AddVertex(a ASN) ASSet {
	set, ok := m[a]
	if !ok {
		set = make(ASSet)
		m[a] = set
	}
	return set
}

// Insert records the directed entry x -> y
func (m AdjacencyMap) Insert(x, y ASN) {
	m.AddVertex(x).Add(y)
}

// Link records x -> y and y -> x
func (m AdjacencyMap) Link(x, y ASN) {
	m.Insert(x, y)
	m.Insert(y, x)
}

// Contains reports whether y is in the set of x
func (m AdjacencyMap) Contains(x, y ASN) bool {
	return m[x].Has(y)
}

// Degree returns the size of the set of a, 0 when absent
func (m AdjacencyMap) Degree(a ASN) int {
	return len(m[a])
}

// Entries returns the sum of all set sizes
func (m AdjacencyMap) Entries() int {
	total := 0
	for _, set := range m {
		total += len(set)
	}
	return total
}

// Keys returns the keys in ascending order
func (m AdjacencyMap) Keys() []ASN {
	out := make([]ASN, 0, len(m))
	for a := range m {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}
