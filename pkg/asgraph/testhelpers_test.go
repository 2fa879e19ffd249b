package asgraph

import (
	"net/netip"
	"testing"
)

var testPeer = netip.MustParseAddr("192.0.2.1")

// seq builds an announcement made of a single AS_SEQUENCE segment
func seq(asns ...ASN) Announcement {
	return Announcement{
		PeerAddr: testPeer,
		ASPath:   []Segment{{Kind: Sequence, ASNs: asns}},
	}
}

// segs builds an announcement from explicit segments
func segs(segments ...Segment) Announcement {
	return Announcement{PeerAddr: testPeer, ASPath: segments}
}

func mustBuild(t *testing.T, announcements ...Announcement) *Graph {
	t.Helper()
	g, err := BuildFrom(2020, V4, announcements, BuildOptions{})
	if err != nil {
		t.Fatalf("BuildFrom failed: %v", err)
	}
	return g
}

func assertSet(t *testing.T, name string, set ASSet, want ...ASN) {
	t.Helper()
	if len(set) != len(want) {
		t.Fatalf("%s = %v, want %v", name, set.Sorted(), want)
	}
	for _, a := range want {
		if !set.Has(a) {
			t.Fatalf("%s = %v, want %v", name, set.Sorted(), want)
		}
	}
}
