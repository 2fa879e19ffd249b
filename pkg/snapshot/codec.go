package snapshot

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-asgraph/pkg/asgraph"
)

// Snapshot frame:
//
//	[magic:4][version:1][dataLen:4][snappy payload:dataLen][crc32:4]
//
// The checksum covers the compressed payload. The payload is a sequence of
// uvarints: year, family, paths, then the adjacency maps and role sets
// with keys and members sorted and delta encoded.
const (
	magic         = "ASGS"
	formatVersion = 1
	headerLen     = len(magic) + 1 + 4
	trailerLen    = 4
)

// Encode serializes a graph into a snapshot frame
func Encode(g *asgraph.Graph) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("cannot encode nil graph")
	}
	if g.Year < 0 {
		return nil, fmt.Errorf("cannot encode negative year %d", g.Year)
	}

	var e encoder
	e.uvarint(uint64(g.Year))
	e.uvarint(uint64(g.Family))

	e.uvarint(uint64(len(g.Paths)))
	for _, p := range g.Paths {
		e.uvarint(uint64(len(p)))
		for _, a := range p {
			e.uvarint(uint64(a))
		}
	}

	for _, m := range adjacencyMaps(g) {
		e.adjacency(*m)
	}
	for _, set := range g.Roles {
		e.set(set)
	}

	compressed := snappy.Encode(nil, e.buf)

	frame := make([]byte, 0, headerLen+len(compressed)+trailerLen)
	frame = append(frame, magic...)
	frame = append(frame, formatVersion)
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(compressed)))
	frame = append(frame, compressed...)
	frame = binary.BigEndian.AppendUint32(frame, crc32.ChecksumIEEE(compressed))
	return frame, nil
}

// Decode parses a snapshot frame. Every failure wraps ErrCorrupt.
func Decode(data []byte) (*asgraph.Graph, error) {
	if len(data) < headerLen+trailerLen {
		return nil, fmt.Errorf("%w: frame too short (%d bytes)", ErrCorrupt, len(data))
	}
	if string(data[:len(magic)]) != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	if v := data[len(magic)]; v != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}

	dataLen := binary.BigEndian.Uint32(data[len(magic)+1 : headerLen])
	if uint64(len(data)) != uint64(headerLen)+uint64(dataLen)+uint64(trailerLen) {
		return nil, fmt.Errorf("%w: length mismatch (header says %d, have %d)", ErrCorrupt, dataLen, len(data)-headerLen-trailerLen)
	}

	compressed := data[headerLen : headerLen+int(dataLen)]
	checksum := binary.BigEndian.Uint32(data[headerLen+int(dataLen):])
	if crc32.ChecksumIEEE(compressed) != checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	payload, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decompress: %v", ErrCorrupt, err)
	}

	d := decoder{buf: payload}
	g := &asgraph.Graph{
		Year:   int(d.uvarint()),
		Family: asgraph.Family(d.uvarint()),
	}

	n := d.count()
	g.Paths = make([]asgraph.Path, 0, n)
	for i := 0; i < n && d.err == nil; i++ {
		l := d.count()
		p := make(asgraph.Path, 0, l)
		for j := 0; j < l && d.err == nil; j++ {
			p = append(p, d.asn())
		}
		g.Paths = append(g.Paths, p)
	}

	for _, m := range adjacencyMaps(g) {
		*m = d.adjacency()
	}
	for i := range g.Roles {
		g.Roles[i] = d.set()
	}

	if d.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, d.err)
	}
	if d.off != len(d.buf) {
		return nil, fmt.Errorf("%w: %d trailing payload bytes", ErrCorrupt, len(d.buf)-d.off)
	}
	if !g.Family.Valid() {
		return nil, fmt.Errorf("%w: invalid family %d", ErrCorrupt, g.Family)
	}
	return g, nil
}

// adjacencyMaps lists the graph's adjacency maps in frame order
func adjacencyMaps(g *asgraph.Graph) []*asgraph.AdjacencyMap {
	return []*asgraph.AdjacencyMap{
		&g.Neighbors,
		&g.Transit,
		&g.Relationships.Customers,
		&g.Relationships.Providers,
		&g.Relationships.Peers,
		&g.Relationships.Siblings,
	}
}

type encoder struct {
	buf []byte
}

func (e *encoder) uvarint(v uint64) {
	e.buf = binary.AppendUvarint(e.buf, v)
}

// sorted writes ascending ASNs as deltas
func (e *encoder) sorted(asns []asgraph.ASN) {
	e.uvarint(uint64(len(asns)))
	var prev asgraph.ASN
	for _, a := range asns {
		e.uvarint(uint64(a - prev))
		prev = a
	}
}

func (e *encoder) set(s asgraph.ASSet) {
	e.sorted(s.Sorted())
}

func (e *encoder) adjacency(m asgraph.AdjacencyMap) {
	keys := m.Keys()
	e.sorted(keys)
	for _, k := range keys {
		e.set(m[k])
	}
}

type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Uvarint(d.buf[d.off:])
	if n <= 0 {
		d.err = fmt.Errorf("bad varint at offset %d", d.off)
		return 0
	}
	d.off += n
	return v
}

// count reads a length prefix. Every element takes at least one byte, so
// a count larger than the remaining payload is corrupt.
func (d *decoder) count() int {
	v := d.uvarint()
	if d.err == nil && v > uint64(len(d.buf)-d.off) {
		d.err = fmt.Errorf("count %d exceeds remaining %d bytes", v, len(d.buf)-d.off)
		return 0
	}
	return int(v)
}

func (d *decoder) asn() asgraph.ASN {
	v := d.uvarint()
	if v > 0xFFFFFFFF {
		d.err = fmt.Errorf("ASN %d out of range", v)
		return 0
	}
	return asgraph.ASN(v)
}

func (d *decoder) sorted() []asgraph.ASN {
	n := d.count()
	out := make([]asgraph.ASN, 0, n)
	var prev uint64
	for i := 0; i < n && d.err == nil; i++ {
		delta := d.uvarint()
		if i > 0 && delta == 0 {
			d.err = fmt.Errorf("duplicate ASN %d in sorted list", prev)
			break
		}
		prev += delta
		if prev > 0xFFFFFFFF {
			d.err = fmt.Errorf("ASN %d out of range", prev)
			break
		}
		out = append(out, asgraph.ASN(prev))
	}
	return out
}

func (d *decoder) set() asgraph.ASSet {
	members := d.sorted()
	s := make(asgraph.ASSet, len(members))
	for _, a := range members {
		s.Add(a)
	}
	return s
}

func (d *decoder) adjacency() asgraph.AdjacencyMap {
	keys := d.sorted()
	m := make(asgraph.AdjacencyMap, len(keys))
	for _, k := range keys {
		if d.err != nil {
			break
		}
		m[k] = d.set()
	}
	return m
}
