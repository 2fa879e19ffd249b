// Package mrt reads BGP routing table dumps in the MRT TABLE_DUMP_V2 and
// legacy TABLE_DUMP formats (RFC 6396, RFC 8050), as published by RIPE RIS
// and RouteViews, and turns every RIB entry into an announcement.
package mrt

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/osrg/gobgp/v3/pkg/packet/bgp"
	gobgpmrt "github.com/osrg/gobgp/v3/pkg/packet/mrt"

	"github.com/dd0wney/cluso-asgraph/pkg/asgraph"
	"github.com/dd0wney/cluso-asgraph/pkg/pools"
)

// ErrDecode wraps every malformed-input failure
var ErrDecode = errors.New("mrt decode error")

// MaxRecordSize bounds the body of a single MRT record
const MaxRecordSize = 16 << 20

// TABLE_DUMP subtypes carry the AFI of the entry
const (
	tableDumpAFIIPv4 = 1
	tableDumpAFIIPv6 = 2
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte("BZh")
)

// Reader yields one announcement per RIB entry of a dump. It is not safe
// for concurrent use.
type Reader struct {
	name    string
	src     *bufio.Reader
	closers []io.Closer

	peers   []netip.Addr
	pending []asgraph.Announcement
	records int
	skipped int
	err     error
}

// Open opens a dump file. gzip and bzip2 compression are detected from
// the leading magic bytes.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r, err := newReader(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closers = append(r.closers, f)
	return r, nil
}

// NewReader reads a dump from r, decompressing it if needed. name is used
// in error messages.
func NewReader(r io.Reader, name string) (*Reader, error) {
	return newReader(r, name)
}

func newReader(r io.Reader, name string) (*Reader, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	magic, _ := br.Peek(3)

	reader := &Reader{name: name}
	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
		}
		reader.closers = append(reader.closers, zr)
		reader.src = bufio.NewReaderSize(zr, 1<<16)
	case bytes.HasPrefix(magic, bzip2Magic):
		reader.src = bufio.NewReaderSize(bzip2.NewReader(br), 1<<16)
	default:
		reader.src = br
	}
	return reader, nil
}

// Next returns the next announcement, or io.EOF after the last one. A
// malformed record yields an error wrapping ErrDecode and the reader
// stays failed.
func (r *Reader) Next() (asgraph.Announcement, error) {
	for len(r.pending) == 0 {
		if r.err != nil {
			return asgraph.Announcement{}, r.err
		}
		if err := r.readRecord(); err != nil {
			r.err = err
		}
	}

	a := r.pending[0]
	r.pending = r.pending[1:]
	return a, nil
}

// Records returns the number of MRT records read so far
func (r *Reader) Records() int {
	return r.records
}

// Skipped returns the number of records passed over because they carry
// no RIB entries this reader decodes, such as BGP4MP updates or
// RIB_GENERIC tables
func (r *Reader) Skipped() int {
	return r.skipped
}

// Close releases the underlying file and decompressor
func (r *Reader) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

func (r *Reader) decodeErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s record %d: %s", ErrDecode, r.name, r.records, fmt.Sprintf(format, args...))
}

// readRecord consumes one MRT record and queues its announcements
func (r *Reader) readRecord() error {
	head := make([]byte, gobgpmrt.MRT_COMMON_HEADER_LEN)
	if _, err := io.ReadFull(r.src, head); err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return r.decodeErr("truncated header: %v", err)
	}

	hdr := &gobgpmrt.MRTHeader{}
	if err := hdr.DecodeFromBytes(head); err != nil {
		return r.decodeErr("header: %v", err)
	}
	if hdr.Len > MaxRecordSize {
		return r.decodeErr("record length %d exceeds %d", hdr.Len, MaxRecordSize)
	}

	// Announcements copy what they keep, so the body can be recycled
	body := pools.GetBytesSized(int(hdr.Len))
	defer pools.PutBytes(body)
	if _, err := io.ReadFull(r.src, body); err != nil {
		return r.decodeErr("truncated body: %v", err)
	}
	r.records++

	if hdr.Type == gobgpmrt.TABLE_DUMP {
		return r.readTableDump(hdr, body)
	}
	if hdr.Type != gobgpmrt.TABLE_DUMPv2 {
		r.skipped++
		return nil
	}

	switch gobgpmrt.MRTSubTypeTableDumpv2(hdr.SubType) {
	case gobgpmrt.PEER_INDEX_TABLE:
		return r.readPeerIndex(hdr, body)
	case gobgpmrt.RIB_IPV4_UNICAST, gobgpmrt.RIB_IPV4_MULTICAST,
		gobgpmrt.RIB_IPV6_UNICAST, gobgpmrt.RIB_IPV6_MULTICAST,
		gobgpmrt.RIB_IPV4_UNICAST_ADDPATH, gobgpmrt.RIB_IPV4_MULTICAST_ADDPATH,
		gobgpmrt.RIB_IPV6_UNICAST_ADDPATH, gobgpmrt.RIB_IPV6_MULTICAST_ADDPATH:
		return r.readRib(hdr, body)
	default:
		r.skipped++
		return nil
	}
}

// readTableDump decodes a legacy TABLE_DUMP record: one prefix as seen by
// one peer, with 2-byte AS attributes. The peer address sits after view,
// sequence, prefix, prefix length, status and originated time.
func (r *Reader) readTableDump(hdr *gobgpmrt.MRTHeader, body []byte) (err error) {
	defer recoverDecode(r, &err)

	var addrLen int
	switch hdr.SubType {
	case tableDumpAFIIPv4:
		addrLen = 4
	case tableDumpAFIIPv6:
		addrLen = 16
	default:
		r.skipped++
		return nil
	}

	peerAt := 2 + 2 + addrLen + 1 + 1 + 4
	attrsAt := peerAt + addrLen + 2 + 2
	if len(body) < attrsAt {
		return r.decodeErr("table dump entry of %d bytes", len(body))
	}

	peer, _ := netip.AddrFromSlice(body[peerAt : peerAt+addrLen])
	attrLen := int(binary.BigEndian.Uint16(body[attrsAt-2:]))
	if attrsAt+attrLen > len(body) {
		return r.decodeErr("table dump attributes of %d bytes overrun the record", attrLen)
	}

	attrs, err := decodeAttributes(body[attrsAt : attrsAt+attrLen])
	if err != nil {
		return r.decodeErr("table dump attributes: %v", err)
	}

	r.pending = append(r.pending, asgraph.Announcement{
		PeerAddr: peer,
		ASPath:   asPath(attrs),
	})
	return nil
}

// decodeAttributes parses a run of BGP path attributes
func decodeAttributes(data []byte) ([]bgp.PathAttributeInterface, error) {
	var attrs []bgp.PathAttributeInterface
	for len(data) > 0 {
		attr, err := bgp.GetPathAttribute(data)
		if err != nil {
			return nil, err
		}
		if err := attr.DecodeFromBytes(data); err != nil {
			return nil, err
		}
		n := attr.Len()
		if n <= 0 || n > len(data) {
			return nil, fmt.Errorf("attribute length %d of %d bytes left", n, len(data))
		}
		attrs = append(attrs, attr)
		data = data[n:]
	}
	return attrs, nil
}

func (r *Reader) readPeerIndex(hdr *gobgpmrt.MRTHeader, body []byte) (err error) {
	defer recoverDecode(r, &err)

	msg, err := gobgpmrt.ParseMRTBody(hdr, body)
	if err != nil {
		return r.decodeErr("peer index table: %v", err)
	}
	table, ok := msg.Body.(*gobgpmrt.PeerIndexTable)
	if !ok {
		return r.decodeErr("unexpected peer index body %T", msg.Body)
	}

	peers := make([]netip.Addr, len(table.Peers))
	for i, p := range table.Peers {
		addr, ok := netip.AddrFromSlice(p.IpAddress)
		if !ok {
			return r.decodeErr("peer %d has invalid address", i)
		}
		peers[i] = addr
	}
	r.peers = peers
	return nil
}

func (r *Reader) readRib(hdr *gobgpmrt.MRTHeader, body []byte) (err error) {
	defer recoverDecode(r, &err)

	if r.peers == nil {
		return r.decodeErr("RIB record before peer index table")
	}

	msg, err := gobgpmrt.ParseMRTBody(hdr, body)
	if err != nil {
		return r.decodeErr("rib: %v", err)
	}
	rib, ok := msg.Body.(*gobgpmrt.Rib)
	if !ok {
		return r.decodeErr("unexpected rib body %T", msg.Body)
	}

	for _, entry := range rib.Entries {
		if int(entry.PeerIndex) >= len(r.peers) {
			return r.decodeErr("peer index %d out of range (%d peers)", entry.PeerIndex, len(r.peers))
		}
		r.pending = append(r.pending, asgraph.Announcement{
			PeerAddr: r.peers[entry.PeerIndex],
			ASPath:   asPath(entry.PathAttributes),
		})
	}
	return nil
}

// recoverDecode turns a panic inside the packet parser into a decode error
func recoverDecode(r *Reader, err *error) {
	if p := recover(); p != nil {
		*err = r.decodeErr("parser panic: %v", p)
	}
}

// asPath extracts the AS_PATH attribute. It returns nil when the entry
// carries none.
func asPath(attrs []bgp.PathAttributeInterface) []asgraph.Segment {
	for _, attr := range attrs {
		p, ok := attr.(*bgp.PathAttributeAsPath)
		if !ok {
			continue
		}

		segments := make([]asgraph.Segment, 0, len(p.Value))
		for _, param := range p.Value {
			var (
				kind uint8
				asns []asgraph.ASN
			)
			switch v := param.(type) {
			case *bgp.As4PathParam:
				kind = v.Type
				asns = make([]asgraph.ASN, len(v.AS))
				for i, asn := range v.AS {
					asns[i] = asgraph.ASN(asn)
				}
			case *bgp.AsPathParam:
				kind = v.Type
				asns = make([]asgraph.ASN, len(v.AS))
				for i, asn := range v.AS {
					asns[i] = asgraph.ASN(asn)
				}
			default:
				continue
			}
			segments = append(segments, asgraph.Segment{Kind: segmentKind(kind), ASNs: asns})
		}
		return segments
	}
	return nil
}

func segmentKind(t uint8) asgraph.SegmentKind {
	switch t {
	case bgp.BGP_ASPATH_ATTR_TYPE_SET:
		return asgraph.Set
	case bgp.BGP_ASPATH_ATTR_TYPE_CONFED_SEQ:
		return asgraph.ConfedSequence
	case bgp.BGP_ASPATH_ATTR_TYPE_CONFED_SET:
		return asgraph.ConfedSet
	default:
		return asgraph.Sequence
	}
}
