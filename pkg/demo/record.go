// Package demo records outbound server messages as an MVD-style session
// recording. Messages are collected into frames of tagged records; each
// finished frame is handed to every registered FrameSink.
package demo

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Kind says which clients a record was addressed to.
type Kind uint8

const (
	KindCmd      Kind = iota // demo-only command
	KindRead                 // raw read from a client
	KindSet                  // sequence numbers
	KindMultiple             // a set of clients
	KindSingle               // one client, To is the client index
	KindStats                // stats update for one client
	KindAll                  // every client
)

func (k Kind) String() string {
	switch k {
	case KindCmd:
		return "dem_cmd"
	case KindRead:
		return "dem_read"
	case KindSet:
		return "dem_set"
	case KindMultiple:
		return "dem_multiple"
	case KindSingle:
		return "dem_single"
	case KindStats:
		return "dem_stats"
	case KindAll:
		return "dem_all"
	default:
		return fmt.Sprintf("dem_%d", uint8(k))
	}
}

// MaxTarget is the largest client index representable in a record header.
const MaxTarget = 31

const recordHeaderSize = 5

var ErrCorruptFrame = errors.New("demo: corrupt frame")

// Record is one tagged run of message bytes.
type Record struct {
	Kind    Kind   `cbor:"1,keyasint"`
	To      int    `cbor:"2,keyasint"`
	Payload []byte `cbor:"3,keyasint"`
}

// Header returns the record's tag byte.
func (r Record) Header() byte { return byte(r.Kind&7) | byte(r.To)<<3 }

// Size returns the encoded size of r.
func (r Record) Size() int { return recordHeaderSize + len(r.Payload) }

// Frame is the set of records written during one server frame.
type Frame struct {
	Seq     uint64   `cbor:"1,keyasint"`
	Time    float64  `cbor:"2,keyasint"`
	Records []Record `cbor:"3,keyasint"`
}

// Size returns the encoded size of the frame's records.
func (f *Frame) Size() int {
	n := 0
	for _, r := range f.Records {
		n += r.Size()
	}
	return n
}

// EncodeFrame appends the wire form of f's records to dst: for each record a
// header byte, a 4-byte little-endian payload length and the payload.
func EncodeFrame(dst []byte, f *Frame) []byte {
	for _, r := range f.Records {
		dst = append(dst, r.Header())
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(r.Payload)))
		dst = append(dst, r.Payload...)
	}
	return dst
}

// DecodeRecords parses the output of EncodeFrame.
func DecodeRecords(data []byte) ([]Record, error) {
	var out []Record
	for len(data) > 0 {
		if len(data) < recordHeaderSize {
			return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptFrame, len(data))
		}
		h := data[0]
		n := int(binary.LittleEndian.Uint32(data[1:5]))
		data = data[recordHeaderSize:]
		if n > len(data) {
			return nil, fmt.Errorf("%w: record of %d bytes with %d left", ErrCorruptFrame, n, len(data))
		}
		out = append(out, Record{
			Kind:    Kind(h & 7),
			To:      int(h >> 3),
			Payload: append([]byte(nil), data[:n]...),
		})
		data = data[n:]
	}
	return out, nil
}
