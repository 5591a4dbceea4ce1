package wire

import (
	"encoding/binary"
	"errors"
)

// ErrShortRead is reported by Reader.Err after reading past the end of data.
var ErrShortRead = errors.New("wire: read past end of message")

// Reader decodes values written by the Append* encoders. Reads past the end
// return zero values and latch the error, so a decode sequence can be checked
// once at the end.
type Reader struct {
	data []byte
	pos  int
	bad  bool
}

// NewReader reads from data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns ErrShortRead if any read ran off the end.
func (r *Reader) Err() error {
	if r.bad {
		return ErrShortRead
	}
	return nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

func (r *Reader) take(n int) []byte {
	if r.pos+n > len(r.data) {
		r.bad = true
		r.pos = len(r.data)
		return nil
	}
	p := r.data[r.pos : r.pos+n]
	r.pos += n
	return p
}

// Byte reads an unsigned byte.
func (r *Reader) Byte() int {
	p := r.take(1)
	if p == nil {
		return -1
	}
	return int(p[0])
}

// Char reads a signed byte.
func (r *Reader) Char() int {
	p := r.take(1)
	if p == nil {
		return -1
	}
	return int(int8(p[0]))
}

// Short reads a signed little-endian short.
func (r *Reader) Short() int {
	p := r.take(2)
	if p == nil {
		return -1
	}
	return int(int16(binary.LittleEndian.Uint16(p)))
}

// Long reads a signed little-endian long.
func (r *Reader) Long() int {
	p := r.take(4)
	if p == nil {
		return -1
	}
	return int(int32(binary.LittleEndian.Uint32(p)))
}

// Coord reads a quantized coordinate.
func (r *Reader) Coord() float32 {
	p := r.take(2)
	if p == nil {
		return 0
	}
	return DequantizeCoord(int16(binary.LittleEndian.Uint16(p)))
}

// Angle reads a quantized angle.
func (r *Reader) Angle() float32 {
	p := r.take(1)
	if p == nil {
		return 0
	}
	return DequantizeAngle(p[0])
}

// String reads up to and including a NUL terminator. A missing terminator is a
// short read.
func (r *Reader) String() string {
	for i := r.pos; i < len(r.data); i++ {
		if r.data[i] == 0 {
			s := string(r.data[r.pos:i])
			r.pos = i + 1
			return s
		}
	}
	r.bad = true
	r.pos = len(r.data)
	return ""
}

// Entity reads an entity number.
func (r *Reader) Entity() int {
	p := r.take(2)
	if p == nil {
		return 0
	}
	return int(binary.LittleEndian.Uint16(p))
}
