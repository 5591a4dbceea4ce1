package wire

import (
	"errors"
	"fmt"
	"log"
)

// ErrOverflow is returned when a write does not fit a buffer that does not
// allow overflow.
var ErrOverflow = errors.New("wire: buffer overflow")

// Buffer is a bounded outbound message buffer. When AllowOverflow is set a
// write that does not fit clears the buffer and marks it Overflowed instead of
// failing, which is how unreliable datagrams shed load.
type Buffer struct {
	Name          string
	AllowOverflow bool
	Overflowed    bool

	data    []byte
	maxSize int
}

// NewBuffer creates a buffer holding at most maxSize bytes.
func NewBuffer(name string, maxSize int, allowOverflow bool) *Buffer {
	return &Buffer{
		Name:          name,
		AllowOverflow: allowOverflow,
		data:          make([]byte, 0, maxSize),
		maxSize:       maxSize,
	}
}

// Len returns the number of bytes written.
func (b *Buffer) Len() int { return len(b.data) }

// MaxSize returns the capacity limit.
func (b *Buffer) MaxSize() int { return b.maxSize }

// Free returns how many more bytes fit.
func (b *Buffer) Free() int { return b.maxSize - len(b.data) }

// Bytes returns the written bytes. The slice aliases the buffer until the next
// write or Clear.
func (b *Buffer) Bytes() []byte { return b.data }

// Clear empties the buffer and resets the overflow flag.
func (b *Buffer) Clear() {
	b.data = b.data[:0]
	b.Overflowed = false
}

// Write appends p as a single unit: either all of p lands in the buffer or
// none of it does.
func (b *Buffer) Write(p []byte) (int, error) {
	if len(b.data)+len(p) > b.maxSize {
		if !b.AllowOverflow {
			return 0, fmt.Errorf("%w: %s: %d + %d > %d", ErrOverflow, b.Name, len(b.data), len(p), b.maxSize)
		}
		if len(p) > b.maxSize {
			return 0, fmt.Errorf("%w: %s: %d byte write exceeds %d", ErrOverflow, b.Name, len(p), b.maxSize)
		}
		log.Printf("wire: %s overflowed, clearing", b.Name)
		b.Clear()
		b.Overflowed = true
	}
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *Buffer) put(p []byte) error {
	_, err := b.Write(p)
	return err
}

// PutByte writes an unsigned byte.
func (b *Buffer) PutByte(c int) error {
	var tmp [1]byte
	return b.put(AppendByte(tmp[:0], c))
}

// PutChar writes a signed byte.
func (b *Buffer) PutChar(c int) error {
	var tmp [1]byte
	return b.put(AppendChar(tmp[:0], c))
}

// PutShort writes a little-endian short.
func (b *Buffer) PutShort(c int) error {
	var tmp [2]byte
	return b.put(AppendShort(tmp[:0], c))
}

// PutLong writes a little-endian long.
func (b *Buffer) PutLong(c int) error {
	var tmp [4]byte
	return b.put(AppendLong(tmp[:0], c))
}

// PutCoord writes a quantized coordinate.
func (b *Buffer) PutCoord(f float32) error {
	var tmp [2]byte
	return b.put(AppendCoord(tmp[:0], f))
}

// PutAngle writes a quantized angle.
func (b *Buffer) PutAngle(f float32) error {
	var tmp [1]byte
	return b.put(AppendAngle(tmp[:0], f))
}

// PutString writes a NUL-terminated string.
func (b *Buffer) PutString(s string) error {
	return b.put(AppendString(make([]byte, 0, len(s)+1), s))
}

// PutEntity writes an entity number.
func (b *Buffer) PutEntity(num int) error {
	var tmp [2]byte
	return b.put(AppendEntity(tmp[:0], num))
}
