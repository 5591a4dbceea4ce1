package strtab

import (
	"bytes"
	"fmt"
)

// ConstantPool is the progs string block: NUL-terminated strings addressed by
// byte offset. It is copied on construction and never written afterwards.
type ConstantPool struct {
	data []byte
}

// NewConstantPool copies data. An empty pool still resolves offset 0 to "".
func NewConstantPool(data []byte) *ConstantPool {
	if len(data) == 0 {
		return &ConstantPool{data: []byte{0}}
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return &ConstantPool{data: cp}
}

// BuildConstantPool lays strs out after a leading empty string and returns
// their offsets, the way the progs compiler emits its string block.
func BuildConstantPool(strs ...string) (*ConstantPool, []int) {
	var buf bytes.Buffer
	buf.WriteByte(0)
	offsets := make([]int, len(strs))
	for i, s := range strs {
		offsets[i] = buf.Len()
		buf.WriteString(s)
		buf.WriteByte(0)
	}
	return &ConstantPool{data: buf.Bytes()}, offsets
}

// Len returns the size of the pool in bytes.
func (p *ConstantPool) Len() int { return len(p.data) }

// Lookup returns the string starting at offset.
func (p *ConstantPool) Lookup(offset int) (string, error) {
	if offset < 0 || offset >= len(p.data) {
		return "", fmt.Errorf("%w: constant offset %d outside pool of %d bytes", ErrBadHandle, offset, len(p.data))
	}
	rest := p.data[offset:]
	if i := bytes.IndexByte(rest, 0); i >= 0 {
		rest = rest[:i]
	}
	return string(rest), nil
}
