// Package strtab implements the three string tiers visible to progs code:
// the read-only constant pool, a rotating ring of scratch buffers for values
// that only need to survive the current call, and a bounded table of
// explicitly freed dynamic strings.
package strtab

import "fmt"

// DefaultMaxDynamic is the dynamic table size used by the stock server.
const DefaultMaxDynamic = 256

// Manager owns the scratch ring and the dynamic table for one server
// instance. It is not safe for concurrent use.
type Manager struct {
	pool       *ConstantPool
	ring       ring
	dyn        table
	maxDynamic int
}

// NewManager returns a manager resolving constants from pool. maxDynamic
// values below 1 select DefaultMaxDynamic.
func NewManager(pool *ConstantPool, maxDynamic int) *Manager {
	if pool == nil {
		pool = NewConstantPool(nil)
	}
	if maxDynamic < 1 {
		maxDynamic = DefaultMaxDynamic
	}
	return &Manager{
		pool:       pool,
		dyn:        newTable(maxDynamic),
		maxDynamic: maxDynamic,
	}
}

// MaxDynamic returns the dynamic table capacity.
func (m *Manager) MaxDynamic() int { return m.maxDynamic }

// Pool returns the constant pool.
func (m *Manager) Pool() *ConstantPool { return m.pool }

// Resolve returns the contents of h.
func (m *Manager) Resolve(h Handle) (string, error) {
	switch h.Kind {
	case KindConstant:
		return m.pool.Lookup(h.Index)
	case KindScratch:
		if h.Index < 0 || h.Index >= ScratchSlots {
			return "", fmt.Errorf("%w: scratch slot %d", ErrBadHandle, h.Index)
		}
		b := &m.ring.bufs[h.Index]
		return string(b.data[:b.n]), nil
	case KindDynamic:
		b, err := m.dyn.get(h.Index)
		if err != nil {
			return "", err
		}
		return string(b.data[:b.n]), nil
	default:
		return "", fmt.Errorf("%w: kind %d", ErrBadHandle, h.Kind)
	}
}

// ResolveRaw decodes and resolves an interpreter slot value.
func (m *Manager) ResolveRaw(v int32) (string, error) {
	h, err := m.Decode(v)
	if err != nil {
		return "", err
	}
	return m.Resolve(h)
}

// AllocateScratch advances the ring and returns the next buffer, emptied.
func (m *Manager) AllocateScratch() *Scratch {
	return m.ring.next()
}

// TempString copies s into a fresh scratch buffer and returns its handle.
func (m *Manager) TempString(s string) Handle {
	sc := m.ring.next()
	sc.WriteString(s)
	return sc.Handle()
}

// AllocateDynamic copies content into the lowest free dynamic slot. The
// buffer holds max(len(content)+1, minSize) bytes, terminator included.
func (m *Manager) AllocateDynamic(content string, minSize int) (Handle, error) {
	slot, err := m.dyn.allocate(content, minSize)
	if err != nil {
		return Handle{}, err
	}
	return Handle{Kind: KindDynamic, Index: slot}, nil
}

// FreeDynamic releases h and clears its buffer.
func (m *Manager) FreeDynamic(h Handle) error {
	if h.Kind != KindDynamic {
		return fmt.Errorf("%w: %s is not a dynamic string", ErrBadHandle, h)
	}
	return m.dyn.free(h.Index)
}

// ClearDynamic frees every dynamic string and returns how many were live.
func (m *Manager) ClearDynamic() int {
	return m.dyn.clear()
}

// DynamicInUse returns the number of allocated dynamic slots.
func (m *Manager) DynamicInUse() int { return m.dyn.inUse }

// Store copies src into the buffer behind dst. With limit >= 0 at most limit
// bytes of src are copied and, when src is at least limit bytes long, the
// existing bytes past the copy are kept (strncpy). Content is truncated to
// the destination's capacity. Constant pool strings are read-only.
func (m *Manager) Store(dst Handle, src string, limit int) error {
	var (
		data []byte
		n    *int
	)
	switch dst.Kind {
	case KindConstant:
		return fmt.Errorf("%w: %s", ErrReadOnly, dst)
	case KindScratch:
		if dst.Index < 0 || dst.Index >= ScratchSlots {
			return fmt.Errorf("%w: scratch slot %d", ErrBadHandle, dst.Index)
		}
		b := &m.ring.bufs[dst.Index]
		data, n = b.data[:], &b.n
	case KindDynamic:
		b, err := m.dyn.get(dst.Index)
		if err != nil {
			return err
		}
		data, n = b.data, &b.n
	default:
		return fmt.Errorf("%w: kind %d", ErrBadHandle, dst.Kind)
	}

	capacity := len(data) - 1
	keepTail := false
	if limit >= 0 && len(src) >= limit {
		src = src[:limit]
		keepTail = true
	}
	if len(src) > capacity {
		src = src[:capacity]
	}
	copied := copy(data, src)
	if keepTail && *n > copied {
		return nil
	}
	*n = copied
	return nil
}
