package strtab

import "fmt"

type dynBuf struct {
	data []byte // capacity fixed at allocation; last byte reserved for NUL
	n    int
}

// table holds script-owned strings that live until freed.
type table struct {
	slots []*dynBuf
	inUse int
}

func newTable(size int) table {
	return table{slots: make([]*dynBuf, size)}
}

func (t *table) allocate(content string, minSize int) (int, error) {
	slot := -1
	for i, b := range t.slots {
		if b == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return 0, fmt.Errorf("%w: %d slots in use", ErrTableFull, len(t.slots))
	}
	size := len(content) + 1
	if minSize > size {
		size = minSize
	}
	b := &dynBuf{data: make([]byte, size)}
	b.n = copy(b.data[:size-1], content)
	t.slots[slot] = b
	t.inUse++
	return slot, nil
}

func (t *table) get(slot int) (*dynBuf, error) {
	if slot < 0 || slot >= len(t.slots) {
		return nil, fmt.Errorf("%w: dynamic slot %d out of range", ErrBadHandle, slot)
	}
	b := t.slots[slot]
	if b == nil {
		return nil, fmt.Errorf("%w: dynamic slot %d is not allocated", ErrBadHandle, slot)
	}
	return b, nil
}

func (t *table) free(slot int) error {
	if slot < 0 || slot >= len(t.slots) {
		return fmt.Errorf("%w: dynamic slot %d out of range", ErrBadHandle, slot)
	}
	b := t.slots[slot]
	if b == nil {
		return fmt.Errorf("%w: dynamic slot %d", ErrDoubleFree, slot)
	}
	clear(b.data)
	b.n = 0
	t.slots[slot] = nil
	t.inUse--
	return nil
}

func (t *table) clear() int {
	n := 0
	for i, b := range t.slots {
		if b != nil {
			clear(b.data)
			t.slots[i] = nil
			n++
		}
	}
	t.inUse = 0
	return n
}
