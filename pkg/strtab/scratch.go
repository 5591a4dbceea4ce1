package strtab

import "fmt"

const (
	ScratchSlots = 8
	ScratchSize  = 2048
)

type scratchBuf struct {
	data [ScratchSize]byte
	n    int
}

// ring is a fixed set of scratch buffers handed out round-robin. A buffer's
// contents survive until the cursor comes back around to it.
type ring struct {
	bufs   [ScratchSlots]scratchBuf
	cursor uint64
}

func (r *ring) next() *Scratch {
	slot := int(r.cursor % ScratchSlots)
	r.cursor++
	b := &r.bufs[slot]
	b.n = 0
	return &Scratch{buf: b, slot: slot}
}

// Scratch is a writable view of one scratch buffer. Writes past the buffer
// size are truncated; one byte is always kept for the terminator.
type Scratch struct {
	buf  *scratchBuf
	slot int
}

// Handle returns the handle of the underlying slot.
func (s *Scratch) Handle() Handle { return Handle{Kind: KindScratch, Index: s.slot} }

// Slot returns the ring slot index.
func (s *Scratch) Slot() int { return s.slot }

// WriteString appends str, truncating at capacity. It returns the number of
// bytes stored.
func (s *Scratch) WriteString(str string) int {
	room := ScratchSize - 1 - s.buf.n
	if room <= 0 {
		return 0
	}
	if len(str) > room {
		str = str[:room]
	}
	n := copy(s.buf.data[s.buf.n:], str)
	s.buf.n += n
	return n
}

// Set replaces the contents with str.
func (s *Scratch) Set(str string) int {
	s.buf.n = 0
	return s.WriteString(str)
}

// Printf appends formatted text, truncating at capacity.
func (s *Scratch) Printf(format string, args ...any) int {
	return s.WriteString(fmt.Sprintf(format, args...))
}

// String returns the current contents.
func (s *Scratch) String() string { return string(s.buf.data[:s.buf.n]) }

// Len returns the number of bytes held.
func (s *Scratch) Len() int { return s.buf.n }
