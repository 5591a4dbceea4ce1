package client

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultStuffSize is the capacity of a client's stufftext accumulator.
	DefaultStuffSize = 1024

	// DisconnectSentinel is the one line intercepted instead of delivered.
	DisconnectSentinel = "disconnect\n"
)

var ErrStuffOverflow = errors.New("client: stufftext buffer overflow")

// StuffBuffer accumulates text destined for a client's command interpreter
// until whole lines are available.
type StuffBuffer struct {
	max int
	buf strings.Builder
}

func NewStuffBuffer(max int) *StuffBuffer {
	if max <= 0 {
		max = DefaultStuffSize
	}
	return &StuffBuffer{max: max}
}

func (b *StuffBuffer) Len() int        { return b.buf.Len() }
func (b *StuffBuffer) Pending() string { return b.buf.String() }

// Append adds text. The buffer is left unchanged when the result would not
// fit (the terminator counts against the capacity).
func (b *StuffBuffer) Append(text string) error {
	if b.buf.Len()+len(text) >= b.max {
		return fmt.Errorf("%w: %d buffered + %d >= %d", ErrStuffOverflow, b.buf.Len(), len(text), b.max)
	}
	b.buf.WriteString(text)
	return nil
}

// Restore replaces the buffered text with a value saved from Pending.
func (b *StuffBuffer) Restore(text string) {
	b.buf.Reset()
	b.buf.WriteString(text)
}

// Drain removes and returns every complete line, newline included. A
// trailing partial line stays buffered. The returned slice is computed
// before any line is acted on, so callers may re-enter Append while
// delivering.
func (b *StuffBuffer) Drain() []string {
	s := b.buf.String()
	last := strings.LastIndexByte(s, '\n')
	if last < 0 {
		return nil
	}
	complete, rest := s[:last+1], s[last+1:]
	b.buf.Reset()
	b.buf.WriteString(rest)
	lines := strings.SplitAfter(complete, "\n")
	return lines[:len(lines)-1]
}

// Clear discards everything buffered.
func (b *StuffBuffer) Clear() { b.buf.Reset() }

// ContainsDisconnect reports whether lines holds the disconnect sentinel.
func ContainsDisconnect(lines []string) bool {
	for _, l := range lines {
		if l == DisconnectSentinel {
			return true
		}
	}
	return false
}
